// Package analytics is a thin client for the Google Analytics Data API
// (analyticsdata/v1beta).
//
// A Client is bound to one user's access token and exposes the two calls the
// reporting tools need: RunReport and GetMetadata. Factory creates clients
// from freshly refreshed tokens; it never refreshes tokens itself.
//
// # Example Usage
//
//	factory := analytics.NewFactory(analytics.FactoryConfig{})
//	client, err := factory.NewBackend(ctx, token)
//	if err != nil {
//	    return err
//	}
//	md, err := client.GetMetadata(ctx, "properties/123")
package analytics
