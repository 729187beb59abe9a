package google

import (
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
)

// DefaultOAuthScopes are the scopes requested when refreshing a user's token.
// Reporting only needs read access to GA4 properties.
var DefaultOAuthScopes = []string{
	analyticsdata.AnalyticsReadonlyScope,
}
