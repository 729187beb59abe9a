// Package report translates loosely typed GA4 query descriptions into Data API
// report requests and flattens report responses into row records.
//
// The package is pure: it performs no I/O and holds no state between calls.
//
// # Request building
//
// A QueryDescription carries dimension and metric names, a date range, an
// optional FilterSpec, ordering clauses and a granularity hint. Builder.Build
// turns it into an *analyticsdata.RunReportRequest:
//
//   - the granularity hint (daily, weekly, monthly) is mapped to the date,
//     week or month dimension and appended once when it is not already requested
//   - filters compile to a single string predicate or an AND group
//   - ordering clauses compile to OrderBy entries; malformed clauses are
//     skipped unless the builder is strict
//   - optional fields that were not supplied are left out of the request
//
// # Filter shapes
//
// Three shapes are recognized, checked in this order:
//
//	{"dimension_filter": {"filter": {"field_name": "country", "string_filter": {"value": "US"}}}}
//	{"filter": {"field_name": "country", "string_filter": {"value": "US"}}}
//	{"country": "US", "deviceCategory": "mobile"}
//
// The first two compile to exactly one predicate. The flat form produces one
// equality predicate per entry, combined with AND in the order the entries
// were written.
//
// # Response normalization
//
// Normalize zips the response headers with each row's positional values and
// sums the "sessions" metric across rows.
package report
