// Package logging provides structured logging utilities for the ga4mcp server.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (user identifier hashing)
//   - Consistent attribute naming across the codebase
//   - An adapter that routes goose migration output through slog
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "query_ga4_data")
//	logger.Info("report completed",
//	    logging.Property("properties/123"),
//	    logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("credentials resolved",
//	    logging.UserHash(userID))
//
// # Security Considerations
//
// This package is designed with security in mind:
//   - User identifiers are hashed to prevent PII leakage while allowing correlation
//   - Refresh and access tokens are never logged directly
package logging
