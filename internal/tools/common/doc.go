// Package common provides shared helpers for MCP tool implementations:
// argument decoding at the tool boundary and the instrumentation wrapper
// that records metrics, spans and audit entries for every tool call.
package common
