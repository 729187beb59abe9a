package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestWithOperationAndTool(t *testing.T) {
	var buf bytes.Buffer
	logger := WithTool(WithOperation(New(&buf, FormatJSON, false), "query"), "query_ga4_data")
	logger.Info("hello")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("invalid JSON log line: %v", err)
	}
	if record[KeyOperation] != "query" {
		t.Errorf("operation = %v, want query", record[KeyOperation])
	}
	if record[KeyTool] != "query_ga4_data" {
		t.Errorf("tool = %v, want query_ga4_data", record[KeyTool])
	}
}

func TestWithUser(t *testing.T) {
	var buf bytes.Buffer
	logger := WithUser(New(&buf, FormatJSON, false), "user-42")
	logger.Info("hello")

	if strings.Contains(buf.String(), "user-42") {
		t.Errorf("raw user id leaked into log: %s", buf.String())
	}
	if !strings.Contains(buf.String(), AnonymizeUser("user-42")) {
		t.Errorf("hashed user id missing from log: %s", buf.String())
	}
}

func TestAttrs(t *testing.T) {
	tests := []struct {
		name    string
		attr    slog.Attr
		wantKey string
		wantVal string
	}{
		{"service", Service("analyticsdata"), KeyService, "analyticsdata"},
		{"property", Property("properties/1"), KeyProperty, "properties/1"},
		{"status", Status(StatusSuccess), KeyStatus, "success"},
		{"error kind", ErrorKind("invalid_filter"), KeyErrorKind, "invalid_filter"},
		{"row count", RowCount(3), KeyRowCount, "3"},
		{"duration", Duration(1500 * time.Millisecond), KeyDuration, "1.5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.wantKey {
				t.Errorf("key = %q, want %q", tt.attr.Key, tt.wantKey)
			}
			if got := tt.attr.Value.String(); got != tt.wantVal {
				t.Errorf("value = %q, want %q", got, tt.wantVal)
			}
		})
	}
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("boom"))
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "boom" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "boom")
	}

	nilAttr := Err(nil)
	if nilAttr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty", nilAttr.Key)
	}
}

func TestErr_NilOmitted(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, FormatJSON, false).Info("done", Err(nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON log line: %v", err)
	}
	if _, ok := entry[KeyError]; ok {
		t.Errorf("nil error should be omitted, got %v", entry)
	}
}

func TestAnonymizeUser(t *testing.T) {
	if got := AnonymizeUser(""); got != "" {
		t.Errorf("AnonymizeUser(\"\") = %q, want empty", got)
	}

	a := AnonymizeUser("u1")
	b := AnonymizeUser("u1")
	c := AnonymizeUser("u2")

	if a != b {
		t.Error("AnonymizeUser should be deterministic")
	}
	if a == c {
		t.Error("different users should hash differently")
	}
	if !strings.HasPrefix(a, "user:") || len(a) != len("user:")+16 {
		t.Errorf("AnonymizeUser format = %q", a)
	}
}

func TestUserHash(t *testing.T) {
	attr := UserHash("u1")
	if attr.Key != KeyUserHash {
		t.Errorf("UserHash key = %q, want %q", attr.Key, KeyUserHash)
	}
	if attr.Value.String() != AnonymizeUser("u1") {
		t.Errorf("UserHash value = %q", attr.Value.String())
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"", "<empty>"},
		{"abc", "[token:3 chars]"},
		{"1//0refresh-token", "[token:17 chars]"},
	}
	for _, tt := range tests {
		if got := SanitizeToken(tt.token); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, FormatJSON, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug message written at info level: %s", buf.String())
	}

	New(&buf, FormatJSON, true).Debug("shown")
	if !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Errorf("expected JSON debug line, got %s", buf.String())
	}

	buf.Reset()
	New(&buf, "unknown", false).Info("plain")
	if !strings.Contains(buf.String(), "msg=plain") {
		t.Errorf("expected text handler output, got %s", buf.String())
	}
}

func TestStatusConstants(t *testing.T) {
	if StatusSuccess != "success" {
		t.Errorf("StatusSuccess = %q, want %q", StatusSuccess, "success")
	}
	if StatusError != "error" {
		t.Errorf("StatusError = %q, want %q", StatusError, "error")
	}
}
