package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func newJSONLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "fileproxy", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	return m
}

func TestLogger_FieldsAndService(t *testing.T) {
	var buf bytes.Buffer
	log := newJSONLogger(&buf, "info").WithComponent("proxy")

	log.Info("object stored", Fields("key", "uploads/a.txt", "size", 11))

	m := decodeLine(t, &buf)
	if m["message"] != "object stored" {
		t.Errorf("message = %v", m["message"])
	}
	if m["service"] != "fileproxy" {
		t.Errorf("service = %v", m["service"])
	}
	if m[FieldComponent] != "proxy" {
		t.Errorf("component = %v", m[FieldComponent])
	}
	if m["key"] != "uploads/a.txt" {
		t.Errorf("key = %v", m["key"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := newJSONLogger(&buf, "warn")

	log.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	log.Warn("shown")
	if buf.Len() == 0 {
		t.Fatal("warn should be written at warn level")
	}
}

func TestLogger_WithContextRequestID(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithRequestID(context.Background(), "req-1")
	newJSONLogger(&buf, "info").WithContext(ctx).Info("hello")

	m := decodeLine(t, &buf)
	if m[FieldRequestID] != "req-1" {
		t.Errorf("request_id = %v", m[FieldRequestID])
	}
	if RequestIDFromContext(context.Background()) != "" {
		t.Error("empty context should have no request id")
	}
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	newJSONLogger(&buf, "info").WithError(errors.New("boom")).Error("failed")

	m := decodeLine(t, &buf)
	if m["error"] != "boom" {
		t.Errorf("error = %v", m["error"])
	}
}

func TestFields_OddCount(t *testing.T) {
	m := Fields("a", 1, "b")
	if len(m) != 1 || m["a"] != 1 {
		t.Fatalf("unexpected fields: %v", m)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"bad level", Config{Level: "loud"}, true},
		{"bad format", Config{Format: "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
