package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "kafkaboot", buf)
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "invalid-level")
	l.Debug("hidden")
	l.Info("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("invalid level should fall back to info")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("expected info message to be written")
	}
}

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info").WithComponent("discovery")
	l.Info("task resolved", Fields(FieldTask, "ZOOKEEPER_HOST", FieldAddress, "10.0.0.2"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json output %q: %v", buf.String(), err)
	}
	checks := map[string]string{
		"message":      "task resolved",
		"service":      "kafkaboot",
		FieldComponent: "discovery",
		FieldTask:      "ZOOKEEPER_HOST",
		FieldAddress:   "10.0.0.2",
		"level":        "info",
	}
	for k, want := range checks {
		if got := entry[k]; got != want {
			t.Errorf("field %s: expected %q, got %v", k, want, got)
		}
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").WithError(errors.New("boom")).Error("failed")
	if !strings.Contains(buf.String(), `"error":"boom"`) {
		t.Errorf("expected error field, got %s", buf.String())
	}
}

func TestWithFieldsPreservesService(t *testing.T) {
	l := NewDefault("test").WithFields(map[string]interface{}{"k": "v"})
	if l.service != "test" {
		t.Errorf("service should be preserved, got %q", l.service)
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Error("nothing")
	l.WithComponent("x").Info("nothing")
}

func TestGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := globalLogger
	defer SetGlobalLogger(prev)

	SetGlobalLogger(jsonLogger(&buf, "debug"))
	GetGlobalLogger().WithComponent("c").Info("i")
	if !strings.Contains(buf.String(), `"component":"c"`) {
		t.Errorf("global logger not used: %s", buf.String())
	}

	globalLogger = nil
	if GetGlobalLogger() == nil {
		t.Error("expected a default global logger")
	}
}

func TestFieldsHelpers(t *testing.T) {
	f := Fields("a", 1, "b")
	if len(f) != 1 || f["a"] != 1 {
		t.Errorf("unexpected fields %v", f)
	}
	ef := ErrorFields("write", errors.New("denied"))
	if ef[FieldOperation] != "write" || ef[FieldError] != "denied" {
		t.Errorf("unexpected error fields %v", ef)
	}
	df := DurationFields("lookup", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("unexpected duration %v", df[FieldDuration])
	}
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stderr" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	bad := []Config{
		{Level: "loud", Format: "json", Output: "stderr"},
		{Level: "info", Format: "xml", Output: "stderr"},
		{Level: "info", Format: "json", Output: "file"},
	}
	for _, c := range bad {
		if err := c.Validate(); err == nil {
			t.Errorf("expected validation error for %+v", c)
		}
	}
}
