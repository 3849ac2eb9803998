package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	base := New(&Config{Level: "debug", Format: "json", Output: &buf, ServiceName: "hirelane-test"})

	ctx := base.WithContext(context.Background())
	ctx = SetRequestID(ctx, "req-1")
	ctx = SetApplicationID(ctx, 42)

	if got := GetRequestID(ctx); got != "req-1" {
		t.Errorf("GetRequestID = %q, want req-1", got)
	}

	With(Fields{FieldDurationMs: int64(7)}).WithStage("screening").Info(ctx, "moved %d", 1)

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	checks := map[string]interface{}{
		"service":        "hirelane-test",
		"request_id":     "req-1",
		"application_id": float64(42),
		"stage":          "screening",
		"message":        "moved 1",
		"duration_ms":    float64(7),
	}
	for k, want := range checks {
		if line[k] != want {
			t.Errorf("field %s = %v, want %v", k, line[k], want)
		}
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) != GetDefault() {
		t.Error("expected default logger for empty context")
	}
}

func TestEnvConfigDefaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_MAX_SIZE", "not-a-number")
	t.Setenv("LOG_COMPRESS", "false")

	cfg := LoadFromEnv()
	if cfg.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Level)
	}
	if cfg.MaxSize != 100 {
		t.Errorf("MaxSize = %d, want default 100", cfg.MaxSize)
	}
	if cfg.Compress {
		t.Error("Compress should be false")
	}
	if cfg.ServiceName != "hirelane" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
}

func TestEntryWithFieldCopies(t *testing.T) {
	base := With(Fields{"requested": 3})
	counted := base.WithCount(2)

	if _, ok := base.fields[FieldCount]; ok {
		t.Error("WithCount modified the parent entry")
	}
	if counted.fields["requested"] != 3 || counted.fields[FieldCount] != 2 {
		t.Errorf("derived fields = %v", counted.fields)
	}
}
