package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWritesJSONWithServiceField(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("hero-quiz", "debug", &buf)
	log.WithField("slug", "bung-tomo").Debug("quiz generated")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if line["service"] != "hero-quiz" || line["message"] != "quiz generated" || line["level"] != "debug" {
		t.Fatalf("unexpected log line %v", line)
	}
	if _, ok := line["timestamp"]; !ok {
		t.Fatalf("missing timestamp key: %v", line)
	}
}

func TestLevelFallsBackToEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	if got := NewWithOutput("svc", "", &bytes.Buffer{}).Logger.GetLevel(); got != logrus.ErrorLevel {
		t.Fatalf("expected error level, got %s", got)
	}
	t.Setenv("LOG_LEVEL", "")
	if got := NewWithOutput("svc", "", &bytes.Buffer{}).Logger.GetLevel(); got != logrus.InfoLevel {
		t.Fatalf("expected info level, got %s", got)
	}
}
