package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != &log.Logger {
		t.Fatal("expected global logger without a request logger")
	}

	var buf bytes.Buffer
	l := zerolog.New(&buf).With().Str("request_id", "r-1").Logger()
	FromContext(WithContext(context.Background(), l)).Info().Msg("hello")
	if !strings.Contains(buf.String(), `"request_id":"r-1"`) {
		t.Fatalf("expected request field, got %s", buf.String())
	}
}

func TestInitWritesFile(t *testing.T) {
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	defer func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	}()

	path := filepath.Join(t.TempDir(), "api.log")
	closer, err := Init(Config{Level: "warn", Environment: "production", LogFile: path})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	log.Info().Msg("dropped")
	log.Warn().Msg("kept")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(data), "dropped") || !strings.Contains(string(data), "kept") {
		t.Fatalf("unexpected log file content: %s", data)
	}
}
