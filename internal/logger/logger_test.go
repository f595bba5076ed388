package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{Level: "debug", Format: "json"}
	l.SetupWriter(&buf)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Debug().Str("code", "etct").Msg("Encoded")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["code"] != "etct" || entry["message"] != "Encoded" || entry["level"] != "debug" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestSetupLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{Level: "warn", Format: "text", NoColor: true}
	l.SetupWriter(&buf)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Info().Msg("Hidden")
	if buf.Len() != 0 {
		t.Fatalf("info message written at warn level: %q", buf.String())
	}

	log.Warn().Msg("Shown")
	if !bytes.Contains(buf.Bytes(), []byte("Shown")) {
		t.Fatalf("warn message missing: %q", buf.String())
	}
}

func TestSetupUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{Level: "loud", Format: "json"}
	l.SetupWriter(&buf)

	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("global level = %v; want info", zerolog.GlobalLevel())
	}
}
