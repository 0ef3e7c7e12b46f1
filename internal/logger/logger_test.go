package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{"empty defaults to warn", "", zerolog.WarnLevel},
		{"debug", "debug", zerolog.DebugLevel},
		{"mixed case", " Info ", zerolog.InfoLevel},
		{"error", "error", zerolog.ErrorLevel},
		{"unknown defaults to warn", "chatty", zerolog.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.level))
		})
	}
}

func TestNewWithWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")

	log.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Info().Str("vault", "personal").Msg("vault unlocked")
	out := buf.String()
	assert.Contains(t, out, "vault unlocked")
	assert.Contains(t, out, "vault=personal")
}

func TestDefaultLevelHidesInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "")

	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}
