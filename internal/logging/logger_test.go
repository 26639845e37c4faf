package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestOptions_RenamesErrorKey(t *testing.T) {
	attr := options(slog.LevelInfo).ReplaceAttr(nil, slog.String("error", "boom"))
	assert.Equal(t, "err", attr.Key)

	attr = options(slog.LevelInfo).ReplaceAttr(nil, slog.String("path", "/x"))
	assert.Equal(t, "path", attr.Key)
}
