package gologger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesJSON(t *testing.T) {
	t.Setenv("PRETTY", "")
	t.Setenv("DEBUG", "")
	var buf bytes.Buffer
	logger := newLogger(&buf)

	logger.Info().Str("window", "lockdown").Int("rows", 3).Msg("clipped")
	logger.Debug().Msg("hidden")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "clipped", line["message"])
	assert.Equal(t, "lockdown", line["window"])
	assert.Contains(t, line, "time")
	assert.True(t, strings.HasPrefix(line["caller"].(string), "gologger/gologger_test.go:"), line["caller"])
}

func TestWithRequestID(t *testing.T) {
	t.Setenv("PRETTY", "")
	var buf bytes.Buffer
	ctx := WithRequestID(context.Background(), newLogger(&buf), "upload-1")

	assert.Equal(t, "upload-1", RequestID(ctx))
	assert.Equal(t, "", RequestID(context.Background()))

	zerolog.Ctx(ctx).Info().Msg("clipping upload")
	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "upload-1", line["reqID"])
	assert.Equal(t, "clipping upload", line["message"])
}
