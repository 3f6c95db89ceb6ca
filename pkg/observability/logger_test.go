package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONFormatIncludesServiceAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:          LogLevelInfo,
		Format:         LogFormatJSON,
		Output:         &buf,
		ServiceName:    "tollgate",
		ServiceVersion: "1.2.3",
	})

	logger.Info("checkout started", "product_id", "prod_1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "tollgate", entry["service"])
	require.Equal(t, "1.2.3", entry["version"])
	require.Equal(t, "prod_1", entry["product_id"])
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:  LogLevelWarn,
		Format: LogFormatText,
		Output: &buf,
	})

	logger.Info("suppressed")
	logger.Warn("visible")

	out := buf.String()
	require.NotContains(t, out, "suppressed")
	require.Contains(t, out, "visible")
}

func TestNewLogger_CorrelationIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:  LogLevelInfo,
		Format: LogFormatJSON,
		Output: &buf,
	})

	ctx := WithCorrelationID(context.Background(), "corr-42")
	logger.InfoContext(ctx, "verifying transaction")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "corr-42", entry[CorrelationIDKey])
}

func TestWithCorrelationID_GeneratesWhenEmpty(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "")
	id := CorrelationIDFromContext(ctx)
	require.NotEmpty(t, id)
	require.Len(t, strings.Split(id, "-"), 5)
}

func TestCorrelationIDFromContext_MissingIsEmpty(t *testing.T) {
	require.Empty(t, CorrelationIDFromContext(context.Background()))
	require.Empty(t, CorrelationIDFromContext(nil))
}
