package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestLogHandler_KeepsDerivedAttrs(t *testing.T) {
	logger, handler := NewTestLogger()

	scoped := logger.With("request_id", "r-1").WithGroup("viewer").With("id", "v-9")
	scoped.Warn("render slow", "ms", 1200, slog.Group("batch", "number", "B-7"))
	logger.Info("plain")

	record, ok := handler.Find("render slow")
	require.True(t, ok)
	assert.Equal(t, slog.LevelWarn, record.Level)
	assert.Equal(t, "r-1", record.Attrs["request_id"])
	assert.Equal(t, "v-9", record.Attrs["viewer.id"])
	assert.Equal(t, int64(1200), record.Attrs["viewer.ms"])
	assert.Equal(t, "B-7", record.Attrs["viewer.batch.number"])

	plain, ok := handler.Find("plain")
	require.True(t, ok)
	assert.Empty(t, plain.Attrs)

	assert.Equal(t, 2, len(handler.GetRecords()))
	handler.Reset()
	assert.Empty(t, handler.GetRecords())
}
