package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs(t *testing.T) {
	got := sanitizeKVs([]interface{}{
		"rows", 7,
		"activity_csv", "date,calories_burned\n2024-03-01,100",
		"api_token", "abc",
		"filename", "my-health.csv",
		"dangling",
	})

	require.Len(t, got, 9)
	assert.Equal(t, 7, got[1])
	assert.Equal(t, "[REDACTED]", got[3])
	assert.Equal(t, "[REDACTED]", got[5])
	assert.True(t, strings.HasPrefix(got[7].(string), "hash:"), "filename should be hashed, got %v", got[7])
	assert.Len(t, got[7].(string), len("hash:")+12)
	assert.Equal(t, "dangling", got[8])
}

func TestHashValue_Stable(t *testing.T) {
	assert.Equal(t, hashValue("a.csv"), hashValue("a.csv"))
	assert.NotEqual(t, hashValue("a.csv"), hashValue("b.csv"))
	assert.Equal(t, "", hashValue(""))
}

func TestLogger_WritesSanitizedFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("request_id", "r1").Info("pipeline finished", "rows", 3, "nutrition_csv", "secret data")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "r1", fields["request_id"])
	assert.Equal(t, int64(3), fields["rows"])
	assert.Equal(t, "[REDACTED]", fields["nutrition_csv"])
}

func TestNew(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "quiet", ""} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		l.Debug("hello")
	}
	Nop().Info("discarded")
}
