package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndQueryCalls(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	first := CallRow{
		Unit: "main.c", Stage: "Draft", Model: "gpt-4o",
		PromptTokens: 100, CachedTokens: 20, CompletionTokens: 40,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	second := CallRow{
		Unit: "main.c", Stage: "Review", Model: "gpt-4o",
		PromptTokens: 150, CachedTokens: 90, CompletionTokens: 35,
		CreatedAt: time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC),
	}
	require.NoError(t, store.RecordCall(ctx, first))
	require.NoError(t, store.RecordCall(ctx, second))
	require.NoError(t, store.RecordCall(ctx, CallRow{
		Unit: "util.c", Stage: "Draft", Model: "gpt-4o",
		CreatedAt: time.Date(2026, 3, 1, 12, 2, 0, 0, time.UTC),
	}))

	rows, err := store.CallsForUnit(ctx, "main.c")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, first, rows[0])
	assert.Equal(t, second, rows[1])
}

func TestCallsForUnknownUnit(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	rows, err := store.CallsForUnit(context.Background(), "nope.c")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metering.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.RecordCall(context.Background(), CallRow{
		Unit: "a.c", Stage: "Draft", Model: "gpt-4o",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	rows, err := reopened.CallsForUnit(context.Background(), "a.c")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
