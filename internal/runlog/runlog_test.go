package runlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "runlog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestLog_RecordAndRead(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()
	runID := NewRunID()

	calls := []Call{
		{RunID: runID, SignatureKey: "abc", Op: "kAdd", TargetHz: 2_750_000_000, SlackPs: -100, FmaxHz: 1_500_000_000, Pass: false},
		{RunID: runID, SignatureKey: "abc", Op: "kAdd", TargetHz: 1_234_000_000, SlackPs: 42, FmaxHz: 1_240_000_000, Pass: true},
	}
	for _, c := range calls {
		require.NoError(t, l.Record(ctx, c))
	}

	got, err := l.CallsForRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, calls, got, "insertion order preserved")

	n, err := l.CallCount(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLog_RunsAreSeparate(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()
	a, b := NewRunID(), NewRunID()

	require.NoError(t, l.Record(ctx, Call{RunID: a, SignatureKey: "k1", Op: "kAdd", TargetHz: 1, SlackPs: 1, FmaxHz: 1, Pass: true}))
	require.NoError(t, l.Record(ctx, Call{RunID: b, SignatureKey: "k2", Op: "kSub", TargetHz: 2, SlackPs: 2, FmaxHz: 2, Pass: true}))

	got, err := l.CallsForRun(ctx, a)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "kAdd", got[0].Op)
}

func TestLog_OpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runlog.db")
	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Record(context.Background(), Call{RunID: "r", SignatureKey: "k", Op: "kAdd"}))
	require.NoError(t, l.Close())

	// Reopening an existing database applies the schema as a no-op.
	l2, err := Open(path)
	require.NoError(t, err)
	defer l2.Close()

	n, err := l2.CallCount(context.Background(), "r")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewRunID_UUIDv7(t *testing.T) {
	id := NewRunID()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, id, NewRunID())
}
