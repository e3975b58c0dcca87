package history_test

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/benchmark"
	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/config"
	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/history"
)

func setupTestStore(t *testing.T) history.Store {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: ":memory:"},
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	s := history.NewStore(log, cfg)
	require.NoError(t, s.Start(context.Background()))

	t.Cleanup(func() { _ = s.Stop() })

	return s
}

func TestStore_RecordAndListRuns(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	records := []benchmark.Record{
		{
			TestName:     "com.x.Y.bench1",
			ClassName:    "com.x.Y",
			MethodName:   "bench1",
			MedianTimeNs: 20,
			Iterations:   3,
			Device:       "Pixel",
			Brand:        "Google",
		},
		{
			TestName:     "com.x.Y.bench2",
			ClassName:    "com.x.Y",
			MethodName:   "bench2",
			MedianTimeNs: 40,
			Device:       "Pixel",
			Brand:        "Google",
		},
	}

	runA := &history.Run{
		Commit: "abc1234", Branch: "main",
		Files: 1, Records: 2, Lines: 7,
	}
	require.NoError(t, s.RecordRun(ctx, runA, records))
	assert.NotZero(t, runA.ID)

	runB := &history.Run{Commit: "def5678", Branch: "feature"}
	require.NoError(t, s.RecordRun(ctx, runB, nil))

	// Newest first.
	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "def5678", runs[0].Commit)
	assert.Equal(t, "abc1234", runs[1].Commit)
}

func TestStore_GetRun(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	run := &history.Run{Commit: "abc1234", Branch: "main", Records: 2}
	require.NoError(t, s.RecordRun(ctx, run, []benchmark.Record{
		{TestName: "a.first", ClassName: "a", MethodName: "first", MedianTimeNs: 1},
		{TestName: "a.second", ClassName: "a", MethodName: "second", MedianTimeNs: 2},
	}))

	got, benchmarks, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "abc1234", got.Commit)

	// Insertion order preserved.
	require.Len(t, benchmarks, 2)
	assert.Equal(t, "a.first", benchmarks[0].TestName)
	assert.Equal(t, "a.second", benchmarks[1].TestName)
	assert.Equal(t, run.ID, benchmarks[0].RunID)
}

func TestStore_GetRunMissing(t *testing.T) {
	s := setupTestStore(t)

	_, _, err := s.GetRun(context.Background(), 9999)
	require.Error(t, err)
}

func TestStore_ListRunsLimit(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordRun(ctx, &history.Run{
			Commit: "abc1234", Branch: "main",
		}, nil))
	}

	runs, err := s.ListRuns(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}
