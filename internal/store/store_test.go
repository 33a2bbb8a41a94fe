package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/iccgen/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "iccgen.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return s
}

func TestInsertAndLookupJob(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	created := time.Date(2021, 2, 7, 14, 2, 0, 0, time.UTC)

	rec, err := s.InsertJob(ctx, model.JobRecord{
		ProfileName:  "Canon_iX6850",
		SettingsPath: "/tmp/a/Canon_iX6850.json",
		CreatedAt:    created,
		Params: model.JobParams{
			NumberOfPages:           2,
			HighDensity:             true,
			GrayPatchCount:          64,
			CopyrightInfo:           "(c) me",
			PreconditionProfilePath: "/tmp/pre.icc",
		},
	})
	require.NoError(t, err)
	assert.Len(t, rec.ID, 36)

	got, err := s.JobByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, rec.Params, got.Params)

	got, err = s.JobBySettingsPath(ctx, "/tmp/a/Canon_iX6850.json")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	_, err = s.JobByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestLatestJob(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.LatestJob(ctx)
	require.ErrorIs(t, err, ErrJobNotFound)

	base := time.Date(2021, 2, 7, 14, 2, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		_, err := s.InsertJob(ctx, model.JobRecord{
			ProfileName:  name,
			SettingsPath: name + ".json",
			CreatedAt:    base.Add(time.Duration(i) * time.Millisecond),
		})
		require.NoError(t, err)
	}

	got, err := s.LatestJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, "third", got.ProfileName)
}

func TestRecordStepsAndSummaries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2021, 2, 7, 14, 2, 0, 0, time.UTC)

	older, err := s.InsertJob(ctx, model.JobRecord{ProfileName: "older", CreatedAt: base})
	require.NoError(t, err)
	newer, err := s.InsertJob(ctx, model.JobRecord{ProfileName: "newer", CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)

	require.NoError(t, s.RecordStep(ctx, model.StepRecord{
		JobID: older.ID, Step: "generate_target", StartedAt: base, EndedAt: base.Add(time.Second),
	}))
	require.NoError(t, s.RecordStep(ctx, model.StepRecord{
		JobID: older.ID, Step: "generate_tif", StartedAt: base.Add(time.Minute), EndedAt: base.Add(2 * time.Minute),
		Err: "printtarg exited with status 1",
	}))

	steps, err := s.ListSteps(ctx, older.ID)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "generate_target", steps[0].Step)
	assert.True(t, steps[0].OK())
	assert.False(t, steps[1].OK())

	summaries, err := s.ListJobSummaries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, newer.ID, summaries[0].Job.ID)
	assert.Equal(t, 0, summaries[0].StepCount)
	assert.Nil(t, summaries[0].LastStep)

	assert.Equal(t, older.ID, summaries[1].Job.ID)
	assert.Equal(t, 2, summaries[1].StepCount)
	require.NotNil(t, summaries[1].LastStep)
	assert.Equal(t, "generate_tif", summaries[1].LastStep.Step)

	limited, err := s.ListJobSummaries(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iccgen.db")
	s, err := Open(path)
	require.NoError(t, err)
	rec, err := s.InsertJob(context.Background(), model.JobRecord{ProfileName: "kept"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.JobByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.ProfileName)
}
