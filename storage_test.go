package main_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "gregoryjjb/cups"
)

func newTestStorage(t *testing.T) (*app.Storage, *app.Config) {
	fs := app.NewMemFS()
	config := newTestConfig(t, fs, app.Flags{}, nil, testTOML)

	storage, err := app.NewStorage(fs, config)
	require.NoError(t, err)

	return storage, config
}

func TestValidateReportName(t *testing.T) {
	for _, name := range []string{"crab-million", "example_1", "a.b"} {
		assert.NoError(t, app.ValidateReportName(name), name)
	}
	for _, name := range []string{"", ".", "..", "a/b", `a\b`, "a b", "a:b", "a?"} {
		assert.ErrorIs(t, app.ValidateReportName(name), app.ErrValidation, name)
	}
}

func TestStorage(t *testing.T) {
	storage, _ := newTestStorage(t)

	names, err := storage.ListReports()
	require.NoError(t, err)
	assert.Empty(t, names)

	report := app.Report{
		Name:   "example",
		Mode:   app.ModeSmall,
		Labels: "389125467",
		Checkpoints: []app.Checkpoint{
			{Rounds: 10, LabelOrder: "92658374"},
		},
		DurationMS: 1.5,
		FinishedAt: time.Date(2020, 12, 23, 6, 0, 0, 0, time.UTC),
	}
	require.NoError(t, storage.SaveReport(report))
	require.NoError(t, storage.SaveReport(app.Report{Name: "another", Mode: app.ModeExtended}))

	names, err = storage.ListReports()
	require.NoError(t, err)
	assert.Equal(t, []string{"another", "example"}, names)

	got, err := storage.ReadReport("example")
	require.NoError(t, err)
	assert.Equal(t, report.Checkpoints, got.Checkpoints)
	assert.Equal(t, report.Labels, got.Labels)
	assert.True(t, report.FinishedAt.Equal(got.FinishedAt))

	_, err = storage.ReadReport("missing")
	assert.ErrorIs(t, err, app.ErrNotExist)

	_, err = storage.ReadReport("../escape")
	assert.ErrorIs(t, err, app.ErrValidation)

	assert.ErrorIs(t, storage.SaveReport(app.Report{Name: ""}), app.ErrValidation)
}
