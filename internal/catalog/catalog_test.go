package catalog

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mctalPlots/mctalPlots/internal/flattable"
	"github.com/mctalPlots/mctalPlots/internal/tally"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_Migrates(t *testing.T) {
	db := openTest(t)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// a second migrate is a no-op
	require.NoError(t, db.MigrateUp())
}

func TestRunsAndTables(t *testing.T) {
	db := openTest(t)

	run, err := db.BeginRun("/data/mctal.json", "/data/tallies")
	require.NoError(t, err)
	_, err = uuid.Parse(run.ID)
	require.NoError(t, err, "run ids are UUIDs")

	var b tally.Bounds
	for i := range b {
		b[i] = 1
	}
	b[tally.AxisMeshI.Position()] = 3
	b[tally.AxisMeshJ.Position()] = 2
	b[tally.AxisEnergy.Position()] = 4

	require.NoError(t, db.RecordTable(run.ID, flattable.WriteResult{Number: 14, Path: "/data/tallies/F4/f14", Records: 24, Bounds: b}))
	require.NoError(t, db.RecordTable(run.ID, flattable.WriteResult{Number: 6, Path: "/data/tallies/F6/f6", Records: 5, Bounds: b, Skipped: true}))

	tables, err := db.Tables(run.ID)
	require.NoError(t, err)
	require.Len(t, tables, 2)

	assert.Equal(t, 6, tables[0].Tally)
	assert.Equal(t, tally.TypeDeposition, tables[0].Type)
	assert.True(t, tables[0].Skipped)

	assert.Equal(t, 14, tables[1].Tally)
	assert.Equal(t, tally.TypeFlux, tables[1].Type)
	assert.Equal(t, 24, tables[1].Records)
	assert.Equal(t, [4]int{4, 3, 2, 1}, tables[1].Bins)

	runs, err := db.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, "/data/tallies", runs[0].TalliesRoot)
	assert.NotEmpty(t, runs[0].StartedAt)
}

func TestArtifacts(t *testing.T) {
	db := openTest(t)
	run, err := db.BeginRun("mctal.json", "tallies")
	require.NoError(t, err)

	require.NoError(t, db.RecordArtifact(run.ID, 11, "xCS", "tallies/F1/f11_plots/xCS/f11_xCS1.png"))
	require.NoError(t, db.RecordArtifact(run.ID, 11, "xLineScan", "tallies/F1/f11_plots/xLineScan/f11_xLine_y1_z1.png"))
	require.NoError(t, db.RecordArtifact(run.ID, 21, "zCS", "tallies/F1/f21_plots/zCS/f21_zCS1.png"))

	paths, err := db.Artifacts(run.ID, 11)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"tallies/F1/f11_plots/xCS/f11_xCS1.png",
		"tallies/F1/f11_plots/xLineScan/f11_xLine_y1_z1.png",
	}, paths)

	err = db.RecordArtifact("no-such-run", 11, "xCS", "x.png")
	assert.Error(t, err, "artifacts reference a run")
}
