package vybiumcommit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareThenRun(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "temp_data.json")
	out := filepath.Join(dir, "input.json")

	cfg := DefaultConfig().WithInputPath(raw).WithOutputPath(out)

	prepared, err := Prepare(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "4004", prepared.M)
	assert.Equal(t, "5046", prepared.C)
	assert.Equal(t, "559560", prepared.SSE)
	assert.Equal(t, "587538", prepared.Threshold)
	assert.InDelta(t, 4.0, prepared.Slope, 0.05)
	assert.Len(t, prepared.RecordDigest, 64)

	result, err := RunWithConfig(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, result.XLen)
	assert.Equal(t, 10, result.YLen)

	record := readOutput(t, out)
	assert.Equal(t, prepared.M, record["m"])
	assert.Equal(t, prepared.C, record["c"])
	assert.Equal(t, prepared.Threshold, record["threshold"])

	_, err = Verify(out)
	require.NoError(t, err)
}

func TestPrepareErrors(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig().WithInputPath(filepath.Join(dir, "raw.json"))
	cfg.Prepare.X = []int64{5, 5, 5}
	cfg.Prepare.Y = []float64{1, 2, 3}
	_, err := Prepare(cfg, nil)
	assert.Equal(t, ErrInvalidInput, CodeOf(err))

	_, statErr := os.Stat(cfg.InputPath)
	assert.True(t, os.IsNotExist(statErr))

	cfg = DefaultConfig()
	cfg.Prepare.Scale = 0
	_, err = Prepare(cfg, nil)
	assert.Equal(t, ErrInvalidConfig, CodeOf(err))

	_, err = Prepare(nil, nil)
	assert.Equal(t, ErrInvalidConfig, CodeOf(err))

	cfg = DefaultConfig().WithInputPath(filepath.Join(dir, "overflow.json"))
	cfg.Prepare.X = []int64{1, 2}
	cfg.Prepare.Y = []float64{1e306, 1e306}
	_, err = Prepare(cfg, nil)
	assert.Equal(t, ErrInvalidInput, CodeOf(err))
}
