package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write_file(t *testing.T, dir string, name string, body string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestReadLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := write_file(t, dir, "load.csv", "t,P\n0,0\n3600,1500.5\n7200,-200\n")

	tt, p, err := read_load_profile(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.0, 3600.0, 7200.0}, tt)
	assert.Equal(t, []float64{0.0, 1500.5, -200.0}, p)
}

func TestReadLoadProfileInvalid(t *testing.T) {
	dir := t.TempDir()

	_, _, err := read_load_profile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	_, _, err = read_load_profile(write_file(t, dir, "empty.csv", "t,P\n"))
	assert.Error(t, err)

	// 時刻が単調増加でない
	_, _, err = read_load_profile(write_file(t, dir, "order.csv", "t,P\n0,1\n3600,2\n3600,3\n"))
	assert.Error(t, err)

	_, _, err = read_load_profile(write_file(t, dir, "text.csv", "t,P\n0,abc\n"))
	assert.Error(t, err)
}
