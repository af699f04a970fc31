// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagCommand() (*cobra.Command, *string, *int) {
	c := &cobra.Command{Use: "test"}
	db := c.Flags().String("db", "", "")
	workers := c.Flags().Int("workers", -1, "")

	return c, db, workers
}

func TestLoadEnvFillsUnsetFlags(t *testing.T) {
	t.Setenv("METAGEO_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("METAGEO_DB", "samples.duckdb")
	t.Setenv("METAGEO_WORKERS", "3")

	c, db, workers := newFlagCommand()
	require.NoError(t, loadEnv(c, nil))

	assert.Equal(t, "samples.duckdb", *db)
	assert.Equal(t, 3, *workers)
}

func TestLoadEnvKeepsCommandLine(t *testing.T) {
	t.Setenv("METAGEO_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("METAGEO_DB", "samples.duckdb")

	c, db, _ := newFlagCommand()
	require.NoError(t, c.Flags().Set("db", "other.duckdb"))
	require.NoError(t, loadEnv(c, nil))

	assert.Equal(t, "other.duckdb", *db)
}

func TestLoadEnvReadsEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("METAGEO_WORKERS=7\n"), 0o600))
	t.Setenv("METAGEO_ENV_FILE", envFile)
	t.Setenv("METAGEO_WORKERS", "")
	require.NoError(t, os.Unsetenv("METAGEO_WORKERS"))

	c, _, workers := newFlagCommand()
	require.NoError(t, loadEnv(c, nil))

	assert.Equal(t, 7, *workers)
}

func TestLoadEnvRejectsBadValues(t *testing.T) {
	t.Setenv("METAGEO_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("METAGEO_WORKERS", "many")

	c, _, _ := newFlagCommand()
	err := loadEnv(c, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "METAGEO_WORKERS")
}

func TestLoadGazetteer(t *testing.T) {
	ix, err := loadGazetteer("")
	require.NoError(t, err)
	assert.Nil(t, ix)

	path := filepath.Join(t.TempDir(), "gazetteer.tsv")
	require.NoError(t, os.WriteFile(path, []byte("Switzerland:\t46.94809\t7.44744\n"), 0o600))

	ix, err = loadGazetteer(path)
	require.NoError(t, err)
	assert.Equal(t, 1, ix.Len())

	_, err = loadGazetteer(filepath.Join(t.TempDir(), "nope.tsv"))
	assert.Error(t, err)
}
