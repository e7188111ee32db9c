package main

import (
	"os"
	"path/filepath"
	"testing"

	"arsenaldb/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogue = `
[command.scan]
name_exe = "nmap"
short_desc = "port scanner"
examples = ["nmap -sV host"]
`

func countCommands(t *testing.T, dbPath string) int64 {
	t.Helper()
	conn, err := db.OpenSQLite(dbPath, false)
	require.NoError(t, err)
	defer func() { _ = db.Close(conn) }()
	counts, err := db.NewSQLStore(conn).CountRows()
	require.NoError(t, err)
	return counts.Commands
}

func TestRootCmd(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "arsenal.db")
	docPath := filepath.Join(dir, "commands.toml")
	require.NoError(t, os.WriteFile(docPath, []byte(catalogue), 0o644))

	t.Run("loads the file given with -f", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"-d", dbPath, "-f", docPath})
		require.NoError(t, cmd.Execute())
		assert.Equal(t, int64(1), countCommands(t, dbPath))
	})

	t.Run("database name from the environment", func(t *testing.T) {
		envDB := filepath.Join(dir, "env.db")
		t.Setenv("ARSENAL_DATABASE_NAME", envDB)

		cmd := newRootCmd()
		cmd.SetArgs([]string{"--file", docPath})
		require.NoError(t, cmd.Execute())
		assert.Equal(t, int64(1), countCommands(t, envDB))
	})

	t.Run("backup copies the existing database", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"-d", dbPath, "-f", docPath, "--backup"})
		require.NoError(t, cmd.Execute())
		assert.Equal(t, int64(2), countCommands(t, dbPath))

		backups, err := filepath.Glob(dbPath + ".*" + backupFileExt)
		require.NoError(t, err)
		require.Len(t, backups, 1)
		assert.Equal(t, int64(1), countCommands(t, backups[0]))
	})

	t.Run("catalogue from the environment", func(t *testing.T) {
		envDB := filepath.Join(dir, "env-file.db")
		t.Setenv("ARSENAL_FILE", docPath)

		cmd := newRootCmd()
		cmd.SetArgs([]string{"-d", envDB})
		require.NoError(t, cmd.Execute())
		assert.Equal(t, int64(1), countCommands(t, envDB))
	})

	t.Run("file flag wins over the environment", func(t *testing.T) {
		envDB := filepath.Join(dir, "flag-file.db")
		t.Setenv("ARSENAL_FILE", filepath.Join(dir, "nope.toml"))

		cmd := newRootCmd()
		cmd.SetArgs([]string{"-d", envDB, "-f", docPath})
		require.NoError(t, cmd.Execute())
		assert.Equal(t, int64(1), countCommands(t, envDB))
	})

	t.Run("file flag is required", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"-d", dbPath})
		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "file")
	})

	t.Run("missing file fails", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"-d", dbPath, "-f", filepath.Join(dir, "nope.toml")})
		assert.Error(t, cmd.Execute())
	})
}

func TestPruneOldBackups(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sqlite.db")
	names := []string{
		"sqlite.db.20260101-000000.bak",
		"sqlite.db.20260102-000000.bak",
		"sqlite.db.20260103-000000.bak",
		"sqlite.db",
		"other.db.20260101-000000.bak",
	}
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}

	removed, err := pruneOldBackups(dbPath, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "sqlite.db.20260101-000000.bak")}, removed)

	removed, err = pruneOldBackups(dbPath, 2)
	require.NoError(t, err)
	assert.Empty(t, removed)

	for _, n := range names[1:] {
		assert.FileExists(t, filepath.Join(dir, n))
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))

	dst := filepath.Join(dir, "dst")
	require.NoError(t, copyFile(src, dst))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))

	assert.Error(t, copyFile(dir, filepath.Join(dir, "dir-copy")))
}
