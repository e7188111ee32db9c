package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"arsenaldb/db"
	"arsenaldb/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "ARSENAL"
	defaultDBPath     = "sqlite.db"
	defaultDocPath    = "commands.toml"
	defaultMaxBackups = 5
	backupFileExt     = ".bak"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "bootstrap",
		Short:         "Create the arsenal schema and load a command catalogue into it",
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// the catalogue may come from -f or ARSENAL_FILE, but not the default
			if !v.IsSet("file") {
				return errors.New(`required flag(s) "file" not set`)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose := v.GetBool("verbose")
			dbPath := v.GetString("database-name")
			docPath := v.GetString("file")

			logger, err := logging.New(verbose)
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			if v.GetBool("backup") {
				if info, err := os.Stat(dbPath); err == nil {
					logger.Infof("existing database file size: %d bytes", info.Size())
					backupPath := fmt.Sprintf("%s.%s%s", dbPath, time.Now().Format("20060102-150405"), backupFileExt)
					if err := copyFile(dbPath, backupPath); err != nil {
						return fmt.Errorf("failed to create DB backup: %w", err)
					}
					logger.Infof("existing database backed up to %s", backupPath)
					removed, err := pruneOldBackups(dbPath, v.GetInt("max-backups"))
					if err != nil {
						logger.Warnf("failed to prune old backups: %v", err)
					}
					for _, f := range removed {
						logger.Debugf("removed old backup: %s", f)
					}
				}
			}

			result, err := db.BootstrapSQLite(dbPath, docPath, logger, verbose)
			if err != nil {
				return err
			}
			logger.Infof("inserted %d command(s), %d type row(s), %d args row(s), %d example(s)",
				result.Commands, result.Types, result.Args, result.Examples)
			return nil
		},
	}

	flags := rootCmd.Flags()
	flags.BoolP("verbose", "v", false, "Enable verbose output")
	flags.StringP("database-name", "d", defaultDBPath, "Name of SQLite DB file")
	flags.StringP("file", "f", defaultDocPath, "File to add commands into DB (toml or yaml)")
	flags.Bool("backup", false, "Copy an existing database file aside before loading")
	flags.Int("max-backups", defaultMaxBackups, "Maximum number of backups to retain")

	for _, name := range []string{"verbose", "database-name", "file", "backup", "max-backups"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv() // ARSENAL_DATABASE_NAME, ARSENAL_FILE, ARSENAL_VERBOSE, ...

	return rootCmd
}

func copyFile(src, dst string) error {
	sourceFileStat, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !sourceFileStat.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := destination.ReadFrom(source); err != nil {
		destination.Close()
		return err
	}
	return destination.Close()
}

// pruneOldBackups keeps the newest max backups of dbPath and returns the
// files it removed. Backup names sort chronologically.
func pruneOldBackups(dbPath string, max int) ([]string, error) {
	dir := filepath.Dir(dbPath)
	prefix := filepath.Base(dbPath) + "."
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var backups []string
	for _, f := range files {
		if strings.HasPrefix(f.Name(), prefix) && strings.HasSuffix(f.Name(), backupFileExt) {
			backups = append(backups, filepath.Join(dir, f.Name()))
		}
	}
	if len(backups) <= max {
		return nil, nil
	}

	sort.Strings(backups)
	var removed []string
	for _, file := range backups[:len(backups)-max] {
		if err := os.Remove(file); err != nil {
			return removed, fmt.Errorf("removing %s: %w", file, err)
		}
		removed = append(removed, file)
	}
	return removed, nil
}
