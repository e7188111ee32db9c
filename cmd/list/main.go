package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"arsenaldb/db"
	"arsenaldb/model"

	"github.com/spf13/cobra"
)

func main() {
	var dbPath string
	var counts bool

	rootCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the commands stored in an arsenal database",
		Run: func(cmd *cobra.Command, args []string) {
			if _, err := os.Stat(dbPath); err != nil {
				log.Fatalf("cannot open %s: %v", dbPath, err)
			}
			conn, err := db.OpenSQLite(dbPath, false)
			if err != nil {
				log.Fatalf("%v", err)
			}
			defer func() { _ = db.Close(conn) }()

			store := db.NewSQLStore(conn)
			if err := store.Ping(context.Background()); err != nil {
				log.Fatalf("database is not reachable: %v", err)
			}
			if err := run(os.Stdout, store, counts); err != nil {
				log.Fatalf("list failed: %v", err)
			}
		},
	}
	rootCmd.Flags().StringVarP(&dbPath, "db", "d", "sqlite.db", "Path to SQLite database file")
	rootCmd.Flags().BoolVar(&counts, "counts", false, "Print row counts per table instead of commands")

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

func run(w io.Writer, store db.Store, counts bool) error {
	if counts {
		c, err := store.CountRows()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "commands:%5d  types:%5d  args:%5d  examples:%5d\n",
			c.Commands, c.Types, c.Args, c.Examples)
		return nil
	}

	commands, err := store.ListCommands()
	if err != nil {
		return err
	}
	for _, c := range commands {
		fmt.Fprintf(w, "%4d  %-20s  %-15s  %-25s  examples:%3d\n",
			c.ID, c.Name, c.NameExe, kindLabels(c.Kinds()), len(c.Examples))
	}
	return nil
}

func kindLabels(kinds []model.CommandKind) string {
	labels := make([]string, 0, len(kinds))
	for _, k := range kinds {
		labels = append(labels, k.String())
	}
	return strings.Join(labels, " ")
}
