package main

import (
	"flag"
	"log"

	"arsenaldb/db"
	"arsenaldb/logging"
)

func main() {
	// Create an empty arsenal database: the schema only, no commands.
	dbPath := flag.String("db", "sqlite.db", "Path to SQLite database file")
	verbose := flag.Bool("v", false, "Enable verbose output")
	flag.Parse()

	logger, err := logging.New(*verbose)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := db.InitSQLite(*dbPath, logger, *verbose); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	log.Println("Schema created. No commands loaded.")
}
