package db

import (
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"arsenaldb/document"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenSQLite opens (or creates) the SQLite file at dbPath. The pool is capped
// at a single connection so schema creation and loading share one session.
// When verbose is set, gorm traces every statement it runs.
func OpenSQLite(dbPath string, verbose bool) (*gorm.DB, error) {
	level := logger.Silent
	if verbose {
		level = logger.Info
	}
	newLogger := logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      !verbose, // Only show bound values when tracing
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Close releases the connection behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSQLite creates the schema in dbPath without loading any data.
func InitSQLite(dbPath string, log *zap.SugaredLogger, verbose bool) (err error) {
	db, err := OpenSQLite(dbPath, verbose)
	if err != nil {
		return err
	}
	defer closeInto(db, &err)

	if err := CreateTables(db, Tables, log); err != nil {
		return fmt.Errorf("bootstrap: creating tables: %w", err)
	}
	log.Infof("bootstrap: schema ready in %s", dbPath)
	return nil
}

// BootstrapSQLite runs a complete load: open dbPath, create the schema if it
// is missing, read the catalogue at docPath and insert its commands in a
// single transaction. Loading the same catalogue twice appends a second copy
// of every row. A failure to close the database is reported like any other.
func BootstrapSQLite(dbPath, docPath string, log *zap.SugaredLogger, verbose bool) (result LoadResult, err error) {
	db, err := OpenSQLite(dbPath, verbose)
	if err != nil {
		return LoadResult{}, err
	}
	defer func() {
		closeInto(db, &err)
		if err != nil {
			result = LoadResult{}
		}
	}()

	if err := CreateTables(db, Tables, log); err != nil {
		return LoadResult{}, fmt.Errorf("bootstrap: creating tables: %w", err)
	}

	doc, err := document.ReadFile(docPath)
	if err != nil {
		return LoadResult{}, err
	}
	log.Debugf("bootstrap: read %s with %d top-level section(s)", docPath, len(doc.Data))

	loaded, err := LoadCommands(db, doc.Data, log, WithEntryOrder(doc.Keys(CommandSection)))
	if err != nil {
		return LoadResult{}, fmt.Errorf("bootstrap: loading %s: %w", docPath, err)
	}

	log.Infof("bootstrap: completed and loaded %s into %s", docPath, dbPath)
	return loaded, nil
}

// closeInto closes db and folds a close failure into *errp.
func closeInto(db *gorm.DB, errp *error) {
	if cerr := Close(db); cerr != nil {
		*errp = errors.Join(*errp, fmt.Errorf("bootstrap: closing database: %w", cerr))
	}
}
