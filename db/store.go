package db

import (
	"context"
	"errors"

	"arsenaldb/model"
)

var ErrCommandNotFound = errors.New("command not found")

// Store is the read side of an arsenal database. Rows are only ever written
// by LoadCommands.
type Store interface {
	Ping(ctx context.Context) error
	ListCommands() ([]model.Command, error)
	GetCommandByName(name string) (*model.Command, error)
	CountRows() (TableCounts, error)
}

// TableCounts holds the number of rows in each of the four tables.
type TableCounts struct {
	Commands int64
	Types    int64
	Args     int64
	Examples int64
}
