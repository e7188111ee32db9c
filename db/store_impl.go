package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"arsenaldb/model"

	"gorm.io/gorm"
)

type SQLStore struct {
	db *gorm.DB
}

var _ Store = (*SQLStore)(nil)

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Ping verifies the underlying database connection is healthy.
func (s *SQLStore) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sql store is not initialized")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (s *SQLStore) withDetails() *gorm.DB {
	return s.db.
		Preload("Types").
		Preload("Args").
		Preload("Examples")
}

// ListCommands returns every command in id order with its types, args and
// examples loaded.
func (s *SQLStore) ListCommands() ([]model.Command, error) {
	var commands []model.Command
	if err := s.withDetails().Order("id").Find(&commands).Error; err != nil {
		return nil, err
	}
	return commands, nil
}

// GetCommandByName returns the earliest command registered under name.
func (s *SQLStore) GetCommandByName(name string) (*model.Command, error) {
	var cmd model.Command
	err := s.withDetails().
		Where("name = ?", name).
		Order("id").
		First(&cmd).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommandNotFound
		}
		return nil, err
	}
	return &cmd, nil
}

func (s *SQLStore) CountRows() (TableCounts, error) {
	var counts TableCounts
	for _, c := range []struct {
		model any
		dst   *int64
	}{
		{&model.Command{}, &counts.Commands},
		{&model.CommandType{}, &counts.Types},
		{&model.CommandArgs{}, &counts.Args},
		{&model.CommandExample{}, &counts.Examples},
	} {
		if err := s.db.Model(c.model).Count(c.dst).Error; err != nil {
			return TableCounts{}, fmt.Errorf("counting rows: %w", err)
		}
	}
	return counts, nil
}
