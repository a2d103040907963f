package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rsadesk/internal/store"
	"rsadesk/internal/store/model"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store keeps the output log in a SQLite table.
type Store struct {
	db *gorm.DB
}

var _ store.OutputLog = (*Store)(nil)

func NewStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	return NewStoreFromDB(db)
}

func NewStoreFromDB(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db cannot be nil")
	}
	if err := db.AutoMigrate(&model.OutputRowModel{}); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &Store{db: db}, nil
}

func (s *Store) Rows(ctx context.Context) ([]store.Row, error) {
	var models []model.OutputRowModel
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	rows := make([]store.Row, 0, len(models))
	for _, m := range models {
		rows = append(rows, fromModel(m))
	}
	return rows, nil
}

func (s *Store) Append(ctx context.Context, rows []store.Row) error {
	if len(rows) == 0 {
		return nil
	}
	models := make([]model.OutputRowModel, 0, len(rows))
	for _, r := range rows {
		m, err := toModel(r)
		if err != nil {
			return err
		}
		models = append(models, m)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&models).Error
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("1 = 1").Delete(&model.OutputRowModel{}).Error
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toModel(r store.Row) (model.OutputRowModel, error) {
	var tickers datatypes.JSON
	if len(r.Tickers) > 0 {
		raw, err := json.Marshal(r.Tickers)
		if err != nil {
			return model.OutputRowModel{}, fmt.Errorf("encode tickers: %w", err)
		}
		tickers = datatypes.JSON(raw)
	}
	ts := r.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return model.OutputRowModel{
		Output:    r.Output,
		Round:     r.Round,
		Broker:    r.Broker,
		Side:      r.Side,
		Tickers:   tickers,
		Timestamp: ts.UnixMilli(),
	}, nil
}

func fromModel(m model.OutputRowModel) store.Row {
	row := store.Row{
		ID:        m.ID,
		Output:    m.Output,
		Round:     m.Round,
		Broker:    m.Broker,
		Side:      m.Side,
		CreatedAt: time.UnixMilli(m.Timestamp),
	}
	if len(m.Tickers) > 0 {
		_ = json.Unmarshal(m.Tickers, &row.Tickers)
	}
	return row
}
