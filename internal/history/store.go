// Package history persists a compact record of each finished practice
// session's aggregate scores. It is additive telemetry — no audio or feature
// data is ever written — grounded on the acoustic fingerprinting service's
// storage/sqlite.go: the same GORM-over-glebarez/sqlite bootstrap, connection
// pool tuning, and AutoMigrate-on-open shape, repurposed from a Song/
// Fingerprint schema to a single HistoryRecord table.
package history

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/flowalyzer/pronunciation/internal/fsutil"
	"github.com/flowalyzer/pronunciation/internal/types"
	"github.com/flowalyzer/pronunciation/internal/uuid"
)

// DefaultDBFile is the practice history database used when the CLI is not
// given an explicit path.
const DefaultDBFile = "flowalyzer_history.sqlite3"

// HistoryRecord is the GORM row backing one types.HistoryEntry. Final scores
// are flattened into columns; GORM has no first-class support for embedding
// a nested struct as queryable columns without one.
type HistoryRecord struct {
	ID            string `gorm:"primaryKey;type:varchar(36)"`
	SessionID     string `gorm:"index:idx_history_session" json:"session_id"`
	ReferencePath string `gorm:"index:idx_history_reference" json:"reference_path"`
	StartedAt     time.Time
	EndedAt       time.Time
	Overall       float64 `json:"overall"`
	Timing        float64 `json:"timing"`
	Articulation  float64 `json:"articulation"`
	Intonation    float64 `json:"intonation"`
	SnapshotCount int     `json:"snapshot_count"`
}

// Store owns the SQLite connection for the practice history table.
type Store struct {
	db *gorm.DB
}

// Open bootstraps (creating if necessary) the SQLite-backed practice history
// store at dbPath.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := fsutil.MakeDir(dir); err != nil {
			return nil, fmt.Errorf("creating history db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening history sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&HistoryRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
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

// Record writes one finished session's aggregate scores.
func (s *Store) Record(e types.HistoryEntry) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("history store is not open")
	}
	row := HistoryRecord{
		ID:            uuid.New(),
		SessionID:     e.SessionID,
		ReferencePath: e.ReferencePath,
		StartedAt:     e.StartedAt,
		EndedAt:       e.EndedAt,
		Overall:       e.FinalScores.Overall,
		Timing:        e.FinalScores.Timing,
		Articulation:  e.FinalScores.Articulation,
		Intonation:    e.FinalScores.Intonation,
		SnapshotCount: e.SnapshotCount,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("recording history entry: %w", err)
	}
	return nil
}

// Recent returns the most recently ended sessions, newest first, capped at
// limit rows.
func (s *Store) Recent(limit int) ([]HistoryRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("history store is not open")
	}
	if limit <= 0 {
		limit = 20
	}
	var rows []HistoryRecord
	if err := s.db.Order("ended_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying recent history: %w", err)
	}
	return rows, nil
}
