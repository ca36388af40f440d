package localstate

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrKeyNotFound = errors.New("key not found")

// Well-known keys shared by the auth, identity and confirmation flows.
const (
	KeyToken          = "token"
	KeyDeviceUUID     = "uuid"
	KeyFirstVisitDone = "first_visit_done"
)

// KVEntry is one persisted key/value pair, the browser-profile storage
// equivalent for a CLI: bearer token, device identity, first-visit flag.
type KVEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ConfirmationRecord remembers a successful presence confirmation made
// from this device.
type ConfirmationRecord struct {
	ID          uint   `gorm:"primaryKey"`
	ChamadaID   string `gorm:"not null;index"`
	ChamadaNome string
	Nome        string `gorm:"not null"`
	ConfirmedAt time.Time
}

// Store is the device-local persisted state, backed by a sqlite file.
type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	if err = db.AutoMigrate(&KVEntry{}, &ConfirmationRecord{}); err != nil {
		return nil, fmt.Errorf("db.AutoMigrate -> %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Get(key string) (string, error) {
	var entry KVEntry
	err := s.db.First(&entry, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrKeyNotFound
		}

		return "", fmt.Errorf("s.db.First -> %w", err)
	}

	return entry.Value, nil
}

func (s *Store) Set(key, value string) error {
	entry := KVEntry{Key: key, Value: value}
	err := s.db.Save(&entry).Error
	if err != nil {
		return fmt.Errorf("s.db.Save -> %w", err)
	}

	return nil
}

// SetIfAbsent persists value under key only when the key has no value yet
// and returns the value that ended up stored. Initialization paths that
// may run in overlapping turns rely on this being check-then-set rather
// than an unconditional overwrite.
func (s *Store) SetIfAbsent(key, value string) (string, error) {
	winner := value
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing KVEntry
		err := tx.First(&existing, "key = ?", key).Error
		if err == nil {
			winner = existing.Value
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(&KVEntry{Key: key, Value: value}).Error
	})
	if err != nil {
		return "", fmt.Errorf("s.db.Transaction -> %w", err)
	}

	return winner, nil
}

func (s *Store) Delete(key string) error {
	err := s.db.Delete(&KVEntry{}, "key = ?", key).Error
	if err != nil {
		return fmt.Errorf("s.db.Delete -> %w", err)
	}

	return nil
}

func (s *Store) AppendConfirmation(rec ConfirmationRecord) error {
	if rec.ConfirmedAt.IsZero() {
		rec.ConfirmedAt = time.Now()
	}

	err := s.db.Create(&rec).Error
	if err != nil {
		return fmt.Errorf("s.db.Create -> %w", err)
	}

	return nil
}

func (s *Store) Confirmations() ([]ConfirmationRecord, error) {
	var records []ConfirmationRecord
	err := s.db.Order("confirmed_at desc").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("s.db.Find -> %w", err)
	}

	return records, nil
}
