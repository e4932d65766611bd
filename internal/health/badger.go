package health

import (
	"log/slog"

	"github.com/dgraph-io/badger/v3"
)

// BadgerStore persists dead-variant markings across restarts.
type BadgerStore struct {
	db  *badger.DB
	log *slog.Logger
}

var _ Store = (*BadgerStore)(nil)

// badgerLogger adapts slog for Badger's logger interface.
type badgerLogger struct {
	log *slog.Logger
}

func (l *badgerLogger) Errorf(f string, v ...interface{})   { l.log.Error(f, "args", v) }
func (l *badgerLogger) Warningf(f string, v ...interface{}) { l.log.Warn(f, "args", v) }
func (l *badgerLogger) Infof(f string, v ...interface{})    { l.log.Info(f, "args", v) }
func (l *badgerLogger) Debugf(f string, v ...interface{})   { l.log.Debug(f, "args", v) }

// NewBadgerStore opens (or creates) the dead-variant registry at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	log := slog.With("component", "health-store")

	opts := badger.DefaultOptions(path).
		WithLogger(&badgerLogger{log: log}).
		WithValueLogFileSize(1<<26 - 1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &BadgerStore{db: db, log: log}, nil
}

// IsDead reports whether the rendition was marked permanently dead.
// Lookup failures are treated as "not dead" so a store hiccup never hides
// otherwise playable renditions.
func (s *BadgerStore) IsDead(variantKey string) bool {
	err := s.db.View(func(tx *badger.Txn) error {
		_, err := tx.Get([]byte(variantKey))
		return err
	})
	if err == badger.ErrKeyNotFound {
		return false
	}
	if err != nil {
		s.log.Warn("dead-variant lookup failed", "variant_key", variantKey, "error", err)
		return false
	}
	return true
}

// MarkDead records a rendition as permanently dead. Idempotent.
func (s *BadgerStore) MarkDead(variantKey string) error {
	return s.db.Update(func(tx *badger.Txn) error {
		return tx.Set([]byte(variantKey), []byte{1})
	})
}

// Close shuts down the underlying Badger database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
