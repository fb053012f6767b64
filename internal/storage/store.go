package storage

import (
	"context"
	"desktop-messenger/internal/storage/zapadapter"
	"fmt"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"sync"
	"time"
)

// Store owns the single connection to the relational store and notifies presence observers
type Store struct {
	logger *zap.SugaredLogger
	db     *gorm.DB
	driver string
	now    func() time.Time

	mu      sync.Mutex
	subs    map[int]PresenceFunc
	nextSub int
}

// New opens the configured database, routes gorm logs through zapadapter and creates the schema
func New(logger *zap.SugaredLogger, cfg Config, opts ...Option) (*Store, error) {
	set := defaultSettings()
	for _, opt := range opts {
		opt.apply(&set)
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverSQLite, "":
		cfg.Driver = DriverSQLite
		dialector = sqlite.Open(cfg.dsnWithTimeout(set.connTimeout))
	case DriverPostgres:
		dialector = postgres.Open(cfg.dsnWithTimeout(set.connTimeout))
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  zapadapter.NewLogger(logger.Desugar()),
		NowFunc: func() time.Time { return set.now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// exactly one connection: an in-memory sqlite database lives as long as it does
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	s := &Store{
		logger: logger,
		db:     db,
		driver: cfg.Driver,
		now:    set.now,
		subs:   make(map[int]PresenceFunc),
	}

	if err := s.CreateSchema(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the connection, the Store must not be used afterwards
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Subscribe registers fn for presence changes and returns a function removing it
func (s *Store) Subscribe(fn PresenceFunc) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// emitPresence calls subscribers outside of the lock so they may query the store or unsubscribe
func (s *Store) emitPresence(userID int64, online bool) {
	s.mu.Lock()
	subs := make([]PresenceFunc, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(userID, online)
	}
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}
