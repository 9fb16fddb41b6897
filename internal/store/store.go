package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"
)

const currentVersion = 1

// Collection keys, shared with the browser build of the dashboard.
const (
	KeyProjects = "productivity_projects"
	KeyTasks    = "productivity_tasks"
	KeyStats    = "productivity_stats"
)

// Store is the process-wide key-value store. Every key maps to one JSON
// document; reads are served from an in-memory mirror that is refreshed
// when another process writes the same database file.
type Store struct {
	db  *sql.DB
	log *log.Logger

	mu     sync.Mutex
	mirror map[string]entry
	subs   map[int]chan Change
	nextID int
}

type entry struct {
	value   []byte
	version int64
}

// Change reports a key rewritten by another process.
type Change struct {
	Key string
}

type Option func(*Store)

// WithLogger routes store diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string, opts ...Option) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{
		db:     db,
		log:    log.Default().WithPrefix("store"),
		mirror: make(map[string]entry),
		subs:   make(map[int]chan Change),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory(opts ...Option) (*Store, error) {
	return New(":memory:", opts...)
}

func (s *Store) Close() error {
	s.mu.Lock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.mu.Unlock()
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= currentVersion {
		return nil
	}
	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS kv (
		key         TEXT PRIMARY KEY,
		value       TEXT NOT NULL,
		version     INTEGER NOT NULL DEFAULT 1,
		updated_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// Get returns the document stored under key. A key that was never written
// reports false.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.getLocked(key)
	if !ok {
		return nil, false
	}
	return clone(e.value), true
}

// Set replaces the document under key. The mirror is updated even when the
// database write fails; the failure is logged.
func (s *Store) Set(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(key, value)
}

// Modify runs fn on the current document under key and stores its result
// when fn reports a change. The whole read-modify-write holds the store lock.
func (s *Store) Modify(key string, fn func(old []byte, ok bool) ([]byte, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.getLocked(key)
	next, changed := fn(e.value, ok)
	if !changed {
		return false
	}
	s.setLocked(key, next)
	return true
}

// Remove deletes key from the mirror and the database.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mirror, key)
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		s.log.Error("remove key", "key", key, "err", err)
	}
}

// Clear removes every given key, or the three dashboard collections when
// called without arguments.
func (s *Store) Clear(keys ...string) {
	if len(keys) == 0 {
		keys = []string{KeyProjects, KeyTasks, KeyStats}
	}
	for _, k := range keys {
		s.Remove(k)
	}
}

func (s *Store) getLocked(key string) (entry, bool) {
	if e, ok := s.mirror[key]; ok {
		return e, true
	}
	var e entry
	var value string
	err := s.db.QueryRow(`SELECT value, version FROM kv WHERE key = ?`, key).Scan(&value, &e.version)
	if errors.Is(err, sql.ErrNoRows) {
		return entry{}, false
	}
	if err != nil {
		s.log.Error("read key", "key", key, "err", err)
		return entry{}, false
	}
	e.value = []byte(value)
	s.mirror[key] = e
	return e, true
}

func (s *Store) setLocked(key string, value []byte) {
	prev := s.mirror[key]
	s.mirror[key] = entry{value: clone(value), version: prev.version}

	now := time.Now().UTC().Format(time.RFC3339)
	var version int64
	err := s.db.QueryRow(
		`INSERT INTO kv (key, value, version, updated_at) VALUES (?, ?, 1, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, version = kv.version + 1, updated_at = excluded.updated_at
		 RETURNING version`,
		key, string(value), now,
	).Scan(&version)
	if err != nil {
		s.log.Error("write key", "key", key, "err", err)
		return
	}
	e := s.mirror[key]
	e.version = version
	s.mirror[key] = e
}

// Subscribe returns a channel of changes made by other processes and a
// function that cancels the subscription. Notifications never block the
// store: a subscriber that has not drained its channel misses repeats.
func (s *Store) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan Change, 8)
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			close(c)
			delete(s.subs, id)
		}
	}
}

// Sync reloads every key whose database version differs from the mirror.
// Keys removed by another process keep their mirrored value.
func (s *Store) Sync(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	changed, err := s.syncLocked(ctx)
	if err == nil {
		for _, k := range changed {
			for _, ch := range s.subs {
				select {
				case ch <- Change{Key: k}:
				default:
				}
			}
		}
	}
	s.mu.Unlock()
	return changed, err
}

func (s *Store) syncLocked(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, version FROM kv`)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	var stale []string
	for rows.Next() {
		var key string
		var version int64
		if err := rows.Scan(&key, &version); err != nil {
			rows.Close()
			return nil, err
		}
		if e, ok := s.mirror[key]; ok && e.version == version {
			continue
		}
		stale = append(stale, key)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var changed []string
	for _, key := range stale {
		var value string
		var version int64
		err := s.db.QueryRowContext(ctx, `SELECT value, version FROM kv WHERE key = ?`, key).Scan(&value, &version)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return changed, fmt.Errorf("reload %q: %w", key, err)
		}
		s.mirror[key] = entry{value: []byte(value), version: version}
		changed = append(changed, key)
	}
	return changed, nil
}

// Watch calls Sync every interval until ctx is done.
func (s *Store) Watch(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			changed, err := s.Sync(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Warn("sync", "err", err)
				}
				continue
			}
			if len(changed) > 0 {
				s.log.Debug("synced external changes", "keys", changed)
			}
		}
	}
}

// DefaultDBPath returns ~/.config/focusboard/focusboard.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "focusboard", "focusboard.db"), nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
