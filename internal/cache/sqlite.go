package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultTTL is how long a cached response stays fresh.
const DefaultTTL = 12 * time.Hour

// ErrClosed is returned by operations on a closed [Store].
var ErrClosed = errors.New("cache: store is closed")

const schema = `
	CREATE TABLE IF NOT EXISTS responses (
		key TEXT PRIMARY KEY,
		status INTEGER NOT NULL,
		header TEXT NOT NULL,
		body BLOB NOT NULL,
		stored_at INTEGER NOT NULL
	);
`

// Entry is one cached HTTP response.
type Entry struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	StoredAt   time.Time
}

// Store is a response cache persisted in a single SQLite file.
//
// Store is safe for concurrent use.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time

	mu     sync.RWMutex
	closed bool
}

// DefaultPath returns the cache file location under the user cache
// directory, falling back to the system temp directory.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "finboard", "http.cache")
}

// Open opens or creates the cache database at path.
//
// Parent directories are created as needed. A ttl of zero means [DefaultTTL].
func Open(path string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	// one writer at a time; sqlite serializes writes anyway
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create responses table: %w", err)
	}

	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

// TTL returns the configured time-to-live.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Get returns the fresh entry stored under key. The boolean is false when
// there is no entry or it has expired.
func (s *Store) Get(ctx context.Context, key string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Entry{}, false, ErrClosed
	}

	var (
		e        Entry
		header   string
		storedAt int64
	)
	row := s.db.QueryRowContext(ctx, "SELECT status, header, body, stored_at FROM responses WHERE key = ?", key)
	if err := row.Scan(&e.StatusCode, &header, &e.Body, &storedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	e.StoredAt = time.Unix(0, storedAt)
	if s.now().Sub(e.StoredAt) >= s.ttl {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM responses WHERE key = ?", key); err != nil {
			return Entry{}, false, fmt.Errorf("failed to evict cache entry: %w", err)
		}
		return Entry{}, false, nil
	}

	if err := json.Unmarshal([]byte(header), &e.Header); err != nil {
		return Entry{}, false, fmt.Errorf("failed to decode cached header: %w", err)
	}
	return e, true, nil
}

// Put stores e under key, replacing any previous entry. A zero StoredAt is
// set to the current time.
func (s *Store) Put(ctx context.Context, key string, e Entry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	if e.StoredAt.IsZero() {
		e.StoredAt = s.now()
	}
	if e.Header == nil {
		e.Header = http.Header{}
	}
	header, err := json.Marshal(e.Header)
	if err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	if e.Body == nil {
		e.Body = []byte{}
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO responses (key, status, header, body, stored_at) VALUES (?, ?, ?, ?, ?)",
		key, e.StatusCode, string(header), e.Body, e.StoredAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Len returns the number of stored entries, fresh or not.
func (s *Store) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM responses").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM responses"); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Close closes the database. Safe to call multiple times.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
