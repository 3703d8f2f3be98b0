package plan

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tliron/commonlog"

	_ "modernc.org/sqlite"
)

// ErrPlanNotFound indicates the requested plan doesn't exist in the store.
var ErrPlanNotFound = errors.New("plan not found")

var storeLog = commonlog.GetLogger("sift.plan")

// Info describes one stored plan.
type Info struct {
	Hash      string
	Size      int
	CreatedAt time.Time
}

// Store is a durable, content-addressed plan cache backed by SQLite. Plans
// are keyed by the hex SHA-256 of their canonical encoding, so Put is
// idempotent and a hash retrieved from one store names the same program in
// any other.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// OpenStore opens (creating if needed) a plan store at the given path.
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening plan store: %w", err)
	}

	// Set busy timeout for concurrent access
	_, err = db.Exec("PRAGMA busy_timeout = 5000")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS plans (
		hash TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		created_at TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating plans table: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put stores a program and returns its content hash. Storing a program that
// is already present is a no-op that returns the same hash.
func (s *Store) Put(p *Program) (string, error) {
	data, err := Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding plan: %w", err)
	}
	hash, err := ContentHash(p)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		"INSERT OR IGNORE INTO plans (hash, data, created_at) VALUES (?, ?, ?)",
		hash, data, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("saving plan: %w", err)
	}

	storeLog.Debugf("stored plan %s (%d bytes)", hash, len(data))
	return hash, nil
}

// Get retrieves a program by content hash.
func (s *Store) Get(hash string) (*Program, error) {
	var data []byte
	err := s.db.QueryRow("SELECT data FROM plans WHERE hash = ?", hash).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("querying plan: %w", err)
	}
	return Unmarshal(data)
}

// Delete removes a plan. Deleting an absent hash is not an error.
func (s *Store) Delete(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM plans WHERE hash = ?", hash)
	if err != nil {
		return fmt.Errorf("deleting plan: %w", err)
	}
	return nil
}

// List returns descriptions of all stored plans, newest first.
func (s *Store) List() ([]Info, error) {
	rows, err := s.db.Query("SELECT hash, length(data), created_at FROM plans ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var info Info
		var created string
		if err := rows.Scan(&info.Hash, &info.Size, &created); err != nil {
			return nil, fmt.Errorf("scanning plan row: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parsing plan timestamp: %w", err)
		}
		info.CreatedAt = t
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
