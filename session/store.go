package session

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"expensedash/security"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a session id does not resolve to a live
// session (unknown id or expired).
var ErrNotFound = errors.New("session not found")

// Store keeps server-side sessions in sqlite. A session maps the browser
// cookie to the bearer token issued by the backend on login; that token is
// the only state this app persists. Tokens are sealed before they touch
// the table.
type Store struct {
	db     *sql.DB
	cipher *security.TokenCipher
	ttl    time.Duration
}

// Session is one signed-in browser.
type Session struct {
	ID        string
	Token     string
	Username  string
	Role      string
	CreatedAt time.Time
}

// Open opens (creating if needed) the session database at path. Use
// ":memory:" for tests.
func Open(path string, cipher *security.TokenCipher, ttl time.Duration) (*Store, error) {
	// Connection parameters to better handle concurrency
	dsn := path + "?_journal=WAL&_timeout=10000&_busy_timeout=10000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	if _, err = db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, err
	}
	if _, err = db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	createSessionsTable := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		token TEXT NOT NULL,
		username TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		last_seen DATETIME NOT NULL
	);
	`
	if _, err = db.Exec(createSessionsTable); err != nil {
		return nil, err
	}

	return &Store{db: db, cipher: cipher, ttl: ttl}, nil
}

// Create stores a new session for the given token and returns its id.
func (s *Store) Create(token, username, role string) (string, error) {
	sealed, err := s.cipher.Seal(token)
	if err != nil {
		return "", fmt.Errorf("error sealing token: %w", err)
	}

	id := uuid.NewString()
	now := time.Now()
	_, err = s.db.Exec(`
		INSERT INTO sessions (id, token, username, role, created_at, last_seen)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, sealed, username, role, now, now)
	if err != nil {
		return "", fmt.Errorf("error storing session: %w", err)
	}

	return id, nil
}

// Get resolves a session id, refreshes its last seen time and returns the
// session with the token opened. Expired sessions are deleted and
// reported as ErrNotFound.
func (s *Store) Get(id string) (*Session, error) {
	var sess Session
	var sealed string
	var lastSeen time.Time

	err := s.db.QueryRow(`
		SELECT id, token, username, role, created_at, last_seen
		FROM sessions WHERE id = ?
	`, id).Scan(&sess.ID, &sealed, &sess.Username, &sess.Role, &sess.CreatedAt, &lastSeen)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error loading session: %w", err)
	}

	if s.ttl > 0 && time.Since(lastSeen) > s.ttl {
		if err := s.Delete(sess.ID); err != nil {
			log.Printf("Error deleting expired session %s: %v", sess.ID, err)
		}
		return nil, ErrNotFound
	}

	sess.Token, err = s.cipher.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("error opening token: %w", err)
	}

	_, err = s.db.Exec("UPDATE sessions SET last_seen = ? WHERE id = ?", time.Now(), sess.ID)
	if err != nil {
		log.Printf("Error refreshing session %s: %v", sess.ID, err)
	}

	return &sess, nil
}

// Delete removes a session (logout).
func (s *Store) Delete(id string) error {
	_, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	return err
}

// PurgeExpired removes every session idle for longer than the ttl and
// returns how many were removed.
func (s *Store) PurgeExpired() (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	res, err := s.db.Exec("DELETE FROM sessions WHERE last_seen < ?", time.Now().Add(-s.ttl))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartPurging runs PurgeExpired on the given interval until the process
// exits.
func (s *Store) StartPurging(interval time.Duration) {
	go func() {
		for {
			time.Sleep(interval)

			removed, err := s.PurgeExpired()
			if err != nil {
				log.Printf("Error purging expired sessions: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("Purged %d expired sessions", removed)
			}
		}
	}()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
