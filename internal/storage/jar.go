// Package storage implements durable client-side storage with cookie
// semantics: every entry has an expiry, and expired entries read as absent.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// ErrNotFound is returned by Get for missing or expired entries.
var ErrNotFound = errors.New("cookie not found")

// SameSite restricts when a stored value may be sent cross-site.
type SameSite string

const (
	SameSiteStrict SameSite = "strict"
	SameSiteLax    SameSite = "lax"
)

// Cookie is a single stored entry.
type Cookie struct {
	Name     string
	Value    string
	Expires  time.Time
	Secure   bool
	SameSite SameSite
}

// Jar is a SQLite-backed cookie store. All writes are synchronous.
type Jar struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Jar.
type Option func(*Jar)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(j *Jar) { j.now = now }
}

// Open opens (creating if needed) the jar database at path.
// Use ":memory:" for a throwaway jar.
func Open(path string, opts ...Option) (*Jar, error) {
	if path == "" {
		return nil, fmt.Errorf("jar path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases alive and serializes writes.
	db.SetMaxOpenConns(1)

	if err := applySchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	j := &Jar{db: db, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (j *Jar) Close() error {
	return j.db.Close()
}

// Set stores a single cookie, replacing any entry with the same name.
func (j *Jar) Set(ctx context.Context, c Cookie) error {
	return j.SetAll(ctx, c)
}

// SetAll stores the cookies in one transaction: either all are written or none.
func (j *Jar) SetAll(ctx context.Context, cookies ...Cookie) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range cookies {
		if c.Name == "" {
			return fmt.Errorf("cookie name is required")
		}
		sameSite := c.SameSite
		if sameSite == "" {
			sameSite = SameSiteStrict
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cookies (name, value, expires_at, secure, same_site)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				value = excluded.value,
				expires_at = excluded.expires_at,
				secure = excluded.secure,
				same_site = excluded.same_site`,
			c.Name, c.Value, c.Expires.UnixMilli(), boolToInt(c.Secure), string(sameSite))
		if err != nil {
			return fmt.Errorf("set cookie %s: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Get returns the named cookie. Expired cookies are purged and reported
// as ErrNotFound.
func (j *Jar) Get(ctx context.Context, name string) (Cookie, error) {
	var (
		c         Cookie
		expiresAt int64
		secure    int
		sameSite  string
	)
	err := j.db.QueryRowContext(ctx,
		`SELECT name, value, expires_at, secure, same_site FROM cookies WHERE name = ?`, name).
		Scan(&c.Name, &c.Value, &expiresAt, &secure, &sameSite)
	if errors.Is(err, sql.ErrNoRows) {
		return Cookie{}, ErrNotFound
	}
	if err != nil {
		return Cookie{}, fmt.Errorf("get cookie %s: %w", name, err)
	}

	c.Expires = time.UnixMilli(expiresAt)
	c.Secure = secure != 0
	c.SameSite = SameSite(sameSite)

	if !j.now().Before(c.Expires) {
		if err := j.Remove(ctx, name); err != nil {
			return Cookie{}, err
		}
		return Cookie{}, ErrNotFound
	}
	return c, nil
}

// Remove deletes the named cookies. Missing names are ignored.
func (j *Jar) Remove(ctx context.Context, names ...string) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, name := range names {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cookies WHERE name = ?`, name); err != nil {
			return fmt.Errorf("remove cookie %s: %w", name, err)
		}
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
