package seed

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/sumrai/internal/catalog"
)

const (
	initialCatalogVersion = 1
	seedAuthor            = "seed"
	timeLayout            = "2006-01-02T15:04:05.000Z"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
	// Catalog is stored as the first catalog version when none exists.
	// Nil selects the built-in default.
	Catalog *catalog.Catalog
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureCatalog(tx, cfg.Catalog, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

// seedAdmin creates the admin user, or refreshes its hash when the configured
// password no longer matches.
func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var hash string
	err := tx.QueryRow(`SELECT password_hash FROM users WHERE email = ?`, email).Scan(&hash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		newHash, err := HashPassword(password)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, newHash); err != nil {
			return fmt.Errorf("insert admin user: %w", err)
		}
		stats.Inserts++
		return nil
	case err != nil:
		return fmt.Errorf("check admin user existence: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil {
		return nil
	}
	hash, err = HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE users SET password_hash = ? WHERE email = ?`, hash, email); err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	stats.Updates++
	return nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash admin password: %w", err)
	}
	return string(hash), nil
}

func ensureCatalog(tx *sql.Tx, c *catalog.Catalog, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM catalog_versions LIMIT 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check catalog existence: %w", err)
	}
	if exists {
		return nil
	}

	if c == nil {
		c = catalog.Default()
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	body, err := catalog.MarshalJSONBytes(c)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`
		INSERT INTO catalog_versions (version, body, created_by, created_at)
		VALUES (?, ?, ?, ?)
	`, initialCatalogVersion, string(body), seedAuthor, time.Now().UTC().Format(timeLayout)); err != nil {
		return fmt.Errorf("insert initial catalog: %w", err)
	}
	stats.Inserts++
	return nil
}
