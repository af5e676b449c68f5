package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// GetSessionSecret returns the key that signs session tokens. The first
// call generates and stores one. INSERT OR IGNORE followed by a re-read
// keeps concurrent first starts from disagreeing on the value.
func GetSessionSecret(ctx context.Context, db sqlx.ExtContext) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES ('session_secret', ?)`,
		hex.EncodeToString(buf),
	)
	if err != nil {
		return "", fmt.Errorf("storing session secret: %w", err)
	}

	var secret string
	if err := sqlx.GetContext(ctx, db, &secret,
		`SELECT value FROM settings WHERE key = 'session_secret'`); err != nil {
		return "", fmt.Errorf("querying session secret: %w", err)
	}
	return secret, nil
}
