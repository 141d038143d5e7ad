// Package auth provides HMAC-based API key authentication for the
// admin API. Every request carries an operator key; the resolved actor
// name is what audit entries record.
package auth

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// actorKey is the gin context key for the authenticated actor name.
const actorKey = "rulekeeper.actor"

// Queries interface defines database operations needed for authentication.
// Implemented by *db.Queries to allow query loading via LoadQueries().
type Queries interface {
	Get(name string, dest interface{}, args ...interface{}) error
	Exec(name string, args ...interface{}) (sql.Result, error)
}

// Authenticator validates API keys using HMAC-SHA256 signatures
// against an in-memory secret ring and the stored key hashes.
type Authenticator struct {
	secrets map[string][]byte
	queries Queries
}

// NewAuthenticator creates an authenticator with HMAC secrets and query interface.
func NewAuthenticator(secrets map[string][]byte, queries Queries) *Authenticator {
	return &Authenticator{
		secrets: secrets,
		queries: queries,
	}
}

// Authenticate validates an API key and returns the actor name on success.
// Returns a specific error for each failure mode.
func (a *Authenticator) Authenticate(apiKey string) (string, error) {
	secretID, _, err := ParseAPIKey(apiKey)
	if err != nil {
		return "", err
	}

	secret, ok := a.secrets[secretID]
	if !ok {
		return "", ErrUnknownKey
	}

	computedHash := ComputeHMAC(secret, apiKey)

	// Query database by key_hash using named query (unique constraint ensures single result)
	var result struct {
		APIKeyID   string       `db:"api_key_id"`
		Actor      string       `db:"actor"`
		RevokedAt  sql.NullTime `db:"revoked_at"`
		LastUsedAt sql.NullTime `db:"last_used_at"`
	}

	err = a.queries.Get("get-api-key-by-hash", &result, computedHash)
	if err == sql.ErrNoRows {
		return "", ErrInvalidKey
	}
	if err != nil {
		return "", fmt.Errorf("database error: %w", err)
	}

	if result.RevokedAt.Valid {
		return "", ErrKeyRevoked
	}

	// Update last_used_at if >1 minute since last update
	// 1-minute throttle reduces write amplification for busy consoles
	if shouldUpdateLastUsed(result.LastUsedAt) {
		_, _ = a.queries.Exec("update-last-used", time.Now().UTC(), result.APIKeyID)
	}

	return result.Actor, nil
}

// shouldUpdateLastUsed implements 1-minute throttle to reduce write amplification.
func shouldUpdateLastUsed(lastUsed sql.NullTime) bool {
	if !lastUsed.Valid {
		return true
	}
	return time.Since(lastUsed.Time) > time.Minute
}

// Middleware returns a gin middleware that authenticates requests via
// the X-API-Key header and injects the actor name for handlers.
// Revoked keys map to 403 (the key exists but is blocked); everything
// else unauthenticated maps to 401; database failures to 503.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": ErrMissingKey.Error()})
			return
		}

		actor, err := a.Authenticate(apiKey)
		if err != nil {
			switch {
			case err == ErrKeyRevoked:
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": err.Error()})
			case strings.Contains(err.Error(), "database error"):
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": err.Error()})
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": err.Error()})
			}
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// ActorFromContext extracts the authenticated actor name.
// Returns empty string if not found.
func ActorFromContext(c *gin.Context) string {
	if actor, ok := c.Get(actorKey); ok {
		if s, ok := actor.(string); ok {
			return s
		}
	}
	return ""
}
