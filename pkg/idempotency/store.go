// Package idempotency holds the replay records behind the Idempotency-Key
// header and the stores that keep them.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"time"
)

// Record is a captured response replayed for a repeated key.
type Record struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
	RequestHash string `json:"request_hash"`
}

// Matches reports whether body is the payload the record was captured for.
func (r Record) Matches(body []byte) bool {
	return r.RequestHash == HashBody(body)
}

// Store keeps records per scope (method|path) and caller key.
type Store interface {
	// Load returns nil, nil when nothing is stored.
	Load(ctx context.Context, scope, key string) (*Record, error)
	// Begin claims the key for a single in-flight request; false means
	// another request already holds it.
	Begin(ctx context.Context, scope, key string, ttl time.Duration) (bool, error)
	// Save stores the record and releases the claim.
	Save(ctx context.Context, scope, key string, record Record, ttl time.Duration) error
	// Abandon releases the claim without storing anything.
	Abandon(ctx context.Context, scope, key string) error
}

func HashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}
