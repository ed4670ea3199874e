// Package clarifications tracks open clarification rounds so a follow-up can be
// matched to the questions that were actually asked. Sessions expire after a
// fixed TTL and can be taken exactly once.
package clarifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("clarification not found or expired")
	ErrSessionMismatch = errors.New("clarification does not match this submission")
)

// Session is one open clarification round.
type Session struct {
	ID             uuid.UUID `json:"id"`
	Fingerprint    string    `json:"fingerprint"`
	Questions      []string  `json:"questions"`
	CatalogVersion string    `json:"catalog_version"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Verify checks that the session was opened for the submission with
// fingerprint under the catalog version that is still active.
func (s Session) Verify(fingerprint, catalogVersion string) error {
	if s.Fingerprint != fingerprint {
		return fmt.Errorf("%w: session %s", ErrSessionMismatch, s.ID)
	}
	if s.CatalogVersion != catalogVersion {
		return fmt.Errorf("%w: session %s opened under catalog %q, active catalog is %q",
			ErrSessionMismatch, s.ID, s.CatalogVersion, catalogVersion)
	}
	return nil
}

// Ledger stores open sessions.
type Ledger interface {
	// Open records a new session and returns it with its id and expiry set.
	Open(ctx context.Context, fingerprint string, questions []string, catalogVersion string) (Session, error)
	// Find returns an unexpired session without consuming it.
	Find(ctx context.Context, id uuid.UUID) (Session, error)
	// Take returns and removes a session. A second Take of the same id fails
	// with ErrSessionNotFound.
	Take(ctx context.Context, id uuid.UUID) (Session, error)
}

func newSession(fingerprint string, questions []string, catalogVersion string, now time.Time, ttl time.Duration) Session {
	return Session{
		ID:             uuid.New(),
		Fingerprint:    fingerprint,
		Questions:      append([]string(nil), questions...),
		CatalogVersion: catalogVersion,
		CreatedAt:      now.UTC(),
		ExpiresAt:      now.UTC().Add(ttl),
	}
}
