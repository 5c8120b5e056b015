// Package access decides who may look inside a contest. Public contests are
// open to everyone once started; Password and Private contests require the
// session to have passed an explicit verification step first.
package access

import (
	"context"
	"time"

	"judgeboard/internal/domain/model"
)

type Decision int

const (
	Allow Decision = iota
	DenyNotStarted
	DenyNeedsPassword
	DenyNeedsInvite
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyNotStarted:
		return "contest_not_started"
	case DenyNeedsPassword:
		return "password_required"
	case DenyNeedsInvite:
		return "invite_required"
	default:
		return "unknown"
	}
}

// Requester is the identity a request acts as, extracted from its token.
type Requester struct {
	ID       string
	Username string
	Role     string
}

func (r Requester) Privileged() bool {
	return r.Role == model.RoleAdmin
}

type Gate struct {
	store VerificationStore
	now   func() time.Time
}

func NewGate(store VerificationStore) *Gate {
	return &Gate{store: store, now: time.Now}
}

// Authorize decides whether the requester may read contest details and
// standings right now. Not-started takes precedence over verification denials:
// even a verified session waits for the start time.
func (g *Gate) Authorize(ctx context.Context, c *model.Contest, req Requester, sessionID string) (Decision, error) {
	if req.Privileged() {
		return Allow, nil
	}
	if !c.Started(g.now()) {
		return DenyNotStarted, nil
	}
	if c.EncryptionMode == model.ModePublic {
		return Allow, nil
	}

	verified, err := g.store.IsVerified(ctx, sessionID, c.ID)
	if err != nil {
		return DenyNeedsPassword, err
	}
	if verified {
		return Allow, nil
	}
	if c.EncryptionMode == model.ModePrivate {
		return DenyNeedsInvite, nil
	}
	return DenyNeedsPassword, nil
}

// Verify attempts the Unverified -> Verified transition for this session.
// A wrong secret is a normal retryable outcome: the deny decision is returned
// and session state is left untouched. The error return is for store failures
// only.
func (g *Gate) Verify(ctx context.Context, c *model.Contest, req Requester, sessionID, secret string) (Decision, error) {
	if req.Privileged() {
		return Allow, nil
	}

	switch c.EncryptionMode {
	case model.ModePublic:
		// Nothing to verify; every requester already counts as verified.
		return Allow, nil
	case model.ModePassword:
		if secret != c.Secret {
			return DenyNeedsPassword, nil
		}
	case model.ModePrivate:
		if !c.Invited(req.Username) {
			return DenyNeedsInvite, nil
		}
	default:
		return DenyNeedsPassword, nil
	}

	if err := g.store.MarkVerified(ctx, sessionID, c.ID); err != nil {
		return DenyNeedsPassword, err
	}
	return Allow, nil
}
