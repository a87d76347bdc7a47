package session

import (
	"context"
	"errors"
	"strings"

	"echopages/internal/config"
	"echopages/internal/fragment"
	"echopages/internal/services/supabase"
)

// Identity is the access tier resolved for the current actor.
type Identity string

const (
	IdentityAnonymous Identity = "anonymous"
	IdentityMember    Identity = "member"
	IdentityAdmin     Identity = "admin"
)

// Session is the resolved publishing context. It is derived fresh for each
// operation rather than cached, so revoking admin status or signing out takes
// effect on the very next action.
type Session struct {
	Identity    Identity
	UserID      string
	Email       string
	DisplayName string
}

// IsAdmin reports whether the actor is on the curator allow-list.
func (s Session) IsAdmin() bool {
	return s.Identity == IdentityAdmin
}

// Track returns the visibility track the actor publishes to: curators write
// to the curated collection, everyone else to the community one.
func (s Session) Track() fragment.Track {
	if s.IsAdmin() {
		return fragment.TrackCurated
	}
	return fragment.TrackCommunity
}

// PenName is the name shown on published fragments.
func (s Session) PenName() string {
	if name := strings.TrimSpace(s.DisplayName); name != "" {
		return name
	}
	if s.Email != "" {
		if at := strings.IndexByte(s.Email, '@'); at > 0 {
			return s.Email[:at]
		}
	}
	return "Observer"
}

// Resolver maps stored authentication state to a publishing session.
type Resolver struct {
	cfg      *config.Config
	sessions *supabase.SessionStore
}

// NewResolver builds a resolver over the stored session and the configured
// admin allow-list.
func NewResolver(cfg *config.Config, sessions *supabase.SessionStore) *Resolver {
	return &Resolver{cfg: cfg, sessions: sessions}
}

// Resolve determines the current identity. A missing or empty session is an
// anonymous actor, not an error; an admin email on the allow-list elevates
// the session to the curated track.
func (r *Resolver) Resolve(_ context.Context) (Session, error) {
	if r.sessions == nil {
		return Session{Identity: IdentityAnonymous}, nil
	}
	stored, err := r.sessions.Load()
	if err != nil {
		if errors.Is(err, supabase.ErrNoSession) {
			return Session{Identity: IdentityAnonymous}, nil
		}
		return Session{}, err
	}

	resolved := Session{
		Identity:    IdentityMember,
		UserID:      stored.User.ID,
		Email:       strings.ToLower(strings.TrimSpace(stored.User.Email)),
		DisplayName: stored.User.DisplayName,
	}
	if r.cfg != nil && r.cfg.IsAdminEmail(resolved.Email) {
		resolved.Identity = IdentityAdmin
	}
	return resolved, nil
}
