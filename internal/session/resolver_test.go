package session

import (
	"context"
	"testing"

	"echopages/internal/config"
	"echopages/internal/fragment"
	"echopages/internal/services/supabase"
)

func testResolver(t *testing.T, adminEmails []string, stored *supabase.Session) *Resolver {
	t.Helper()
	cfg := config.Default()
	cfg.Admin.Emails = adminEmails
	store := supabase.NewSessionStore(t.TempDir())
	if stored != nil {
		if err := store.Save(*stored); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	return NewResolver(&cfg, store)
}

func TestResolveAnonymousWithoutSession(t *testing.T) {
	resolver := testResolver(t, nil, nil)
	resolved, err := resolver.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Identity != IdentityAnonymous {
		t.Fatalf("expected anonymous, got %q", resolved.Identity)
	}
	if resolved.Track() != fragment.TrackCommunity {
		t.Fatalf("anonymous actors publish to community, got %q", resolved.Track())
	}
	if resolved.PenName() != "Observer" {
		t.Fatalf("unexpected pen name %q", resolved.PenName())
	}
}

func TestResolveMemberSession(t *testing.T) {
	resolver := testResolver(t, []string{"curator@example.com"}, &supabase.Session{
		AccessToken: "jwt",
		User:        supabase.SessionUser{ID: "u-2", Email: "reader@example.com"},
	})
	resolved, err := resolver.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Identity != IdentityMember || resolved.IsAdmin() {
		t.Fatalf("expected member, got %q", resolved.Identity)
	}
	if resolved.Track() != fragment.TrackCommunity {
		t.Fatalf("members publish to community, got %q", resolved.Track())
	}
	if resolved.PenName() != "reader" {
		t.Fatalf("expected email-local pen name, got %q", resolved.PenName())
	}
}

func TestResolveAdminByAllowList(t *testing.T) {
	resolver := testResolver(t, []string{"Curator@Example.com"}, &supabase.Session{
		AccessToken: "jwt",
		User:        supabase.SessionUser{ID: "u-1", Email: "curator@example.com", DisplayName: "The Curator"},
	})
	resolved, err := resolver.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !resolved.IsAdmin() {
		t.Fatalf("expected admin, got %q", resolved.Identity)
	}
	if resolved.Track() != fragment.TrackCurated {
		t.Fatalf("admins publish to curated, got %q", resolved.Track())
	}
	if resolved.PenName() != "The Curator" {
		t.Fatalf("display name should win, got %q", resolved.PenName())
	}
}

func TestResolvePicksUpSignOut(t *testing.T) {
	store := supabase.NewSessionStore(t.TempDir())
	if err := store.Save(supabase.Session{AccessToken: "jwt", User: supabase.SessionUser{ID: "u-1", Email: "curator@example.com"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cfg := config.Default()
	cfg.Admin.Emails = []string{"curator@example.com"}
	resolver := NewResolver(&cfg, store)

	resolved, err := resolver.Resolve(context.Background())
	if err != nil || !resolved.IsAdmin() {
		t.Fatalf("expected admin before sign-out: %+v err=%v", resolved, err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	resolved, err = resolver.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve after sign-out: %v", err)
	}
	if resolved.Identity != IdentityAnonymous {
		t.Fatalf("expected anonymous after sign-out, got %q", resolved.Identity)
	}
}
