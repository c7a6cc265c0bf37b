package playlists

import (
	"context"
	"errors"
	"testing"
)

func TestVerifyOwnerAcceptsOwnerOnly(t *testing.T) {
	stack := newTestStack(t)
	owner := mustUserID(t, "user-owner")
	stranger := mustUserID(t, "user-stranger")
	stack.seedUser(t, owner.String(), "owner")
	playlistID := stack.createPlaylist(t, "Focus", owner)

	if err := stack.resolver.VerifyOwner(context.Background(), playlistID, owner); err != nil {
		t.Fatalf("expected owner check to pass: %v", err)
	}

	err := stack.resolver.VerifyOwner(context.Background(), playlistID, stranger)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
}

func TestVerifyOwnerReportsMissingPlaylist(t *testing.T) {
	stack := newTestStack(t)
	err := stack.resolver.VerifyOwner(context.Background(), mustPlaylistID(t, "playlist-missing"), mustUserID(t, "user-1"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestVerifyAccessAdmitsOwnerAndCollaborator(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	owner := mustUserID(t, "user-owner")
	collaborator := mustUserID(t, "user-collab")
	stranger := mustUserID(t, "user-stranger")
	stack.seedUser(t, owner.String(), "owner")
	playlistID := stack.createPlaylist(t, "Shared", owner)

	if _, err := stack.collaborations.Add(ctx, playlistID, collaborator); err != nil {
		t.Fatalf("failed to add collaborator: %v", err)
	}

	if err := stack.resolver.VerifyAccess(ctx, playlistID, owner); err != nil {
		t.Fatalf("expected owner access: %v", err)
	}
	if err := stack.resolver.VerifyAccess(ctx, playlistID, collaborator); err != nil {
		t.Fatalf("expected collaborator access: %v", err)
	}

	err := stack.resolver.VerifyAccess(ctx, playlistID, stranger)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for unrelated user, got %v", err)
	}
}

func TestVerifyAccessMissingPlaylistWinsOverCollaboration(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	owner := mustUserID(t, "user-owner")
	collaborator := mustUserID(t, "user-collab")
	stack.seedUser(t, owner.String(), "owner")
	playlistID := stack.createPlaylist(t, "Ephemeral", owner)

	if _, err := stack.collaborations.Add(ctx, playlistID, collaborator); err != nil {
		t.Fatalf("failed to add collaborator: %v", err)
	}

	// The playlist genuinely not existing must surface as not found even for
	// a user holding collaboration records.
	err := stack.resolver.VerifyAccess(ctx, mustPlaylistID(t, "playlist-missing"), collaborator)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResolveClassifiesRelationships(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	owner := mustUserID(t, "user-owner")
	collaborator := mustUserID(t, "user-collab")
	stranger := mustUserID(t, "user-stranger")
	stack.seedUser(t, owner.String(), "owner")
	playlistID := stack.createPlaylist(t, "Tiers", owner)

	if _, err := stack.collaborations.Add(ctx, playlistID, collaborator); err != nil {
		t.Fatalf("failed to add collaborator: %v", err)
	}

	tests := []struct {
		name     string
		user     UserID
		expected AccessLevel
	}{
		{name: "owner", user: owner, expected: AccessOwner},
		{name: "collaborator", user: collaborator, expected: AccessCollaborator},
		{name: "stranger", user: stranger, expected: AccessNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := stack.resolver.Resolve(ctx, playlistID, tt.user)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if level != tt.expected {
				t.Fatalf("expected %s, got %s", tt.expected, level)
			}
		})
	}
}
