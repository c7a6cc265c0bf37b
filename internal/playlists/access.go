package playlists

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

const (
	opAccessNew     = "access.new"
	opAccessResolve = "access.resolve"
)

// AccessLevel classifies the relationship between a user and a playlist.
type AccessLevel int

const (
	// AccessNone means the user has no relationship to the playlist.
	AccessNone AccessLevel = iota
	// AccessOwner means the user created the playlist and holds full authority.
	AccessOwner
	// AccessCollaborator means the user was granted shared access by the owner.
	AccessCollaborator
)

func (l AccessLevel) String() string {
	switch l {
	case AccessOwner:
		return "owner"
	case AccessCollaborator:
		return "collaborator"
	default:
		return "none"
	}
}

// AccessResolverConfig describes the dependencies of the access resolver.
type AccessResolverConfig struct {
	Database       *gorm.DB
	Collaborations *Collaborations
}

// AccessResolver classifies (playlist, user) pairs as owner, collaborator or
// unauthorized. Ownership is authoritative; a collaboration widens the same
// access tier, it is never a separate tier with different permissions.
type AccessResolver struct {
	db             *gorm.DB
	collaborations *Collaborations
}

// NewAccessResolver constructs the resolver.
func NewAccessResolver(cfg AccessResolverConfig) (*AccessResolver, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opAccessNew, "missing_database", errMissingDatabase)
	}
	if cfg.Collaborations == nil {
		return nil, newServiceError(opAccessNew, "missing_collaborations", errMissingCollaborations)
	}
	return &AccessResolver{
		db:             cfg.Database,
		collaborations: cfg.Collaborations,
	}, nil
}

// Resolve classifies the user's relationship to the playlist. A missing
// playlist fails with ErrNotFound no matter what collaborations the user
// holds; a collaboration-lookup failure surfaces as a storage error and never
// masquerades as a different access outcome.
func (r *AccessResolver) Resolve(ctx context.Context, playlistID PlaylistID, userID UserID) (AccessLevel, error) {
	playlist, err := r.fetchPlaylist(ctx, playlistID)
	if err != nil {
		return AccessNone, err
	}
	if playlist.Owner == userID.String() {
		return AccessOwner, nil
	}
	collaborates, err := r.collaborations.Has(ctx, playlistID, userID)
	if err != nil {
		return AccessNone, err
	}
	if collaborates {
		return AccessCollaborator, nil
	}
	return AccessNone, nil
}

// VerifyOwner gates destructive owner-only actions. Fails with ErrNotFound if
// the playlist does not exist, ErrForbidden if the caller is not its owner.
func (r *AccessResolver) VerifyOwner(ctx context.Context, playlistID PlaylistID, userID UserID) error {
	playlist, err := r.fetchPlaylist(ctx, playlistID)
	if err != nil {
		return err
	}
	if playlist.Owner != userID.String() {
		return newServiceError(opAccessResolve, "not_owner", ErrForbidden)
	}
	return nil
}

// VerifyAccess gates shared actions: the owner and every collaborator pass,
// everyone else fails with ErrForbidden.
func (r *AccessResolver) VerifyAccess(ctx context.Context, playlistID PlaylistID, userID UserID) error {
	level, err := r.Resolve(ctx, playlistID, userID)
	if err != nil {
		return err
	}
	if level == AccessNone {
		return newServiceError(opAccessResolve, "no_access", ErrForbidden)
	}
	return nil
}

func (r *AccessResolver) fetchPlaylist(ctx context.Context, playlistID PlaylistID) (Playlist, error) {
	var playlist Playlist
	err := r.db.WithContext(ctx).
		Where("id = ?", playlistID.String()).
		Take(&playlist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Playlist{}, newServiceError(opAccessResolve, "playlist_missing", ErrNotFound)
	}
	if err != nil {
		return Playlist{}, newServiceError(opAccessResolve, "playlist_select_failed", err)
	}
	return playlist, nil
}
