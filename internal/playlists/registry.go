package playlists

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	opAddSong    = "playlists.add_song"
	opRemoveSong = "playlists.remove_song"

	songEntryIDPrefix = "playlist_songs"
)

// AddSong attaches a song to the playlist and appends the matching audit
// entry. The caller must be owner or collaborator; the song must exist in the
// catalog; the pair must not already be a member. The membership insert and
// the audit append commit or roll back together.
func (s *Service) AddSong(ctx context.Context, playlistID PlaylistID, userID UserID, songID SongID) (string, error) {
	if err := s.resolver.VerifyAccess(ctx, playlistID, userID); err != nil {
		return "", err
	}

	exists, err := s.catalog.SongExists(ctx, songID.String())
	if err != nil {
		s.logError(opAddSong, "catalog_lookup_failed", err, zap.String("song_id", songID.String()))
		return "", newServiceError(opAddSong, "catalog_lookup_failed", err)
	}
	if !exists {
		return "", newServiceError(opAddSong, "song_missing", ErrNotFound)
	}

	rawEntryID, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opAddSong, "id_generation_failed", err)
		return "", newServiceError(opAddSong, "id_generation_failed", err)
	}
	entry := SongEntry{
		ID:         fmt.Sprintf("%s-%s", songEntryIDPrefix, rawEntryID),
		PlaylistID: playlistID.String(),
		SongID:     songID.String(),
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&SongEntry{}).
			Where("playlist_id = ? AND song_id = ?", playlistID.String(), songID.String()).
			Count(&count).Error; err != nil {
			return newServiceError(opAddSong, "membership_lookup_failed", err)
		}
		if count > 0 {
			return newServiceError(opAddSong, "already_member", ErrInvariant)
		}
		if err := tx.Create(&entry).Error; err != nil {
			return newServiceError(opAddSong, "insert_failed", errors.Join(ErrInvariant, err))
		}
		return s.recordActivity(tx, playlistID, songID, userID, ActivityActionAdd)
	})
	if txErr != nil {
		s.logError(opAddSong, "transaction_failed", txErr,
			zap.String("playlist_id", playlistID.String()),
			zap.String("song_id", songID.String()),
			zap.String("user_id", userID.String()))
		return "", txErr
	}
	return entry.ID, nil
}

// RemoveSong detaches a song from the playlist and appends the matching audit
// entry. Removal is not idempotent: absence of a matching membership entry is
// an invariant failure, not a no-op.
func (s *Service) RemoveSong(ctx context.Context, playlistID PlaylistID, userID UserID, songID SongID) error {
	if err := s.resolver.VerifyAccess(ctx, playlistID, userID); err != nil {
		return err
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("playlist_id = ? AND song_id = ?", playlistID.String(), songID.String()).
			Delete(&SongEntry{})
		if result.Error != nil {
			return newServiceError(opRemoveSong, "delete_failed", result.Error)
		}
		if result.RowsAffected == 0 {
			return newServiceError(opRemoveSong, "no_rows_deleted", ErrInvariant)
		}
		return s.recordActivity(tx, playlistID, songID, userID, ActivityActionRemove)
	})
	if txErr != nil {
		s.logError(opRemoveSong, "transaction_failed", txErr,
			zap.String("playlist_id", playlistID.String()),
			zap.String("song_id", songID.String()),
			zap.String("user_id", userID.String()))
		return txErr
	}
	return nil
}
