package playlists

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

const (
	opRecordActivity = "playlists.record_activity"

	activityIDPrefix = "playlist_activity"
)

// recordActivity appends one audit row inside the caller's transaction. The
// timestamp comes from the service clock at write time, never from callers.
func (s *Service) recordActivity(tx *gorm.DB, playlistID PlaylistID, songID SongID, userID UserID, action ActivityAction) error {
	rawID, err := s.idProvider.NewID()
	if err != nil {
		return newServiceError(opRecordActivity, "id_generation_failed", err)
	}
	record := Activity{
		ID:                fmt.Sprintf("%s-%s", activityIDPrefix, rawID),
		PlaylistID:        playlistID.String(),
		SongID:            songID.String(),
		UserID:            userID.String(),
		Action:            action,
		RecordedAtSeconds: s.clock().UTC().Unix(),
	}
	if err := tx.Create(&record).Error; err != nil {
		return newServiceError(opRecordActivity, "insert_failed", errors.Join(ErrInvariant, err))
	}
	return nil
}
