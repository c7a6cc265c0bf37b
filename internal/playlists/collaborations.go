package playlists

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	opCollaborationsNew    = "collaborations.new"
	opCollaborationsAdd    = "collaborations.add"
	opCollaborationsRemove = "collaborations.remove"
	opCollaborationsLookup = "collaborations.lookup"

	collaborationIDPrefix = "collab"
)

// CollaborationsConfig describes the dependencies of the collaboration store.
type CollaborationsConfig struct {
	Database   *gorm.DB
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Collaborations records which users other than the owner may act on a playlist.
type Collaborations struct {
	db         *gorm.DB
	idProvider IDProvider
	logger     *zap.Logger
}

// NewCollaborations constructs the collaboration store.
func NewCollaborations(cfg CollaborationsConfig) (*Collaborations, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opCollaborationsNew, "missing_database", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opCollaborationsNew, "missing_id_provider", errMissingIDProvider)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Collaborations{
		db:         cfg.Database,
		idProvider: cfg.IDProvider,
		logger:     logger,
	}, nil
}

// Add grants a user shared access to a playlist and returns the collaboration
// identifier. The (playlist, user) pair must not already be a collaboration.
func (c *Collaborations) Add(ctx context.Context, playlistID PlaylistID, userID UserID) (string, error) {
	rawID, err := c.idProvider.NewID()
	if err != nil {
		c.logError(opCollaborationsAdd, "id_generation_failed", err)
		return "", newServiceError(opCollaborationsAdd, "id_generation_failed", err)
	}
	record := Collaboration{
		ID:         fmt.Sprintf("%s-%s", collaborationIDPrefix, rawID),
		PlaylistID: playlistID.String(),
		UserID:     userID.String(),
	}

	txErr := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Collaboration{}).
			Where("playlist_id = ? AND user_id = ?", playlistID.String(), userID.String()).
			Count(&count).Error; err != nil {
			return newServiceError(opCollaborationsAdd, "lookup_failed", err)
		}
		if count > 0 {
			return newServiceError(opCollaborationsAdd, "already_exists", ErrInvariant)
		}
		if err := tx.Create(&record).Error; err != nil {
			return newServiceError(opCollaborationsAdd, "insert_failed", errors.Join(ErrInvariant, err))
		}
		return nil
	})
	if txErr != nil {
		c.logError(opCollaborationsAdd, "add_failed", txErr,
			zap.String("playlist_id", playlistID.String()),
			zap.String("user_id", userID.String()))
		return "", txErr
	}
	return record.ID, nil
}

// Remove revokes a user's shared access. Removing a pair that is not a
// collaboration is an error, not a no-op.
func (c *Collaborations) Remove(ctx context.Context, playlistID PlaylistID, userID UserID) error {
	result := c.db.WithContext(ctx).
		Where("playlist_id = ? AND user_id = ?", playlistID.String(), userID.String()).
		Delete(&Collaboration{})
	if result.Error != nil {
		c.logError(opCollaborationsRemove, "delete_failed", result.Error,
			zap.String("playlist_id", playlistID.String()),
			zap.String("user_id", userID.String()))
		return newServiceError(opCollaborationsRemove, "delete_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return newServiceError(opCollaborationsRemove, "no_rows_deleted", ErrInvariant)
	}
	return nil
}

// Has reports whether the (playlist, user) pair is an existing collaboration.
func (c *Collaborations) Has(ctx context.Context, playlistID PlaylistID, userID UserID) (bool, error) {
	var count int64
	if err := c.db.WithContext(ctx).Model(&Collaboration{}).
		Where("playlist_id = ? AND user_id = ?", playlistID.String(), userID.String()).
		Count(&count).Error; err != nil {
		c.logError(opCollaborationsLookup, "query_failed", err,
			zap.String("playlist_id", playlistID.String()),
			zap.String("user_id", userID.String()))
		return false, newServiceError(opCollaborationsLookup, "query_failed", err)
	}
	return count > 0, nil
}

func (c *Collaborations) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	c.logger.Error("collaboration store error", attrs...)
}
