package playlists

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mixtapelabs/mixtape/backend/internal/catalog"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase       = errors.New("database handle is required")
	errMissingIDProvider     = errors.New("id provider is required")
	errMissingResolver       = errors.New("access resolver is required")
	errMissingCollaborations = errors.New("collaboration store is required")
	errMissingCatalog        = errors.New("song catalog is required")
	errMissingDirectory      = errors.New("user directory is required")
	noOpLogger               = zap.NewNop()
)

const (
	opServiceNew     = "playlists.service.new"
	opCreatePlaylist = "playlists.create"
	opListPlaylists  = "playlists.list"
	opRenamePlaylist = "playlists.rename"
	opDeletePlaylist = "playlists.delete"
	opListSongs      = "playlists.list_songs"
	opListActivities = "playlists.list_activities"

	playlistIDPrefix = "playlist"
)

// SongCatalog is the slice of the song catalog the playlist core consumes:
// an existence check before membership is created, and title/performer
// metadata for listings.
type SongCatalog interface {
	SongExists(ctx context.Context, songID string) (bool, error)
	SongsByID(ctx context.Context, songIDs []string) (map[string]catalog.Song, error)
}

// UserDirectory resolves user identifiers to display usernames.
type UserDirectory interface {
	UsernamesByID(ctx context.Context, userIDs []string) (map[string]string, error)
}

// ServiceConfig describes the dependencies of the playlist service.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Resolver   *AccessResolver
	Catalog    SongCatalog
	Directory  UserDirectory
	Logger     *zap.Logger
}

// Service orchestrates playlist use cases: every mutating or read operation
// resolves access first and only then touches membership or the activity log.
type Service struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider IDProvider
	resolver   *AccessResolver
	catalog    SongCatalog
	directory  UserDirectory
	logger     *zap.Logger
}

// NewService constructs the playlist service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}
	if cfg.Resolver == nil {
		return nil, newServiceError(opServiceNew, "missing_resolver", errMissingResolver)
	}
	if cfg.Catalog == nil {
		return nil, newServiceError(opServiceNew, "missing_catalog", errMissingCatalog)
	}
	if cfg.Directory == nil {
		return nil, newServiceError(opServiceNew, "missing_directory", errMissingDirectory)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:         cfg.Database,
		clock:      clock,
		idProvider: cfg.IDProvider,
		resolver:   cfg.Resolver,
		catalog:    cfg.Catalog,
		directory:  cfg.Directory,
		logger:     logger,
	}, nil
}

// PlaylistSummary is a playlist row joined with its owner's username.
type PlaylistSummary struct {
	ID       string
	Name     string
	Username string
}

// CreatePlaylist persists a new playlist with the caller as owner and returns
// its identifier. Anyone may create; no access check applies.
func (s *Service) CreatePlaylist(ctx context.Context, name string, owner UserID) (string, error) {
	validName, err := NewName(name)
	if err != nil {
		return "", newServiceError(opCreatePlaylist, "invalid_name", err)
	}
	rawID, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opCreatePlaylist, "id_generation_failed", err)
		return "", newServiceError(opCreatePlaylist, "id_generation_failed", err)
	}
	record := Playlist{
		ID:    fmt.Sprintf("%s-%s", playlistIDPrefix, rawID),
		Name:  validName,
		Owner: owner.String(),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		s.logError(opCreatePlaylist, "insert_failed", err, zap.String("owner", owner.String()))
		return "", newServiceError(opCreatePlaylist, "insert_failed", errors.Join(ErrInvariant, err))
	}
	return record.ID, nil
}

// Playlists returns every playlist the user owns or collaborates on, grouped
// by playlist identity, with the owner's username joined in.
func (s *Service) Playlists(ctx context.Context, userID UserID) ([]PlaylistSummary, error) {
	var records []Playlist
	err := s.db.WithContext(ctx).
		Where("owner = ? OR id IN (?)",
			userID.String(),
			s.db.Model(&Collaboration{}).Select("playlist_id").Where("user_id = ?", userID.String()),
		).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		s.logError(opListPlaylists, "query_failed", err, zap.String("user_id", userID.String()))
		return nil, newServiceError(opListPlaylists, "query_failed", err)
	}

	ownerIDs := make([]string, 0, len(records))
	for _, record := range records {
		ownerIDs = append(ownerIDs, record.Owner)
	}
	usernames, err := s.directory.UsernamesByID(ctx, ownerIDs)
	if err != nil {
		s.logError(opListPlaylists, "username_lookup_failed", err)
		return nil, newServiceError(opListPlaylists, "username_lookup_failed", err)
	}

	summaries := make([]PlaylistSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, PlaylistSummary{
			ID:       record.ID,
			Name:     record.Name,
			Username: usernames[record.Owner],
		})
	}
	return summaries, nil
}

// RenamePlaylist updates the playlist name. Collaborators may rename; only
// deletion is owner-only.
func (s *Service) RenamePlaylist(ctx context.Context, playlistID PlaylistID, userID UserID, name string) error {
	validName, err := NewName(name)
	if err != nil {
		return newServiceError(opRenamePlaylist, "invalid_name", err)
	}
	if err := s.resolver.VerifyAccess(ctx, playlistID, userID); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Model(&Playlist{}).
		Where("id = ?", playlistID.String()).
		Update("name", validName)
	if result.Error != nil {
		s.logError(opRenamePlaylist, "update_failed", result.Error, zap.String("playlist_id", playlistID.String()))
		return newServiceError(opRenamePlaylist, "update_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		// Deleted between access check and update.
		return newServiceError(opRenamePlaylist, "playlist_missing", ErrNotFound)
	}
	return nil
}

// DeletePlaylist removes the playlist after an owner-only check, cascading
// its collaborations and memberships. The activity log is append-only and is
// deliberately left intact.
func (s *Service) DeletePlaylist(ctx context.Context, playlistID PlaylistID, userID UserID) error {
	if err := s.resolver.VerifyOwner(ctx, playlistID, userID); err != nil {
		return err
	}
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", playlistID.String()).Delete(&Playlist{})
		if result.Error != nil {
			return newServiceError(opDeletePlaylist, "delete_failed", result.Error)
		}
		if result.RowsAffected == 0 {
			return newServiceError(opDeletePlaylist, "playlist_missing", ErrNotFound)
		}
		if err := tx.Where("playlist_id = ?", playlistID.String()).Delete(&Collaboration{}).Error; err != nil {
			return newServiceError(opDeletePlaylist, "collaborations_delete_failed", err)
		}
		if err := tx.Where("playlist_id = ?", playlistID.String()).Delete(&SongEntry{}).Error; err != nil {
			return newServiceError(opDeletePlaylist, "memberships_delete_failed", err)
		}
		return nil
	})
	if txErr != nil {
		s.logError(opDeletePlaylist, "transaction_failed", txErr, zap.String("playlist_id", playlistID.String()))
		return txErr
	}
	return nil
}

// SongRow is a membership entry joined with catalog metadata.
type SongRow struct {
	ID        string
	Title     string
	Performer string
}

// PlaylistContents is a playlist with its current songs.
type PlaylistContents struct {
	ID       string
	Name     string
	Username string
	Songs    []SongRow
}

// Songs returns the playlist and its current membership joined with catalog
// metadata. Requires owner-or-collaborator access.
func (s *Service) Songs(ctx context.Context, playlistID PlaylistID, userID UserID) (PlaylistContents, error) {
	if err := s.resolver.VerifyAccess(ctx, playlistID, userID); err != nil {
		return PlaylistContents{}, err
	}

	var playlist Playlist
	if err := s.db.WithContext(ctx).
		Where("id = ?", playlistID.String()).
		Take(&playlist).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PlaylistContents{}, newServiceError(opListSongs, "playlist_missing", ErrNotFound)
		}
		s.logError(opListSongs, "playlist_select_failed", err, zap.String("playlist_id", playlistID.String()))
		return PlaylistContents{}, newServiceError(opListSongs, "playlist_select_failed", err)
	}

	var entries []SongEntry
	if err := s.db.WithContext(ctx).
		Where("playlist_id = ?", playlistID.String()).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		s.logError(opListSongs, "entries_query_failed", err, zap.String("playlist_id", playlistID.String()))
		return PlaylistContents{}, newServiceError(opListSongs, "entries_query_failed", err)
	}

	songIDs := make([]string, 0, len(entries))
	for _, entry := range entries {
		songIDs = append(songIDs, entry.SongID)
	}
	songs, err := s.catalog.SongsByID(ctx, songIDs)
	if err != nil {
		s.logError(opListSongs, "catalog_lookup_failed", err, zap.String("playlist_id", playlistID.String()))
		return PlaylistContents{}, newServiceError(opListSongs, "catalog_lookup_failed", err)
	}

	usernames, err := s.directory.UsernamesByID(ctx, []string{playlist.Owner})
	if err != nil {
		s.logError(opListSongs, "username_lookup_failed", err)
		return PlaylistContents{}, newServiceError(opListSongs, "username_lookup_failed", err)
	}

	contents := PlaylistContents{
		ID:       playlist.ID,
		Name:     playlist.Name,
		Username: usernames[playlist.Owner],
		Songs:    make([]SongRow, 0, len(entries)),
	}
	for _, entry := range entries {
		song := songs[entry.SongID]
		contents.Songs = append(contents.Songs, SongRow{
			ID:        entry.SongID,
			Title:     song.Title,
			Performer: song.Performer,
		})
	}
	return contents, nil
}

// ActivityRow is an audit entry joined with the actor's username and the
// song's title.
type ActivityRow struct {
	Username string
	Title    string
	Action   ActivityAction
	Time     time.Time
}

// Activities returns the playlist's audit trail in the order the actions
// occurred, oldest first. Requires owner-or-collaborator access.
func (s *Service) Activities(ctx context.Context, playlistID PlaylistID, userID UserID) ([]ActivityRow, error) {
	if err := s.resolver.VerifyAccess(ctx, playlistID, userID); err != nil {
		return nil, err
	}

	var records []Activity
	if err := s.db.WithContext(ctx).
		Where("playlist_id = ?", playlistID.String()).
		Order("time_s ASC, id ASC").
		Find(&records).Error; err != nil {
		s.logError(opListActivities, "query_failed", err, zap.String("playlist_id", playlistID.String()))
		return nil, newServiceError(opListActivities, "query_failed", err)
	}

	actorIDs := make([]string, 0, len(records))
	songIDs := make([]string, 0, len(records))
	for _, record := range records {
		actorIDs = append(actorIDs, record.UserID)
		songIDs = append(songIDs, record.SongID)
	}
	usernames, err := s.directory.UsernamesByID(ctx, actorIDs)
	if err != nil {
		s.logError(opListActivities, "username_lookup_failed", err)
		return nil, newServiceError(opListActivities, "username_lookup_failed", err)
	}
	songs, err := s.catalog.SongsByID(ctx, songIDs)
	if err != nil {
		s.logError(opListActivities, "catalog_lookup_failed", err)
		return nil, newServiceError(opListActivities, "catalog_lookup_failed", err)
	}

	rows := make([]ActivityRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, ActivityRow{
			Username: usernames[record.UserID],
			Title:    songs[record.SongID].Title,
			Action:   record.Action,
			Time:     time.Unix(record.RecordedAtSeconds, 0).UTC(),
		})
	}
	return rows, nil
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("playlist service error", attrs...)
}
