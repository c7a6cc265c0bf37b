package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// ServiceConfig describes the dependencies of the catalog service.
type ServiceConfig struct {
	Database *gorm.DB
}

// Service exposes the song catalog and user directory lookups the playlist
// core depends on. Album and song CRUD belong to a different surface; this
// service only reads, plus the registration helpers tests and seeding use.
type Service struct {
	db *gorm.DB
}

// NewService constructs the catalog service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("catalog: database connection required")
	}
	return &Service{db: cfg.Database}, nil
}

// SongExists reports whether the song identifier is known to the catalog.
func (s *Service) SongExists(ctx context.Context, songID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Song{}).
		Where("id = ?", songID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SongsByID returns the catalog records for the requested identifiers, keyed
// by song id. Unknown identifiers are simply absent from the result.
func (s *Service) SongsByID(ctx context.Context, songIDs []string) (map[string]Song, error) {
	result := make(map[string]Song, len(songIDs))
	if len(songIDs) == 0 {
		return result, nil
	}
	var songs []Song
	if err := s.db.WithContext(ctx).
		Where("id IN ?", songIDs).
		Find(&songs).Error; err != nil {
		return nil, err
	}
	for _, song := range songs {
		result[song.ID] = song
	}
	return result, nil
}

// UsernamesByID returns the display usernames for the requested user
// identifiers, keyed by user id. Unknown identifiers are absent.
func (s *Service) UsernamesByID(ctx context.Context, userIDs []string) (map[string]string, error) {
	result := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}
	var users []User
	if err := s.db.WithContext(ctx).
		Where("id IN ?", userIDs).
		Find(&users).Error; err != nil {
		return nil, err
	}
	for _, user := range users {
		result[user.ID] = user.Username
	}
	return result, nil
}

// UserExists reports whether the user identifier has a directory record.
func (s *Service) UserExists(ctx context.Context, userID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RegisterSong upserts a song catalog record.
func (s *Service) RegisterSong(ctx context.Context, song Song) error {
	if song.ID == "" {
		return fmt.Errorf("catalog: song id required")
	}
	return s.db.WithContext(ctx).Save(&song).Error
}

// RegisterUser upserts a user directory record.
func (s *Service) RegisterUser(ctx context.Context, user User) error {
	if user.ID == "" {
		return fmt.Errorf("catalog: user id required")
	}
	return s.db.WithContext(ctx).Save(&user).Error
}
