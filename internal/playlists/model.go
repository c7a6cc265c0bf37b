package playlists

import (
	"errors"
	"fmt"
	"strings"
)

// ActivityAction enumerates the auditable playlist membership actions.
type ActivityAction string

const (
	// ActivityActionAdd records a song being added to a playlist.
	ActivityActionAdd ActivityAction = "add"
	// ActivityActionRemove records a song being removed from a playlist.
	ActivityActionRemove ActivityAction = "remove"
)

const (
	maxIdentifierLength = 64
	maxNameLength       = 190
)

var (
	// ErrInvalidPlaylistID indicates that a playlist identifier is empty or exceeds storage bounds.
	ErrInvalidPlaylistID = errors.New("playlists: invalid playlist id")
	// ErrInvalidUserID indicates that a user identifier is empty or exceeds storage bounds.
	ErrInvalidUserID = errors.New("playlists: invalid user id")
	// ErrInvalidSongID indicates that a song identifier is empty or exceeds storage bounds.
	ErrInvalidSongID = errors.New("playlists: invalid song id")
	// ErrInvalidName indicates that a playlist name is empty or exceeds storage bounds.
	ErrInvalidName = errors.New("playlists: invalid playlist name")
)

// PlaylistID represents a validated playlist identifier.
type PlaylistID string

// NewPlaylistID validates raw input and returns a PlaylistID.
func NewPlaylistID(rawInput string) (PlaylistID, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPlaylistID)
	}
	if len(trimmed) > maxIdentifierLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidPlaylistID, maxIdentifierLength)
	}
	return PlaylistID(trimmed), nil
}

// String returns the underlying string identifier.
func (id PlaylistID) String() string {
	return string(id)
}

// UserID represents a validated user identifier.
type UserID string

// NewUserID validates raw input and returns a UserID.
func NewUserID(rawInput string) (UserID, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidUserID)
	}
	if len(trimmed) > maxIdentifierLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidUserID, maxIdentifierLength)
	}
	return UserID(trimmed), nil
}

// String returns the underlying string identifier.
func (id UserID) String() string {
	return string(id)
}

// SongID represents a validated song identifier.
type SongID string

// NewSongID validates raw input and returns a SongID.
func NewSongID(rawInput string) (SongID, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidSongID)
	}
	if len(trimmed) > maxIdentifierLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidSongID, maxIdentifierLength)
	}
	return SongID(trimmed), nil
}

// String returns the underlying string identifier.
func (id SongID) String() string {
	return string(id)
}

// NewName validates a playlist display name.
func NewName(rawInput string) (string, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if len(trimmed) > maxNameLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return trimmed, nil
}

// ParseActivityAction validates a raw action value.
func ParseActivityAction(value string) (ActivityAction, error) {
	switch ActivityAction(strings.ToLower(strings.TrimSpace(value))) {
	case ActivityActionAdd:
		return ActivityActionAdd, nil
	case ActivityActionRemove:
		return ActivityActionRemove, nil
	default:
		return "", fmt.Errorf("playlists: unknown activity action %q", value)
	}
}

// Playlist models a persisted playlist. Owner is immutable after creation.
type Playlist struct {
	ID    string `gorm:"column:id;primaryKey;size:64;not null"`
	Name  string `gorm:"column:name;size:190;not null"`
	Owner string `gorm:"column:owner;size:64;not null;index:idx_playlists_owner"`
}

// TableName provides the explicit table binding for GORM.
func (Playlist) TableName() string {
	return "playlists"
}

// Collaboration grants a non-owner user shared access to a playlist.
// At most one collaboration per (playlist, user) pair.
type Collaboration struct {
	ID         string `gorm:"column:id;primaryKey;size:64;not null"`
	PlaylistID string `gorm:"column:playlist_id;size:64;not null;uniqueIndex:idx_collaborations_pair,priority:1"`
	UserID     string `gorm:"column:user_id;size:64;not null;uniqueIndex:idx_collaborations_pair,priority:2"`
}

// TableName provides the explicit table binding for GORM.
func (Collaboration) TableName() string {
	return "collaborations"
}

// SongEntry records that a song currently belongs to a playlist.
// At most one entry per (playlist, song) pair.
type SongEntry struct {
	ID         string `gorm:"column:id;primaryKey;size:64;not null"`
	PlaylistID string `gorm:"column:playlist_id;size:64;not null;uniqueIndex:idx_playlist_songs_pair,priority:1"`
	SongID     string `gorm:"column:song_id;size:64;not null;uniqueIndex:idx_playlist_songs_pair,priority:2"`
}

// TableName provides the explicit table binding for GORM.
func (SongEntry) TableName() string {
	return "playlist_songs"
}

// Activity is an immutable audit record of a single add/remove action on
// playlist membership. Rows are appended by the service and never updated.
type Activity struct {
	ID                string         `gorm:"column:id;primaryKey;size:64;not null"`
	PlaylistID        string         `gorm:"column:playlist_id;size:64;not null;index:idx_activities_playlist_time,priority:1"`
	SongID            string         `gorm:"column:song_id;size:64;not null"`
	UserID            string         `gorm:"column:user_id;size:64;not null"`
	Action            ActivityAction `gorm:"column:action;size:16;not null"`
	RecordedAtSeconds int64          `gorm:"column:time_s;not null;index:idx_activities_playlist_time,priority:2"`
}

// TableName provides the explicit table binding for GORM.
func (Activity) TableName() string {
	return "playlist_song_activities"
}
