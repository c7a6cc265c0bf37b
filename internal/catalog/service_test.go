package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestCatalog(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:catalog_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Song{}, &User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	service, err := NewService(ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to construct service: %v", err)
	}
	return service
}

func TestSongExistence(t *testing.T) {
	service := newTestCatalog(t)
	ctx := context.Background()

	if err := service.RegisterSong(ctx, Song{ID: "song-1", Title: "Holiday", Performer: "Green Day"}); err != nil {
		t.Fatalf("failed to register song: %v", err)
	}

	exists, err := service.SongExists(ctx, "song-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Fatalf("expected song to exist")
	}

	exists, err = service.SongExists(ctx, "song-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Fatalf("expected song-2 to be unknown")
	}
}

func TestSongsByIDSkipsUnknownIdentifiers(t *testing.T) {
	service := newTestCatalog(t)
	ctx := context.Background()

	if err := service.RegisterSong(ctx, Song{ID: "song-1", Title: "Holiday", Performer: "Green Day"}); err != nil {
		t.Fatalf("failed to register song: %v", err)
	}

	songs, err := service.SongsByID(ctx, []string{"song-1", "song-missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(songs) != 1 {
		t.Fatalf("expected one catalog hit, got %d", len(songs))
	}
	if songs["song-1"].Title != "Holiday" {
		t.Fatalf("unexpected title %q", songs["song-1"].Title)
	}

	songs, err = service.SongsByID(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error for empty lookup: %v", err)
	}
	if len(songs) != 0 {
		t.Fatalf("expected empty result, got %d entries", len(songs))
	}
}

func TestUsernameLookups(t *testing.T) {
	service := newTestCatalog(t)
	ctx := context.Background()

	if err := service.RegisterUser(ctx, User{ID: "user-1", Username: "alice", FullName: "Alice Example"}); err != nil {
		t.Fatalf("failed to register user: %v", err)
	}

	usernames, err := service.UsernamesByID(ctx, []string{"user-1", "user-ghost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usernames["user-1"] != "alice" {
		t.Fatalf("unexpected username %q", usernames["user-1"])
	}
	if _, ok := usernames["user-ghost"]; ok {
		t.Fatalf("expected unknown user to be absent")
	}

	exists, err := service.UserExists(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Fatalf("expected user to exist")
	}
	exists, err = service.UserExists(ctx, "user-ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Fatalf("expected ghost user to be unknown")
	}
}

func TestRegisterRequiresIdentifiers(t *testing.T) {
	service := newTestCatalog(t)
	ctx := context.Background()

	if err := service.RegisterSong(ctx, Song{Title: "No ID"}); err == nil {
		t.Fatalf("expected error for song without id")
	}
	if err := service.RegisterUser(ctx, User{Username: "noid"}); err == nil {
		t.Fatalf("expected error for user without id")
	}
}
