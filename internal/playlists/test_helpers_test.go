package playlists

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/mixtapelabs/mixtape/backend/internal/catalog"
	"gorm.io/gorm"
)

const testClockSeconds = 1750000000

type staticIDGenerator struct {
	ids   []string
	index int
}

func (g *staticIDGenerator) NewID() (string, error) {
	if g.index >= len(g.ids) {
		return "", errors.New("exhausted ids")
	}
	id := g.ids[g.index]
	g.index++
	return id, nil
}

type testStack struct {
	db             *gorm.DB
	catalog        *catalog.Service
	collaborations *Collaborations
	resolver       *AccessResolver
	service        *Service
	clockSeconds   *int64
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	dsn := fmt.Sprintf("file:playlists_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Playlist{}, &Collaboration{}, &SongEntry{}, &Activity{}, &catalog.Song{}, &catalog.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	catalogService, err := catalog.NewService(catalog.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to construct catalog service: %v", err)
	}

	collaborations, err := NewCollaborations(CollaborationsConfig{
		Database:   db,
		IDProvider: NewUUIDProvider(),
	})
	if err != nil {
		t.Fatalf("failed to construct collaboration store: %v", err)
	}

	resolver, err := NewAccessResolver(AccessResolverConfig{
		Database:       db,
		Collaborations: collaborations,
	})
	if err != nil {
		t.Fatalf("failed to construct access resolver: %v", err)
	}

	clockSeconds := int64(testClockSeconds)
	service, err := NewService(ServiceConfig{
		Database:   db,
		Clock:      func() time.Time { return time.Unix(clockSeconds, 0).UTC() },
		IDProvider: NewUUIDProvider(),
		Resolver:   resolver,
		Catalog:    catalogService,
		Directory:  catalogService,
	})
	if err != nil {
		t.Fatalf("failed to construct playlist service: %v", err)
	}

	return &testStack{
		db:             db,
		catalog:        catalogService,
		collaborations: collaborations,
		resolver:       resolver,
		service:        service,
		clockSeconds:   &clockSeconds,
	}
}

func (s *testStack) seedUser(t *testing.T, id, username string) {
	t.Helper()
	if err := s.catalog.RegisterUser(context.Background(), catalog.User{ID: id, Username: username}); err != nil {
		t.Fatalf("failed to seed user %s: %v", id, err)
	}
}

func (s *testStack) seedSong(t *testing.T, id, title, performer string) {
	t.Helper()
	if err := s.catalog.RegisterSong(context.Background(), catalog.Song{ID: id, Title: title, Performer: performer}); err != nil {
		t.Fatalf("failed to seed song %s: %v", id, err)
	}
}

func (s *testStack) createPlaylist(t *testing.T, name string, owner UserID) PlaylistID {
	t.Helper()
	rawID, err := s.service.CreatePlaylist(context.Background(), name, owner)
	if err != nil {
		t.Fatalf("failed to create playlist: %v", err)
	}
	return mustPlaylistID(t, rawID)
}

func mustPlaylistID(t *testing.T, value string) PlaylistID {
	t.Helper()
	id, err := NewPlaylistID(value)
	if err != nil {
		t.Fatalf("unexpected playlist id error: %v", err)
	}
	return id
}

func mustUserID(t *testing.T, value string) UserID {
	t.Helper()
	id, err := NewUserID(value)
	if err != nil {
		t.Fatalf("unexpected user id error: %v", err)
	}
	return id
}

func mustSongID(t *testing.T, value string) SongID {
	t.Helper()
	id, err := NewSongID(value)
	if err != nil {
		t.Fatalf("unexpected song id error: %v", err)
	}
	return id
}
