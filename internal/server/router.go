package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mixtapelabs/mixtape/backend/internal/playlists"
	"go.uber.org/zap"
)

const userIDContextKey = "mixtape_user_id"

var (
	errMissingTokenManager   = errors.New("token manager dependency required")
	errMissingPlaylists      = errors.New("playlist service dependency required")
	errMissingCollaborations = errors.New("collaboration store dependency required")
	errMissingResolver       = errors.New("access resolver dependency required")
	errMissingDirectory      = errors.New("user directory dependency required")
	errInvalidAuthorization  = errors.New("authorization header missing or invalid")
)

// TokenManager issues and validates API bearer tokens.
type TokenManager interface {
	IssueToken(ctx context.Context, userID string) (string, int64, error)
	ValidateToken(token string) (string, error)
}

// UserDirectory answers whether a user id has a directory record.
type UserDirectory interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// Dependencies wires the HTTP surface to the core services.
type Dependencies struct {
	TokenManager   TokenManager
	Playlists      *playlists.Service
	Collaborations *playlists.Collaborations
	Resolver       *playlists.AccessResolver
	Directory      UserDirectory
	Logger         *zap.Logger
}

// NewHTTPHandler builds the gin router for the playlist API.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.TokenManager == nil {
		return nil, errMissingTokenManager
	}
	if deps.Playlists == nil {
		return nil, errMissingPlaylists
	}
	if deps.Collaborations == nil {
		return nil, errMissingCollaborations
	}
	if deps.Resolver == nil {
		return nil, errMissingResolver
	}
	if deps.Directory == nil {
		return nil, errMissingDirectory
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		tokens:         deps.TokenManager,
		playlists:      deps.Playlists,
		collaborations: deps.Collaborations,
		resolver:       deps.Resolver,
		directory:      deps.Directory,
		logger:         logger,
	}

	router.POST("/auth/token", handler.handleIssueToken)

	protected := router.Group("/")
	protected.Use(handler.authorizeRequest)
	protected.POST("/playlists", handler.handleCreatePlaylist)
	protected.GET("/playlists", handler.handleListPlaylists)
	protected.PUT("/playlists/:id", handler.handleRenamePlaylist)
	protected.DELETE("/playlists/:id", handler.handleDeletePlaylist)
	protected.POST("/playlists/:id/songs", handler.handleAddSong)
	protected.GET("/playlists/:id/songs", handler.handleListSongs)
	protected.DELETE("/playlists/:id/songs", handler.handleRemoveSong)
	protected.GET("/playlists/:id/activities", handler.handleListActivities)
	protected.POST("/collaborations", handler.handleAddCollaboration)
	protected.DELETE("/collaborations", handler.handleRemoveCollaboration)

	return router, nil
}

type httpHandler struct {
	tokens         TokenManager
	playlists      *playlists.Service
	collaborations *playlists.Collaborations
	resolver       *playlists.AccessResolver
	directory      UserDirectory
	logger         *zap.Logger
}

type tokenRequestPayload struct {
	UserID string `json:"user_id"`
}

type tokenResponsePayload struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (h *httpHandler) handleIssueToken(c *gin.Context) {
	var request tokenRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.UserID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	exists, err := h.directory.UserExists(c.Request.Context(), strings.TrimSpace(request.UserID))
	if err != nil {
		h.logger.Error("user lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user_lookup_failed"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown_user"})
		return
	}

	token, expiresIn, err := h.tokens.IssueToken(c.Request.Context(), strings.TrimSpace(request.UserID))
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_issue_failed"})
		return
	}

	c.JSON(http.StatusOK, tokenResponsePayload{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		TokenType:   "Bearer",
	})
}

type playlistRequestPayload struct {
	Name string `json:"name"`
}

func (h *httpHandler) handleCreatePlaylist(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var request playlistRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	playlistID, err := h.playlists.CreatePlaylist(c.Request.Context(), request.Name, caller)
	if err != nil {
		h.respondError(c, "create playlist failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"playlist_id": playlistID})
}

type playlistSummaryPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

func (h *httpHandler) handleListPlaylists(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	summaries, err := h.playlists.Playlists(c.Request.Context(), caller)
	if err != nil {
		h.respondError(c, "list playlists failed", err)
		return
	}

	payload := make([]playlistSummaryPayload, 0, len(summaries))
	for _, summary := range summaries {
		payload = append(payload, playlistSummaryPayload{
			ID:       summary.ID,
			Name:     summary.Name,
			Username: summary.Username,
		})
	}
	c.JSON(http.StatusOK, gin.H{"playlists": payload})
}

func (h *httpHandler) handleRenamePlaylist(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	playlistID, ok := h.playlistParam(c)
	if !ok {
		return
	}

	var request playlistRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	if err := h.playlists.RenamePlaylist(c.Request.Context(), playlistID, caller, request.Name); err != nil {
		h.respondError(c, "rename playlist failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "renamed"})
}

func (h *httpHandler) handleDeletePlaylist(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	playlistID, ok := h.playlistParam(c)
	if !ok {
		return
	}

	if err := h.playlists.DeletePlaylist(c.Request.Context(), playlistID, caller); err != nil {
		h.respondError(c, "delete playlist failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type songRequestPayload struct {
	SongID string `json:"song_id"`
}

func (h *httpHandler) handleAddSong(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	playlistID, ok := h.playlistParam(c)
	if !ok {
		return
	}

	var request songRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	songID, err := playlists.NewSongID(request.SongID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_song_id"})
		return
	}

	entryID, err := h.playlists.AddSong(c.Request.Context(), playlistID, caller, songID)
	if err != nil {
		h.respondError(c, "add song failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry_id": entryID})
}

func (h *httpHandler) handleRemoveSong(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	playlistID, ok := h.playlistParam(c)
	if !ok {
		return
	}

	var request songRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	songID, err := playlists.NewSongID(request.SongID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_song_id"})
		return
	}

	if err := h.playlists.RemoveSong(c.Request.Context(), playlistID, caller, songID); err != nil {
		h.respondError(c, "remove song failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

type songRowPayload struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Performer string `json:"performer"`
}

func (h *httpHandler) handleListSongs(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	playlistID, ok := h.playlistParam(c)
	if !ok {
		return
	}

	contents, err := h.playlists.Songs(c.Request.Context(), playlistID, caller)
	if err != nil {
		h.respondError(c, "list songs failed", err)
		return
	}

	songs := make([]songRowPayload, 0, len(contents.Songs))
	for _, song := range contents.Songs {
		songs = append(songs, songRowPayload{ID: song.ID, Title: song.Title, Performer: song.Performer})
	}
	c.JSON(http.StatusOK, gin.H{"playlist": gin.H{
		"id":       contents.ID,
		"name":     contents.Name,
		"username": contents.Username,
		"songs":    songs,
	}})
}

type activityRowPayload struct {
	Username string `json:"username"`
	Title    string `json:"title"`
	Action   string `json:"action"`
	Time     string `json:"time"`
}

func (h *httpHandler) handleListActivities(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	playlistID, ok := h.playlistParam(c)
	if !ok {
		return
	}

	rows, err := h.playlists.Activities(c.Request.Context(), playlistID, caller)
	if err != nil {
		h.respondError(c, "list activities failed", err)
		return
	}

	activities := make([]activityRowPayload, 0, len(rows))
	for _, row := range rows {
		activities = append(activities, activityRowPayload{
			Username: row.Username,
			Title:    row.Title,
			Action:   string(row.Action),
			Time:     row.Time.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"playlist_id": playlistID.String(),
		"activities":  activities,
	})
}

type collaborationRequestPayload struct {
	PlaylistID string `json:"playlist_id"`
	UserID     string `json:"user_id"`
}

func (h *httpHandler) handleAddCollaboration(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	playlistID, collaborator, ok := h.collaborationPayload(c)
	if !ok {
		return
	}

	// Only the owner may manage collaborators.
	if err := h.resolver.VerifyOwner(c.Request.Context(), playlistID, caller); err != nil {
		h.respondError(c, "collaboration owner check failed", err)
		return
	}

	collaborationID, err := h.collaborations.Add(c.Request.Context(), playlistID, collaborator)
	if err != nil {
		h.respondError(c, "add collaboration failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"collaboration_id": collaborationID})
}

func (h *httpHandler) handleRemoveCollaboration(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	playlistID, collaborator, ok := h.collaborationPayload(c)
	if !ok {
		return
	}

	if err := h.resolver.VerifyOwner(c.Request.Context(), playlistID, caller); err != nil {
		h.respondError(c, "collaboration owner check failed", err)
		return
	}

	if err := h.collaborations.Remove(c.Request.Context(), playlistID, collaborator); err != nil {
		h.respondError(c, "remove collaboration failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (h *httpHandler) collaborationPayload(c *gin.Context) (playlists.PlaylistID, playlists.UserID, bool) {
	var request collaborationRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return "", "", false
	}
	playlistID, err := playlists.NewPlaylistID(request.PlaylistID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_playlist_id"})
		return "", "", false
	}
	collaborator, err := playlists.NewUserID(request.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_user_id"})
		return "", "", false
	}
	return playlistID, collaborator, true
}

func (h *httpHandler) caller(c *gin.Context) (playlists.UserID, bool) {
	raw := c.GetString(userIDContextKey)
	caller, err := playlists.NewUserID(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	return caller, true
}

func (h *httpHandler) playlistParam(c *gin.Context) (playlists.PlaylistID, bool) {
	playlistID, err := playlists.NewPlaylistID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_playlist_id"})
		return "", false
	}
	return playlistID, true
}

func (h *httpHandler) respondError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, playlists.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, playlists.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, playlists.ErrInvariant),
		errors.Is(err, playlists.ErrInvalidName),
		errors.Is(err, playlists.ErrInvalidPlaylistID),
		errors.Is(err, playlists.ErrInvalidUserID),
		errors.Is(err, playlists.ErrInvalidSongID):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error(message, zap.Error(err))
		c.JSON(status, gin.H{"error": "internal_error"})
		return
	}

	code := "request_failed"
	var serviceErr *playlists.ServiceError
	if errors.As(err, &serviceErr) {
		code = serviceErr.Code()
	}
	c.JSON(status, gin.H{"error": code})
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	subject, err := h.tokens.ValidateToken(token)
	if err != nil {
		h.logger.Warn("token validation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(userIDContextKey, subject)
	c.Next()
}
