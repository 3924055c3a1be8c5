package web

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lyriclingo/lyriclingo/internal/catalog"
	"github.com/lyriclingo/lyriclingo/internal/db"
	"github.com/lyriclingo/lyriclingo/internal/insights"
	"github.com/lyriclingo/lyriclingo/internal/review"
	"github.com/lyriclingo/lyriclingo/internal/srs"
)

// SearchService runs unified cross-catalog song searches.
type SearchService interface {
	Search(ctx context.Context, query string) ([]catalog.UnifiedResult, error)
}

// ReviewService manages vocabulary items and their review scheduling.
type ReviewService interface {
	AddItem(ctx context.Context, params review.NewItemParams) (*db.VocabularyItem, error)
	SubmitReview(ctx context.Context, ownerID, itemID uuid.UUID, quality int) (*review.ReviewOutcome, error)
	DueItems(ctx context.Context, ownerID uuid.UUID, limit int) ([]db.VocabularyItem, error)
	BuildSession(ctx context.Context, ownerID uuid.UUID, size int, mix srs.SessionMix) ([]srs.ExerciseUnit, error)
}

// LearnerStore persists learner accounts.
type LearnerStore interface {
	Create(ctx context.Context, learner *db.Learner) error
	GetByEmail(ctx context.Context, email string) (*db.Learner, error)
}

// SongStore persists imported songs.
type SongStore interface {
	Create(ctx context.Context, song *db.Song) error
	List(ctx context.Context, limit int) ([]db.Song, error)
}

// StatsStore provides the review aggregates the insights endpoint clusters.
type StatsStore interface {
	ReviewStats(ctx context.Context, ownerID uuid.UUID) ([]db.ItemReviewStats, error)
	Get(ctx context.Context, id uuid.UUID) (*db.VocabularyItem, error)
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	sessions    SessionManager
	search      SearchService
	review      ReviewService
	learners    LearnerStore
	songs       SongStore
	stats       StatsStore
	insightsCfg insights.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sessions SessionManager, search SearchService, reviews ReviewService, learners LearnerStore, songs SongStore, stats StatsStore) *Handlers {
	return &Handlers{
		sessions:    sessions,
		search:      search,
		review:      reviews,
		learners:    learners,
		songs:       songs,
		stats:       stats,
		insightsCfg: insights.DefaultConfig(),
	}
}

// ============================================================================
// Auth
// ============================================================================

type registerRequest struct {
	Email          string `json:"email"`
	DisplayName    string `json:"display_name"`
	NativeLanguage string `json:"native_language"`
}

// Register creates a learner account and opens a session (POST /api/auth/register).
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondError(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if req.DisplayName == "" {
		respondError(w, http.StatusBadRequest, "display_name is required")
		return
	}

	if _, err := h.learners.GetByEmail(r.Context(), req.Email); err == nil {
		respondError(w, http.StatusConflict, "email already registered")
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		respondError(w, http.StatusInternalServerError, "looking up learner")
		return
	}

	learner := &db.Learner{
		ID:             uuid.New(),
		Email:          req.Email,
		DisplayName:    req.DisplayName,
		NativeLanguage: req.NativeLanguage,
	}
	if err := h.learners.Create(r.Context(), learner); err != nil {
		respondError(w, http.StatusInternalServerError, "creating learner")
		return
	}

	session, err := h.sessions.Create(r.Context(), learner.ID, learner.DisplayName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "creating session")
		return
	}
	h.sessions.SetCookie(w, session)
	respondJSON(w, http.StatusCreated, learner)
}

type loginRequest struct {
	Email string `json:"email"`
}

// Login opens a session for an existing learner (POST /api/auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	learner, err := h.learners.GetByEmail(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)))
	if errors.Is(err, db.ErrNotFound) {
		respondError(w, http.StatusUnauthorized, "unknown email")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "looking up learner")
		return
	}

	session, err := h.sessions.Create(r.Context(), learner.ID, learner.DisplayName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "creating session")
		return
	}
	h.sessions.SetCookie(w, session)
	respondJSON(w, http.StatusOK, learner)
}

// Logout clears the session (POST /api/auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.sessions.GetFromRequest(r); session != nil {
		h.sessions.Delete(r.Context(), session.ID)
	}
	h.sessions.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// Search and songs
// ============================================================================

// Search returns unified cross-catalog results (GET /api/search?q=).
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		respondError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	results, err := h.search.Search(r.Context(), query)
	if err != nil {
		log.Printf("search %q: %v", query, err)
		respondError(w, http.StatusBadGateway, "search is temporarily unavailable")
		return
	}
	if results == nil {
		results = []catalog.UnifiedResult{}
	}
	respondJSON(w, http.StatusOK, results)
}

type importSongRequest struct {
	Title             string `json:"title"`
	Artist            string `json:"artist"`
	MetadataSourceID  string `json:"metadata_source_id"`
	CommunitySourceID string `json:"community_source_id"`
	Confidence        int    `json:"confidence"`
	PrimarySource     string `json:"primary_source"`
	CoverImageURL     string `json:"cover_image_url"`
	Language          string `json:"language"`
}

// ImportSong persists a chosen unified result (POST /api/songs/import).
func (h *Handlers) ImportSong(w http.ResponseWriter, r *http.Request) {
	var req importSongRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.MetadataSourceID == "" && req.CommunitySourceID == "" {
		respondError(w, http.StatusBadRequest, "at least one source id is required")
		return
	}

	song := &db.Song{
		ID:            uuid.New(),
		Title:         req.Title,
		Artist:        req.Artist,
		SpotifyID:     optional(req.MetadataSourceID),
		YouTubeID:     optional(req.CommunitySourceID),
		Confidence:    req.Confidence,
		PrimarySource: req.PrimarySource,
		CoverURL:      optional(req.CoverImageURL),
		Language:      optional(req.Language),
	}
	if err := h.songs.Create(r.Context(), song); err != nil {
		respondError(w, http.StatusInternalServerError, "saving song")
		return
	}
	respondJSON(w, http.StatusCreated, song)
}

// ListSongs returns recently imported songs (GET /api/songs?limit=).
func (h *Handlers) ListSongs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}

	songs, err := h.songs.List(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing songs")
		return
	}
	if songs == nil {
		songs = []db.Song{}
	}
	respondJSON(w, http.StatusOK, songs)
}

// ============================================================================
// Vocabulary and reviews
// ============================================================================

type createVocabularyRequest struct {
	SongID      string `json:"song_id"`
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Language    string `json:"language"`
	Band        string `json:"band"`
}

// CreateVocabulary saves a new vocabulary item (POST /api/vocabulary).
func (h *Handlers) CreateVocabulary(w http.ResponseWriter, r *http.Request) {
	session := h.mustSession(w, r)
	if session == nil {
		return
	}

	var req createVocabularyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var songID *uuid.UUID
	if req.SongID != "" {
		id, err := uuid.Parse(req.SongID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid song_id")
			return
		}
		songID = &id
	}

	item, err := h.review.AddItem(r.Context(), review.NewItemParams{
		OwnerID:     session.LearnerID,
		SongID:      songID,
		Word:        req.Word,
		Translation: req.Translation,
		Language:    req.Language,
		Band:        srs.Band(req.Band),
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

// GetVocabulary returns one of the learner's items (GET /api/vocabulary/{id}).
func (h *Handlers) GetVocabulary(w http.ResponseWriter, r *http.Request) {
	session := h.mustSession(w, r)
	if session == nil {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.stats.Get(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading item")
		return
	}
	if item.OwnerID != session.LearnerID {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

type submitReviewRequest struct {
	Quality int `json:"quality"`
}

// SubmitReview grades a review (POST /api/vocabulary/{id}/review).
func (h *Handlers) SubmitReview(w http.ResponseWriter, r *http.Request) {
	session := h.mustSession(w, r)
	if session == nil {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req submitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	outcome, err := h.review.SubmitReview(r.Context(), session.LearnerID, id, req.Quality)
	switch {
	case errors.Is(err, db.ErrNotFound), errors.Is(err, review.ErrNotOwner):
		respondError(w, http.StatusNotFound, "item not found")
		return
	case errors.Is(err, db.ErrVersionConflict):
		respondError(w, http.StatusConflict, "item was reviewed concurrently, reload and retry")
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "recording review")
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

// DueItems lists items due for review (GET /api/review/due?limit=).
func (h *Handlers) DueItems(w http.ResponseWriter, r *http.Request) {
	session := h.mustSession(w, r)
	if session == nil {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.review.DueItems(r.Context(), session.LearnerID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "querying due items")
		return
	}
	if items == nil {
		items = []db.VocabularyItem{}
	}
	respondJSON(w, http.StatusOK, items)
}

// ReviewSession builds a practice session (GET /api/review/session?size=&mix=).
func (h *Handlers) ReviewSession(w http.ResponseWriter, r *http.Request) {
	session := h.mustSession(w, r)
	if session == nil {
		return
	}

	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 10
	}
	mix := srs.SessionMix(r.URL.Query().Get("mix"))
	if mix == "" {
		mix = srs.MixBlended
	}

	units, err := h.review.BuildSession(r.Context(), session.LearnerID, size, mix)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "building session")
		return
	}
	if units == nil {
		units = []srs.ExerciseUnit{}
	}
	respondJSON(w, http.StatusOK, units)
}

// InsightBands suggests difficulty-band changes (GET /api/insights/bands).
func (h *Handlers) InsightBands(w http.ResponseWriter, r *http.Request) {
	session := h.mustSession(w, r)
	if session == nil {
		return
	}

	stats, err := h.stats.ReviewStats(r.Context(), session.LearnerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading review stats")
		return
	}

	suggestions, err := insights.SuggestBands(stats, h.insightsCfg)
	if err != nil {
		log.Printf("band suggestions for %s: %v", session.LearnerID, err)
		respondError(w, http.StatusInternalServerError, "computing suggestions")
		return
	}
	if suggestions == nil {
		suggestions = []insights.Suggestion{}
	}
	respondJSON(w, http.StatusOK, suggestions)
}

// Healthz reports liveness (GET /healthz).
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ============================================================================
// Helpers
// ============================================================================

// mustSession resolves the request's session or writes a 401.
func (h *Handlers) mustSession(w http.ResponseWriter, r *http.Request) *Session {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return nil
	}
	return session
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
