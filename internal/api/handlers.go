package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/neexbeast/travelguider/internal/backend"
	"github.com/neexbeast/travelguider/internal/itinerary"
	"github.com/neexbeast/travelguider/internal/planner"
	"github.com/neexbeast/travelguider/internal/session"
	"github.com/neexbeast/travelguider/internal/storage"
)

const maxBodyBytes = 1 << 20

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	planners PlannerPool
	sessions session.Store
	backend  Backend
	repo     ItineraryRepo
	log      *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(planners PlannerPool, sessions session.Store, backend Backend, repo ItineraryRepo, log *slog.Logger) *Handlers {
	return &Handlers{
		planners: planners,
		sessions: sessions,
		backend:  backend,
		repo:     repo,
		log:      log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
// A value that cannot be encoded is answered with a 500 instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Error("encoding response", "err", err)
		buf.Reset()
		buf.WriteString(`{"error":"internal server error"}` + "\n")
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps domain errors onto HTTP statuses. Backend server errors
// become 502 carrying the backend's message; unreachable backends become 504.
func (h *Handlers) writeError(w http.ResponseWriter, op string, err error) {
	var verr *itinerary.ValidationError
	var serr *backend.ServerError
	var cerr *backend.ConnectivityError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, planner.ErrSubmissionInFlight):
		writeErrorMessage(w, http.StatusConflict, planner.UserMessage(err))
	case errors.Is(err, planner.ErrSubmissionDiscarded):
		writeErrorMessage(w, http.StatusConflict, planner.UserMessage(err))
	case errors.Is(err, planner.ErrInvalidTransition):
		writeErrorMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, "itinerary not found")
	case errors.Is(err, session.ErrTokenExpired):
		writeErrorMessage(w, http.StatusUnauthorized, "session token expired")
	case errors.As(err, &serr):
		h.log.Warn(op+": backend error", "status", serr.StatusCode, "err", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": serr.Message, "upstream_status": serr.StatusCode})
	case errors.As(err, &cerr), errors.Is(err, context.DeadlineExceeded):
		h.log.Warn(op+": backend unreachable", "err", err)
		writeErrorMessage(w, http.StatusGatewayTimeout, planner.ConnectivityMessage)
	case errors.Is(err, context.Canceled):
		h.log.Info(op+": request canceled", "err", err)
		writeErrorMessage(w, http.StatusGatewayTimeout, planner.ConnectivityMessage)
	default:
		h.log.Error(op+" failed", "err", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func clientID(r *http.Request) string {
	return strings.ToLower(strings.TrimSpace(chi.URLParam(r, "clientID")))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	ClientID  string     `json:"client_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Login handles POST /api/v1/sessions/{clientID}.
// Exchanges credentials with the backend and stores the token for the client.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	id := clientID(r)

	var in loginRequest
	if err := decodeBody(w, r, &in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		writeErrorMessage(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, err := h.backend.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		var serr *backend.ServerError
		if errors.As(err, &serr) && (serr.StatusCode == http.StatusUnauthorized || serr.StatusCode == http.StatusForbidden) {
			writeErrorMessage(w, http.StatusUnauthorized, serr.Message)
			return
		}
		h.writeError(w, "login", err)
		return
	}

	if err := session.New(h.sessions, id).SetToken(r.Context(), token); err != nil {
		h.writeError(w, "storing session", err)
		return
	}

	resp := sessionResponse{ClientID: id}
	if exp, ok := session.ExpiresAt(token); ok {
		resp.ExpiresAt = &exp
	}
	h.log.Info("traveler signed in", "client", id)
	writeJSON(w, http.StatusCreated, resp)
}

// Logout handles DELETE /api/v1/sessions/{clientID}.
// Clears the stored token and drops the client's planner.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	id := clientID(r)
	if err := session.New(h.sessions, id).ClearToken(r.Context()); err != nil {
		h.writeError(w, "clearing session", err)
		return
	}
	h.planners.Forget(id)
	w.WriteHeader(http.StatusNoContent)
}

// Submit handles POST /api/v1/planner/{clientID}/submit.
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	var form itinerary.TripForm
	if err := decodeBody(w, r, &form); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.planners.For(clientID(r)).Submit(r.Context(), form)
	if err != nil {
		h.writeError(w, "submitting itinerary", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// idleStatus is reported for clients that have no planner yet.
var idleStatus = planner.Status{State: planner.StateIdle, Screen: planner.ScreenPlanner, CanSubmit: true}

// Status handles GET /api/v1/planner/{clientID}.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	p, ok := h.planners.Lookup(clientID(r))
	if !ok {
		writeJSON(w, http.StatusOK, idleStatus)
		return
	}
	writeJSON(w, http.StatusOK, p.Status())
}

// Close handles DELETE /api/v1/planner/{clientID}.
// Discards the displayed itinerary.
func (h *Handlers) Close(w http.ResponseWriter, r *http.Request) {
	p, ok := h.planners.Lookup(clientID(r))
	if !ok {
		writeJSON(w, http.StatusOK, idleStatus)
		return
	}
	p.Close()
	writeJSON(w, http.StatusOK, p.Status())
}

type navigateRequest struct {
	Event string `json:"event"`
}

// Navigate handles POST /api/v1/planner/{clientID}/navigate.
func (h *Handlers) Navigate(w http.ResponseWriter, r *http.Request) {
	var in navigateRequest
	if err := decodeBody(w, r, &in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	ev, err := planner.ParseEvent(in.Event)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	screen, err := h.planners.For(clientID(r)).Navigate(ev)
	if err != nil {
		h.writeError(w, "navigating", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]planner.Screen{"screen": screen})
}

type saveRequest struct {
	Title string `json:"title"`
}

// Save handles POST /api/v1/planner/{clientID}/save.
// Persists the displayed itinerary; nothing is stored without this call.
func (h *Handlers) Save(w http.ResponseWriter, r *http.Request) {
	id := clientID(r)

	var in saveRequest
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &in); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	var view *planner.View
	if p, ok := h.planners.Lookup(id); ok {
		view = p.View()
	}
	if view == nil {
		writeErrorMessage(w, http.StatusConflict, "no itinerary is displayed")
		return
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = view.Request.Title
	}
	saved, err := h.repo.Save(r.Context(), storage.SavedItinerary{
		Owner:     id,
		Title:     title,
		Request:   view.Request,
		Itinerary: view.Itinerary,
		Summary:   view.Summary,
	})
	if err != nil {
		h.writeError(w, "saving itinerary", err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// ListItineraries handles GET /api/v1/itineraries?owner=<clientID>[&place=<name>].
func (h *Handlers) ListItineraries(w http.ResponseWriter, r *http.Request) {
	owner := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("owner")))
	if owner == "" {
		writeErrorMessage(w, http.StatusBadRequest, "owner query parameter is required")
		return
	}

	var (
		list []*storage.SavedItinerary
		err  error
	)
	if place := strings.TrimSpace(r.URL.Query().Get("place")); place != "" {
		list, err = h.repo.ListContainingPlace(r.Context(), owner, place)
	} else {
		list, err = h.repo.ListByOwner(r.Context(), owner)
	}
	if err != nil {
		h.writeError(w, "listing itineraries", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) loadSaved(w http.ResponseWriter, r *http.Request) (*storage.SavedItinerary, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid itinerary id")
		return nil, false
	}
	saved, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, "loading itinerary", err)
		return nil, false
	}
	return saved, true
}

// GetItinerary handles GET /api/v1/itineraries/{id}.
func (h *Handlers) GetItinerary(w http.ResponseWriter, r *http.Request) {
	saved, ok := h.loadSaved(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteItinerary handles DELETE /api/v1/itineraries/{id}.
func (h *Handlers) DeleteItinerary(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid itinerary id")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.writeError(w, "deleting itinerary", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportItinerary handles GET /api/v1/itineraries/{id}/export?format=json|yaml.
func (h *Handlers) ExportItinerary(w http.ResponseWriter, r *http.Request) {
	format, err := itinerary.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, ok := h.loadSaved(w, r)
	if !ok {
		return
	}

	contentType := "application/json"
	if format == itinerary.FormatYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="itinerary-%s.%s"`, saved.ID, format))
	w.WriteHeader(http.StatusOK)
	if err := itinerary.Export(w, saved.Itinerary, format); err != nil {
		h.log.Error("export failed", "id", saved.ID, "err", err)
	}
}

// Categories handles GET /api/v1/catalog/categories.
func (h *Handlers) Categories(w http.ResponseWriter, r *http.Request) {
	list, err := h.backend.Categories(r.Context())
	if err != nil {
		h.writeError(w, "listing categories", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Districts handles GET /api/v1/catalog/districts.
func (h *Handlers) Districts(w http.ResponseWriter, r *http.Request) {
	list, err := h.backend.Districts(r.Context())
	if err != nil {
		h.writeError(w, "listing districts", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type dbPinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc handles GET /api/v1/health.
// Pings DB and Redis; returns 200 if both ok, 503 otherwise.
func HealthHandlerFunc(db dbPinger, redis redisPinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status, overall := http.StatusOK, "ok"
		dbStatus, redisStatus := "ok", "ok"

		if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", "err", err)
			dbStatus = "error"
			status, overall = http.StatusServiceUnavailable, "degraded"
		}

		if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			redisStatus = "error"
			status, overall = http.StatusServiceUnavailable, "degraded"
		}

		writeJSON(w, status, map[string]string{
			"status": overall,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	}
}
