// Package handlers provides the HTTP API: participant game endpoints, admin
// endpoints and live update streams.
package handlers

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alienxp03/warrant/internal/core"
	"github.com/alienxp03/warrant/internal/engine"
	"github.com/alienxp03/warrant/internal/export"
	"github.com/alienxp03/warrant/internal/game"
	"github.com/alienxp03/warrant/internal/notify"
	"github.com/alienxp03/warrant/internal/roster"
	"github.com/alienxp03/warrant/internal/scenario"
)

// maxBodyBytes bounds request bodies; rosters and catalogs are the largest.
const maxBodyBytes = 1 << 20

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	engine     *engine.Engine
	bus        *notify.Bus
	adminToken string
	keepAlive  time.Duration
}

// New creates a new Handler. An empty adminToken leaves admin routes open.
func New(eng *engine.Engine, bus *notify.Bus, adminToken string) *Handler {
	return &Handler{
		engine:     eng,
		bus:        bus,
		adminToken: adminToken,
		keepAlive:  25 * time.Second,
	}
}

// Routes returns the router serving every endpoint.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		h.json(w, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/participants/{key}", func(r chi.Router) {
			r.Get("/", h.handleNavigation)
			r.Post("/login", h.handleLogin)
			r.Post("/approve", h.handleApprove)
			r.Get("/stream", h.handleParticipantStream)
		})

		r.Route("/slots/{key}", func(r chi.Router) {
			r.Get("/", h.handleSlotView)
			r.Post("/moves", h.handleMove)
			r.Post("/time", h.handleRecordTime)
			r.Get("/stream", h.handleSlotStream)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireAdmin)

			r.Get("/scenarios", h.handleListScenarios)
			r.Post("/scenarios", h.handleImportScenarios)

			r.Get("/sessions", h.handleListSessions)
			r.Post("/sessions", h.handleCreateSession)
			r.Route("/sessions/{name}", func(r chi.Router) {
				r.Get("/", h.handleGetSession)
				r.Post("/generate", h.handleGenerateGames)
				r.Post("/shuffle", h.handleShuffle)
				r.Post("/games", h.handleAddGame)
				r.Post("/games/check", h.handleCheckAddGame)
				r.Post("/announcements", h.handleAnnounce)
				r.Get("/export/{format}", h.handleExport)
			})

			r.Post("/slots/{key}/messages", h.handleSendMessage)

			r.Get("/reports", h.handleListReports)
			r.Post("/reports/{id}/resolve", h.handleResolveReport)
		})
	})

	return r
}

// requestLogger logs each request with slog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.adminToken != "" {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(h.adminToken)) != 1 {
				h.jsonError(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Participant endpoints

func (h *Handler) handleNavigation(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.Navigation(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.json(w, view)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	p, err := h.engine.MarkAssigned(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.json(w, p)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	p, err := h.engine.MarkApproved(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.json(w, p)
}

func (h *Handler) handleSlotView(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.SlotView(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.json(w, view)
}

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.jsonError(w, "failed to read request", http.StatusBadRequest)
		return
	}
	req, err := game.Decode(body)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	g, err := h.engine.ApplyMove(r.Context(), chi.URLParam(r, "key"), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.json(w, g)
}

func (h *Handler) handleRecordTime(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seconds float64 `json:"seconds"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.engine.RecordTime(r.Context(), chi.URLParam(r, "key"), req.Seconds); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Admin endpoints

func (h *Handler) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	list, err := h.engine.ListScenarios(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.json(w, list)
}

// handleImportScenarios accepts a YAML catalog document.
func (h *Handler) handleImportScenarios(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.jsonError(w, "failed to read request", http.StatusBadRequest)
		return
	}
	catalog, err := scenario.Parse(body)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.engine.ImportScenarios(r.Context(), catalog.Scenarios)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := h.engine.ListSessions(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.json(w, list)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string    `json:"name"`
		Case      core.Case `json:"case"`
		Start     time.Time `json:"start"`
		NumUsers  int       `json:"num_users"`
		NumGames  int       `json:"num_games"`
		Scenarios []string  `json:"scenarios"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.engine.CreateSession(r.Context(), engine.SessionConfig{
		Name:      req.Name,
		Case:      req.Case,
		Start:     req.Start,
		NumUsers:  req.NumUsers,
		NumGames:  req.NumGames,
		Scenarios: req.Scenarios,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sess)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	sess, err := h.engine.GetSession(r.Context(), name)
	if err != nil {
		h.fail(w, err)
		return
	}
	people, err := h.engine.ListParticipants(r.Context(), name)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.json(w, map[string]any{"session": sess, "participants": people})
}

// handleGenerateGames takes the roster as a CSV body (first column is the
// code name) or as JSON {"roster": [...]}. The response is the credentials
// CSV when the client accepts text/csv, JSON otherwise.
func (h *Handler) handleGenerateGames(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.jsonError(w, "failed to read request", http.StatusBadRequest)
		return
	}

	var names []string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
		names, err = roster.ReadNames(bytes.NewReader(body))
		if err != nil {
			h.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		var req struct {
			Roster []string `json:"roster"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		names = req.Roster
	}

	people, err := h.engine.GenerateGames(r.Context(), chi.URLParam(r, "name"), names)
	if err != nil {
		h.fail(w, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/csv") {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s-credentials.csv\"", chi.URLParam(r, "name")))
		if err := roster.WriteCredentials(w, people); err != nil {
			slog.Error("Failed to write credentials", "error", err)
		}
		return
	}
	h.json(w, people)
}

func (h *Handler) handleShuffle(w http.ResponseWriter, r *http.Request) {
	games, err := h.engine.Shuffle(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.json(w, games)
}

type addGameBody struct {
	Scenario    string `json:"scenario"`
	AdvocateKey string `json:"advocate"`
	CriticKey   string `json:"critic"`
}

func (b addGameBody) request() engine.AddGameRequest {
	return engine.AddGameRequest{Scenario: b.Scenario, AdvocateKey: b.AdvocateKey, CriticKey: b.CriticKey}
}

func (h *Handler) handleCheckAddGame(w http.ResponseWriter, r *http.Request) {
	var req addGameBody
	if !h.decode(w, r, &req) {
		return
	}
	warnings, err := h.engine.CheckAddGame(r.Context(), chi.URLParam(r, "name"), req.request())
	if err != nil {
		h.fail(w, err)
		return
	}
	if warnings == nil {
		warnings = []string{}
	}
	h.json(w, map[string][]string{"warnings": warnings})
}

func (h *Handler) handleAddGame(w http.ResponseWriter, r *http.Request) {
	var req addGameBody
	if !h.decode(w, r, &req) {
		return
	}
	g, err := h.engine.AddGame(r.Context(), chi.URLParam(r, "name"), req.request())
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(g)
}

type messageBody struct {
	Text string `json:"text"`
}

func (h *Handler) handleAnnounce(w http.ResponseWriter, r *http.Request) {
	var req messageBody
	if !h.decode(w, r, &req) {
		return
	}
	msg, err := h.engine.Announce(r.Context(), chi.URLParam(r, "name"), req.Text)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.json(w, msg)
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req messageBody
	if !h.decode(w, r, &req) {
		return
	}
	msg, err := h.engine.SendMessage(r.Context(), chi.URLParam(r, "key"), req.Text)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.json(w, msg)
}

func (h *Handler) handleListReports(w http.ResponseWriter, r *http.Request) {
	open := r.URL.Query().Get("open") == "true"
	reports, err := h.engine.ListReports(r.Context(), open)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.json(w, reports)
}

func (h *Handler) handleResolveReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Note     string `json:"note"`
		Returned string `json:"returned"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	turn, ok := core.ParseTurn(req.Returned)
	if !ok {
		h.fail(w, core.Invalid("returned", core.CodeUnknown, "returned must be Critic, Advocate or Completed"))
		return
	}
	report, err := h.engine.ResolveReport(r.Context(), chi.URLParam(r, "id"), req.Note, turn)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.json(w, report)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	format := chi.URLParam(r, "format")

	exporter, err := export.GetExporter(export.Format(format))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	bundle, err := h.engine.BuildBundle(r.Context(), name)
	if err != nil {
		h.fail(w, err)
		return
	}

	filename := export.GenerateFilename(bundle.Session, exporter.FileExtension())

	switch export.Format(format) {
	case export.FormatPDF:
		w.Header().Set("Content-Type", "application/pdf")
	case export.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	case export.FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
	default:
		w.Header().Set("Content-Type", "text/markdown")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	if err := exporter.Export(bundle, w); err != nil {
		slog.Error("Export failed", "session", name, "format", format, "error", err)
		http.Error(w, "Export failed", http.StatusInternalServerError)
	}
}

// Helper methods

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// fail maps engine errors onto HTTP responses.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": ve.Message, "field": ve.Field, "code": ve.Code})
	case errors.Is(err, core.ErrNotFound):
		h.jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, core.ErrNotYourTurn), errors.Is(err, core.ErrMoveNotAllowed), errors.Is(err, core.ErrProtocol):
		h.jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, core.ErrSelfPairing):
		h.jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, core.ErrInfeasiblePairing), errors.Is(err, core.ErrScenariosExhausted):
		h.jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		slog.Error("Request failed", "error", err)
		h.jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) json(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
