// Package server exposes the engine over a JSON API plus a websocket
// feed of dirty-section signals. Handlers are thin: decode, one engine
// call, encode. Guard failures are 200s with ok=false; only transport
// and lookup problems use error status codes.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"sidegig/internal/game"
	"sidegig/internal/httpmw"
	"sidegig/internal/persistence"
)

type Options struct {
	Engine *game.Engine
	// Store and Slot enable the save endpoints; nil disables them.
	Store  *persistence.Store
	Slot   string
	Logger *log.Logger
}

type Server struct {
	engine *game.Engine
	store  *persistence.Store
	slot   string
	logger *log.Logger
	hub    *hub
}

func NewHandler(opts Options) (http.Handler, error) {
	if opts.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Slot == "" {
		opts.Slot = "main"
	}
	s := &Server{
		engine: opts.Engine,
		store:  opts.Store,
		slot:   opts.Slot,
		logger: opts.Logger,
		hub:    newHub(opts.Engine.Dirty, opts.Logger),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/log", s.handleLog)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("POST /api/day/end", s.handleEndDay)

	mux.HandleFunc("POST /api/actions/{id}/accept", s.handleAcceptAction)
	mux.HandleFunc("GET /api/actions/{id}/availability", s.handleActionAvailability)
	mux.HandleFunc("POST /api/actions/{id}/instances/{iid}/work", s.handleWorkAction)
	mux.HandleFunc("POST /api/actions/{id}/instances/{iid}/complete", s.handleCompleteAction)

	mux.HandleFunc("POST /api/assets/{id}/launch", s.handleLaunchAsset)
	mux.HandleFunc("POST /api/assets/{id}/instances/{iid}/maintain", s.handleFundAsset)
	mux.HandleFunc("POST /api/assets/{id}/instances/{iid}/quality/{action}", s.handleQualityAction)
	mux.HandleFunc("POST /api/assets/{id}/instances/{iid}/niche", s.handleAssignNiche)
	mux.HandleFunc("POST /api/assets/{id}/instances/{iid}/sell", s.handleSellAsset)

	mux.HandleFunc("POST /api/upgrades/{id}/purchase", s.handlePurchaseUpgrade)

	if s.store != nil {
		mux.HandleFunc("POST /api/save", s.handleSave)
		mux.HandleFunc("GET /api/saves", s.handleSlots)
	}
	mux.HandleFunc("GET /api/ws", s.hub.handleWS)

	return httpmw.Chain(mux,
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
		httpmw.WithAccessLog(opts.Logger),
	), nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "sidegig",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing useful left to do.
		_ = err
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// decodeJSON tolerates an empty body; several endpoints take optional
// parameters only.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}
