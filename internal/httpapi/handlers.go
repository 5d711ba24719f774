package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cosmossdk.io/log"
	errorsmod "cosmossdk.io/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"spellblock/internal/feed"
	"spellblock/internal/game"
	"spellblock/internal/state"
	"spellblock/internal/types"
)

const keepAliveInterval = 25 * time.Second

// Source exposes the last committed state. Implementations must never mutate
// a returned state.
type Source interface {
	Committed() *state.State
}

type Handler struct {
	src    Source
	feed   *feed.Broadcaster
	logger log.Logger
}

func NewHandler(src Source, hub *feed.Broadcaster, logger log.Logger) *Handler {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Handler{src: src, feed: hub, logger: logger.With("module", "spellblock/http")}
}

// NewRouter mounts the read API with the usual middleware stack.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Get("/healthz", h.health)
		r.Get("/treasury", h.treasury)
		r.Route("/rounds", func(r chi.Router) {
			r.Get("/current", h.currentRound)
			r.Get("/{id}", h.round)
			r.Get("/{id}/commitments/{player}", h.commitment)
		})
		r.Get("/players/{player}/streak", h.streak)
	})
	r.Get("/events", h.events)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	st := h.src.Committed()
	writeJSON(w, http.StatusOK, map[string]any{"height": st.Height, "blockTime": st.BlockTime})
}

func (h *Handler) currentRound(w http.ResponseWriter, _ *http.Request) {
	st := h.src.Committed()
	v, err := game.QueryRound(st, 0, st.BlockTime)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) round(w http.ResponseWriter, r *http.Request) {
	id, err := roundIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	st := h.src.Committed()
	v, err := game.QueryRound(st, id, st.BlockTime)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) commitment(w http.ResponseWriter, r *http.Request) {
	id, err := roundIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	player, err := types.ParseAccount(chi.URLParam(r, "player"))
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := game.QueryCommitment(h.src.Committed(), id, player)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) streak(w http.ResponseWriter, r *http.Request) {
	player, err := types.ParseAccount(chi.URLParam(r, "player"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game.QueryStreak(h.src.Committed(), player))
}

func (h *Handler) treasury(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, game.QueryTreasury(h.src.Committed()))
}

// events streams committed chain events as server-sent events, one JSON
// object per event.
func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		http.NotFound(w, r)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := h.feed.Subscribe()
	defer h.feed.Unsubscribe(sub)

	_, _ = w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			b, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error("encode feed event", "type", ev.Type, "err", err)
				continue
			}
			writeSSE(w, ev.Type, string(b))
			flusher.Flush()
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		}
	}
}

func roundIDParam(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, types.ErrInvalidRequest.Wrapf("invalid round id %q", raw)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	codespace, code, msg := errorsmod.ABCIInfo(err, false)
	writeJSON(w, statusFor(err), map[string]any{
		"error":     msg,
		"code":      code,
		"codespace": codespace,
		"class":     types.ClassOf(err),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrRoundNotFound), errors.Is(err, types.ErrNotCommitted):
		return http.StatusNotFound
	case types.ClassOf(err) == types.ClassValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeSSE(w http.ResponseWriter, event string, data string) {
	_, _ = w.Write([]byte("event: " + event + "\n"))
	for _, line := range strings.Split(data, "\n") {
		_, _ = w.Write([]byte("data: " + line + "\n"))
	}
	_, _ = w.Write([]byte("\n"))
}

func requestLogger(logger log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
