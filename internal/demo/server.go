package demo

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/selfservice0/DynamicShop/internal/common"
	"github.com/selfservice0/DynamicShop/internal/service"
)

// Default query limits, matching the shop plugin.
const (
	defaultRecentLimit   = 100
	defaultFilteredLimit = 200
	defaultBoardLimit    = 10
	defaultHistoryHours  = 24
	defaultDistribution  = 24
)

// Handler serves the shop HTTP API from a DataSource.
type Handler struct {
	source        service.DataSource
	logger        *slog.Logger
	statsAsString bool
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithStatsAsString makes /api/stats return its object encoded as a JSON
// string, as some plugin versions do.
func WithStatsAsString() HandlerOption {
	return func(h *Handler) {
		h.statsAsString = true
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler creates an API handler for source.
func NewHandler(source service.DataSource, opts ...HandlerOption) *Handler {
	h := &Handler{
		source: source,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("component", "demo_api")
	return h
}

// Routes returns the API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/recent", h.getRecent)
		r.Get("/player/{name}", h.getPlayer)
		r.Get("/item/{item}", h.getItem)
		r.Get("/stats", h.getStats)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/economy", h.getEconomy)
			r.Get("/price-history/{item}", h.getPriceHistory)
			r.Get("/leaderboard", h.getLeaderboard)
			r.Get("/trends", h.getTrends)
			r.Get("/time-distribution", h.getTimeDistribution)
		})

		r.Route("/shop", func(r chi.Router) {
			r.Get("/items", h.getShopItems)
			r.Get("/item/{item}", h.getShopItem)
			r.Get("/categories", h.getShopCategories)
		})
	})

	return r
}

func (h *Handler) getRecent(w http.ResponseWriter, r *http.Request) {
	txs, err := h.source.RecentTransactions(r.Context(), parseLimit(r.URL.Query().Get("limit"), defaultRecentLimit))
	h.respond(w, r, txs, err)
}

func (h *Handler) getPlayer(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), defaultFilteredLimit)
	txs, err := h.source.PlayerTransactions(r.Context(), chi.URLParam(r, "name"), limit)
	h.respond(w, r, txs, err)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), defaultFilteredLimit)
	txs, err := h.source.ItemTransactions(r.Context(), chi.URLParam(r, "item"), limit)
	h.respond(w, r, txs, err)
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.source.Stats(r.Context())
	if err != nil || !h.statsAsString {
		h.respond(w, r, stats, err)
		return
	}

	encoded, err := json.Marshal(stats)
	h.respond(w, r, string(encoded), err)
}

func (h *Handler) getEconomy(w http.ResponseWriter, r *http.Request) {
	health, err := h.source.EconomyHealth(r.Context())
	h.respond(w, r, health, err)
}

func (h *Handler) getPriceHistory(w http.ResponseWriter, r *http.Request) {
	hours := parseLimit(r.URL.Query().Get("hours"), defaultHistoryHours)
	points, err := h.source.PriceHistory(r.Context(), chi.URLParam(r, "item"), hours)
	h.respond(w, r, points, err)
}

func (h *Handler) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("type")
	if kind == "" {
		kind = "earners"
	}
	entries, err := h.source.Leaderboard(r.Context(), kind, parseLimit(r.URL.Query().Get("limit"), defaultBoardLimit))
	h.respond(w, r, entries, err)
}

func (h *Handler) getTrends(w http.ResponseWriter, r *http.Request) {
	trends, err := h.source.Trends(r.Context(), parseLimit(r.URL.Query().Get("limit"), defaultBoardLimit))
	h.respond(w, r, trends, err)
}

func (h *Handler) getTimeDistribution(w http.ResponseWriter, r *http.Request) {
	slots, err := h.source.TimeDistribution(r.Context(), parseLimit(r.URL.Query().Get("hours"), defaultDistribution))
	h.respond(w, r, slots, err)
}

func (h *Handler) getShopItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.source.ShopItems(r.Context(), service.CatalogFilter{
		Query:    r.URL.Query().Get("query"),
		Category: r.URL.Query().Get("category"),
	})
	h.respond(w, r, items, err)
}

func (h *Handler) getShopItem(w http.ResponseWriter, r *http.Request) {
	detail, err := h.source.ItemDetail(r.Context(), chi.URLParam(r, "item"))
	h.respond(w, r, detail, err)
}

func (h *Handler) getShopCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.source.ShopCategories(r.Context())
	h.respond(w, r, categories, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err == nil {
		render.JSON(w, r, v)
		return
	}

	status := http.StatusInternalServerError
	message := "internal error"
	if errors.Is(err, common.ErrNotFound) {
		status = http.StatusNotFound
		message = "Item not found"
	}

	h.logger.ErrorContext(r.Context(), "request failed",
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err)

	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": message})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		h.logger.DebugContext(r.Context(), "handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

// parseLimit reads a positive integer query value capped at service.MaxLimit.
// Missing or malformed values fall back to def.
func parseLimit(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return min(n, service.MaxLimit)
}
