package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oarkflow/json"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/logger"
)

type SearchExecutor interface {
	Execute(ctx context.Context, query string, limit int, highlight bool) (*executor.SearchResult, error)
	Kind() string
}

// DocumentLoader reads a stored document by id.
type DocumentLoader interface {
	LoadDoc(id int) (index.Document, error)
}

type Handler struct {
	executor SearchExecutor
	docs     DocumentLoader
	cache    *cache.QueryCache
	cfg      config.SearchConfig
	logger   *slog.Logger
}

// New returns the HTTP handlers of the search service. queryCache may be nil.
func New(exec SearchExecutor, docs DocumentLoader, queryCache *cache.QueryCache, cfg config.SearchConfig) *Handler {
	return &Handler{
		executor: exec,
		docs:     docs,
		cache:    queryCache,
		cfg:      cfg,
		logger:   slog.Default().With("component", "search-handler"),
	}
}

// Routes mounts the API on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/search", h.Search)
	r.Get("/documents/{id}", h.Document)
	r.Get("/cache/stats", h.CacheStats)
	r.Post("/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")

	limit := h.cfg.DefaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	if h.cfg.MaxResults > 0 && limit > h.cfg.MaxResults {
		limit = h.cfg.MaxResults
	}

	highlight := h.cfg.HighlightByDefault
	if hl := r.URL.Query().Get("highlight"); hl != "" {
		parsed, err := strconv.ParseBool(hl)
		if err != nil {
			h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "highlight must be a boolean"))
			return
		}
		highlight = parsed
	}

	// empty and punctuation-only queries match nothing
	if len(tokenizer.Tokenize(query)) == 0 {
		h.writeJSON(w, http.StatusOK, &executor.SearchResult{
			Query:   query,
			Results: []ranker.ScoredDoc{},
		})
		return
	}

	var result *executor.SearchResult
	var err error
	cacheHit := false
	compute := func() (*executor.SearchResult, error) {
		return h.executor.Execute(ctx, query, limit, highlight)
	}
	if h.cache != nil {
		req := cache.Request{Query: query, Limit: limit, Highlight: highlight, Kind: h.executor.Kind()}
		result, cacheHit, err = h.cache.GetOrCompute(ctx, req, compute)
	} else {
		result, err = compute()
	}
	if err != nil {
		log.Error("search execution failed", "query", query, "error", err)
		h.writeError(w, err)
		return
	}

	log.Info("search completed",
		"query", query,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 0 {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "document id must be a non-negative integer"))
		return
	}
	doc, err := h.docs.LoadDoc(id)
	if err != nil {
		logger.FromContext(r.Context()).Warn("document lookup failed", "id", id, "error", err)
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusServiceUnavailable, "caching is disabled"))
		return
	}

	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// writeError answers with the status mapped from err. Only AppError messages
// reach the client; other errors are reported by their status text.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	message := http.StatusText(status)
	if appErr, ok := err.(*apperrors.AppError); ok {
		message = appErr.Message
	}
	h.writeJSON(w, status, map[string]string{"error": message})
}
