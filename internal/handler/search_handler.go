package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"restore/internal/model"
	"restore/internal/search"
	"restore/internal/service"

	"github.com/rs/zerolog"
)

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// SearchHandler serves semantic search and the admin indexing endpoints.
type SearchHandler struct {
	search   search.Service
	products service.ProductService
	logger   zerolog.Logger
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(searcher search.Service, products service.ProductService, logger zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		search:   searcher,
		products: products,
		logger:   logger.With().Str("handler", "search").Logger(),
	}
}

// Search handles GET /api/products/search?query=&topK=.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	topK := search.DefaultTopK
	if raw := strings.TrimSpace(r.URL.Query().Get("topK")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid topK", h.logger)
			return
		}
		topK = n
	}

	results, err := h.search.Search(r.Context(), query, topK)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// IndexAll handles POST /api/products/index.
func (h *SearchHandler) IndexAll(w http.ResponseWriter, r *http.Request) {
	count, err := h.search.ReindexAll(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("Successfully indexed %d products", count)})
}

// IndexOne handles POST /api/products/index/{id}. Unknown products are 404.
func (h *SearchHandler) IndexOne(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid product ID", h.logger)
		return
	}

	if _, err := h.products.GetByID(r.Context(), id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := h.search.IndexProduct(r.Context(), id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("Successfully indexed product %d", id)})
}
