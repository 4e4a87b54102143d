package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"restore/internal/catalog"
	"restore/internal/imagestore"
	"restore/internal/model"
	"restore/internal/service"

	"github.com/rs/zerolog"
)

const (
	// PaginationHeader carries the listing metadata as JSON.
	PaginationHeader = "Pagination"

	maxUploadBytes = 10 << 20
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	limits  catalog.Limits
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, limits catalog.Limits, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		limits:  limits,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products. The body is the item array; paging
// metadata goes in the Pagination header.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := catalog.ParseParams(r.URL.Query(), h.limits)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, err.Error(), h.logger)
		return
	}

	page, err := h.service.List(r.Context(), params)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	meta, err := json.Marshal(page.Metadata)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	w.Header().Set(PaginationHeader, string(meta))
	writeJSON(w, http.StatusOK, page.Items)
}

// GetByID handles GET /api/products/{id}.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid product ID", h.logger)
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Filters handles GET /api/products/filters.
func (h *ProductHandler) Filters(w http.ResponseWriter, r *http.Request) {
	filters, err := h.service.Filters(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, filters)
}

// Create handles POST /api/products (multipart form with optional "file").
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, image, cleanup, err := h.parseProductForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, err.Error(), h.logger)
		return
	}
	defer cleanup()

	product, err := h.service.Create(r.Context(), input, image)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/products/%d", product.ID))
	writeJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/products (multipart form including "id").
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	input, image, cleanup, err := h.parseProductForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, err.Error(), h.logger)
		return
	}
	defer cleanup()

	product, err := h.service.Update(r.Context(), input, image)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid product ID", h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseProductForm reads product fields from a multipart or urlencoded form.
// Numeric fields that are present must parse.
func (h *ProductHandler) parseProductForm(r *http.Request) (model.ProductInput, *imagestore.Upload, func(), error) {
	noop := func() {}
	var input model.ProductInput

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return input, nil, noop, fmt.Errorf("invalid form: %w", err)
	}
	if r.Form == nil {
		if err := r.ParseForm(); err != nil {
			return input, nil, noop, fmt.Errorf("invalid form: %w", err)
		}
	}

	input.Name = strings.TrimSpace(r.FormValue("name"))
	input.Description = strings.TrimSpace(r.FormValue("description"))
	input.Type = strings.TrimSpace(r.FormValue("type"))
	input.Brand = strings.TrimSpace(r.FormValue("brand"))
	input.PictureURL = strings.TrimSpace(r.FormValue("pictureUrl"))

	var err error
	if input.ID, err = formInt64(r, "id"); err != nil {
		return input, nil, noop, err
	}
	if input.Price, err = formInt64(r, "price"); err != nil {
		return input, nil, noop, err
	}
	stock, err := formInt64(r, "quantityInStock")
	if err != nil {
		return input, nil, noop, err
	}
	input.QuantityInStock = int(stock)

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return input, nil, noop, nil
		}
		return input, nil, noop, fmt.Errorf("invalid file: %w", err)
	}

	return input, uploadFrom(file, header), func() { _ = file.Close() }, nil
}

func uploadFrom(file multipart.File, header *multipart.FileHeader) *imagestore.Upload {
	return &imagestore.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}

func formInt64(r *http.Request, name string) (int64, error) {
	v := strings.TrimSpace(r.FormValue(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return n, nil
}
