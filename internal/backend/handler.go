package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rpattn/adminkit/internal/domain"
	"github.com/rpattn/adminkit/internal/middleware"
	"github.com/rpattn/adminkit/internal/query"
	"github.com/rpattn/adminkit/internal/validation"
)

// PageSizeParam selects the page size of a list request.
const PageSizeParam = "page_size"

// Handler serves the resources of a Store.
type Handler struct {
	store       Store
	resources   map[string]Resource
	logger      *zap.Logger
	pageSize    int
	maxPageSize int
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithPageSize sets the default and maximum page sizes.
func WithPageSize(size, maxSize int) Option {
	return func(h *Handler) {
		if size > 0 {
			h.pageSize = size
		}
		if maxSize > 0 {
			h.maxPageSize = maxSize
		}
	}
}

// NewHandler creates the router for resources backed by store.
func NewHandler(store Store, resources []Resource, opts ...Option) http.Handler {
	h := &Handler{
		store:       store,
		resources:   make(map[string]Resource, len(resources)),
		logger:      zap.NewNop(),
		pageSize:    20,
		maxPageSize: 1000,
	}
	for _, opt := range opts {
		opt(h)
	}
	for _, r := range resources {
		h.resources[r.Name] = r
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging(h.logger))
	router.Get("/{resource}/", h.handleList)
	router.Post("/{resource}/", h.handleCreate)
	router.Get("/{resource}/{id}/", h.handleDetail)
	router.Patch("/{resource}/{id}/", h.handleUpdate)
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not found.")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", r.Method))
	})
	return router
}

type listResponse struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	PageSize int             `json:"page_size"`
	Results  []domain.Record `json:"results"`
}

func (h *Handler) resource(w http.ResponseWriter, r *http.Request) (Resource, bool) {
	res, ok := h.resources[chi.URLParam(r, "resource")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Not found.")
	}
	return res, ok
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}

	params := r.URL.Query()
	page, err := positiveParam(params, query.PageParam, 1)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Invalid page.")
		return
	}
	pageSize, err := positiveParam(params, PageSizeParam, h.pageSize)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid page size.")
		return
	}
	pageSize = min(pageSize, h.maxPageSize)

	q := Query{
		Lookups: ParseLookups(params, query.PageParam, PageSizeParam),
		Limit:   pageSize,
		Offset:  (page - 1) * pageSize,
	}
	records, total, err := h.store.List(r.Context(), res.Name, q)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	if page > 1 && len(records) == 0 {
		writeDetail(w, http.StatusNotFound, "Invalid page.")
		return
	}
	if records == nil {
		records = []domain.Record{}
	}

	resp := listResponse{Count: total, PageSize: pageSize, Results: records}
	if page*pageSize < total {
		next := pageURL(r, page+1)
		resp.Next = &next
	}
	if page > 1 {
		prev := pageURL(r, page-1)
		resp.Previous = &prev
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	record, err := h.store.Get(r.Context(), res.Name, chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	record, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	if errs := res.ValidateCreate(record); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	created, err := h.store.Create(r.Context(), res.Name, record)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resource(w, r)
	if !ok {
		return
	}
	patch, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	if errs := res.ValidateUpdate(patch); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	updated, err := h.store.Update(r.Context(), res.Name, chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, ErrConflict):
		writeJSON(w, http.StatusBadRequest, validation.Errors{
			"id": {chi.URLParam(r, "resource") + " with this id already exists."},
		})
	case errors.Is(err, ErrUnsupportedLookup):
		writeDetail(w, http.StatusBadRequest, err.Error())
	default:
		requestID, _ := middleware.RequestIDFromContext(r.Context())
		h.logger.Error("store failure", zap.Error(err), zap.String("requestId", requestID))
		writeDetail(w, http.StatusInternalServerError, "Internal server error.")
	}
}

func decodeRecord(w http.ResponseWriter, r *http.Request) (domain.Record, bool) {
	defer r.Body.Close()
	var record domain.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil || record == nil {
		writeJSON(w, http.StatusBadRequest, validation.Errors{"non_field_errors": {"Invalid data. Expected a dictionary."}})
		return nil, false
	}
	return record, true
}

func positiveParam(params url.Values, key string, fallback int) (int, error) {
	raw := params.Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return n, nil
}

func pageURL(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path}
	params := r.URL.Query()
	params.Set(query.PageParam, strconv.Itoa(page))
	u.RawQuery = params.Encode()
	return u.String()
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
