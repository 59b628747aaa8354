package dataplatform

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/cookbook-go/httpjson"
)

// Handlers exposes /api/data-platform.
type Handlers struct {
	service *Service
}

// NewHandlers creates the data-platform handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the public data-platform endpoints.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/aggregate", h.HandleAggregate())
	r.Get("/datasets", h.HandleDatasets())
	r.Get("/datasets/{name}/keys", h.HandleKeys())
}

// HandleAggregate godoc
// @Summary Aggregate a dataset
// @Description Counts the values of groupBy over the documents matching every filter.
// @Description Buckets below threshold are dropped; results are ordered by count then value.
// @Tags DataPlatform
// @Accept json
// @Produce json
// @Param query body dataplatform.AggregateRequest true "Aggregate query"
// @Success 200 {object} dataplatform.AggregateResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Router /api/data-platform/aggregate [post]
func (h *Handlers) HandleAggregate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AggregateRequest
		if err := httpjson.Decode(w, r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		res, err := h.service.Aggregate(r.Context(), req)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, res)
	}
}

// HandleDatasets godoc
// @Summary List datasets
// @Tags DataPlatform
// @Produce json
// @Success 200 {array} dataplatform.Dataset
// @Router /api/data-platform/datasets [get]
func (h *Handlers) HandleDatasets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := h.service.Datasets(r.Context())
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	}
}

// HandleKeys godoc
// @Summary List the keys of a dataset
// @Tags DataPlatform
// @Produce json
// @Param name path string true "Dataset name"
// @Success 200 {array} string
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/data-platform/datasets/{name}/keys [get]
func (h *Handlers) HandleKeys() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keys, err := h.service.Keys(r.Context(), chi.URLParam(r, "name"))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, keys)
	}
}
