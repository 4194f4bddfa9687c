package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"adt-service/internal/domain"
	"adt-service/internal/service"
	"adt-service/pkg/logger"
	"adt-service/pkg/utils"

	"adt-service/internal/infrastructure/metrics"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Error messages are part of the public contract, spelling included.
const (
	msgAlreadyExists = "advertisment already exists"
	msgNotFound      = "advertisment not found"
	msgInvalidID     = "invalid id parameter"
	msgInternal      = "internal server error"
)

var (
	createFields = []string{"id", "owner", "header", "description"}
	patchFields  = []string{"owner", "header", "description"}
)

type createResponse struct {
	ID int64 `json:"id"`
}

type advertisementResponse struct {
	Owner        string `json:"owner"`
	Header       string `json:"header"`
	Description  string `json:"description"`
	CreationTime int64  `json:"creation_time"`
}

type statusResponse struct {
	Status string `json:"status"`
}

var successResponse = statusResponse{Status: "success"}

type AdvertisementHandler struct {
	service service.AdvertisementService
	logger  *logger.Loggers
	metrics *metrics.HandlerMetrics
	tracer  trace.Tracer
}

func NewAdvertisementHandler(service service.AdvertisementService, logger *logger.Loggers, metrics *metrics.HandlerMetrics) *AdvertisementHandler {
	tracer := otel.Tracer("adt-service/handler")
	return &AdvertisementHandler{
		service: service,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// respondWithError maps service errors to the client contract. Not found is
// reported as 400, like every other client error of this API.
func (h *AdvertisementHandler) respondWithError(w http.ResponseWriter, span trace.Span, op string, err error) string {
	switch {
	case errors.Is(err, service.ErrAdvertisementNotFound):
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, msgNotFound)
		return "not_found"
	case errors.Is(err, service.ErrAdvertisementExists):
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, msgAlreadyExists)
		return "conflict"
	case errors.Is(err, service.ErrInvalidID):
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, msgInvalidID)
		return "invalid"
	case errors.Is(err, service.ErrInvalidInput):
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, err.Error())
		return "invalid"
	default:
		h.logger.ErrorLogger.Error("failed to "+op, utils.Err(err))
		span.RecordError(err)
		utils.RespondWithErrorJSON(w, http.StatusInternalServerError, msgInternal)
		return "error"
	}
}

func (h *AdvertisementHandler) CreateAdvertisement(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateAdvertisement")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer func() { h.metrics.Observe(http.MethodPost, "/adt/", status, startTime) }()

	var req domain.CreateAdvertisement
	if err := decodeFields(w, r, createFields, &req); err != nil {
		status = "invalid"
		span.RecordError(err)
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	span.SetAttributes(attribute.String("adt.owner", req.Owner))

	created, err := h.service.CreateAdvertisement(ctx, &req)
	if err != nil {
		status = h.respondWithError(w, span, "create advertisement", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, createResponse{ID: created.ID})
}

func (h *AdvertisementHandler) GetAdvertisementByID(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetAdvertisementByID")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer func() { h.metrics.Observe(http.MethodGet, "/adt/{id}", status, startTime) }()

	id, err := parseID(r)
	if err != nil {
		status = "invalid"
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, msgInvalidID)
		return
	}

	span.SetAttributes(attribute.Int64("adt.id", id))

	ad, err := h.service.GetAdvertisementByID(ctx, id)
	if err != nil {
		status = h.respondWithError(w, span, "get advertisement", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, advertisementResponse{
		Owner:        ad.Owner,
		Header:       ad.Header,
		Description:  ad.Description,
		CreationTime: ad.CreationTime.Unix(),
	})
}

func (h *AdvertisementHandler) UpdateAdvertisement(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateAdvertisement")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer func() { h.metrics.Observe(http.MethodPatch, "/adt/{id}", status, startTime) }()

	id, err := parseID(r)
	if err != nil {
		status = "invalid"
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, msgInvalidID)
		return
	}

	span.SetAttributes(attribute.Int64("adt.id", id))

	var patch domain.AdvertisementPatch
	if err := decodeFields(w, r, patchFields, &patch); err != nil {
		status = "invalid"
		span.RecordError(err)
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.UpdateAdvertisement(ctx, id, &patch); err != nil {
		status = h.respondWithError(w, span, "update advertisement", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, successResponse)
}

func (h *AdvertisementHandler) DeleteAdvertisement(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteAdvertisement")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer func() { h.metrics.Observe(http.MethodDelete, "/adt/{id}", status, startTime) }()

	id, err := parseID(r)
	if err != nil {
		status = "invalid"
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, msgInvalidID)
		return
	}

	span.SetAttributes(attribute.Int64("adt.id", id))

	if err := h.service.DeleteAdvertisement(ctx, id); err != nil {
		status = h.respondWithError(w, span, "delete advertisement", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, successResponse)
}
