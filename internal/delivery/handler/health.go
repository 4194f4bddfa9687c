package handler

import (
	"context"
	"net/http"
	"time"

	"adt-service/pkg/logger"
	"adt-service/pkg/utils"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store  Pinger
	logger *logger.Loggers
}

func NewHealthHandler(store Pinger, logger *logger.Loggers) *HealthHandler {
	return &HealthHandler{store: store, logger: logger}
}

func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.ErrorLogger.Error("health check failed", utils.Err(err))
		utils.RespondWithErrorJSON(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}
