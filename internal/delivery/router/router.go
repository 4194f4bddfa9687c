package router

import (
	"net/http"
	"time"

	"adt-service/internal/delivery/handler"
	"adt-service/internal/infrastructure/metrics"
	"adt-service/internal/service"
	"adt-service/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func SetupMiddleware(r *chi.Mux, loggers *logger.Loggers) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(loggers))
	r.Use(middleware.Recoverer)
}

func SetupAdvertisementRoutes(adtRouter *chi.Mux, adtService service.AdvertisementService, loggers *logger.Loggers, metrics *metrics.HandlerMetrics) {
	adtHandler := handler.NewAdvertisementHandler(adtService, loggers, metrics)

	adtRouter.Post("/adt/", adtHandler.CreateAdvertisement)
	adtRouter.Get("/adt/{id:[0-9]+}", adtHandler.GetAdvertisementByID)
	adtRouter.Patch("/adt/{id:[0-9]+}", adtHandler.UpdateAdvertisement)
	adtRouter.Delete("/adt/{id:[0-9]+}", adtHandler.DeleteAdvertisement)
}

func SetupSystemRoutes(r *chi.Mux, store handler.Pinger, loggers *logger.Loggers, metrics *metrics.HandlerMetrics) {
	healthHandler := handler.NewHealthHandler(store, loggers)

	r.Get("/healthz", healthHandler.CheckHealth)
	r.Handle("/metrics", metrics.HTTPHandler())
}

func requestLogger(loggers *logger.Loggers) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				loggers.InfoLogger.Info("request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
