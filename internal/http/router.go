package httpapi

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"savora-admin-service/internal/config"
	"savora-admin-service/internal/docstore"
	"savora-admin-service/internal/http/handlers"
	"savora-admin-service/internal/middleware"
	"savora-admin-service/internal/queue"
	"savora-admin-service/internal/reporting"
	"savora-admin-service/internal/storage"
	"savora-admin-service/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func NewRouter(
	store *docstore.Store,
	logger *zap.Logger,
	cfg config.Config,
	queueClient *queue.Client,
	reports *reporting.Controller,
	objects *storage.ObjectStore,
	wsServer *ws.Server,
) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(middleware.RequestID())

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"Cache-Control",
				"Pragma",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	h := &handlers.Handler{
		Store:   store,
		Logger:  logger,
		Config:  cfg,
		Queue:   queueClient,
		Reports: reports,
		Objects: objects,
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/api/auth/login", h.Login)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.JWTSecret))

		r.Get("/restaurants", h.RestaurantsList)
		r.Post("/restaurants", h.RestaurantCreate)
		r.Get("/restaurants/{id}", h.RestaurantGet)
		r.Put("/restaurants/{id}", h.RestaurantUpdate)
		r.Delete("/restaurants/{id}", h.RestaurantDelete)
		r.Get("/restaurants/{id}/tables", h.TablesList)
		r.Post("/restaurants/{id}/tables", h.TableCreate)
		r.Put("/restaurants/{id}/tables/{tableId}", h.TableUpdate)
		r.Delete("/restaurants/{id}/tables/{tableId}", h.TableDelete)
		r.Get("/restaurants/{id}/tables/{tableId}/options", h.TableOptionsList)
		r.Post("/restaurants/{id}/tables/{tableId}/options", h.TableOptionCreate)
		r.Delete("/restaurants/{id}/tables/{tableId}/options/{optionId}", h.TableOptionDelete)

		r.Get("/menu/categories", h.MenuCategoriesList)
		r.Post("/menu/categories", h.MenuCategoryCreate)
		r.Put("/menu/categories/{categoryId}", h.MenuCategoryUpdate)
		r.Delete("/menu/categories/{categoryId}", h.MenuCategoryDelete)
		r.Get("/menu/categories/{categoryId}/products", h.ProductsList)
		r.Post("/menu/categories/{categoryId}/products", h.ProductCreate)
		r.Put("/menu/categories/{categoryId}/products/{productId}", h.ProductUpdate)
		r.Delete("/menu/categories/{categoryId}/products/{productId}", h.ProductDelete)

		r.Get("/appointments", h.AppointmentsList)
		r.Get("/appointments/{id}", h.AppointmentGet)
		r.Put("/appointments/{id}/status", h.AppointmentUpdateStatus)
		r.Delete("/appointments/{id}", h.AppointmentDelete)

		r.Get("/advertisements", h.AdvertisementsList)
		r.Post("/advertisements", h.AdvertisementCreate)
		r.Put("/advertisements/{id}", h.AdvertisementUpdate)
		r.Delete("/advertisements/{id}", h.AdvertisementDelete)

		r.Get("/users", h.UsersList)
		r.Get("/users/{id}", h.UserGet)
		r.Delete("/users/{id}", h.UserDelete)

		r.Post("/uploads/image", h.UploadImage)

		r.Get("/reports/aggregates", h.ReportsAggregates)
		r.Get("/reports/summary", h.ReportsSummary)
		r.Put("/reports/filter/restaurant", h.ReportsSetRestaurantFilter)
		r.Put("/reports/filter/date-range", h.ReportsStageDateRange)
		r.Post("/reports/filter/date-range/commit", h.ReportsCommitDateRange)
		r.Post("/reports/favorites/refresh", h.ReportsRefreshFavorites)
		r.Get("/reports/export.pdf", h.ReportsExportPDF)
	})

	if wsServer != nil {
		r.Get("/ws/admin/reports", wsServer.AdminReportsWS)
	}

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
