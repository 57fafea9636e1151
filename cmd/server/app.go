package main

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/go-devis/httpx"
	"github.com/diewo77/go-devis/internal/handlers"
	"github.com/diewo77/go-devis/internal/pdf"
	"github.com/diewo77/go-devis/internal/services"
	"github.com/diewo77/go-devis/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	router chi.Router
	db     *gorm.DB
	log    logrus.FieldLogger
}

// NewApp builds the services on db and mounts the API. opts are applied to
// every service after the logger, so they may carry a locker or a publisher.
func NewApp(db *gorm.DB, log logrus.FieldLogger, opts ...services.Option) *App {
	st := store.New(db)
	opts = append([]services.Option{services.WithLogger(log)}, opts...)

	quotes := services.NewQuoteService(st, opts...)
	invoices := services.NewInvoiceService(st, opts...)
	conversion := services.NewConversionService(st, invoices, opts...)
	catalog := services.NewCatalogService(st, opts...)
	stats := services.NewStatsService(st, opts...)
	renderer := pdf.New()

	app := &App{router: chi.NewRouter(), db: db, log: log}
	r := app.router
	r.Use(requestID)
	r.Use(accessLog(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", app.health)
	r.Route("/api", func(r chi.Router) {
		r.Route("/quotes", handlers.NewQuoteHandler(quotes, conversion, catalog, renderer, log).Routes)
		r.Route("/invoices", handlers.NewInvoiceHandler(invoices, catalog, renderer, log).Routes)
		r.Route("/products", handlers.NewProductHandler(catalog, log).Routes)
		r.Route("/clients", handlers.NewClientHandler(catalog, log).Routes)
		r.Route("/company", handlers.NewCompanyHandler(catalog, log).Routes)
		r.Route("/stats", handlers.NewStatsHandler(stats, log).Routes)
	})
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		a.log.WithError(err).Warn("health check failed")
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type requestIDKey struct{}

const requestIDHeader = "X-Request-ID"

// requestID propagates the caller's X-Request-ID or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// accessLog logs one line per request.
func accessLog(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			id, _ := r.Context().Value(requestIDKey{}).(string)
			entry := log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": id,
			})
			if ww.Status() >= http.StatusInternalServerError {
				entry.Warn("request")
				return
			}
			entry.Info("request")
		})
	}
}
