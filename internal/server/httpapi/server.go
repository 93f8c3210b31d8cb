// Package httpapi exposes the core file operations over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avoronov/storebox/internal/logging"
	"github.com/avoronov/storebox/internal/server/models"
	"github.com/avoronov/storebox/internal/server/repositories/files"
)

// FileCore is the file service surface consumed by the handlers.
// *services.FileService satisfies it.
type FileCore interface {
	Upload(ctx context.Context, principal models.Principal, data []byte, name string) (*models.File, error)
	List(ctx context.Context, principal models.Principal, opts files.ListOptions) ([]*models.EnrichedFile, error)
	Rename(ctx context.Context, principal models.Principal, fileID, baseName, extension string) (*models.File, error)
	UpdateSharing(ctx context.Context, principal models.Principal, fileID string, emails []string) (*models.File, error)
	Delete(ctx context.Context, principal models.Principal, fileID, bucketFileID string) error
	Usage(ctx context.Context, principal models.Principal) (*models.UsageReport, error)
}

// UserCore is the user service surface consumed by the handlers.
// *services.UserService satisfies it.
type UserCore interface {
	Register(ctx context.Context, fullName, email, accountID string) (*models.User, error)
	CurrentUser(ctx context.Context, principal models.Principal) (*models.User, error)
}

type Server struct {
	address       string
	logger        logging.Logger
	files         FileCore
	users         UserCore
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewServer(address string, logger logging.Logger, fileSvc FileCore, userSvc UserCore, secretKey string, tokenValidity time.Duration) *Server {
	return &Server{
		address:       address,
		logger:        logger.With("module", "http_server"),
		files:         fileSvc,
		users:         userSvc,
		jwtSecret:     []byte(secretKey),
		tokenValidity: tokenValidity,
	}
}

func (s *Server) routes() http.Handler {
	router := chi.NewRouter()

	router.Use(metricsMiddleware())

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Post("/api/auth/register", s.handleRegister)

	router.Group(func(r chi.Router) {
		r.Use(s.accessTokenMiddleware)

		r.Post("/api/files", s.handleUpload)
		r.Get("/api/files", s.handleList)
		r.Patch("/api/files/{id}/name", s.handleRename)
		r.Put("/api/files/{id}/users", s.handleUpdateSharing)
		r.Delete("/api/files/{id}", s.handleDelete)
		r.Get("/api/usage", s.handleUsage)
		r.Get("/api/users/me", s.handleCurrentUser)
	})

	return router
}

// Run serves the API until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
