// Package server is the composition root: it opens the database, wires
// repositories into services into handlers, and owns the route table
// and server lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/wabain/codekeeper/internal/auth"
	"github.com/wabain/codekeeper/internal/handler"
	"github.com/wabain/codekeeper/internal/middleware"
	"github.com/wabain/codekeeper/internal/render"
	"github.com/wabain/codekeeper/internal/repository/gormdb"
	"github.com/wabain/codekeeper/internal/service"
)

// Config is the slice of application config the server needs.
type Config struct {
	Port        int
	TemplateDir string
	StaticDir   string
	DBPath      string
	JWTSecret   string
}

// Server owns the router and the database handle; the handle is closed
// on shutdown so the WAL is flushed and the file lock released.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *gormdb.DB
}

// New opens the database, runs the schema migration, and assembles the
// full dependency chain. Handlers never touch the database directly
// and services never touch HTTP.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := gormdb.Open(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	renderer, err := render.New(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("configuring sessions: %w", err)
	}
	passwords := auth.NewPasswordService()

	snippetRepo := gormdb.NewSnippetRepo(s.db)
	personRepo := gormdb.NewPersonRepo(s.db)
	tagRepo := gormdb.NewTagRepo(s.db)
	languageRepo := gormdb.NewLanguageRepo(s.db)
	userRepo := gormdb.NewUserRepo(s.db)

	snippetService := service.NewSnippetService(snippetRepo, personRepo, tagRepo, languageRepo, s.logger)
	personService := service.NewPersonService(personRepo, s.logger)
	tagService := service.NewTagService(tagRepo, s.logger)
	languageService := service.NewLanguageService(languageRepo, s.logger)
	authService := service.NewAuthService(userRepo, tokens, passwords, s.logger)

	pages := handler.NewPagesHandler(snippetService, personService, renderer, s.logger)
	snippets := handler.NewSnippetHandler(snippetService, renderer, s.logger)
	people := handler.NewPersonHandler(personService, renderer, s.logger)
	tags := handler.NewTagHandler(tagService, renderer, s.logger)
	languages := handler.NewLanguageHandler(languageService, renderer, s.logger)
	admin := handler.NewAdminHandler(snippetService, personService, tagService, languageService, authService, renderer, s.logger)

	// Site pages.
	s.router.Get("/", pages.HandleHome)
	s.router.Get("/snippets", pages.HandleSnippetList)
	s.router.Get("/snippets/{id}", pages.HandleSnippetDetail)
	s.router.Get("/people/{id}", pages.HandlePersonDetail)

	// REST API.
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/snippets", snippets.HandleList)
		r.Post("/snippets", snippets.HandleCreate)
		r.Get("/snippets/{id}", snippets.HandleGet)
		r.Put("/snippets/{id}", snippets.HandleUpdate)
		r.Delete("/snippets/{id}", snippets.HandleDelete)

		r.Get("/people", people.HandleList)
		r.Post("/people", people.HandleCreate)
		r.Get("/people/{id}", people.HandleGet)
		r.Put("/people/{id}", people.HandleUpdate)
		r.Delete("/people/{id}", people.HandleDelete)

		r.Get("/tags", tags.HandleList)
		r.Post("/tags", tags.HandleCreate)
		r.Get("/tags/{id}", tags.HandleGet)
		r.Put("/tags/{id}", tags.HandleUpdate)
		r.Delete("/tags/{id}", tags.HandleDelete)

		r.Get("/languages", languages.HandleList)
		r.Post("/languages", languages.HandleCreate)
		r.Get("/languages/{id}", languages.HandleGet)
		r.Put("/languages/{id}", languages.HandleUpdate)
		r.Delete("/languages/{id}", languages.HandleDelete)
	})

	// Admin area. Login and logout are open; everything else sits
	// behind the session check.
	s.router.Route("/admin", func(r chi.Router) {
		r.Get("/login", admin.HandleLoginPage)
		r.Post("/login", admin.HandleLogin)
		r.Post("/logout", admin.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(tokens, "/admin/login"))

			r.Get("/", admin.HandleDashboard)

			r.Get("/snippets", admin.HandleSnippetTable)
			r.Get("/snippets/new", admin.HandleSnippetNew)
			r.Post("/snippets/new", admin.HandleSnippetCreate)
			r.Get("/snippets/{id}/edit", admin.HandleSnippetEdit)
			r.Post("/snippets/{id}/edit", admin.HandleSnippetUpdate)
			r.Post("/snippets/{id}/delete", admin.HandleSnippetDelete)

			r.Get("/people", admin.HandlePersonTable)
			r.Get("/people/new", admin.HandlePersonNew)
			r.Post("/people/new", admin.HandlePersonCreate)
			r.Get("/people/{id}/edit", admin.HandlePersonEdit)
			r.Post("/people/{id}/edit", admin.HandlePersonUpdate)
			r.Post("/people/{id}/delete", admin.HandlePersonDelete)

			r.Get("/tags", admin.HandleTagTable)
			r.Get("/tags/new", admin.HandleTagNew)
			r.Post("/tags/new", admin.HandleTagCreate)
			r.Get("/tags/{id}/edit", admin.HandleTagEdit)
			r.Post("/tags/{id}/edit", admin.HandleTagUpdate)
			r.Post("/tags/{id}/delete", admin.HandleTagDelete)

			r.Get("/languages", admin.HandleLanguageTable)
			r.Get("/languages/new", admin.HandleLanguageNew)
			r.Post("/languages/new", admin.HandleLanguageCreate)
			r.Get("/languages/{id}/edit", admin.HandleLanguageEdit)
			r.Post("/languages/{id}/edit", admin.HandleLanguageUpdate)
			r.Post("/languages/{id}/delete", admin.HandleLanguageDelete)
		})
	})

	return nil
}

// Handler exposes the assembled route table.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database without going through Start's lifecycle.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the server until SIGINT or SIGTERM, then drains in-flight
// requests for up to 30 seconds before closing the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
