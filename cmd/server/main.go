// Package main starts the codekeeper server. Wiring lives in
// internal/server; this file only loads config, builds the logger, and
// hands over.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wabain/codekeeper/internal/config"
	"github.com/wabain/codekeeper/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))

	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// Without a configured secret, mint one for this process. Admin
	// sessions then die with the process; set JWT_SECRET to keep them.
	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			logger.Error("failed to generate session secret", slog.String("error", err.Error()))
			os.Exit(1)
		}
		jwtSecret = hex.EncodeToString(buf)
		logger.Warn("JWT_SECRET not set, using an ephemeral secret; sessions will not survive restarts")
	}

	srv, err := server.New(server.Config{
		Port:        cfg.Server.Port,
		TemplateDir: cfg.Web.TemplateDir,
		StaticDir:   cfg.Web.StaticDir,
		DBPath:      cfg.Database.Path,
		JWTSecret:   jwtSecret,
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
