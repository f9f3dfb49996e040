// Package main is the seed command. It loads content from a YAML
// fixture file and can create an admin account; both paths are
// idempotent, so running it on every deploy is safe.
//
// Usage:
//
//	seed -fixture seed.yaml
//	seed -user admin -password s3cret
//	seed -fixture seed.yaml -user admin -password s3cret
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wabain/codekeeper/internal/apperror"
	"github.com/wabain/codekeeper/internal/auth"
	"github.com/wabain/codekeeper/internal/config"
	"github.com/wabain/codekeeper/internal/fixture"
	"github.com/wabain/codekeeper/internal/model"
	"github.com/wabain/codekeeper/internal/repository/gormdb"
)

func main() {
	fixturePath := flag.String("fixture", "", "YAML fixture file to load")
	username := flag.String("user", "", "admin username to create")
	password := flag.String("password", "", "password for -user")
	flag.Parse()

	if *fixturePath == "" && *username == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: pass -fixture and/or -user with -password")
		flag.Usage()
		os.Exit(2)
	}
	if (*username == "") != (*password == "") {
		fmt.Fprintln(os.Stderr, "-user and -password must be set together")
		os.Exit(2)
	}

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

	db, err := gormdb.Open(cfg.Database.Path, logger)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()

	if *fixturePath != "" {
		if err := applyFixture(ctx, db, *fixturePath, logger); err != nil {
			logger.Error("seeding failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if *username != "" {
		if err := ensureAdmin(ctx, db, *username, *password, logger); err != nil {
			logger.Error("creating admin failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
}

func applyFixture(ctx context.Context, db *gormdb.DB, path string, logger *slog.Logger) error {
	fx, err := fixture.Load(path)
	if err != nil {
		return err
	}

	seeder := fixture.NewSeeder(
		gormdb.NewSnippetRepo(db),
		gormdb.NewPersonRepo(db),
		gormdb.NewTagRepo(db),
		gormdb.NewLanguageRepo(db),
		logger,
	)
	res, err := seeder.Apply(ctx, fx)
	if err != nil {
		return err
	}

	logger.Info("fixture applied",
		slog.Int("languages", res.Languages),
		slog.Int("tags", res.Tags),
		slog.Int("people", res.People),
		slog.Int("snippets", res.Snippets),
		slog.Int("skipped", res.Skipped),
	)
	return nil
}

// ensureAdmin creates the account unless the username is already taken.
func ensureAdmin(ctx context.Context, db *gormdb.DB, username, password string, logger *slog.Logger) error {
	users := gormdb.NewUserRepo(db)

	_, err := users.GetByUsername(ctx, username)
	if err == nil {
		logger.Info("admin user already exists", slog.String("username", username))
		return nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return err
	}

	hash, err := auth.NewPasswordService().Hash(password)
	if err != nil {
		return err
	}
	user := &model.User{Username: username, PasswordHash: hash}
	if err := users.Create(ctx, user); err != nil {
		return err
	}

	logger.Info("admin user created",
		slog.String("username", username),
		slog.String("id", user.ID),
	)
	return nil
}
