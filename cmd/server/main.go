package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"event-ledger-service/internal/auth"
	"event-ledger-service/internal/config"
	"event-ledger-service/internal/database"
	"event-ledger-service/internal/handlers"
	"event-ledger-service/internal/services"
)

func main() {
	migrateCmd := flag.String("migrate", "", "Migration command (up/down/version)")
	steps := flag.Int("steps", 0, "Number of migration steps (0 means all)")
	createAdmin := flag.Bool("create-admin", false, "Create an admin account and exit")
	username := flag.String("username", "", "Admin username for -create-admin")
	password := flag.String("password", "", "Admin password for -create-admin")
	permissions := flag.String("permissions", "", "Comma separated permissions for -create-admin")
	super := flag.Bool("super", false, "Grant every permission for -create-admin")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Error loading config: %v", err)
	}
	logger := config.NewLogger(cfg.Log)

	db, err := database.NewConnection(cfg, logger)
	if err != nil {
		logger.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	if *migrateCmd != "" {
		if err := database.Migrate(cfg, logger, *migrateCmd, *steps); err != nil {
			logger.Fatalf("Migration error: %v", err)
		}
		return
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		// Tokens do not survive a restart in this mode.
		secret = uuid.NewString()
		logger.Warn("JWT_SECRET not set, using an ephemeral development secret")
	}
	tokens := auth.NewTokenManager(secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	svc := services.New(db, services.NewRepositories(db), tokens)

	if *createAdmin {
		input := services.CreateAdminInput{
			Username:    *username,
			Password:    *password,
			IsSuper:     *super,
			Permissions: splitPermissions(*permissions),
		}
		if err := runCreateAdmin(svc, input, logger); err != nil {
			logger.Fatalf("Error creating admin: %v", err)
		}
		return
	}

	serve(cfg, svc, logger)
}

func runCreateAdmin(svc *services.Services, input services.CreateAdminInput, logger logrus.FieldLogger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin, err := svc.Auth.CreateAdmin(ctx, input)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"admin_id":    admin.ID,
		"username":    admin.Username,
		"is_super":    admin.IsSuper,
		"permissions": admin.Permissions,
	}).Info("Admin created")
	return nil
}

func serve(cfg *config.Config, svc *services.Services, logger *logrus.Logger) {
	router := handlers.SetupRouter(svc, cfg, logger)

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Infof("Server is running on %s", cfg.ServerAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown failed: %+v", err)
	}
	logger.Info("Server exited gracefully")
}

func splitPermissions(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
