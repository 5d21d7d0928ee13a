package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"getactive-client/internal/activity"
	"getactive-client/internal/api"
	"getactive-client/internal/auth"
	"getactive-client/internal/config"
	"getactive-client/internal/database"
	"getactive-client/internal/router"
	"getactive-client/internal/session"
	"getactive-client/internal/token"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// ensure basic directories exist
	if err := ensureDir(filepath.Dir(cfg.Storage.Path)); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	// init local storage
	db, err := database.Init(cfg.Storage)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// wire services: one token store, one HTTP client, one session context
	tokens := token.NewStore(db, cfg.Storage.EncryptionKey)
	apiClient := api.NewClient(cfg.API, tokens)
	authService := auth.NewService(apiClient, tokens)
	activityService := activity.NewService(apiClient)

	sess := session.NewContext(authService)
	apiClient.SetUnauthorizedHandler(sess.HandleUnauthorized)
	sess.Init()

	// setup local router
	r := router.SetupRouter(cfg, db, sess, activityService)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("client listening on %s (api %s)", addr, cfg.API.BaseURL)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
