package main

import (
	"context"
	"log"

	"docquery-backend/internal/bootstrap"
	"docquery-backend/internal/shared/config"
	"docquery-backend/internal/shared/server"
)

func main() {
	cfg := config.Load()
	app := bootstrap.Build(context.Background(), cfg)
	defer app.Close()

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
