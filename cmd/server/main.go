package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MKhiriev/go-flock-keeper/internal/config"
	"github.com/MKhiriev/go-flock-keeper/internal/handler"
	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/internal/server"
	"github.com/MKhiriev/go-flock-keeper/internal/service"
	"github.com/MKhiriev/go-flock-keeper/internal/store"
	"github.com/MKhiriev/go-flock-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	info := models.NewBuildInfo(buildVersion, buildDate, buildCommit)
	fmt.Println(info)

	flags, err := config.ParseFlags("flock-keeper-server", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.GetServerConfig(flags)
	if err != nil {
		logger.NewLogger("flock-keeper-server", "").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewLogger("flock-keeper-server", cfg.Log.Level)
	ctx := log.WithContext(context.Background())

	storages, err := store.NewStorages(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	services, err := service.NewServices(storages, info, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	if err = srv.RunServer(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		storages.Close()
		os.Exit(1)
	}
}
