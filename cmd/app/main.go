package main

import (
	"go.uber.org/fx"

	"github.com/roamline/travelcompanion-back/internal/config"
	"github.com/roamline/travelcompanion-back/internal/db"
	"github.com/roamline/travelcompanion-back/internal/logger"
	"github.com/roamline/travelcompanion-back/internal/repository"
	"github.com/roamline/travelcompanion-back/internal/service"
	"github.com/roamline/travelcompanion-back/internal/session"
	"github.com/roamline/travelcompanion-back/internal/transport"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		db.Module,
		repository.Module,
		service.Module,
		session.Module,
		transport.Module,
		fx.Invoke(func(*transport.HTTPServer) {}),
	)
	app.Run()
}
