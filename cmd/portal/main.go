package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"PlacementPortal/internal/bootstrap"
	routes "PlacementPortal/pkg/routes"
)

func main() {
	bootstrap.Loadenv()

	app := fx.New(
		routes.PortalModule,
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
	)
	app.Run()
}
