// Aplica el esquema de base de datos embebido. Pensado para entornos de
// desarrollo y CI; en producción conviene un gestor de migraciones dedicado.
package main

import (
	"context"
	"time"

	"github.com/tu-usuario/invoicing-pro/internal/infrastructure/postgres"
	"github.com/tu-usuario/invoicing-pro/pkg/config"
	"github.com/tu-usuario/invoicing-pro/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.ApplyMigrations(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicando migraciones")
	}

	log.Info().Msg("esquema aplicado")
}
