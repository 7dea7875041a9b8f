package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/aldoetobex/legal-case-backend/internal/config"
	"github.com/aldoetobex/legal-case-backend/pkg/database"
	"github.com/aldoetobex/legal-case-backend/pkg/logger"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, version, force")
		steps   = flag.Int("steps", 0, "Number of migration steps (for up/down)")
		version = flag.Uint("version", 0, "Target version (for force command)")
	)
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	mg, err := database.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("migrator unavailable")
	}
	defer mg.Close()

	switch *command {
	case "up":
		if err := mg.Up(*steps); err != nil {
			log.Fatal().Err(err).Msg("migration up failed")
		}
		log.Info().Msg("migrations applied")
	case "down":
		if err := mg.Down(*steps); err != nil {
			log.Fatal().Err(err).Msg("migration down failed")
		}
		log.Info().Msg("migrations rolled back")
	case "version":
		v, dirty, err := mg.Version()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to get version")
		}
		if dirty {
			log.Error().Uint("version", v).Msg("database is in a dirty state")
			mg.Close()
			os.Exit(1)
		}
		log.Info().Uint("version", v).Msg("current migration version")
	case "force":
		if *version == 0 {
			log.Fatal().Msg("version required for force command (use -version flag)")
		}
		if err := mg.Force(int(*version)); err != nil {
			log.Fatal().Err(err).Msg("force migration failed")
		}
		log.Info().Uint("version", *version).Msg("forced database version")
	default:
		log.Fatal().Str("command", *command).Msg("unknown command (supported: up, down, version, force)")
	}
}
