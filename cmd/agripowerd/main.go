// agripowerd is the daemon entrypoint: a urfave/cli/v2 app exposing
// `serve` (run the HTTP API) and `migrate` (apply the embedded schema).
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"agripower/api"
	"agripower/db/postgres"
	"agripower/internal/authtoken"
	"agripower/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	app := &cli.App{
		Name:    "agripowerd",
		Usage:   "agricultural terrain, power-loss, and tractor recommendation service",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "db-host",
				Value:   "localhost",
				EnvVars: []string{"DB_HOST"},
			},
			&cli.IntFlag{
				Name:    "db-port",
				Value:   5432,
				EnvVars: []string{"DB_PORT"},
			},
			&cli.StringFlag{
				Name:    "db-name",
				Value:   "agripower",
				EnvVars: []string{"DB_NAME"},
			},
			&cli.StringFlag{
				Name:    "db-user",
				Value:   "agripower",
				EnvVars: []string{"DB_USER"},
			},
			&cli.StringFlag{
				Name:    "db-pass",
				Value:   "",
				EnvVars: []string{"DB_PASS"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) *config.Config {
	cfg := config.Load()
	cfg.DBHost = c.String("db-host")
	cfg.DBPort = c.Int("db-port")
	cfg.DBName = c.String("db-name")
	cfg.DBUser = c.String("db-user")
	cfg.DBPass = c.String("db-pass")
	cfg.LogLevel = c.String("log-level")
	return cfg
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the agripower API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "API server port",
				EnvVars: []string{"PORT"},
			},
			&cli.StringFlag{
				Name:    "cors-origins",
				Value:   "*",
				Usage:   "Comma-separated list of allowed CORS origins",
				EnvVars: []string{"CORS_ORIGINS"},
			},
			&cli.StringFlag{
				Name:    "signing-secret",
				Usage:   "Shared secret consumed only by the injected TokenVerifier",
				EnvVars: []string{"SIGNING_SECRET"},
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg := loadConfig(c)
	cfg.Port = c.Int("port")
	cfg.CORSOrigins = splitCSV(c.String("cors-origins"))
	cfg.SigningSecret = c.String("signing-secret")

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	store, err := postgres.Open(cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	verifier := authtoken.SharedSecretVerifier{Secret: cfg.SigningSecret}
	server := api.NewServer(store, cfg, verifier)

	return server.StartWithGracefulShutdown()
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply the embedded database schema",
		Action: func(c *cli.Context) error {
			cfg := loadConfig(c)
			store, err := postgres.Open(cfg.DSN())
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer store.Close()

			if err := store.Migrate(context.Background()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println("migration applied")
			return nil
		},
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
