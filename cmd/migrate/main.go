package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	identityapp "github.com/invoicehub/backend/internal/application/identity"
	"github.com/invoicehub/backend/internal/infrastructure/auth"
	"github.com/invoicehub/backend/internal/infrastructure/config"
	"github.com/invoicehub/backend/internal/infrastructure/logger"
	"github.com/invoicehub/backend/internal/infrastructure/migration"
	"github.com/invoicehub/backend/internal/infrastructure/persistence"
)

const defaultMigrationsPath = "migrations"

// Applies versioned SQL migrations to the master database and seeds the first
// admin account. Tenant databases are shaped by AutoMigrate at provisioning
// time and the schema reconciler afterwards, so this tool touches only the
// master.
func main() {
	var (
		migrationsPath string
		logLevel       string
	)

	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	if migrationsPath == "" {
		migrationsPath = defaultMigrationsPath
	}
	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		log.Fatal("Failed to get absolute path", zap.Error(err))
	}
	migrationsPath = absPath

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("migrations_path", migrationsPath),
	)

	db, err := sql.Open("postgres", cfg.MasterDatabase.DSN())
	if err != nil {
		log.Fatal("Failed to connect to master database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping master database", zap.Error(err))
	}

	m, err := migration.New(db, migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}

	case "down":
		if err := m.Down(); err != nil {
			log.Fatal("Migration down failed", zap.Error(err))
		}

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("Failed to get version", zap.Error(err))
		}
		if version == 0 {
			log.Info("No migrations applied")
		} else {
			log.Info("Current migration version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
		}

	case "seed-admin":
		if len(args) != 3 {
			fmt.Println("Usage: migrate seed-admin <email> <password>")
			os.Exit(1)
		}
		seedAdmin(cfg, log, args[1], args[2])

	default:
		printUsage()
		os.Exit(1)
	}
}

func seedAdmin(cfg *config.Config, log *zap.Logger, email, password string) {
	master, err := persistence.NewDatabase(&cfg.MasterDatabase)
	if err != nil {
		log.Fatal("Failed to connect to master database", zap.Error(err))
	}
	defer func() {
		_ = master.Close()
	}()

	users := persistence.NewGormAdminUserRepository(master.DB)
	authService := identityapp.NewAuthService(users, auth.NewJWTService(cfg.JWT), log)

	user, err := authService.Register(context.Background(), email, password)
	if err != nil {
		log.Fatal("Failed to create admin user", zap.Error(err))
	}
	log.Info("Admin user created",
		zap.String("id", user.ID.String()),
		zap.String("email", user.Email),
	)
}

func printUsage() {
	fmt.Println(`Usage: migrate [flags] <command>

Commands:
  up                              Apply all pending migrations
  down                            Roll back the most recent migration
  version                         Print the current migration version
  seed-admin <email> <password>   Create an admin account

Flags:
  -path       Path to migrations directory (default: ./migrations)
  -log-level  Log level (debug, info, warn, error)`)
}
