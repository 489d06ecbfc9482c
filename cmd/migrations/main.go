package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/storefront/api/internal/config"
)

const migrationsDir = "internal/adapters/repository/postgres/migrations"

// Applies a single migration file by name fragment, e.g.
// `go run ./cmd/migrations create_users_up`.
func main() {
	if len(os.Args) < 2 {
		log.Fatal().Msg("a migration name is required")
	}

	cfg := config.Load()
	db, err := sql.Open("postgres", cfg.PostgresConnString())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	path, err := findMigration(migrationsDir, os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("failed to locate migration")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("failed to read migration")
	}

	if _, err := db.Exec(string(content)); err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("migration failed")
	}

	log.Info().Str("file", path).Msg("migration applied")
}

func findMigration(dir, name string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		if strings.Contains(entry.Name(), name) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("no migration file matches %q", name)
}
