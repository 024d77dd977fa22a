package commands

import (
	"fmt"
	"os"

	"github.com/studyflow/studyflow-api/internal/config"
	"github.com/studyflow/studyflow-api/internal/database"
)

// openDatabase loads the environment configuration and connects to postgres.
// The returned closer is safe to defer.
func openDatabase() (*database.DB, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	closer := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}
	return db, closer, nil
}
