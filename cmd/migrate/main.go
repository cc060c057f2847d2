// Command migrate applies the BigQuery schema migrations. SQLite databases
// migrate themselves when opened.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/household-finance/internal/config"
	infraBQ "github.com/dvloznov/household-finance/internal/infra/bigquery"
	"github.com/dvloznov/household-finance/internal/logger"
)

func main() {
	var (
		configPath    = flag.String("config", "", "path to finance.yaml")
		projectID     = flag.String("project", "", "GCP project ID (default: storage.bigquery.project)")
		datasetID     = flag.String("dataset", "", "BigQuery dataset ID (default: storage.bigquery.dataset)")
		appliedBy     = flag.String("applied-by", "migrate-cli", "Name of the tool applying migrations")
		migrationsDir = flag.String("migrations", "", "Directory of NNNN_name.sql files (default: the embedded set)")
		list          = flag.Bool("list", false, "List the migrations without applying them")
	)
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *projectID == "" {
		*projectID = cfg.Storage.BigQuery.Project
	}
	if *datasetID == "" {
		*datasetID = cfg.Storage.BigQuery.Dataset
	}
	if *projectID == "" || *datasetID == "" {
		log.Fatal().Msg("Error: a GCP project and dataset are required (-project/-dataset or storage.bigquery in config)")
	}

	migrations, err := loadMigrations(*migrationsDir, *projectID, *datasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read migrations")
	}
	log.Info().Int("count", len(migrations)).Msg("Found migration files")

	if *list {
		printMigrations(os.Stdout, migrations)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	client, err := bigquery.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery client")
	}
	defer client.Close()

	log.Info().Str("project", *projectID).Str("dataset", *datasetID).Msg("Connected to BigQuery")

	migrator := infraBQ.NewMigrator(client, *projectID, *datasetID, *appliedBy, log)
	applied, err := migrator.Run(ctx, migrations)
	if err != nil {
		log.Fatal().Err(err).Int("applied", applied).Msg("Migration failed")
	}

	if applied == 0 {
		log.Info().Msg("No pending migrations. Database is up to date.")
		return
	}
	log.Info().Int("applied", applied).Msg("Migrations applied successfully")
}

// loadMigrations reads dir when set, otherwise the migrations compiled into the binary.
func loadMigrations(dir, projectID, datasetID string) ([]infraBQ.Migration, error) {
	if dir == "" {
		return infraBQ.EmbeddedMigrations(projectID, datasetID)
	}
	return infraBQ.LoadMigrations(os.DirFS(dir), ".", projectID, datasetID)
}

func printMigrations(w io.Writer, migrations []infraBQ.Migration) {
	for _, m := range migrations {
		fmt.Fprintf(w, "%04d  %-40s  %s\n", m.Version, m.Name, m.Checksum[:12])
	}
}
