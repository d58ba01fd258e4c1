// cmd/loader/main.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andresuchdata/retail-metrics/internal/cache"
	"github.com/andresuchdata/retail-metrics/internal/config"
	"github.com/andresuchdata/retail-metrics/internal/service"
	"github.com/andresuchdata/retail-metrics/internal/storage"
	"github.com/andresuchdata/retail-metrics/internal/store/postgres"
	"github.com/andresuchdata/retail-metrics/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("could not load .env file")
	}

	app := &cli.App{
		Name:  "loader",
		Usage: "Load retail observation batches into the metrics store",
		Commands: []*cli.Command{
			{
				Name:  "load",
				Usage: "Replace the dataset with the observations from a CSV file or directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "path",
						Usage:    "CSV file or directory of CSV files to load",
						Required: true,
					},
				},
				Action: runLoad,
			},
			{
				Name:   "verify",
				Usage:  "Print the loaded record count and a sample of product IDs",
				Action: runVerify,
			},
			{
				Name:  "download",
				Usage: "Download CSV batches from object storage into the local data directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Object key prefix to download",
						Value: "batches/",
					},
				},
				Action: runDownload,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("loader failed")
	}
}

func runLoad(c *cli.Context) error {
	cfg := config.Load()
	ctx := c.Context

	files, err := resolveCSVFiles(c.String("path"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no CSV files found at %s", c.String("path"))
	}

	batch, err := readBatch(files)
	if err != nil {
		return err
	}
	logger.Log.Info().Int("files", len(files)).Int("rows", len(batch)).Msg("parsed observation batch")

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repo := postgres.NewObservationRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	lock, err := cache.NewIngestLock(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to set up ingest lock: %w", err)
	}
	statusCache, err := cache.NewDataStatusCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("status cache unavailable, skipping invalidation")
		statusCache = cache.NewNoopDataStatusCache()
	}

	ingest := service.NewIngestService(repo, lock, statusCache)
	loaded, err := ingest.LoadBatch(ctx, batch)
	if err != nil {
		return err
	}

	logger.Log.Info().Int("records", loaded).Msg("dataset replaced")
	return nil
}

func runVerify(c *cli.Context) error {
	cfg := config.Load()
	ctx := c.Context

	db, err := openVerifyDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var count int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM retail_observations").Scan(&count); err != nil {
		return fmt.Errorf("failed to count observations: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT DISTINCT product_id FROM retail_observations ORDER BY product_id LIMIT 10")
	if err != nil {
		return fmt.Errorf("failed to sample products: %w", err)
	}
	defer rows.Close()

	var products []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan product id: %w", err)
		}
		products = append(products, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	logger.Log.Info().
		Int64("records", count).
		Strs("sample_products", products).
		Msg("dataset status")
	return nil
}

func runDownload(c *cli.Context) error {
	cfg := config.Load()
	ctx := c.Context

	client, err := storage.NewS3Client(cfg.Storage)
	if err != nil {
		return err
	}

	prefix := c.String("prefix")
	objects, err := client.ListObjects(ctx, prefix)
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		logger.Log.Info().Str("prefix", prefix).Msg("no objects found")
		return nil
	}

	for _, obj := range objects {
		if !strings.HasSuffix(strings.ToLower(obj.Key), ".csv") {
			continue
		}
		dest := filepath.Join(cfg.App.DataDir, filepath.Base(obj.Key))
		if err := client.DownloadObject(ctx, obj.Key, dest); err != nil {
			return err
		}
		logger.Log.Info().Str("key", obj.Key).Str("dest", dest).Int64("size", obj.Size).Msg("downloaded")
	}
	return nil
}

// resolveCSVFiles expands a path into the sorted list of CSV files it names.
func resolveCSVFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

