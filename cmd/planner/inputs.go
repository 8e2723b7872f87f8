package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/demandplan/internal/config"
	"github.com/andresuchdata/demandplan/internal/domain"
	"github.com/andresuchdata/demandplan/internal/ingest"
	"github.com/andresuchdata/demandplan/internal/storage"
)

type inputs struct {
	observations []domain.Observation
	attributes   []domain.ProductAttribute
	inventory    []domain.InventoryLevel
}

func newObjectStorage(c *cli.Context) (storage.ObjectStorage, error) {
	if dir := strings.TrimSpace(c.String("storage-local-dir")); dir != "" {
		return storage.NewLocalClient(dir), nil
	}
	return storage.NewS3Client(config.StorageConfig{
		Endpoint:  c.String("storage-endpoint"),
		AccessKey: c.String("storage-access-key"),
		SecretKey: c.String("storage-secret-key"),
		Bucket:    c.String("storage-bucket"),
		Region:    c.String("storage-region"),
		UseSSL:    c.Bool("storage-use-ssl"),
	})
}

// loadInputs reads the sales, attribute and inventory files. With
// --source-prefix set the names are object keys fetched into --download-dir first.
func loadInputs(c *cli.Context) (*inputs, error) {
	paths := map[string]string{
		"sales":      c.String("sales"),
		"attributes": c.String("attributes"),
		"inventory":  c.String("inventory"),
	}

	if prefix := strings.TrimSpace(c.String("source-prefix")); prefix != "" {
		client, err := newObjectStorage(c)
		if err != nil {
			return nil, err
		}
		for name, override := range paths {
			if override == "" {
				continue
			}
			local, err := fetchObject(c.Context, client, prefix, override, c.String("download-dir"))
			if err != nil {
				return nil, fmt.Errorf("fetch %s: %w", name, err)
			}
			paths[name] = local
		}
	}

	in := &inputs{}
	var err error
	if in.observations, err = ingest.ReadObservations(paths["sales"]); err != nil {
		return nil, err
	}
	if p := paths["attributes"]; p != "" {
		if in.attributes, err = ingest.ReadAttributes(p); err != nil {
			return nil, err
		}
	}
	if p := paths["inventory"]; p != "" {
		if in.inventory, err = ingest.ReadInventory(p); err != nil {
			return nil, err
		}
	}

	log.Info().
		Int("observations", len(in.observations)).
		Int("attributes", len(in.attributes)).
		Int("inventory", len(in.inventory)).
		Msg("planner: inputs loaded")
	return in, nil
}

func fetchObject(ctx context.Context, client storage.ObjectStorage, prefix, override, destDir string) (string, error) {
	key := resolveObjectKey(prefix, override)
	localPath := filepath.Join(destDir, objectRelativePath(prefix, key))
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to prepare directory for %s: %w", localPath, err)
	}
	if err := client.DownloadObject(ctx, key, localPath); err != nil {
		return "", err
	}
	return localPath, nil
}

func resolveObjectKey(prefix, override string) string {
	if override == "" {
		return strings.TrimSpace(prefix)
	}
	if prefix == "" {
		return strings.TrimPrefix(override, "/")
	}

	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	overrideTrimmed := strings.TrimPrefix(strings.TrimSpace(override), "/")

	if strings.HasPrefix(overrideTrimmed, prefixTrimmed) {
		return overrideTrimmed
	}
	return fmt.Sprintf("%s/%s", prefixTrimmed, overrideTrimmed)
}

func objectRelativePath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	rel := strings.TrimPrefix(key, prefixTrimmed+"/")
	if rel == "" {
		return filepath.Base(key)
	}
	return rel
}

func seriesFilter(c *cli.Context) domain.SeriesFilter {
	return domain.SeriesFilter{
		SKUs:       c.StringSlice("sku"),
		Categories: c.StringSlice("category"),
		From:       c.Timestamp("from"),
		To:         c.Timestamp("to"),
	}
}
