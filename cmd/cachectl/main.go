// Command cachectl inspects a sync-cache database: raw keys, decoded
// contents and summary statistics. It opens the store read-mostly through
// the regular persistence stack, so whatever it prints is exactly what the
// client would load on startup.
//
// Usage:
//
//	cachectl [flags] keys   print every row key in order
//	cachectl [flags] dump   print the cache tree, tracked queries and pending writes
//	cachectl [flags] stats  print row counts and the estimated cache size
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/krasnovkir/go-sync-cache/internal/config"
	"github.com/krasnovkir/go-sync-cache/internal/logger"
	"github.com/krasnovkir/go-sync-cache/internal/store"
	"github.com/krasnovkir/go-sync-cache/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("cachectl")
	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx := context.Background()
	storages, err := store.NewCacheStorages(ctx, cfg.Storage, cfg.Cache, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close(ctx)

	mode := flag.Arg(0)
	switch mode {
	case "keys":
		err = printKeys(ctx, storages)
	case "dump":
		err = printDump(ctx, storages)
	case "stats", "":
		err = printStats(ctx, storages)
	default:
		log.Fatal().Str("mode", mode).Msg("unknown mode, want keys, dump or stats")
	}
	if err != nil {
		log.Fatal().Err(err).Str("mode", mode).Msg("inspection error")
	}
}

func printKeys(ctx context.Context, storages *store.CacheStorages) error {
	start, end := store.AllKeysRange()
	keys, err := storages.Transactional.KeysBetween(ctx, start, end)
	if err != nil {
		return fmt.Errorf("scan keys: %w", err)
	}
	for _, key := range keys {
		fmt.Println(key)
	}
	return nil
}

func printDump(ctx context.Context, storages *store.CacheStorages) error {
	cache := storages.Engine.ServerCache(models.Path{})
	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")

	fmt.Println("server cache:")
	var encodeErr error
	cache.ForEachCompleteNode(func(path models.Path, value any) {
		if encodeErr != nil {
			return
		}
		fmt.Printf("  %s = ", path)
		encodeErr = out.Encode(value)
	})
	if encodeErr != nil {
		return fmt.Errorf("encode cache: %w", encodeErr)
	}

	queries, err := storages.Engine.LoadTrackedQueries(ctx)
	if err != nil {
		return fmt.Errorf("load tracked queries: %w", err)
	}
	fmt.Println("tracked queries:")
	if err = out.Encode(queries); err != nil {
		return fmt.Errorf("encode tracked queries: %w", err)
	}

	writes, err := storages.Engine.LoadUserOperations(ctx)
	if err != nil {
		return fmt.Errorf("load pending writes: %w", err)
	}
	fmt.Println("pending writes:")
	for _, write := range writes {
		fmt.Printf("  #%d %s %s\n", write.ID, write.Operation.Type, write.Operation.Path)
	}
	return nil
}

func printStats(ctx context.Context, storages *store.CacheStorages) error {
	start, end := store.AllKeysRange()
	keys, err := storages.Transactional.KeysBetween(ctx, start, end)
	if err != nil {
		return fmt.Errorf("scan keys: %w", err)
	}

	queries, err := storages.Engine.LoadTrackedQueries(ctx)
	if err != nil {
		return fmt.Errorf("load tracked queries: %w", err)
	}
	writes, err := storages.Engine.LoadUserOperations(ctx)
	if err != nil {
		return fmt.Errorf("load pending writes: %w", err)
	}

	fmt.Printf("rows: %d\n", len(keys))
	fmt.Printf("tracked queries: %d\n", len(queries))
	fmt.Printf("pending writes: %d\n", len(writes))
	fmt.Printf("estimated cache size: %d bytes\n", storages.Engine.EstimatedServerCacheSize())
	return nil
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
