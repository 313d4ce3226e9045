// Command catalog-import bulk-loads inventory into the backend through the
// items management endpoint. It streams a gzipped CSV dump exported from a
// legacy system (columns: sku,name,category,price,stock), de-duplicates rows
// by SKU with a bloom filter, and uploads items concurrently.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/streamline-storefront/internal/api"
	"github.com/xenking/streamline-storefront/internal/domain/catalog"
)

const (
	// bloomCapacity sizes the SKU filter for the largest dumps we have seen.
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
	csvColumns    = 5
)

func main() {
	var (
		file    string
		baseURL string
		workers int
	)

	flag.StringVar(&file, "file", "", "gzipped CSV catalog dump (sku,name,category,price,stock)")
	flag.StringVar(&baseURL, "api-base-url", "http://localhost:8000", "backend API base URL (or STOREFRONT_API_BASE_URL env)")
	flag.IntVar(&workers, "workers", 8, "concurrent upload workers")
	flag.Parse()

	if v := os.Getenv("STOREFRONT_API_BASE_URL"); v != "" && baseURL == "http://localhost:8000" {
		baseURL = v
	}
	if file == "" {
		slog.Error("input file is required: set --file")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, file, baseURL, workers); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, path, baseURL string, workers int) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open input file")
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrap(err, "open gzip stream")
	}
	defer gz.Close()

	r := csv.NewReader(gz)
	r.FieldsPerRecord = csvColumns
	r.ReuseRecord = true

	client := api.NewClient(baseURL, &http.Client{Timeout: 30 * time.Second})

	// SKU de-duplication. The ~0.1% false positive rate means a fresh SKU is
	// very occasionally skipped; acceptable for a bulk import that can be
	// re-run.
	filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)

	var imported atomic.Int64
	items := make(chan catalog.Item, workers*2)

	g, ctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			for it := range items {
				if _, err := client.CreateItem(ctx, it); err != nil {
					return errors.Wrapf(err, "upload item %q", it.Name)
				}
				imported.Add(1)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(items)
		var rows, skipped, malformed int64
		for {
			record, err := r.Read()
			if errors.Is(err, io.EOF) {
				slog.Info("finished reading dump",
					slog.Int64("rows", rows),
					slog.Int64("duplicates", skipped),
					slog.Int64("malformed", malformed))
				return nil
			}
			if err != nil {
				return errors.Wrap(err, "read csv")
			}
			rows++
			if rows == 1 && record[0] == "sku" {
				continue // header
			}
			if rows%progressEvery == 0 {
				slog.Info("progress", slog.Int64("rows", rows), slog.Int64("imported", imported.Load()))
			}

			if filter.TestOrAdd([]byte(record[0])) {
				skipped++
				continue
			}

			it, err := parseRow(record)
			if err != nil {
				malformed++
				slog.Warn("skipping malformed row", slog.Int64("row", rows), slog.String("error", err.Error()))
				continue
			}

			select {
			case items <- it:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("upload complete", slog.Int64("imported", imported.Load()))
	return nil
}

func parseRow(record []string) (catalog.Item, error) {
	price, err := decimal.NewFromString(record[3])
	if err != nil {
		return catalog.Item{}, errors.Wrap(err, "parse price")
	}
	stock, err := strconv.Atoi(record[4])
	if err != nil {
		return catalog.Item{}, errors.Wrap(err, "parse stock")
	}
	return catalog.Item{
		Name:     record[1],
		Category: record[2],
		Price:    price,
		Stock:    stock,
	}, nil
}
