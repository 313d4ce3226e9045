// Package app wires the storefront client together: snapshot store, backend
// API client, cart store, facade, and the command line front end.
package app

import (
	"context"
	"net/http"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/xenking/streamline-storefront/internal/api"
	"github.com/xenking/streamline-storefront/internal/domain/cart"
	"github.com/xenking/streamline-storefront/internal/storage/sqlite"
	"github.com/xenking/streamline-storefront/internal/storefront"
	"github.com/xenking/streamline-storefront/pkg/httpclient"
)

// Run creates all dependencies and executes the requested CLI command.
// It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, cfg *Config, args []string) error {
	ctx = zctx.Base(ctx, lg)

	snaps, err := sqlite.Open(ctx, cfg.SnapshotPath)
	if err != nil {
		return errors.Wrap(err, "open snapshot store")
	}
	defer snaps.Close()

	transport := httpclient.Wrap(
		otelhttp.NewTransport(http.DefaultTransport),
		httpclient.RequestID(),
		httpclient.Logging(),
		httpclient.Retry(httpclient.RetryConfig{
			MaxRetries: cfg.HTTP.MaxRetries,
			Backoff:    cfg.HTTP.RetryBackoff,
		}),
	)
	client := api.NewClient(cfg.APIBaseURL, &http.Client{
		Timeout:   cfg.HTTP.Timeout,
		Transport: transport,
	})

	store := cart.NewStore(ctx, snaps, cfg.CartSnapshotName)
	svc := storefront.NewService(store, client, client)

	cli := &CLI{
		Service: svc,
		Catalog: client,
		Offers:  client,
		Staff:   client,
		Out:     os.Stdout,
	}
	return cli.Run(ctx, args)
}
