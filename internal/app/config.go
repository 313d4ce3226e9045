package app

import (
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the storefront client configuration, loadable from environment
// variables (STOREFRONT_ prefix) or a YAML config file.
type Config struct {
	APIBaseURL       string `default:"http://localhost:8000" usage:"Backend API base URL"`
	SnapshotPath     string `default:"storefront.db" usage:"Path to the local snapshot database"`
	CartSnapshotName string `default:"cart" usage:"Name the cart snapshot is stored under"`
	LogLevel         string `default:"warn" usage:"Log level (debug, info, warn, error)"`
	HTTP             HTTPConfig
}

// HTTPConfig controls the backend HTTP client.
type HTTPConfig struct {
	Timeout      time.Duration `default:"10s" usage:"Backend request timeout"`
	MaxRetries   int           `default:"2" usage:"Retries for idempotent backend requests"`
	RetryBackoff time.Duration `default:"250ms" usage:"Initial retry backoff"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files. Positional arguments belong to the CLI, so flag parsing is skipped.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		SkipFlags: true,
		Files:     []string{"storefront.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return &cfg, nil
}
