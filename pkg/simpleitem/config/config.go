package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-item/pkg/simpleitem"
	fsstorage "github.com/tendant/simple-item/pkg/simpleitem/storage/fs"
	memorystorage "github.com/tendant/simple-item/pkg/simpleitem/storage/memory"
	pgstorage "github.com/tendant/simple-item/pkg/simpleitem/storage/postgres"
	s3storage "github.com/tendant/simple-item/pkg/simpleitem/storage/s3"
)

// Option applies configuration to a Config instance.
type Option func(*Config) error

// Load constructs a Config by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*Config, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() Config {
	return Config{
		Environment:        "development",
		DefaultAccessPoint: "memory",
		AccessPoints: []AccessPointConfig{
			{
				Name:   "memory",
				Type:   "memory",
				Format: simpleitem.FormatBinary,
				Config: map[string]interface{}{},
			},
		},
	}
}

// Config represents the declarative configuration of an item store: the
// access points items live in and which of them is the default.
type Config struct {
	Environment string // development, production, testing

	DefaultAccessPoint string
	AccessPoints       []AccessPointConfig
}

// AccessPointConfig represents configuration for one access point.
type AccessPointConfig struct {
	Name string
	Type string // "memory", "fs", "s3", "postgres"

	// Item descriptor settings shared by every backend type.
	Format         string
	Encoding       string
	StorageAliases map[string]string
	ParserAliases  map[string]string
	Properties     []string

	// Backend-specific settings.
	Config map[string]interface{}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.AccessPoints) == 0 {
		return errors.New("at least one access point is required")
	}

	found := false
	for _, point := range c.AccessPoints {
		switch point.Type {
		case "memory", "fs", "s3", "postgres":
		default:
			return fmt.Errorf("unsupported access point type: %s", point.Type)
		}
		if point.Type == "postgres" && getString(point.Config, "database_url", "") == "" {
			return fmt.Errorf("database_url is required for postgres access point '%s'", point.Name)
		}
		if point.Name == c.DefaultAccessPoint {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("default access point '%s' not found in configured access points", c.DefaultAccessPoint)
	}

	return nil
}

// BuildAccessPoints creates every configured access point, keyed by name.
// A nil registry selects the built-in formats.
func (c *Config) BuildAccessPoints(registry *simpleitem.Registry) (map[string]simpleitem.AccessPoint, error) {
	points := make(map[string]simpleitem.AccessPoint, len(c.AccessPoints))
	for _, pointConfig := range c.AccessPoints {
		point, err := c.buildAccessPoint(pointConfig, registry)
		if err != nil {
			return nil, fmt.Errorf("failed to build access point %s: %w", pointConfig.Name, err)
		}
		points[pointConfig.Name] = point
	}
	return points, nil
}

// BuildDefaultAccessPoint creates the access point named by
// DefaultAccessPoint. A nil registry selects the built-in formats.
func (c *Config) BuildDefaultAccessPoint(registry *simpleitem.Registry) (simpleitem.AccessPoint, error) {
	for _, pointConfig := range c.AccessPoints {
		if pointConfig.Name == c.DefaultAccessPoint {
			return c.buildAccessPoint(pointConfig, registry)
		}
	}
	return nil, fmt.Errorf("default access point '%s' not found", c.DefaultAccessPoint)
}

// buildAccessPoint creates an AccessPoint based on the configuration.
func (c *Config) buildAccessPoint(config AccessPointConfig, registry *simpleitem.Registry) (simpleitem.AccessPoint, error) {
	if registry == nil {
		registry = simpleitem.DefaultRegistry()
	}

	switch config.Type {
	case "memory":
		return memorystorage.New(memorystorage.Config{
			Format:         config.Format,
			Encoding:       config.Encoding,
			StorageAliases: config.StorageAliases,
			ParserAliases:  config.ParserAliases,
			Properties:     config.Properties,
			Registry:       registry,
		}), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:        getString(config.Config, "base_dir", "./data/items"),
			Format:         config.Format,
			Encoding:       config.Encoding,
			StorageAliases: config.StorageAliases,
			ParserAliases:  config.ParserAliases,
			Registry:       registry,
		})

	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 getString(config.Config, "region", "us-east-1"),
			Bucket:                 getString(config.Config, "bucket", ""),
			AccessKeyID:            getString(config.Config, "access_key_id", ""),
			SecretAccessKey:        getString(config.Config, "secret_access_key", ""),
			Endpoint:               getString(config.Config, "endpoint", ""),
			UsePathStyle:           getBool(config.Config, "use_path_style", false),
			KeyPrefix:              getString(config.Config, "key_prefix", ""),
			EnableSSE:              getBool(config.Config, "enable_sse", false),
			SSEAlgorithm:           getString(config.Config, "sse_algorithm", "AES256"),
			SSEKMSKeyID:            getString(config.Config, "sse_kms_key_id", ""),
			CreateBucketIfNotExist: getBool(config.Config, "create_bucket_if_not_exist", false),
			Format:                 config.Format,
			Encoding:               config.Encoding,
			StorageAliases:         config.StorageAliases,
			ParserAliases:          config.ParserAliases,
			Registry:               registry,
		})

	case "postgres":
		databaseURL := getString(config.Config, "database_url", "")
		if databaseURL == "" {
			return nil, errors.New("database_url is required for postgres")
		}
		poolConfig, err := pgxpool.ParseConfig(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse database_url: %w", err)
		}
		// Optionally set search_path for the connection
		schema := getString(config.Config, "schema", "")
		poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			if schema == "" {
				return nil
			}
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
		pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return pgstorage.NewWithPool(pool, pgstorage.Config{
			Table:          getString(config.Config, "table", "items"),
			Properties:     config.Properties,
			Format:         config.Format,
			Encoding:       config.Encoding,
			StorageAliases: config.StorageAliases,
			ParserAliases:  config.ParserAliases,
			Registry:       registry,
		})

	default:
		return nil, fmt.Errorf("unsupported access point type: %s", config.Type)
	}
}

// PingPostgres verifies connectivity to Postgres and optionally sets
// search_path for the session. It fails if the schema (when provided)
// does not exist.
func PingPostgres(databaseURL, schema string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database_url: %w", err)
	}
	if schema != "" {
		poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func getString(config map[string]interface{}, key string, defaultValue string) string {
	if value, exists := config[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

func getBool(config map[string]interface{}, key string, defaultValue bool) bool {
	if value, exists := config[key]; exists {
		if b, ok := value.(bool); ok {
			return b
		}
		if str, ok := value.(string); ok {
			if b, err := strconv.ParseBool(str); err == nil {
				return b
			}
		}
	}
	return defaultValue
}
