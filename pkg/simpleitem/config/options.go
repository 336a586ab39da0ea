package config

import (
	"fmt"
)

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *Config) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDefaultAccessPoint sets the default access point name
func WithDefaultAccessPoint(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return fmt.Errorf("default access point name cannot be empty")
		}
		c.DefaultAccessPoint = name
		return nil
	}
}

// WithMemoryAccessPoint adds an in-memory access point (for testing)
// If name is empty, defaults to "memory"
func WithMemoryAccessPoint(name string) Option {
	return func(c *Config) error {
		if name == "" {
			name = "memory"
		}

		point := AccessPointConfig{
			Name:   name,
			Type:   "memory",
			Config: map[string]interface{}{},
		}

		c.AccessPoints = upsertAccessPoint(c.AccessPoints, point)
		return nil
	}
}

// WithFilesystemAccessPoint adds a filesystem access point
// If name is empty, defaults to "fs"
func WithFilesystemAccessPoint(name, baseDir string) Option {
	return func(c *Config) error {
		if name == "" {
			name = "fs"
		}
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}

		point := AccessPointConfig{
			Name: name,
			Type: "fs",
			Config: map[string]interface{}{
				"base_dir": baseDir,
			},
		}

		c.AccessPoints = upsertAccessPoint(c.AccessPoints, point)
		return nil
	}
}

// WithS3AccessPoint adds an S3 access point
// If name is empty, defaults to "s3"
func WithS3AccessPoint(name, bucket, region string) Option {
	return func(c *Config) error {
		if name == "" {
			name = "s3"
		}
		if bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
		if region == "" {
			region = "us-east-1" // Default region
		}

		point := AccessPointConfig{
			Name: name,
			Type: "s3",
			Config: map[string]interface{}{
				"bucket": bucket,
				"region": region,
			},
		}

		c.AccessPoints = upsertAccessPoint(c.AccessPoints, point)
		return nil
	}
}

// WithS3Credentials sets AWS credentials for an S3 access point
func WithS3Credentials(name, accessKeyID, secretAccessKey string) Option {
	return func(c *Config) error {
		if name == "" {
			name = "s3"
		}

		// Find existing S3 access point or create new one
		for i := range c.AccessPoints {
			if c.AccessPoints[i].Name == name && c.AccessPoints[i].Type == "s3" {
				c.AccessPoints[i].Config["access_key_id"] = accessKeyID
				c.AccessPoints[i].Config["secret_access_key"] = secretAccessKey
				return nil
			}
		}

		point := AccessPointConfig{
			Name: name,
			Type: "s3",
			Config: map[string]interface{}{
				"access_key_id":     accessKeyID,
				"secret_access_key": secretAccessKey,
			},
		}
		c.AccessPoints = append(c.AccessPoints, point)
		return nil
	}
}

// WithS3Endpoint sets a custom S3 endpoint (for MinIO, LocalStack, etc.)
func WithS3Endpoint(name, endpoint string, usePathStyle bool) Option {
	return func(c *Config) error {
		if name == "" {
			name = "s3"
		}

		// Find existing S3 access point or create new one
		for i := range c.AccessPoints {
			if c.AccessPoints[i].Name == name && c.AccessPoints[i].Type == "s3" {
				c.AccessPoints[i].Config["endpoint"] = endpoint
				c.AccessPoints[i].Config["use_path_style"] = usePathStyle
				return nil
			}
		}

		point := AccessPointConfig{
			Name: name,
			Type: "s3",
			Config: map[string]interface{}{
				"endpoint":       endpoint,
				"use_path_style": usePathStyle,
			},
		}
		c.AccessPoints = append(c.AccessPoints, point)
		return nil
	}
}

// WithPostgresAccessPoint adds a PostgreSQL access point
// If name is empty, defaults to "postgres"
func WithPostgresAccessPoint(name, databaseURL string) Option {
	return func(c *Config) error {
		if name == "" {
			name = "postgres"
		}
		if databaseURL == "" {
			return fmt.Errorf("database URL is required for postgres")
		}

		point := AccessPointConfig{
			Name: name,
			Type: "postgres",
			Config: map[string]interface{}{
				"database_url": databaseURL,
			},
		}

		c.AccessPoints = upsertAccessPoint(c.AccessPoints, point)
		return nil
	}
}

// WithPostgresSchema sets the database schema for a PostgreSQL access point
func WithPostgresSchema(name, schema string) Option {
	return setBackendSetting(name, "postgres", "schema", schema)
}

// WithPostgresTable sets the table name for a PostgreSQL access point
func WithPostgresTable(name, table string) Option {
	return setBackendSetting(name, "postgres", "table", table)
}

// WithItemFormat sets the item format tag for an access point
func WithItemFormat(name, format string) Option {
	return func(c *Config) error {
		if format == "" {
			return fmt.Errorf("format cannot be empty")
		}
		point := findAccessPoint(c, name)
		if point == nil {
			return fmt.Errorf("access point '%s' not found", name)
		}
		point.Format = format
		return nil
	}
}

// WithItemEncoding sets the default content encoding for an access point
func WithItemEncoding(name, encoding string) Option {
	return func(c *Config) error {
		if encoding == "" {
			return fmt.Errorf("encoding cannot be empty")
		}
		point := findAccessPoint(c, name)
		if point == nil {
			return fmt.Errorf("access point '%s' not found", name)
		}
		point.Encoding = encoding
		return nil
	}
}

// WithAliases sets the storage and parser alias tables for an access point
func WithAliases(name string, storageAliases, parserAliases map[string]string) Option {
	return func(c *Config) error {
		point := findAccessPoint(c, name)
		if point == nil {
			return fmt.Errorf("access point '%s' not found", name)
		}
		point.StorageAliases = storageAliases
		point.ParserAliases = parserAliases
		return nil
	}
}

// WithStorageProperties sets the declared storage property names for an
// access point
func WithStorageProperties(name string, properties ...string) Option {
	return func(c *Config) error {
		point := findAccessPoint(c, name)
		if point == nil {
			return fmt.Errorf("access point '%s' not found", name)
		}
		point.Properties = properties
		return nil
	}
}

// WithDefaults is a convenience option that applies sensible defaults
// This is useful as a base before applying more specific options
func WithDefaults() Option {
	return func(c *Config) error {
		*c = defaults()
		return nil
	}
}

func setBackendSetting(name, pointType, key string, value string) Option {
	return func(c *Config) error {
		for i := range c.AccessPoints {
			if c.AccessPoints[i].Name == name && c.AccessPoints[i].Type == pointType {
				c.AccessPoints[i].Config[key] = value
				return nil
			}
		}
		point := AccessPointConfig{
			Name: name,
			Type: pointType,
			Config: map[string]interface{}{
				key: value,
			},
		}
		c.AccessPoints = append(c.AccessPoints, point)
		return nil
	}
}

func findAccessPoint(c *Config, name string) *AccessPointConfig {
	for i := range c.AccessPoints {
		if c.AccessPoints[i].Name == name {
			return &c.AccessPoints[i]
		}
	}
	return nil
}

func upsertAccessPoint(points []AccessPointConfig, point AccessPointConfig) []AccessPointConfig {
	if point.Config == nil {
		point.Config = map[string]interface{}{}
	}
	for i := range points {
		if points[i].Name == point.Name {
			points[i] = point
			return points
		}
	}
	return append(points, point)
}
