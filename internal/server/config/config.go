// Package config handles configuration for the duogallery server:
// defaults, JSON overlay, and command-line flags, applied in that order.
package config

import "time"

// Config holds runtime settings for the gallery server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the file snapshot store.
//   - StatePath: snapshot path used when DatabaseDSN is empty.
//   - SecretKey: HMAC secret for signing access tokens (HS256).
//   - AccessTokenValidityDuration: access token lifetime.
//   - GalleryUsers: "user:bcryptHash,user:bcryptHash" credential pairs.
//   - MaxTotalBytes / MaxUploadsPerDay: storage and daily upload caps.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings.
type Config struct {
	EndpointAddrHTTP            string
	DatabaseDSN                 string
	StatePath                   string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	GalleryUsers                string
	MaxTotalBytes               int64
	MaxUploadsPerDay            int
	S3RootUser                  string
	S3RootPassword              string
	S3Bucket                    string
	S3Region                    string
	S3BaseEndpoint              string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.StatePath = "data/gallery-state.zst"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 24 * time.Hour
	c.GalleryUsers = ""
	c.MaxTotalBytes = 10 << 30 // 10 GiB
	c.MaxUploadsPerDay = 200
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "gallery"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
