package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/duogallery/duogallery/internal/flagx"
	"github.com/duogallery/duogallery/internal/timex"
)

// JsonConfig is the DTO for the optional JSON configuration file. Duration
// fields use timex.Duration so both "24h" strings and integer nanoseconds
// parse; after unmarshalling the values are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	StatePath                   string         `json:"state_path"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	GalleryUsers                string         `json:"gallery_users"`
	MaxTotalBytes               int64          `json:"max_total_bytes"`
	MaxUploadsPerDay            int            `json:"max_uploads_per_day"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. When the flag is absent no
// file is loaded. Unreadable or invalid files panic: a deployment that
// names a config file wants it applied, not silently skipped.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.StatePath = c.StatePath
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.GalleryUsers = c.GalleryUsers
	config.MaxTotalBytes = c.MaxTotalBytes
	config.MaxUploadsPerDay = c.MaxUploadsPerDay
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
