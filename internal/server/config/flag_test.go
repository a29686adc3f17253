package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_parseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin",
		"-a", ":9999",
		"-d", "postgres://gallery",
		"-f", "/tmp/state.zst",
		"-s", "flag_secret",
		"-t", "90",
		"-w", "alice:$2a$10$aaa",
		"-m", "2048",
		"-n", "7",
		"-b", "flagbucket",
	}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":9999", cfg.EndpointAddrHTTP)
	assert.Equal(t, "postgres://gallery", cfg.DatabaseDSN)
	assert.Equal(t, "/tmp/state.zst", cfg.StatePath)
	assert.Equal(t, "flag_secret", cfg.SecretKey)
	assert.Equal(t, 90*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, "alice:$2a$10$aaa", cfg.GalleryUsers)
	assert.Equal(t, int64(2048), cfg.MaxTotalBytes)
	assert.Equal(t, 7, cfg.MaxUploadsPerDay)
	assert.Equal(t, "flagbucket", cfg.S3Bucket)

	// untouched fields keep their defaults
	assert.Equal(t, "admin", cfg.S3RootUser)
}
