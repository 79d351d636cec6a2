package config

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	secret := base64.StdEncoding.EncodeToString([]byte("super-secret-key"))

	tcases := []struct {
		name           string
		serverAddr     string
		databaseDSN    string
		base64Secret   string
		allowedOrigins []string
		expectErr      bool
	}{
		{
			name:           "valid config",
			serverAddr:     "localhost:8000",
			databaseDSN:    "host=localhost dbname=unievents",
			base64Secret:   secret,
			allowedOrigins: []string{"http://localhost:3000"},
		},
		{
			name:         "missing server address",
			databaseDSN:  "host=localhost dbname=unievents",
			base64Secret: secret,
			expectErr:    true,
		},
		{
			name:         "missing dsn",
			serverAddr:   "localhost:8000",
			base64Secret: secret,
			expectErr:    true,
		},
		{
			name:        "missing signing secret",
			serverAddr:  "localhost:8000",
			databaseDSN: "host=localhost dbname=unievents",
			expectErr:   true,
		},
		{
			name:         "signing secret is not base64",
			serverAddr:   "localhost:8000",
			databaseDSN:  "host=localhost dbname=unievents",
			base64Secret: "not base64!!!",
			expectErr:    true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.serverAddr, tc.databaseDSN, tc.base64Secret, tc.allowedOrigins)
			if tc.expectErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.serverAddr, cfg.ServerAddr)
			assert.Equal(t, tc.databaseDSN, cfg.DatabaseDSN)
			assert.Equal(t, []byte("super-secret-key"), cfg.SigningKey)
			assert.Equal(t, tc.allowedOrigins, cfg.AllowedOrigins)
		})
	}
}
