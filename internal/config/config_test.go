package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: "5432", User: "exim", Password: "secret", DBName: "eximdesk", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=exim password=secret dbname=eximdesk sslmode=disable", cfg.DSN())

	cfg.URL = "postgres://exim:secret@db:5432/eximdesk"
	assert.Equal(t, "postgres://exim:secret@db:5432/eximdesk", cfg.DSN())
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Mode: "debug"}, Auth: AuthConfig{JWTSecret: DefaultJWTSecret}}
	assert.NoError(t, cfg.Validate(), "debug mode allows the development secret")

	cfg.Server.Mode = "release"
	err := cfg.Validate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "JWT_SECRET")
	}

	cfg.Auth.JWTSecret = "  "
	assert.Error(t, cfg.Validate())

	cfg.Auth.JWTSecret = "0f8c3a1e9b"
	assert.NoError(t, cfg.Validate())
}
