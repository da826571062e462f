// Package config loads server configuration from the environment and from
// the provider credential files.
//
// Provider credentials live in JSON files matching the format the provider
// consoles hand out:
//
//	client_secrets.json:    {"web": {"client_id": "...", "client_secret": "..."}}
//	fb_client_secrets.json: {"web": {"app_id": "...", "app_secret": "..."}}
//
// Environment variables override file contents, which keeps containerized
// deployments free of secret files on disk.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Config holds everything the server needs to start.
type Config struct {
	Port   int
	DBPath string

	GoogleClientID     string
	GoogleClientSecret string
	FacebookAppID      string
	FacebookAppSecret  string
}

const (
	defaultPort   = 8080
	defaultDBPath = "data/catalog.db"

	googleSecretsFile   = "client_secrets.json"
	facebookSecretsFile = "fb_client_secrets.json"
)

// googleSecrets mirrors the Google console download format.
type googleSecrets struct {
	Web struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	} `json:"web"`
}

// facebookSecrets mirrors the Facebook app dashboard format.
type facebookSecrets struct {
	Web struct {
		AppID     string `json:"app_id"`
		AppSecret string `json:"app_secret"`
	} `json:"web"`
}

// Load assembles the configuration. Missing credential files are not an
// error here: the affected provider is simply not registered, and the
// caller decides whether to warn or refuse to start.
func Load() (*Config, error) {
	cfg := &Config{
		Port:   defaultPort,
		DBPath: defaultDBPath,
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT value %q: %w", portStr, err)
		}
		cfg.Port = port
	}
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}

	if gs, err := loadGoogleSecrets(googleSecretsFile); err == nil {
		cfg.GoogleClientID = gs.Web.ClientID
		cfg.GoogleClientSecret = gs.Web.ClientSecret
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", googleSecretsFile, err)
	}
	if fs, err := loadFacebookSecrets(facebookSecretsFile); err == nil {
		cfg.FacebookAppID = fs.Web.AppID
		cfg.FacebookAppSecret = fs.Web.AppSecret
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", facebookSecretsFile, err)
	}

	// Environment wins over files.
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.GoogleClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.GoogleClientSecret = v
	}
	if v := os.Getenv("FACEBOOK_APP_ID"); v != "" {
		cfg.FacebookAppID = v
	}
	if v := os.Getenv("FACEBOOK_APP_SECRET"); v != "" {
		cfg.FacebookAppSecret = v
	}

	return cfg, nil
}

// GoogleConfigured reports whether Google sign-in can be registered.
func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// FacebookConfigured reports whether Facebook sign-in can be registered.
func (c *Config) FacebookConfigured() bool {
	return c.FacebookAppID != "" && c.FacebookAppSecret != ""
}

func loadGoogleSecrets(path string) (*googleSecrets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var gs googleSecrets
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, err
	}
	return &gs, nil
}

func loadFacebookSecrets(path string) (*facebookSecrets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fs facebookSecrets
	if err := json.Unmarshal(data, &fs); err != nil {
		return nil, err
	}
	return &fs, nil
}
