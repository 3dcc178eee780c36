package configuration

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"trend-finder/domain/model"
)

// YouTubeConfig represents YouTube API configuration
type YouTubeConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	ClientID       string        `mapstructure:"client_id"`
	ClientSecret   string        `mapstructure:"client_secret"`
	RedirectURL    string        `mapstructure:"redirect_url"`
	AccessToken    string        `mapstructure:"access_token"`
	RefreshToken   string        `mapstructure:"refresh_token"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

// HasOAuth reports whether both OAuth tokens are present
func (c *YouTubeConfig) HasOAuth() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// GetYouTubeConfig returns YouTube configuration from JSON config with environment variable fallback.
// It fails with model.ErrConfiguration when neither an API key nor OAuth tokens are available.
func GetYouTubeConfig() (*YouTubeConfig, error) {
	config := &YouTubeConfig{
		APIKey:         getConfigValue(C.YouTube.APIKey, "YOUTUBE_API_KEY", ""),
		BaseURL:        getConfigValue(C.YouTube.BaseURL, "YOUTUBE_BASE_URL", ""),
		ClientID:       getConfigValue(C.YouTube.ClientID, "YOUTUBE_CLIENT_ID", ""),
		ClientSecret:   getConfigValue(C.YouTube.ClientSecret, "YOUTUBE_CLIENT_SECRET", ""),
		RedirectURL:    getConfigValue(C.YouTube.RedirectURI, "YOUTUBE_REDIRECT_URL", ""),
		AccessToken:    getEnv("YOUTUBE_ACCESS_TOKEN", ""),
		RefreshToken:   getEnv("YOUTUBE_REFRESH_TOKEN", ""),
		RequestTimeout: time.Duration(C.YouTube.RequestTimeoutSeconds) * time.Second,
		RateLimit:      C.YouTube.RateLimit,
		CacheTTL:       time.Duration(C.YouTube.CacheTTLMinutes) * time.Minute,
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 10 * time.Second
	}

	// Fallback: tokens saved by an earlier OAuth consent flow
	if !config.HasOAuth() {
		if data, err := os.ReadFile("token.json"); err == nil {
			var tokenFile struct {
				AccessToken  string `json:"access_token"`
				RefreshToken string `json:"refresh_token"`
			}
			if jsonErr := json.Unmarshal(data, &tokenFile); jsonErr == nil {
				if config.AccessToken == "" {
					config.AccessToken = tokenFile.AccessToken
				}
				if config.RefreshToken == "" {
					config.RefreshToken = tokenFile.RefreshToken
				}
			}
		}
	}

	if config.APIKey == "" && !config.HasOAuth() {
		return nil, fmt.Errorf("%w: set YOUTUBE_API_KEY or youtube.apiKey", model.ErrConfiguration)
	}
	if config.HasOAuth() && (config.ClientID == "" || config.ClientSecret == "") && config.APIKey == "" {
		return nil, fmt.Errorf("%w: OAuth tokens need YOUTUBE_CLIENT_ID and YOUTUBE_CLIENT_SECRET", model.ErrConfiguration)
	}
	return config, nil
}

// getConfigValue gets value from config first, then environment variable, then default
func getConfigValue(configValue, envKey, defaultValue string) string {
	// Environment variable takes precedence when provided
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	// Otherwise use config value if set and not a placeholder
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
