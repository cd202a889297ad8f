// Package config provides secure configuration management for the csv2spotify application.
//
// This package handles loading configuration from environment variables and .env files
// with built-in security measures to prevent path traversal attacks. It uses the
// github.com/caarlos0/env library for environment variable parsing and
// github.com/joho/godotenv for .env file loading.
//
// The configuration loading follows a priority order:
//  1. Environment variables (highest priority)
//  2. .env file in current working directory
//  3. Default values (if any)
//
// Example usage:
//
//	import "github.com/upstreamhub/csv2spotify/pkg/config"
//
//	func main() {
//		conf := config.GetEnvVars()
//		fmt.Printf("CSV source: %s\n", conf.CSV.Path)
//	}
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config represents the main application configuration with nested service configurations.
type Config struct {
	CSV       CSVConfig       `envPrefix:"CSV_"`
	Spotify   SpotifyConfig   `envPrefix:"SPOTIFY_"`
	Playlists PlaylistsConfig `envPrefix:"PLAYLIST_"`
	Server    ServerConfig    `envPrefix:"SERVER_"`
	CI        CIConfig
}

// CSVConfig represents the configuration for the CSV track source.
type CSVConfig struct {
	// Path is the CSV source: an http(s) URL or a local file path.
	Path string `env:"PATH" envDefault:"tracks.csv"`

	// HTTPTimeout is the timeout for HTTP requests in seconds.
	HTTPTimeout int `env:"HTTP_TIMEOUT" envDefault:"30"`
}

// SpotifyConfig represents the configuration for Spotify API integration.
//
// This struct contains all the necessary configuration parameters for
// authenticating and interacting with the Spotify API.
type SpotifyConfig struct {
	// ClientID is the Spotify application client ID.
	ClientID string `env:"CLIENT_ID"`

	// ClientSecret is the Spotify application client secret.
	ClientSecret string `env:"CLIENT_SECRET"` // #nosec G117 -- OAuth client secret, expected in config

	// AccessToken is an optional ready-made short-lived access token.
	// When set it is used as-is and no token exchange is attempted.
	AccessToken string `env:"ACCESS_TOKEN"`

	// RefreshToken is the long-lived credential exchanged for access tokens.
	RefreshToken string `env:"REFRESH_TOKEN"`

	// RedirectURL is the callback URL for interactive OAuth authorization.
	RedirectURL string `env:"REDIRECT_URI" envDefault:"http://localhost:8080/callback"`

	// EnvFilePath is the flat credential file updated when a new refresh
	// token is obtained interactively. Unrelated keys are preserved.
	EnvFilePath string `env:"ENV_FILE_PATH" envDefault:".env"`
}

// PlaylistsConfig identifies the two target playlists.
type PlaylistsConfig struct {
	// OneID is the playlist capped at 3 tracks per artist.
	OneID string `env:"ONE_ID" envDefault:"5TGXCfKbeG0emEZjm6hMRJ"`

	// TwoID is the playlist capped at 1 track per artist.
	TwoID string `env:"TWO_ID" envDefault:"5vQfOSbBgybQkWSSrILyr9"`
}

// ServerConfig represents the OAuth callback server configuration.
type ServerConfig struct {
	Host string `env:"HOST" envDefault:"127.0.0.1"`
	Port int    `env:"PORT" envDefault:"8080"`
}

// CIConfig carries unattended-environment markers. Interactive authorization
// must not be attempted when either marker is present.
type CIConfig struct {
	GitHubActions string `env:"GITHUB_ACTIONS"`
	CI            string `env:"CI"`
}

// GetEnvVars loads and returns the application configuration from environment
// variables and .env files.
//
// This function performs the following operations:
//  1. Securely determines the current working directory
//  2. Constructs and validates the .env file path to prevent traversal attacks
//  3. Loads .env file if it exists in the current directory
//  4. Parses environment variables into the Config struct
//  5. Validates the configuration
//  6. Returns the populated configuration
//
// The function will terminate the program with os.Exit(1) if any critical
// errors occur during configuration loading, such as .env file parsing
// errors, environment variable parsing failures, or validation errors.
func GetEnvVars() Config {
	// Get current working directory for secure file operations
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Printf("Error getting current working directory: %s\n", err)
		os.Exit(1)
	}

	// Construct secure path for .env file within current directory
	envPath := filepath.Join(cwd, ".env")

	// Ensure the path is within our expected directory (prevent traversal)
	cleanEnvPath, err := filepath.Abs(envPath)
	if err != nil {
		fmt.Printf("Error resolving .env file path: %s\n", err)
		os.Exit(1)
	}
	cleanCwd, err := filepath.Abs(cwd)
	if err != nil {
		fmt.Printf("Error resolving current directory: %s\n", err)
		os.Exit(1)
	}
	relPath, err := filepath.Rel(cleanCwd, cleanEnvPath)
	if err != nil || strings.Contains(relPath, "..") {
		fmt.Printf("Error: .env file path traversal detected\n")
		os.Exit(1)
	}

	// Load .env file if it exists
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Error loading .env file: %s\n", err)
			os.Exit(1)
		}
	}

	// Parse environment variables into config struct
	var conf Config
	if err := env.Parse(&conf); err != nil {
		fmt.Printf("Error parsing configuration from environment: %s\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := validateConfig(&conf); err != nil {
		fmt.Printf("Configuration validation error: %s\n", err)
		fmt.Println("Please check your configuration and try again.")
		os.Exit(1)
	}

	return conf
}

// Address returns the callback server address
func (s ServerConfig) Address() string {
	if s.Host == "" {
		s.Host = "127.0.0.1"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsRemote reports whether the CSV source is an http(s) URL.
func (c CSVConfig) IsRemote() bool {
	lower := strings.ToLower(c.Path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Unattended reports whether an unattended-environment marker is set.
func (c CIConfig) Unattended() bool {
	return c.GitHubActions != "" || c.CI != ""
}

// HasClientCredentials reports whether both halves of the client identity
// pair are configured.
func (s SpotifyConfig) HasClientCredentials() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// validateConfig validates the configuration
func validateConfig(conf *Config) error {
	var errs []string

	if conf.CSV.Path == "" {
		errs = append(errs, ErrMissingCSVPath.Error())
	}
	if conf.CSV.HTTPTimeout <= 0 {
		errs = append(errs, ErrInvalidHTTPTimeout.Error())
	}
	if conf.Server.Port < 1 || conf.Server.Port > 65535 {
		errs = append(errs, ErrInvalidServerPort.Error())
	}

	// Validate Spotify configuration (warn but don't fail)
	if conf.Spotify.ClientID == "" && conf.Spotify.AccessToken == "" {
		fmt.Println("Warning: neither SPOTIFY_CLIENT_ID nor SPOTIFY_ACCESS_TOKEN is set. The application will not be able to connect to Spotify.")
	}
	if conf.Spotify.ClientID != "" && conf.Spotify.ClientSecret == "" {
		fmt.Println("Warning: SPOTIFY_CLIENT_SECRET is not set. Token exchange will not be possible.")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}
