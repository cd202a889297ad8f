package auth

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// persistRefreshToken writes the refresh token into the env file, creating
// the file when missing. Unrelated keys already present are preserved.
func persistRefreshToken(path, refreshToken string) error {
	if path == "" {
		return fmt.Errorf("no env file path configured")
	}

	envMap := make(map[string]string)
	if _, err := os.Stat(path); err == nil {
		existing, err := godotenv.Read(path)
		if err != nil {
			return fmt.Errorf("failed to read env file %s: %w", path, err)
		}
		envMap = existing
	}

	envMap["SPOTIFY_REFRESH_TOKEN"] = refreshToken

	if err := godotenv.Write(envMap, path); err != nil {
		return fmt.Errorf("failed to write env file %s: %w", path, err)
	}
	return nil
}
