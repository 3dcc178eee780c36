package configuration

import (
	"os"

	"trend-finder/infrastructure/logger"

	"github.com/joho/godotenv"
)

// LoadEnvFromFile loads KEY=VALUE pairs from one or more files (e.g., config.env, .env).
// Missing files are skipped and existing env vars are not overridden.
func LoadEnvFromFile(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			logger.GetLogger().WithField("file", p).Debug("env file not found")
			continue
		}
		if err := godotenv.Load(p); err != nil {
			logger.GetLogger().WithField("file", p).WithField("error", err).Warn("failed loading env file")
			continue
		}
		logger.GetLogger().WithField("file", p).Info("Loaded env file")
	}
}
