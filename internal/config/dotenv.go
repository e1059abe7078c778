package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// DefaultDotEnv is the file LoadDotEnv reads when no paths are given.
const DefaultDotEnv = ".env"

// LoadDotEnv copies variables from the given dotenv files into the process
// environment. Variables already set are not overridden and missing files are
// skipped, so the environment keeps its precedence over the file.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{DefaultDotEnv}
	}

	for _, path := range paths {
		err := godotenv.Load(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
