// Package config resolves the application configuration from viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/spendsync/internal/common"
)

// resolvePath turns a configured file location into an absolute path.
// Environment variables are expanded first, so a variable may itself start
// with ~. An empty path stays empty.
func resolvePath(key, path string) (string, error) {
	path = strings.TrimSpace(os.ExpandEnv(path))
	if path == "" {
		return "", nil
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: %s %q: %v", common.ErrInvalidConfig, key, path, err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s %q: %v", common.ErrInvalidConfig, key, path, err)
	}
	return abs, nil
}
