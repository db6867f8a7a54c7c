package config

import (
	"os"
	"path/filepath"
)

// RootPath returns the root directory for taskwise data.
// It uses $TASKWISE_PATH if set, otherwise defaults to ~/.taskwise.
func RootPath() string {
	if v := os.Getenv("TASKWISE_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".taskwise")
	}
	return filepath.Join(home, ".taskwise")
}

// ConfigPath returns the path to the taskwise config file.
func ConfigPath() string {
	return filepath.Join(RootPath(), "config.jsonc")
}

// DotenvPath returns the path to the taskwise .env file.
func DotenvPath() string {
	return filepath.Join(RootPath(), ".env")
}
