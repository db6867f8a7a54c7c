package config

import (
	"os"
	"strings"
)

// LoadDotenv reads key=value pairs from path into the process environment.
// Variables already set in the environment keep their value, and a missing
// file is not an error so deployments without a .env work unchanged.
func LoadDotenv(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, raw := range strings.Split(string(data), "\n") {
		key, value, ok := parseDotenvLine(raw)
		if !ok {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		os.Setenv(key, value)
	}
	return nil
}

// parseDotenvLine extracts a key/value assignment from one line of a .env
// file. Blank lines, comments, and malformed entries report ok=false. An
// optional "export " prefix is accepted and surrounding quotes on the value
// are stripped.
func parseDotenvLine(raw string) (key, value string, ok bool) {
	line := strings.TrimSpace(raw)
	if line == "" || line[0] == '#' {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")

	key, value, found := strings.Cut(line, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return "", "", false
	}

	value = strings.TrimSpace(value)
	for _, q := range []string{`"`, `'`} {
		if len(value) >= 2 && strings.HasPrefix(value, q) && strings.HasSuffix(value, q) {
			value = value[1 : len(value)-1]
			break
		}
	}
	return key, value, true
}
