package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Load reads the given .env files (".env" when none are named) into the
// process environment, then snapshots the environment. Variables that
// are already set win over the files. A missing file is not an error.
func Load(files ...string) (map[string]string, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return New(), nil
}

func New() map[string]string {
	environ := os.Environ()
	envAsMap := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry != "" {
			key, value := split(entry)
			envAsMap[key] = value
		}
	}
	return envAsMap
}

// assumes entry is not the empty string
func split(entry string) (key, value string) {
	parts := strings.SplitN(entry, "=", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func GetString(config map[string]string, key string, defaultValue string) string {
	if config == nil {
		return defaultValue
	}

	if val, ok := config[key]; ok && val != "" {
		return val
	}
	return defaultValue
}

func GetInt(config map[string]string, key string, defaultValue int) int {
	if config == nil {
		return defaultValue
	}

	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asInt, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}

	return asInt
}

func GetBool(config map[string]string, key string, defaultValue bool) bool {
	if config == nil {
		return defaultValue
	}

	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asBool, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return defaultValue
	}

	return asBool
}

// GetList splits a comma separated value, dropping blank entries
func GetList(config map[string]string, key string) []string {
	raw := GetString(config, key, "")
	if raw == "" {
		return nil
	}

	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
