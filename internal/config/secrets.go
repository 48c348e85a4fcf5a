package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-now/internal/weather"
)

// FileSecrets reads secrets from a dotenv-format key file, e.g.
//
//	openWeatherMapKey=abc123
//
// The file is read on every lookup so a rotated key is picked up without a restart.
type FileSecrets struct {
	Path string
}

func (f FileSecrets) Secret(name string) (string, error) {
	values, err := godotenv.Read(f.Path)
	if err != nil {
		return "", fmt.Errorf("%w: reading key file %s: %v", weather.ErrConfiguration, f.Path, err)
	}
	v, ok := values[name]
	if !ok {
		return "", fmt.Errorf("%w: %s missing from key file %s", weather.ErrConfiguration, name, f.Path)
	}
	return v, nil
}

// EnvSecrets maps secret names to environment variables.
type EnvSecrets map[string]string

func (e EnvSecrets) Secret(name string) (string, error) {
	envVar, ok := e[name]
	if !ok {
		return "", fmt.Errorf("%w: unknown secret %s", weather.ErrConfiguration, name)
	}
	v, ok := os.LookupEnv(envVar)
	if !ok {
		return "", fmt.Errorf("%w: %s is not set", weather.ErrConfiguration, envVar)
	}
	return v, nil
}

// Secrets returns the secret source selected by the configuration.
func (c *AppConfig) Secrets() weather.SecretSource {
	if c.KeysFile != "" {
		return FileSecrets{Path: c.KeysFile}
	}
	return EnvSecrets{weather.SecretKeyName: "OPENWEATHER_API_KEY"}
}
