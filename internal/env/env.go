// Package env reads KEY=VALUE files and applies FXDEMO_* overrides on top of the YAML config.
package env

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"fxdemo/internal/config"
)

// DefaultPath is the env file loaded at startup when present.
const DefaultPath = ".env"

// Override variables, highest precedence after command-line flags.
const (
	ControlAddr    = "FXDEMO_CONTROL_ADDR"
	LogFile        = "FXDEMO_LOG_FILE"
	Seed           = "FXDEMO_SEED"
	FPS            = "FXDEMO_FPS"
	Font           = "FXDEMO_FONT"
	EnvironmentURL = "FXDEMO_ENVIRONMENT_URL"
	ModelURL       = "FXDEMO_MODEL_URL"
)

// Parse reads KEY=VALUE lines. Blank lines, # comments and lines without a key are skipped;
// an optional "export " prefix and matching surrounding quotes are removed.
func Parse(r io.Reader) (map[string]string, error) {
	out := map[string]string{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		out[key] = value
	}
	return out, scanner.Err()
}

// Load sets the variables in path that are not already set in the process environment.
// A missing file is not an error. Returns how many variables were set.
func Load(path string) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()
	vars, err := Parse(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	n := 0
	for k, v := range vars {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Apply copies the FXDEMO_* overrides found by lookup into c. Use os.LookupEnv in main.
func Apply(c *config.Config, lookup func(string) (string, bool)) error {
	str := map[string]*string{
		ControlAddr:    &c.Control.Addr,
		LogFile:        &c.Console.LogFile,
		Font:           &c.UI.Font,
		EnvironmentURL: &c.Assets.EnvironmentURL,
		ModelURL:       &c.Assets.ModelURL,
	}
	for k, dst := range str {
		if v, ok := lookup(k); ok {
			*dst = v
		}
	}
	if v, ok := lookup(Seed); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", config.ErrInvalidConfig, Seed, v)
		}
		c.Scene.Seed = n
	}
	if v, ok := lookup(FPS); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s=%q", config.ErrInvalidConfig, FPS, v)
		}
		c.Window.FPS = n
	}
	return nil
}
