package main

import (
	"bufio"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

const envSearchDepth = 6

// loadEnvFile applies the nearest .env above the working directory. Variables
// already present in the environment win.
func loadEnvFile(logger *log.Logger) {
	dir, err := os.Getwd()
	if err != nil {
		logger.Printf("WARN: failed to locate .env: %v", err)
		return
	}
	path := findEnvFile(dir, envSearchDepth)
	if path == "" {
		logger.Printf("WARN: .env not found in current or parent directories")
		return
	}

	file, err := os.Open(path)
	if err != nil {
		logger.Printf("WARN: failed to open %s: %v", path, err)
		return
	}
	defer file.Close()

	vars, err := parseEnv(file)
	if err != nil {
		logger.Printf("WARN: failed to load %s: %v", path, err)
		return
	}
	for key, value := range vars {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			logger.Printf("WARN: failed to set %s from env file", key)
		}
	}
	logger.Printf("loaded env from %s", path)
}

func findEnvFile(dir string, depth int) string {
	for i := 0; i < depth; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// parseEnv reads KEY=VALUE lines, skipping blanks, comments and malformed
// lines. A leading "export " and matching surrounding quotes are dropped.
func parseEnv(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)
	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		vars[key] = trimQuotes(strings.TrimSpace(value))
	}
	return vars, scanner.Err()
}

func trimQuotes(value string) string {
	if len(value) < 2 {
		return value
	}
	if (value[0] == '"' && value[len(value)-1] == '"') ||
		(value[0] == '\'' && value[len(value)-1] == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}
