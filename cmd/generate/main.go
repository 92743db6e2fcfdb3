package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/iss-candles/pkg/marketdata"
)

const (
	configDir  = "./config"
	schemaName = "download-config.json"
	sampleName = "download-config.yaml"
)

func validatePaths(schemaPath, sampleConfigPath string) error {
	if schemaPath == "" {
		return fmt.Errorf("schema path cannot be empty")
	}

	if sampleConfigPath == "" {
		return fmt.Errorf("sample config path cannot be empty")
	}

	return nil
}

func validateSchemaName(name string) error {
	if name == "" {
		return fmt.Errorf("schema name cannot be empty")
	}

	if !strings.HasSuffix(name, ".json") {
		return fmt.Errorf("schema name %q must have .json extension", name)
	}

	return nil
}

func getSchemaReference(name string) string {
	return "# yaml-language-server: $schema=" + name + "\n"
}

// generateSchemaFile writes the download configuration JSON schema to schemaPath.
func generateSchemaFile(schemaPath string) error {
	schemaJSON, err := marketdata.GetDownloadConfigSchema()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(schemaPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	return nil
}

// generateSampleConfig writes the default configuration as YAML unless samplePath already exists.
func generateSampleConfig(config marketdata.DownloadConfig, samplePath, schemaName string) error {
	if _, err := os.Stat(samplePath); err == nil {
		return nil
	}

	yamlBytes, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	yamlBytes = append([]byte(getSchemaReference(schemaName)), yamlBytes...)

	if err := os.WriteFile(samplePath, yamlBytes, 0644); err != nil {
		return fmt.Errorf("failed to write sample config to file: %w", err)
	}

	log.Printf("Sample config successfully generated at %s", samplePath)

	return nil
}

func main() {
	schemaPath := filepath.Join(configDir, schemaName)
	sampleConfigPath := filepath.Join(configDir, sampleName)

	if err := validatePaths(schemaPath, sampleConfigPath); err != nil {
		log.Fatal(err)
	}

	if err := validateSchemaName(schemaName); err != nil {
		log.Fatal(err)
	}

	if err := generateSchemaFile(schemaPath); err != nil {
		log.Fatal(err)
	}

	if err := generateSampleConfig(marketdata.DefaultDownloadConfig(), sampleConfigPath, schemaName); err != nil {
		log.Fatal(err)
	}

	log.Printf("Schema successfully generated at %s", schemaPath)
}
