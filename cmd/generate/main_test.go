package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/iss-candles/pkg/marketdata"
)

type GenerateCmdTestSuite struct {
	suite.Suite
	tempDir string
}

func (suite *GenerateCmdTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
	suite.T().Chdir(suite.tempDir)
}

func (suite *GenerateCmdTestSuite) TestSchemaGeneration() {
	main()

	configDir := filepath.Join(suite.tempDir, "config")
	suite.True(dirExists(configDir), "Config directory should exist")

	schemaPath := filepath.Join(configDir, "download-config.json")
	suite.True(fileExists(schemaPath), "Schema file should exist")

	schemaContent, err := os.ReadFile(schemaPath)
	suite.Require().NoError(err)

	var schema map[string]any
	suite.Require().NoError(json.Unmarshal(schemaContent, &schema))
	suite.Contains(schema, "properties")
}

func (suite *GenerateCmdTestSuite) TestSampleConfigGeneration() {
	main()

	sampleConfigPath := filepath.Join(suite.tempDir, "config", "download-config.yaml")
	suite.True(fileExists(sampleConfigPath), "Sample config file should exist")

	sampleConfigContent, err := os.ReadFile(sampleConfigPath)
	suite.Require().NoError(err)
	suite.Contains(string(sampleConfigContent), "# yaml-language-server: $schema=download-config.json")

	// the sample must load back as the defaults
	loaded, err := marketdata.LoadDownloadConfig(sampleConfigPath)
	suite.Require().NoError(err)
	suite.Equal(marketdata.DefaultDownloadConfig(), *loaded)
}

func (suite *GenerateCmdTestSuite) TestSampleConfigNotOverwritten() {
	main()

	sampleConfigPath := filepath.Join(suite.tempDir, "config", "download-config.yaml")
	originalContent, err := os.ReadFile(sampleConfigPath)
	suite.Require().NoError(err)

	main()

	newContent, err := os.ReadFile(sampleConfigPath)
	suite.Require().NoError(err)
	suite.Equal(string(originalContent), string(newContent), "Sample config should not be overwritten")
}

func (suite *GenerateCmdTestSuite) TestGenerateSchemaFileInvalidPath() {
	blocker := filepath.Join(suite.tempDir, "blocker")
	suite.Require().NoError(os.WriteFile(blocker, []byte("x"), 0644))

	err := generateSchemaFile(filepath.Join(blocker, "schema.json"))
	suite.Error(err, "Should return error for invalid path")
	suite.Contains(err.Error(), "failed to")
}

func (suite *GenerateCmdTestSuite) TestGenerateSampleConfigAlreadyExists() {
	samplePath := filepath.Join(suite.tempDir, "existing-config.yaml")

	originalContent := []byte("existing content")
	suite.Require().NoError(os.WriteFile(samplePath, originalContent, 0644))

	err := generateSampleConfig(marketdata.DefaultDownloadConfig(), samplePath, "test-schema.json")
	suite.Require().NoError(err)

	content, err := os.ReadFile(samplePath)
	suite.Require().NoError(err)
	suite.Equal(string(originalContent), string(content), "Existing file should not be overwritten")
}

func (suite *GenerateCmdTestSuite) TestValidatePaths() {
	suite.NoError(validatePaths("/some/path/schema.json", "/some/path/config.yaml"))

	err := validatePaths("", "/some/path/config.yaml")
	suite.Error(err)
	suite.Contains(err.Error(), "schema path cannot be empty")

	err = validatePaths("/some/path/schema.json", "")
	suite.Error(err)
	suite.Contains(err.Error(), "sample config path cannot be empty")
}

func (suite *GenerateCmdTestSuite) TestValidateSchemaName() {
	suite.NoError(validateSchemaName("schema.json"))
	suite.NoError(validateSchemaName("my-schema-file.json"))

	err := validateSchemaName("")
	suite.Error(err)
	suite.Contains(err.Error(), "schema name cannot be empty")

	err = validateSchemaName("schema.txt")
	suite.Error(err)
	suite.Contains(err.Error(), "must have .json extension")
}

func (suite *GenerateCmdTestSuite) TestGetSchemaReference() {
	suite.Equal("# yaml-language-server: $schema=test-schema.json\n", getSchemaReference("test-schema.json"))
	suite.Equal("# yaml-language-server: $schema=\n", getSchemaReference(""))
}

// Helper functions
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return !os.IsNotExist(err) && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return !os.IsNotExist(err) && !info.IsDir()
}

func TestGenerateCmdSuite(t *testing.T) {
	suite.Run(t, new(GenerateCmdTestSuite))
}
