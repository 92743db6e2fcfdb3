package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

type window struct {
	From string `json:"from" jsonschema:"description=Window start"`
	Till string `json:"till"`
}

type sampleConfig struct {
	Tickers []string `json:"tickers" jsonschema:"minItems=1"`
	Window  window   `json:"window"`
	Limit   int      `json:"limit,omitempty"`
}

func (suite *UtilsTestSuite) schema(config any) map[string]any {
	schema, err := GetSchemaFromConfig(config)
	suite.Require().NoError(err)

	var result map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &result))

	return result
}

func (suite *UtilsTestSuite) TestDefinitionsAreInlined() {
	result := suite.schema(sampleConfig{})

	suite.Contains(result, "$schema")
	suite.NotContains(result, "$ref")
	suite.NotContains(result, "$defs")

	properties, ok := result["properties"].(map[string]any)
	suite.Require().True(ok)

	nested, ok := properties["window"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(nested["properties"], "from")
}

func (suite *UtilsTestSuite) TestRequiredFollowsOmitempty() {
	result := suite.schema(sampleConfig{})

	suite.ElementsMatch([]any{"tickers", "window"}, result["required"])
}

func (suite *UtilsTestSuite) TestPointerConfig() {
	result := suite.schema(&sampleConfig{})

	suite.Contains(result, "properties")
}
