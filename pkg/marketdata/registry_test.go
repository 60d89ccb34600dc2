package marketdata

import (
	"encoding/json"
	"testing"

	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) TestGetSupportedSources() {
	suite.Equal([]string{"binance", "duckdb", "polygon"}, GetSupportedSources())
}

func (suite *RegistryTestSuite) TestGetSourceInfo() {
	info, err := GetSourceInfo("polygon")
	suite.NoError(err)
	suite.Equal("Polygon.io", info.DisplayName)
	suite.True(info.RequiresAuth)

	info, err = GetSourceInfo("duckdb")
	suite.NoError(err)
	suite.True(info.HistoricalOnly)
	suite.Equal([]PriceKind{PriceKindLast}, info.QuoteKinds)

	_, err = GetSourceInfo("kraken")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))
}

func (suite *RegistryTestSuite) TestGetSourceConfigSchema() {
	schema, err := GetSourceConfigSchema()
	suite.Require().NoError(err)

	var result map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &result))

	properties, ok := result["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(properties, "type")
	suite.Contains(properties, "polygonApiKey")
	suite.Contains(properties, "duckdb")
}

func (suite *RegistryTestSuite) TestParseSourceConfig() {
	tests := []struct {
		name    string
		json    string
		wantErr bool
	}{
		{name: "binance", json: `{"type":"binance"}`},
		{name: "polygon with key", json: `{"type":"polygon","polygonApiKey":"abc"}`},
		{name: "polygon without key", json: `{"type":"polygon"}`, wantErr: true},
		{name: "duckdb with parquet", json: `{"type":"duckdb","duckdb":{"parquet":"bars.parquet"}}`},
		{name: "duckdb without section", json: `{"type":"duckdb"}`, wantErr: true},
		{name: "duckdb without parquet", json: `{"type":"duckdb","duckdb":{}}`, wantErr: true},
		{name: "cache with bad addr", json: `{"type":"binance","cache":{"addr":"nope"}}`, wantErr: true},
		{name: "cache", json: `{"type":"binance","cache":{"addr":"localhost:6379"}}`},
		{name: "unknown type", json: `{"type":"kraken"}`, wantErr: true},
		{name: "malformed", json: `{`, wantErr: true},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := ParseSourceConfig(tc.json)
			if tc.wantErr {
				suite.Error(err)
				suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
				return
			}

			suite.NoError(err)
		})
	}
}
