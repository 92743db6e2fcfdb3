package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type CandleTestSuite struct {
	suite.Suite
}

func TestCandleSuite(t *testing.T) {
	suite.Run(t, new(CandleTestSuite))
}

func candleRecord() *Record {
	r := NewRecord(9)
	r.Set(ColumnOpen, json.Number("270.1"))
	r.Set(ColumnClose, json.Number("270.5"))
	r.Set(ColumnHigh, json.Number("271"))
	r.Set(ColumnLow, json.Number("269.9"))
	r.Set(ColumnValue, json.Number("1352500"))
	r.Set(ColumnVolume, json.Number("5000"))
	r.Set(ColumnBegin, "2024-01-03 10:00:00")
	r.Set(ColumnEnd, "2024-01-03 10:00:59")
	r.Set(ColumnTicker, "SBER")

	return r
}

func (suite *CandleTestSuite) TestToCandle() {
	c, err := ToCandle(candleRecord())
	suite.Require().NoError(err)

	suite.Equal("SBER", c.Ticker)
	suite.Equal(270.1, c.Open)
	suite.Equal(270.5, c.Close)
	suite.Equal(271.0, c.High)
	suite.Equal(269.9, c.Low)
	suite.Equal(1352500.0, c.Value)
	suite.Equal(5000.0, c.Volume)
	suite.True(c.Begin.Equal(time.Date(2024, 1, 3, 10, 0, 0, 0, ExchangeLocation)))
	suite.True(c.End.Equal(time.Date(2024, 1, 3, 10, 0, 59, 0, ExchangeLocation)))
}

func (suite *CandleTestSuite) TestToCandleMissingColumn() {
	r := NewRecord(1)
	r.Set(ColumnOpen, json.Number("1"))

	_, err := ToCandle(r)
	suite.Error(err)
	suite.Contains(err.Error(), `missing column "high"`)
}

func (suite *CandleTestSuite) TestToCandleBadTimestamp() {
	r := candleRecord()
	r.Set(ColumnBegin, "03.01.2024")

	_, err := ToCandle(r)
	suite.Error(err)
	suite.Contains(err.Error(), `column "begin"`)
}

func (suite *CandleTestSuite) TestToCandleWrongType() {
	r := candleRecord()
	r.Set(ColumnVolume, true)

	_, err := ToCandle(r)
	suite.Error(err)
	suite.Contains(err.Error(), "unexpected type")
}
