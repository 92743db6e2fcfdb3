package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type RecordTestSuite struct {
	suite.Suite
}

func TestRecordSuite(t *testing.T) {
	suite.Run(t, new(RecordTestSuite))
}

func (suite *RecordTestSuite) TestSetKeepsInsertionOrder() {
	r := NewRecord(3)
	r.Set("open", json.Number("100.5"))
	r.Set("close", json.Number("101"))
	r.Set("begin", "2024-01-03 10:00:00")

	suite.Equal([]string{"open", "close", "begin"}, r.Keys())
	suite.Equal(3, r.Len())
}

func (suite *RecordTestSuite) TestSetOverwritesInPlace() {
	r := NewRecord(2)
	r.Set("a", 1)
	r.Set("b", 2)
	r.Set("a", 3)

	suite.Equal([]string{"a", "b"}, r.Keys())
	suite.Equal(3, r.Get("a").Unwrap())
}

func (suite *RecordTestSuite) TestGetMissingIsNone() {
	r := NewRecord(0)
	suite.True(r.Get("ticker").IsNone())
	suite.False(r.Has("ticker"))

	r.Set("ticker", nil)
	suite.True(r.Get("ticker").IsSome())
	suite.True(r.Has("ticker"))
}

func (suite *RecordTestSuite) TestKeysReturnsCopy() {
	r := NewRecord(1)
	r.Set("a", 1)

	keys := r.Keys()
	keys[0] = "mutated"

	suite.Equal([]string{"a"}, r.Keys())
}

func (suite *RecordTestSuite) TestString() {
	r := NewRecord(6)
	r.Set("num", json.Number("1.50"))
	r.Set("float", 2.25)
	r.Set("null", nil)
	r.Set("str", "SBER")
	r.Set("bool", true)
	r.Set("int", 7)

	suite.Equal("1.50", r.String("num"))
	suite.Equal("2.25", r.String("float"))
	suite.Equal("", r.String("null"))
	suite.Equal("SBER", r.String("str"))
	suite.Equal("true", r.String("bool"))
	suite.Equal("7", r.String("int"))
	suite.Equal("", r.String("missing"))
}

func (suite *RecordTestSuite) TestMarshalJSONPreservesOrder() {
	r := NewRecord(3)
	r.Set("b", 2)
	r.Set("a", "x")
	r.Set("c", nil)

	data, err := json.Marshal(r)
	suite.Require().NoError(err)
	suite.Equal(`{"b":2,"a":"x","c":null}`, string(data))
}
