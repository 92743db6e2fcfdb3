package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeInvalidConfiguration, "bad ticker: %s", "SBER")
	suite.Equal(ErrCodeInvalidConfiguration, err.Code)
	suite.Equal("bad ticker: SBER", err.Message)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeMarketDataFetchFailed, "query failed", cause)
	suite.Equal(ErrCodeMarketDataFetchFailed, err.Code)
	suite.Equal(cause, err.Cause)
	suite.True(Is(err, cause))
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("unexpected EOF")
	err := Wrapf(ErrCodeMarketDataDecodeFailed, cause, "decode %s", "candles")
	suite.Equal("decode candles", err.Message)
	suite.Equal(cause, err.Unwrap())
}

func (suite *ErrorTestSuite) TestErrorString() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal("[100] invalid parameter", err.Error())
}

func (suite *ErrorTestSuite) TestErrorStringWithCause() {
	cause := errors.New("timeout")
	err := Wrap(ErrCodeMarketDataFetchFailed, "query failed", cause)
	suite.Equal("[700] query failed: timeout", err.Error())
}

func (suite *ErrorTestSuite) TestGetCodeThroughWrapping() {
	inner := New(ErrCodeMarketDataSchemaMismatch, "unexpected schema")
	outer := fmt.Errorf("get candles: %w", inner)

	suite.Equal(ErrCodeMarketDataSchemaMismatch, GetCode(outer))
	suite.True(HasCode(outer, ErrCodeMarketDataSchemaMismatch))

	var target *Error
	suite.True(As(outer, &target))
	suite.Equal(inner, target)
}

func (suite *ErrorTestSuite) TestGetCodeUnknown() {
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("plain")))
	suite.Equal(ErrCodeUnknown, GetCode(nil))
}

func (suite *ErrorTestSuite) TestCodeString() {
	suite.Equal("fetch_failed", ErrCodeMarketDataFetchFailed.String())
	suite.Equal("schema_mismatch", ErrCodeMarketDataSchemaMismatch.String())
	suite.Equal("unknown", ErrorCode(9999).String())
}
