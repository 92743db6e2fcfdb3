package writer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/iss-candles/internal/types"
	"github.com/stretchr/testify/suite"
)

type CSVWriterTestSuite struct {
	suite.Suite
	tempDir string
}

func TestCSVWriterSuite(t *testing.T) {
	suite.Run(t, new(CSVWriterTestSuite))
}

func (suite *CSVWriterTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
}

func row(pairs ...any) *types.Record {
	r := types.NewRecord(len(pairs) / 2)
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i].(string), pairs[i+1])
	}

	return r
}

func (suite *CSVWriterTestSuite) read(path string) string {
	data, err := os.ReadFile(path)
	suite.Require().NoError(err)

	return string(data)
}

func (suite *CSVWriterTestSuite) TestSaveToCSVNewFileWritesHeader() {
	path := filepath.Join(suite.tempDir, "out.csv")

	err := SaveToCSV([]*types.Record{
		row("a", json.Number("1"), "b", json.Number("2")),
		row("a", json.Number("3"), "b", json.Number("4")),
	}, path)
	suite.Require().NoError(err)

	suite.Equal("a,b\n1,2\n3,4\n", suite.read(path))
}

func (suite *CSVWriterTestSuite) TestSaveToCSVTwiceAppendsWithoutHeader() {
	path := filepath.Join(suite.tempDir, "append.csv")

	r1 := []*types.Record{row("open", json.Number("10"), "ticker", "AAA")}
	r2 := []*types.Record{
		row("open", json.Number("11"), "ticker", "AAA"),
		row("open", json.Number("12"), "ticker", "BBB"),
	}

	suite.Require().NoError(SaveToCSV(r1, path))
	suite.Require().NoError(SaveToCSV(r2, path))

	suite.Equal("open,ticker\n10,AAA\n11,AAA\n12,BBB\n", suite.read(path))
}

func (suite *CSVWriterTestSuite) TestSaveToCSVExistingHeaderNotChecked() {
	path := filepath.Join(suite.tempDir, "mismatch.csv")
	suite.Require().NoError(os.WriteFile(path, []byte("x,y,z\n"), 0644))

	suite.Require().NoError(SaveToCSV([]*types.Record{row("a", "1")}, path))

	suite.Equal("x,y,z\n1\n", suite.read(path))
}

func (suite *CSVWriterTestSuite) TestSaveToCSVHeaderIsUnionOfFields() {
	path := filepath.Join(suite.tempDir, "union.csv")

	err := SaveToCSV([]*types.Record{
		row("a", "1", "b", "2"),
		row("b", "3", "c", "4"),
	}, path)
	suite.Require().NoError(err)

	suite.Equal("a,b,c\n1,2,\n,3,4\n", suite.read(path))
}

func (suite *CSVWriterTestSuite) TestSaveToCSVQuoting() {
	path := filepath.Join(suite.tempDir, "quote.csv")

	err := SaveToCSV([]*types.Record{row("name", `ПАО "Сбербанк", ао`, "null", nil)}, path)
	suite.Require().NoError(err)

	suite.Equal("name,null\n\"ПАО \"\"Сбербанк\"\", ао\",\n", suite.read(path))
}

func (suite *CSVWriterTestSuite) TestSaveToCSVEmptyRowsNoFile() {
	path := filepath.Join(suite.tempDir, "empty.csv")

	suite.Require().NoError(SaveToCSV(nil, path))

	_, err := os.Stat(path)
	suite.True(os.IsNotExist(err))
}

func (suite *CSVWriterTestSuite) TestSaveToCSVEmptyRowsExistingFileUnchanged() {
	path := filepath.Join(suite.tempDir, "keep.csv")
	suite.Require().NoError(os.WriteFile(path, []byte("a\n1\n"), 0644))

	suite.Require().NoError(SaveToCSV(nil, path))

	suite.Equal("a\n1\n", suite.read(path))
}

func (suite *CSVWriterTestSuite) TestWriterLifecycle() {
	path := filepath.Join(suite.tempDir, "nested", "candles.csv")
	w := NewCSVWriter(path)
	suite.Equal(path, w.GetOutputPath())

	suite.Error(w.Write(row("a", "1")))

	suite.Require().NoError(w.Initialize())
	suite.Require().NoError(w.Write(row("a", "1")))
	suite.Require().NoError(w.Write(row("a", "2")))

	// nothing is written before Finalize
	_, err := os.Stat(path)
	suite.True(os.IsNotExist(err))

	out, err := w.Finalize()
	suite.Require().NoError(err)
	suite.Equal(path, out)
	suite.Equal("a\n1\n2\n", suite.read(path))

	suite.Error(w.Write(row("a", "3")))
	_, err = w.Finalize()
	suite.Error(err)

	suite.NoError(w.Close())
}

func (suite *CSVWriterTestSuite) TestFinalizeWithoutInitialize() {
	w := NewCSVWriter(filepath.Join(suite.tempDir, "x.csv"))

	_, err := w.Finalize()
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")
}

func (suite *CSVWriterTestSuite) TestHeader() {
	suite.Nil(Header(nil))
	suite.Equal([]string{"a", "b", "ticker"}, Header([]*types.Record{
		row("a", 1, "b", 2, "ticker", "X"),
		row("b", 2, "a", 1, "ticker", "Y"),
	}))
}
