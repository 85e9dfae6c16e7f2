package wagefile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mminer237/efw2-maker/internal/domain"
)

const header = "ssn,first_name,middle_initial,last_name,suffix,address_1,address_2,city,state,zip,email,wages,federal_tax,ss_wages,ss_tax,medicare_wages,medicare_tax,ss_tips,taxing_state,state_id,state_wages,state_tax\n"

func TestCSVReader_Read(t *testing.T) {
	in := header +
		"987-65-4321,John,Q,Smith,Jr,42 Elm St,Apt 3,Peoria,IL,61602,john@example.com,50000.00,8000.00,50000.00,3100.00,50000.00,725.00,,IL,12-3456,50000.00,2475.00\n" +
		"111223333,Zoë,,Ng,,\"1 Main St, Rear\",,Chicago,IL,60601-1234,,\"$1,234.56\",0,1234.56,76.54,1234.56,17.90,10.01,IL,12-3456,1234.56,61.11\n"

	records, err := CSVReader{}.Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "987654321", first.SSN)
	assert.Equal(t, "John", first.FirstName)
	assert.Equal(t, "Q", first.MiddleInitial)
	assert.Equal(t, "Jr", first.Suffix)
	assert.Equal(t, "42 Elm St", first.AddressLine1)
	assert.Equal(t, "Apt 3", first.AddressLine2)
	assert.Equal(t, "john@example.com", first.Email)
	assert.True(t, decimal.RequireFromString("50000").Equal(first.Amounts.Wages))
	assert.True(t, decimal.RequireFromString("725").Equal(first.Amounts.MedicareTax))
	assert.True(t, first.Amounts.SSTips.IsZero(), "empty ss_tips is zero")
	assert.Equal(t, "IL", first.StateInfo.TaxingState)
	assert.True(t, decimal.RequireFromString("2475").Equal(first.StateInfo.Tax))

	second := records[1]
	assert.Equal(t, "Zoë", second.FirstName)
	assert.Equal(t, "1 Main St, Rear", second.AddressLine1)
	assert.Equal(t, "60601-1234", second.ZIP)
	assert.True(t, decimal.RequireFromString("1234.56").Equal(second.Amounts.Wages))
	assert.True(t, decimal.RequireFromString("10.01").Equal(second.Amounts.SSTips))
}

func TestCSVReader_OptionalColumnsOmitted(t *testing.T) {
	in := "ssn,first_name,middle_initial,last_name,suffix,address_1,city,state,zip,wages,federal_tax,ss_wages,ss_tax,medicare_wages,medicare_tax,taxing_state,state_id,state_wages,state_tax\n" +
		"987654321,John,,Smith,,42 Elm St,Peoria,IL,61602,100,10,100,6.20,100,1.45,IL,1,100,4.95\n"

	records, err := CSVReader{}.Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].AddressLine2)
	assert.Empty(t, records[0].Email)
	assert.True(t, records[0].Amounts.SSTips.IsZero())
}

func TestCSVReader_HeaderOnly(t *testing.T) {
	records, err := CSVReader{}.Read(strings.NewReader(header))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCSVReader_Errors(t *testing.T) {
	valid := "987654321,John,,Smith,,42 Elm St,,Peoria,IL,61602,,100,10,100,6.20,100,1.45,,IL,1,100,4.95\n"

	cases := []struct {
		name   string
		in     string
		row    int
		column string
	}{
		{
			name:   "missing column",
			in:     "ssn,first_name\n987654321,John\n",
			row:    0,
			column: "middle_initial",
		},
		{
			name:   "bad amount",
			in:     header + valid + "987654321,John,,Smith,,42 Elm St,,Peoria,IL,61602,,ten,10,100,6.20,100,1.45,,IL,1,100,4.95\n",
			row:    2,
			column: "wages",
		},
		{
			name:   "short SSN",
			in:     header + "98765,John,,Smith,,42 Elm St,,Peoria,IL,61602,,100,10,100,6.20,100,1.45,,IL,1,100,4.95\n",
			row:    1,
			column: "ssn",
		},
		{
			name:   "letter in SSN",
			in:     header + "98A-65-43219,John,,Smith,,42 Elm St,,Peoria,IL,61602,,100,10,100,6.20,100,1.45,,IL,1,100,4.95\n",
			row:    1,
			column: "ssn",
		},
		{
			name:   "missing last name",
			in:     header + "987654321,John,,,,42 Elm St,,Peoria,IL,61602,,100,10,100,6.20,100,1.45,,IL,1,100,4.95\n",
			row:    1,
			column: "last_name",
		},
		{
			name:   "negative tax",
			in:     header + "987654321,John,,Smith,,42 Elm St,,Peoria,IL,61602,,100,-10,100,6.20,100,1.45,,IL,1,100,4.95\n",
			row:    1,
			column: "federal_tax",
		},
		{
			name:   "empty required amount",
			in:     header + "987654321,John,,Smith,,42 Elm St,,Peoria,IL,61602,,100,10,100,6.20,,1.45,,IL,1,100,4.95\n",
			row:    1,
			column: "medicare_wages",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := CSVReader{}.Read(strings.NewReader(c.in))
			var parseErr *domain.InputParseError
			require.True(t, errors.As(err, &parseErr), "want InputParseError, got %v", err)
			assert.Equal(t, c.row, parseErr.Row)
			assert.Equal(t, c.column, parseErr.Column)
		})
	}
}

func TestCSVReader_Empty(t *testing.T) {
	_, err := CSVReader{}.Read(strings.NewReader(""))
	var parseErr *domain.InputParseError
	assert.True(t, errors.As(err, &parseErr))
}

func writeWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func xlsxHeader() []interface{} {
	var h []interface{}
	for _, c := range strings.Split(strings.TrimSpace(header), ",") {
		h = append(h, c)
	}
	return h
}

func TestXLSXReader_Read(t *testing.T) {
	buf := writeWorkbook(t, [][]interface{}{
		xlsxHeader(),
		{"987654321", "Ana", "M", "Souza", "", "9 Pine Rd", "", "Austin", "TX", "73301", "", 42000.5, 4100, 42000.5, 2604.03, 42000.5, 609.01, 0, "TX", "", 0, 0},
		{},
		{"111223333", "Bo", "", "Li", "", "1 Oak Ave", "Unit 2", "Dallas", "TX", "75201", "bo@example.com", "1000.00", "0", "1000.00", "62.00", "1000.00", "14.50", "", "TX", "", "", ""},
	})

	records, err := XLSXReader{}.Read(buf)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Souza", records[0].LastName)
	assert.True(t, decimal.RequireFromString("42000.5").Equal(records[0].Amounts.Wages))
	assert.True(t, decimal.RequireFromString("2604.03").Equal(records[0].Amounts.SSTax))
	assert.Equal(t, "Unit 2", records[1].AddressLine2)
	assert.Equal(t, "bo@example.com", records[1].Email)
}

func TestXLSXReader_RowNumbersSkipBlankRows(t *testing.T) {
	buf := writeWorkbook(t, [][]interface{}{
		xlsxHeader(),
		{},
		{"123", "Ana", "", "Souza", "", "9 Pine Rd", "", "Austin", "TX", "73301", "", 1, 0, 1, 0, 1, 0, 0, "TX", "", 0, 0},
	})

	_, err := XLSXReader{}.Read(buf)
	var parseErr *domain.InputParseError
	require.True(t, errors.As(err, &parseErr), "want InputParseError, got %v", err)
	assert.Equal(t, 2, parseErr.Row)
	assert.Equal(t, "ssn", parseErr.Column)
}

func TestXLSXReader_CellsBeyondHeader(t *testing.T) {
	buf := writeWorkbook(t, [][]interface{}{
		xlsxHeader(),
		{"987654321", "Ana", "", "Souza", "", "9 Pine Rd", "", "Austin", "TX", "73301", "", 1, 0, 1, 0, 1, 0, 0, "TX", "", 0, 0, "Apt 4"},
	})

	_, err := XLSXReader{}.Read(buf)
	var parseErr *domain.InputParseError
	require.True(t, errors.As(err, &parseErr), "want InputParseError, got %v", err)
	assert.Equal(t, 1, parseErr.Row)
	assert.Contains(t, err.Error(), "23 cells")
}

func TestDecode_BlankCellsBeyondHeader(t *testing.T) {
	h := strings.Split(strings.TrimSpace(header), ",")
	line := []string{"987654321", "Ana", "", "Souza", "", "9 Pine Rd", "", "Austin", "TX", "73301", "", "1", "0", "1", "0", "1", "0", "0", "TX", "", "0", "0", " ", ""}
	records, err := decode([][]string{h, line})
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestForPath(t *testing.T) {
	r, err := ForPath("wages.CSV")
	require.NoError(t, err)
	assert.IsType(t, CSVReader{}, r)

	r, err = ForPath("/tmp/wages.xlsx")
	require.NoError(t, err)
	assert.IsType(t, XLSXReader{}, r)

	_, err = ForPath("wages.ods")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wages.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+"987654321,John,,Smith,,42 Elm St,,Peoria,IL,61602,,100,10,100,6.20,100,1.45,,IL,1,100,4.95\n"), 0o600))

	records, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Smith", records[0].LastName)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestFromValues(t *testing.T) {
	values := map[string]string{
		"ssn": "111-22-3333", "first_name": " Ana ", "last_name": "Souza",
		"address_1": "9 Pine Rd", "city": "Austin", "state": "TX", "zip": "73301",
		"wages": "$1,234.56", "federal_tax": "0", "ss_wages": "1234.56", "ss_tax": "76.54",
		"medicare_wages": "1234.56", "medicare_tax": "17.90",
	}
	get := func(k string) string { return values[k] }

	e, err := FromValues(get)
	require.NoError(t, err)
	assert.Equal(t, "111223333", e.SSN)
	assert.Equal(t, "Ana", e.FirstName)
	assert.True(t, e.Amounts.Wages.Equal(decimal.RequireFromString("1234.56")))
	assert.True(t, e.Amounts.SSTips.IsZero())

	values["ssn"] = "98A-65-43219"
	_, err = FromValues(get)
	var pe *domain.InputParseError
	require.True(t, errors.As(err, &pe), "letters in an SSN must be rejected, got %v", err)
	assert.Equal(t, "ssn", pe.Column)

	values["ssn"] = "111-22-3333"
	delete(values, "city")
	_, err = FromValues(get)
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.Row)
	assert.Equal(t, "city", pe.Column)
}
