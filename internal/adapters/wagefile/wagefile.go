// Package wagefile reads employee wage rows from CSV and XLSX files.
//
// Both formats use the same header-named columns:
//
//	ssn, first_name, middle_initial, last_name, suffix, address_1, address_2,
//	city, state, zip, email, wages, federal_tax, ss_wages, ss_tax,
//	medicare_wages, medicare_tax, ss_tips, taxing_state, state_id,
//	state_wages, state_tax
//
// address_2, email and ss_tips may be omitted entirely.
package wagefile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/mminer237/efw2-maker/internal/domain"
	"github.com/mminer237/efw2-maker/internal/ports"
)

// row is one wage-file line as text. Amounts stay strings until convert so
// a bad value can be reported with its row and column.
type row struct {
	SSN           string `csv:"ssn"`
	FirstName     string `csv:"first_name"`
	MiddleInitial string `csv:"middle_initial"`
	LastName      string `csv:"last_name"`
	Suffix        string `csv:"suffix"`
	Address1      string `csv:"address_1"`
	Address2      string `csv:"address_2"`
	City          string `csv:"city"`
	State         string `csv:"state"`
	ZIP           string `csv:"zip"`
	Email         string `csv:"email"`
	Wages         string `csv:"wages"`
	FederalTax    string `csv:"federal_tax"`
	SSWages       string `csv:"ss_wages"`
	SSTax         string `csv:"ss_tax"`
	MedicareWages string `csv:"medicare_wages"`
	MedicareTax   string `csv:"medicare_tax"`
	SSTips        string `csv:"ss_tips"`
	TaxingState   string `csv:"taxing_state"`
	StateID       string `csv:"state_id"`
	StateWages    string `csv:"state_wages"`
	StateTax      string `csv:"state_tax"`
}

// requiredColumns must be present in the header.
var requiredColumns = []string{
	"ssn", "first_name", "middle_initial", "last_name", "suffix",
	"address_1", "city", "state", "zip",
	"wages", "federal_tax", "ss_wages", "ss_tax", "medicare_wages", "medicare_tax",
	"taxing_state", "state_id", "state_wages", "state_tax",
}

// ErrUnsupportedFormat is returned by ForPath for unknown file extensions.
var ErrUnsupportedFormat = errors.New("wagefile: unsupported file format")

// ForPath picks a reader by file extension.
func ForPath(path string) (ports.WageReader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSVReader{}, nil
	case ".xlsx":
		return XLSXReader{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (want .csv or .xlsx)", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadFile opens path and decodes it with the reader for its extension.
func ReadFile(path string) ([]domain.EmployeeWageRecord, error) {
	reader, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wage file: %w", err)
	}
	defer f.Close()
	return reader.Read(f)
}

func checkHeader(header []string) error {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	for _, c := range requiredColumns {
		if !have[c] {
			return &domain.InputParseError{Row: 0, Column: c, Err: errors.New("missing column")}
		}
	}
	return nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

// decode maps a header row plus data rows onto domain records. Blank rows
// are skipped but still counted, so reported row numbers match the file.
func decode(lines [][]string) ([]domain.EmployeeWageRecord, error) {
	if len(lines) == 0 {
		return nil, &domain.InputParseError{Row: 0, Err: errors.New("empty file: no header row")}
	}
	header := make([]string, len(lines[0]))
	for i, h := range lines[0] {
		header[i] = normalizeHeader(h)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	feed := [][]string{header}
	var rowNums []int
	for i, line := range lines[1:] {
		if blank(line) {
			continue
		}
		if extra := line[min(len(line), len(header)):]; !blank(extra) {
			return nil, &domain.InputParseError{Row: i + 1, Err: fmt.Errorf("%d cells but the header has %d columns", len(line), len(header))}
		}
		padded := make([]string, len(header))
		copy(padded, line)
		feed = append(feed, padded)
		rowNums = append(rowNums, i+1)
	}

	var rows []row
	if err := gocsv.UnmarshalCSV(&sliceReader{rows: feed}, &rows); err != nil {
		return nil, &domain.InputParseError{Row: 0, Err: err}
	}

	out := make([]domain.EmployeeWageRecord, 0, len(rows))
	for i, r := range rows {
		e, err := r.record(rowNums[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func blank(line []string) bool {
	for _, c := range line {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (r row) record(n int) (domain.EmployeeWageRecord, error) {
	p := parser{row: n}

	ssn, err := domain.NormalizeID(r.SSN, 9)
	if err != nil {
		return domain.EmployeeWageRecord{}, &domain.InputParseError{Row: n, Column: "ssn", Err: err}
	}
	p.required("first_name", r.FirstName)
	p.required("last_name", r.LastName)
	p.required("address_1", r.Address1)
	p.required("city", r.City)
	p.required("state", r.State)
	p.required("zip", r.ZIP)

	e := domain.EmployeeWageRecord{
		SSN:           ssn,
		FirstName:     strings.TrimSpace(r.FirstName),
		MiddleInitial: strings.TrimSpace(r.MiddleInitial),
		LastName:      strings.TrimSpace(r.LastName),
		Suffix:        strings.TrimSpace(r.Suffix),
		AddressLine1:  strings.TrimSpace(r.Address1),
		AddressLine2:  strings.TrimSpace(r.Address2),
		City:          strings.TrimSpace(r.City),
		State:         strings.TrimSpace(r.State),
		ZIP:           strings.TrimSpace(r.ZIP),
		Email:         strings.TrimSpace(r.Email),
		Amounts: domain.WageAmounts{
			Wages:         p.amount("wages", r.Wages, true),
			FederalTax:    p.amount("federal_tax", r.FederalTax, true),
			SSWages:       p.amount("ss_wages", r.SSWages, true),
			SSTax:         p.amount("ss_tax", r.SSTax, true),
			MedicareWages: p.amount("medicare_wages", r.MedicareWages, true),
			MedicareTax:   p.amount("medicare_tax", r.MedicareTax, true),
			SSTips:        p.amount("ss_tips", r.SSTips, false),
		},
		StateInfo: domain.StateWages{
			TaxingState: strings.TrimSpace(r.TaxingState),
			StateID:     strings.TrimSpace(r.StateID),
			Wages:       p.amount("state_wages", r.StateWages, false),
			Tax:         p.amount("state_tax", r.StateTax, false),
		},
	}
	if p.err != nil {
		return domain.EmployeeWageRecord{}, p.err
	}
	return e, nil
}

// parser keeps the first error for a row.
type parser struct {
	row int
	err error
}

func (p *parser) required(column, value string) {
	if p.err == nil && strings.TrimSpace(value) == "" {
		p.err = &domain.InputParseError{Row: p.row, Column: column, Err: errors.New("required")}
	}
}

// amount parses a dollar value, tolerating "$" and thousands separators.
// An empty optional amount is zero.
func (p *parser) amount(column, value string, required bool) decimal.Decimal {
	if p.err != nil {
		return decimal.Zero
	}
	v := strings.NewReplacer("$", "", ",", "", " ", "").Replace(value)
	if v == "" {
		if required {
			p.err = &domain.InputParseError{Row: p.row, Column: column, Err: errors.New("required")}
		}
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		p.err = &domain.InputParseError{Row: p.row, Column: column, Err: fmt.Errorf("%q is not an amount", value)}
		return decimal.Zero
	}
	if d.IsNegative() {
		p.err = &domain.InputParseError{Row: p.row, Column: column, Err: fmt.Errorf("%q is negative", value)}
		return decimal.Zero
	}
	return d
}

// sliceReader feeds already-split rows to gocsv.
type sliceReader struct {
	rows [][]string
	pos  int
}

func (s *sliceReader) Read() ([]string, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	r := s.rows[s.pos]
	s.pos++
	return r, nil
}

func (s *sliceReader) ReadAll() ([][]string, error) {
	rest := s.rows[s.pos:]
	s.pos = len(s.rows)
	return rest, nil
}
