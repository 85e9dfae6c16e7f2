package wagefile

import (
	"io"

	"github.com/gocarina/gocsv"

	"github.com/mminer237/efw2-maker/internal/domain"
)

// CSVReader decodes comma-separated wage files with a header row.
type CSVReader struct{}

func (CSVReader) Read(r io.Reader) ([]domain.EmployeeWageRecord, error) {
	cr := gocsv.LazyCSVReader(r)
	lines, err := cr.ReadAll()
	if err != nil {
		return nil, &domain.InputParseError{Err: err}
	}
	return decode(lines)
}
