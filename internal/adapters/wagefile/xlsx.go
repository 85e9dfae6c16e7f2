package wagefile

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mminer237/efw2-maker/internal/domain"
)

// XLSXReader decodes the first worksheet of an Excel workbook. Row 1 is the
// header. Cells are read with their display formatting, so amounts such as
// "$1,234.50" are accepted.
type XLSXReader struct{}

func (XLSXReader) Read(r io.Reader) ([]domain.EmployeeWageRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &domain.InputParseError{Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &domain.InputParseError{Err: fmt.Errorf("workbook has no sheets")}
	}
	lines, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &domain.InputParseError{Err: fmt.Errorf("read sheet %q: %w", sheets[0], err)}
	}
	return decode(lines)
}
