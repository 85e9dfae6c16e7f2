package templates

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mminer237/efw2-maker/internal/adapters/efw2"
	"github.com/mminer237/efw2-maker/internal/domain"
)

func TestHelpers(t *testing.T) {
	assert.Equal(t, "0.00", centsToDisplay(0))
	assert.Equal(t, "999.99", centsToDisplay(99999))
	assert.Equal(t, "1,234,567.89", centsToDisplay(123456789))
	assert.Equal(t, "50,000.10", amountToDisplay(decimal.RequireFromString("50000.1")))
	assert.Equal(t, "***-**-4321", maskSSN("987-65-4321"))
	assert.Equal(t, "***-**-****", maskSSN("1234"))
	assert.Equal(t, "42", itoa(42))
}

func TestDetail_EscapesAndTotals(t *testing.T) {
	s := &domain.Submission{
		ID:       7,
		Employer: domain.EmployerConfig{Name: "<Acme & Sons>", EIN: "123456789"},
		Run:      domain.RunParameters{TaxYear: 2024, ResubWFID: "AB12"},
		Employees: []domain.EmployeeWageRecord{
			{ID: 3, SSN: "987654321", FirstName: "John", LastName: "Smith",
				Amounts: domain.WageAmounts{Wages: decimal.RequireFromString("1500.5")}},
		},
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC),
	}
	totals, err := efw2.Summarize(s.Employees)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Layout("t", Detail(s, totals)).Render(context.Background(), &buf))
	out := buf.String()
	assert.Contains(t, out, "&lt;Acme &amp; Sons&gt;")
	assert.NotContains(t, out, "<Acme")
	assert.Contains(t, out, "1,500.50")
	assert.Contains(t, out, `hx-delete="/employees/3"`)
	assert.Contains(t, out, `href="/submissions/7/efw2"`)
	assert.Contains(t, out, "resubmission of AB12")
}

func TestIndex_Lists(t *testing.T) {
	subs := []domain.Submission{{
		ID:        2,
		Employer:  domain.EmployerConfig{Name: "Acme"},
		Run:       domain.RunParameters{TaxYear: 2023},
		Employees: make([]domain.EmployeeWageRecord, 4),
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC),
	}}
	years := []domain.TaxYearInfo{{Year: "2023"}, {Year: "2024", PublicationURL: "https://www.ssa.gov/employer/efw/24efw2.pdf"}}

	var buf bytes.Buffer
	require.NoError(t, Index(subs, years, 2023).Render(context.Background(), &buf))
	out := buf.String()
	assert.Contains(t, out, `<option value="2023" selected>`)
	assert.Contains(t, out, `<option value="2024">`)
	assert.Contains(t, out, `id="submission-2"`)
	assert.Contains(t, out, "2025-01-02 03:04")
	assert.Contains(t, out, `24efw2.pdf`)
}

func TestErrorMessage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ErrorMessage(`row 2 column "wages": bad`).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "row 2 column &#34;wages&#34;: bad")
}
