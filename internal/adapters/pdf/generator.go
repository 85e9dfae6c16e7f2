// Package pdf generates a human-readable W-2 summary PDF for a filing.
// The first page repeats the employer identity and the file totals (the
// same figures carried in the RT and RF records); after it comes one page
// per employee with that employee's W-2 boxes.
package pdf

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/mminer237/efw2-maker/internal/adapters/efw2"
	"github.com/mminer237/efw2-maker/internal/domain"
)

// Writer satisfies ports.ReportWriter.
type Writer struct{}

func (Writer) Write(s *domain.Submission, w io.Writer) error { return GeneratePDF(s, w) }

// GeneratePDF writes the summary page followed by one page per employee to w.
// Amounts are shown rounded to cents exactly as they are encoded, so the PDF
// and the EFW2 file always agree.
func GeneratePDF(s *domain.Submission, w io.Writer) error {
	totals, err := efw2.Summarize(s.Employees)
	if err != nil {
		return err
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AliasNbPages("{nb}")
	d := &doc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), s: s}

	pdf.AddPage()
	d.summaryPage(totals)

	for i := range s.Employees {
		line, err := efw2.Summarize(s.Employees[i : i+1])
		if err != nil {
			return err
		}
		pdf.AddPage()
		d.employeePage(&s.Employees[i], line)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

type doc struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	s   *domain.Submission
}

func (d *doc) contentWidth() float64 {
	pageW, _ := d.pdf.GetPageSize()
	marginL, _, marginR, _ := d.pdf.GetMargins()
	return pageW - marginL - marginR
}

// header draws the dark title bar and returns the y position below it.
func (d *doc) header(title string) float64 {
	pdf := d.pdf
	marginL, marginT, _, _ := pdf.GetMargins()
	contentW := d.contentWidth()

	pdf.SetFillColor(30, 30, 30)
	pdf.Rect(marginL, marginT, contentW, 10, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(marginL+2, marginT+1.5)
	pdf.CellFormat(contentW-4, 7, title, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 7, "Page "+fmt.Sprint(pdf.PageNo())+" of {nb}", "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	return marginT + 13
}

// employerBlock draws the employer section starting at y and returns the
// y position below it.
func (d *doc) employerBlock(y float64) float64 {
	pdf := d.pdf
	marginL, _, _, _ := pdf.GetMargins()
	contentW := d.contentWidth()
	e := &d.s.Employer

	y = d.sectionTitle(y, "EMPLOYER INFORMATION")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(marginL, y)
	colHalf := contentW / 2
	pdf.CellFormat(colHalf, 6, d.tr("Employer: "+e.Name), "L", 0, "L", false, 0, "")
	pdf.CellFormat(colHalf, 6, "EIN: "+formatEIN(e.EIN)+"   Tax Year: "+strconv.Itoa(d.s.Run.TaxYear), "R", 1, "L", false, 0, "")
	y += 6

	pdf.SetXY(marginL, y)
	pdf.CellFormat(contentW, 5.5, d.tr(joinAddress(e.AddressLine1, e.AddressLine2)+cityLine(e.City, e.State, e.ZIP)), "LR", 1, "L", false, 0, "")
	y += 5.5

	kind := "Original submission"
	if d.s.Run.Resubmission() {
		kind = "Resubmission of WFID " + strings.ToUpper(d.s.Run.ResubWFID)
	}
	if d.s.Run.FinalYear {
		kind += " (final year of filing)"
	}
	pdf.SetXY(marginL, y)
	pdf.CellFormat(contentW, 5.5, kind+"   |   BSO User ID: "+e.UserID, "LRB", 1, "L", false, 0, "")
	return y + 5.5
}

func (d *doc) sectionTitle(y float64, title string) float64 {
	pdf := d.pdf
	marginL, _, _, _ := pdf.GetMargins()
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(d.contentWidth(), 5.5, title, "LRT", 1, "L", true, 0, "")
	return y + 5.5
}

type amtRow struct {
	label string
	cents int64
}

func boxRows(t efw2.Totals) []amtRow {
	return []amtRow{
		{"Box 1 - Wages, Tips, Other Comp.", t.Wages},
		{"Box 2 - Federal Income Tax Withheld", t.FederalTax},
		{"Box 3 - Social Security Wages", t.SSWages},
		{"Box 4 - Social Security Tax Withheld", t.SSTax},
		{"Box 5 - Medicare Wages and Tips", t.MedicareWages},
		{"Box 6 - Medicare Tax Withheld", t.MedicareTax},
		{"Box 7 - Social Security Tips", t.SSTips},
	}
}

// amountTable draws a two-column Description/Amount table and returns the
// y position below it.
func (d *doc) amountTable(y float64, heading string, rows []amtRow) float64 {
	pdf := d.pdf
	marginL, _, _, _ := pdf.GetMargins()
	contentW := d.contentWidth()
	descW := contentW * 0.65
	amtW := contentW - descW

	pdf.SetFillColor(30, 30, 30)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 8.5)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(descW, 7, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(amtW, 7, heading, "1", 1, "C", true, 0, "")
	y += 7
	pdf.SetTextColor(0, 0, 0)

	rowH := 6.5
	pdf.SetFont("Helvetica", "", 8.5)
	for i, r := range rows {
		pdf.SetXY(marginL, y)
		if i%2 == 0 {
			pdf.SetFillColor(250, 250, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.CellFormat(descW, rowH, r.label, "1", 0, "L", true, 0, "")
		pdf.CellFormat(amtW, rowH, "$"+centsToDisplay(r.cents), "1", 1, "R", true, 0, "")
		y += rowH
	}
	return y
}

func (d *doc) summaryPage(t efw2.Totals) {
	pdf := d.pdf
	marginL, _, _, _ := pdf.GetMargins()
	contentW := d.contentWidth()

	y := d.header("W-2 / W-3  EFW2 SUBMISSION SUMMARY")
	y = d.employerBlock(y) + 4

	y = d.sectionTitle(y, "CONTACT")
	e := &d.s.Employer
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(contentW, 5.5, d.tr(e.ContactName+"   "+formatPhone(e.ContactPhone)+"   "+e.ContactEmail), "LRB", 1, "L", false, 0, "")
	y += 5.5 + 5

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(contentW, 6.5, fmt.Sprintf("Employees (RW records): %d", t.Count), "", 1, "L", false, 0, "")
	y += 8

	d.amountTable(y, "File Total", boxRows(t))
	d.footer()
}

func (d *doc) employeePage(e *domain.EmployeeWageRecord, line efw2.Totals) {
	pdf := d.pdf
	marginL, _, _, _ := pdf.GetMargins()
	contentW := d.contentWidth()
	colHalf := contentW / 2

	y := d.header("W-2  WAGE AND TAX STATEMENT")
	y = d.employerBlock(y) + 4

	y = d.sectionTitle(y, "EMPLOYEE INFORMATION")

	name := e.LastName + ", " + e.FirstName
	if e.MiddleInitial != "" {
		name += " " + e.MiddleInitial
	}
	if e.Suffix != "" {
		name += " " + e.Suffix
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(colHalf, 6.5, d.tr(name), "L", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(colHalf, 6.5, "SSN: "+formatSSN(e.SSN), "R", 1, "R", false, 0, "")
	y += 6.5

	for _, l := range []string{e.AddressLine1, e.AddressLine2} {
		if l == "" {
			continue
		}
		pdf.SetXY(marginL, y)
		pdf.CellFormat(contentW, 5.5, d.tr(l), "LR", 1, "L", false, 0, "")
		y += 5.5
	}
	if e.Email != "" {
		pdf.SetXY(marginL, y)
		pdf.CellFormat(contentW, 5.5, e.Email, "LR", 1, "L", false, 0, "")
		y += 5.5
	}
	pdf.SetXY(marginL, y)
	pdf.CellFormat(contentW, 5.5, d.tr(strings.TrimPrefix(cityLine(e.City, e.State, e.ZIP), ", ")), "LRB", 1, "L", false, 0, "")
	y += 5.5 + 5

	y = d.amountTable(y, "Amount", boxRows(line))

	// State boxes are informational only; no RS record is written.
	st := e.StateInfo
	if st.TaxingState != "" || st.StateID != "" || !st.Wages.IsZero() || !st.Tax.IsZero() {
		y += 5
		y = d.sectionTitle(y, "BOX 15-17 - STATE (not included in the EFW2 file)")
		pdf.SetFont("Helvetica", "", 8.5)
		pdf.SetXY(marginL, y)
		pdf.CellFormat(contentW/2, 5.5, "State / ID: "+st.TaxingState+" "+st.StateID, "L", 0, "L", false, 0, "")
		pdf.CellFormat(contentW/2, 5.5, "Wages $"+st.Wages.StringFixed(2)+"   Tax $"+st.Tax.StringFixed(2), "R", 1, "R", false, 0, "")
		y += 5.5
		pdf.SetXY(marginL, y)
		pdf.CellFormat(contentW, 0, "", "LRB", 1, "L", false, 0, "")
	}

	d.footer()
}

func (d *doc) footer() {
	pdf := d.pdf
	_, pageH := pdf.GetPageSize()
	marginL, _, _, marginB := pdf.GetMargins()
	contentW := d.contentWidth()

	pdf.SetXY(marginL, pageH-marginB-6)
	pdf.SetFont("Helvetica", "I", 7.5)
	pdf.SetTextColor(130, 130, 130)
	pdf.CellFormat(contentW/2, 5, "Generated by efw2", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, d.tr(d.s.Employer.Name)+" | EIN "+formatEIN(d.s.Employer.EIN)+" | TY "+strconv.Itoa(d.s.Run.TaxYear), "", 0, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func formatSSN(ssn string) string {
	digits := domain.Digits(ssn)
	if len(digits) == 9 {
		return digits[:3] + "-" + digits[3:5] + "-" + digits[5:]
	}
	return ssn
}

func formatEIN(ein string) string {
	digits := domain.Digits(ein)
	if len(digits) == 9 {
		return digits[:2] + "-" + digits[2:]
	}
	return ein
}

func formatPhone(phone string) string {
	digits := domain.Digits(phone)
	if len(digits) == 10 {
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	}
	return phone
}

// centsToDisplay renders cents as dollars with thousands separators.
func centsToDisplay(cents int64) string {
	dollars := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, c := range dollars {
		if i > 0 && (len(dollars)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return fmt.Sprintf("%s.%02d", b.String(), cents%100)
}

func joinAddress(line1, line2 string) string {
	if line2 == "" {
		return line1
	}
	return line1 + ", " + line2
}

// cityLine returns ", City, ST ZIP" ready to append to an address, or "".
func cityLine(city, state, zip string) string {
	s := ""
	if city != "" {
		s += ", " + city
	}
	if state != "" {
		s += ", " + state
	}
	if zip != "" {
		s += " " + zip
	}
	return s
}
