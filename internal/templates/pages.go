package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/mminer237/efw2-maker/internal/adapters/efw2"
	"github.com/mminer237/efw2-maker/internal/domain"
)

// Index lists archived filings and offers the wage file upload form.
func Index(subs []domain.Submission, years []domain.TaxYearInfo, defaultYear int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}

		h.raw(`<div class="card"><div class="section-header">New filing</div>`)
		h.raw(`<form hx-post="/submissions" hx-encoding="multipart/form-data" hx-target="#upload-result">`)
		h.raw(`<label class="field-label" for="wages">Wage file (CSV or XLSX)</label>`)
		h.raw(`<input type="file" id="wages" name="wages" accept=".csv,.xlsx" required>`)
		h.raw(`<label class="field-label" for="tax_year">Tax year</label><select id="tax_year" name="tax_year">`)
		for _, y := range years {
			h.raw(`<option`)
			h.attr("value", y.Year)
			if y.Year == strconv.Itoa(defaultYear) {
				h.raw(` selected`)
			}
			h.raw(`>`)
			h.text(y.Year)
			h.raw(`</option>`)
		}
		h.raw(`</select>`)
		h.raw(`<label class="field-label" for="resub_wfid">Resubmission WFID</label>`)
		h.raw(`<input type="text" id="resub_wfid" name="resub_wfid" maxlength="6" placeholder="blank for an original filing">`)
		h.raw(`<label class="field-label"><input type="checkbox" name="final" value="1" style="width:auto;"> Final year of filing</label>`)
		h.raw(`<label class="field-label" for="notes">Notes</label><textarea id="notes" name="notes" rows="2"></textarea>`)
		h.raw(`<div style="margin-top:16px;"><button class="btn btn-primary" type="submit">Generate</button></div>`)
		h.raw(`</form><div id="upload-result"></div>`)
		if len(years) > 0 {
			h.raw(`<p class="mono" style="font-size:0.7rem;color:var(--muted);">Layouts follow `)
			last := years[len(years)-1]
			h.raw(`<a`)
			h.attr("href", last.PublicationURL)
			h.raw(`>SSA EFW2 `)
			h.text(last.Year)
			h.raw(`</a>.</p>`)
		}
		h.raw(`</div>`)

		h.raw(`<div class="card"><div class="section-header">Archived filings</div>`)
		if len(subs) == 0 {
			h.raw(`<p class="mono" style="color:var(--muted);">No filings yet.</p>`)
		} else {
			h.raw(`<table><thead><tr><th>#</th><th>Employer</th><th>Tax year</th><th>Employees</th><th>Created</th><th></th></tr></thead><tbody>`)
			for _, s := range subs {
				link := "/submissions/" + itoa(s.ID)
				h.raw(`<tr`)
				h.attr("id", "submission-"+itoa(s.ID))
				h.raw(`><td class="mono">`)
				h.text(itoa(s.ID))
				h.raw(`</td><td><a`)
				h.attr("href", link)
				h.raw(`>`)
				h.text(s.Employer.Name)
				h.raw(`</a></td><td class="mono">`)
				h.text(strconv.Itoa(s.Run.TaxYear))
				if s.Run.Resubmission() {
					h.raw(` (resub)`)
				}
				h.raw(`</td><td class="num">`)
				h.text(strconv.Itoa(len(s.Employees)))
				h.raw(`</td><td class="mono">`)
				h.text(s.CreatedAt.Format("2006-01-02 15:04"))
				h.raw(`</td><td><button class="btn btn-danger" hx-confirm="Delete this filing?" hx-target="closest tr" hx-swap="outerHTML"`)
				h.attr("hx-delete", link)
				h.raw(`>Delete</button></td></tr>`)
			}
			h.raw(`</tbody></table>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// Detail shows one filing with its totals, its employees and the entry form
// for adding another employee.
func Detail(s *domain.Submission, totals efw2.Totals) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		base := "/submissions/" + itoa(s.ID)

		h.raw(`<div class="card"><div class="section-header">Employer</div><div class="mono">`)
		h.text(s.Employer.Name)
		h.raw(`<br>EIN `)
		h.text(s.Employer.EIN)
		h.raw(` · tax year `)
		h.text(strconv.Itoa(s.Run.TaxYear))
		if s.Run.Resubmission() {
			h.raw(` · resubmission of `)
			h.text(s.Run.ResubWFID)
		}
		if s.Run.FinalYear {
			h.raw(` · final year`)
		}
		h.raw(`<br>SHA-256 `)
		h.text(s.Digest)
		h.raw(`</div>`)
		if s.Notes != "" {
			h.raw(`<p>`)
			h.text(s.Notes)
			h.raw(`</p>`)
		}
		h.raw(`<div style="margin-top:16px;"><a class="btn btn-success"`)
		h.attr("href", base+"/efw2")
		h.raw(`>Download EFW2</a> <a class="btn btn-primary"`)
		h.attr("href", base+"/pdf")
		h.raw(`>Summary PDF</a></div></div>`)

		h.raw(`<div class="card"><div class="section-header">Totals (RT)</div><table><tbody>`)
		for _, row := range []struct {
			label string
			cents int64
		}{
			{"Wages, tips, other compensation", totals.Wages},
			{"Federal income tax withheld", totals.FederalTax},
			{"Social security wages", totals.SSWages},
			{"Social security tax withheld", totals.SSTax},
			{"Medicare wages and tips", totals.MedicareWages},
			{"Medicare tax withheld", totals.MedicareTax},
			{"Social security tips", totals.SSTips},
		} {
			h.raw(`<tr><td>`)
			h.text(row.label)
			h.raw(`</td><td class="num">`)
			h.text(centsToDisplay(row.cents))
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table></div>`)

		h.raw(`<div class="card"><div class="section-header">Employees (`)
		h.text(strconv.Itoa(totals.Count))
		h.raw(`)</div><table><thead><tr><th>SSN</th><th>Name</th><th>Wages</th><th>Fed tax</th><th>SS tax</th><th>Medicare tax</th><th></th></tr></thead><tbody>`)
		for _, e := range s.Employees {
			h.raw(`<tr><td class="mono">`)
			h.text(maskSSN(e.SSN))
			h.raw(`</td><td>`)
			h.text(e.FirstName + " " + e.LastName)
			h.raw(`</td>`)
			for _, d := range []string{
				amountToDisplay(e.Amounts.Wages),
				amountToDisplay(e.Amounts.FederalTax),
				amountToDisplay(e.Amounts.SSTax),
				amountToDisplay(e.Amounts.MedicareTax),
			} {
				h.raw(`<td class="num">`)
				h.text(d)
				h.raw(`</td>`)
			}
			h.raw(`<td><button class="btn btn-danger" hx-confirm="Remove this employee?"`)
			h.attr("hx-delete", "/employees/"+itoa(e.ID))
			h.raw(`>Remove</button></td></tr>`)
		}
		h.raw(`</tbody></table></div>`)

		h.raw(`<div class="card"><div class="section-header">Add employee</div><form`)
		h.attr("hx-post", base+"/employees")
		h.raw(` hx-target="#employee-result">`)
		for _, f := range employeeFields {
			h.raw(`<label class="field-label"`)
			h.attr("for", f.name)
			h.raw(`>`)
			h.text(f.label)
			h.raw(`</label><input type="text"`)
			h.attr("id", f.name)
			h.attr("name", f.name)
			if f.required {
				h.raw(` required`)
			}
			h.raw(`>`)
		}
		h.raw(`<div style="margin-top:16px;"><button class="btn btn-primary" type="submit">Add</button></div></form><div id="employee-result"></div></div>`)
		return h.err
	})
}

type formField struct {
	name     string
	label    string
	required bool
}

// employeeFields share their names with the wage file columns.
var employeeFields = []formField{
	{"ssn", "SSN", true},
	{"first_name", "First name", true},
	{"middle_initial", "Middle initial", false},
	{"last_name", "Last name", true},
	{"suffix", "Suffix", false},
	{"address_1", "Address", true},
	{"address_2", "Address line 2", false},
	{"city", "City", true},
	{"state", "State", true},
	{"zip", "ZIP", true},
	{"wages", "Box 1 wages", true},
	{"federal_tax", "Box 2 federal tax", true},
	{"ss_wages", "Box 3 SS wages", true},
	{"ss_tax", "Box 4 SS tax", true},
	{"medicare_wages", "Box 5 Medicare wages", true},
	{"medicare_tax", "Box 6 Medicare tax", true},
	{"ss_tips", "Box 7 SS tips", false},
	{"taxing_state", "Box 15 state", false},
	{"state_id", "Box 15 state ID", false},
	{"state_wages", "Box 16 state wages", false},
	{"state_tax", "Box 17 state tax", false},
}
