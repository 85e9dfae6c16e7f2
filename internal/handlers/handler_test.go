package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mminer237/efw2-maker/internal/adapters/efw2"
	"github.com/mminer237/efw2-maker/internal/adapters/pdf"
	"github.com/mminer237/efw2-maker/internal/adapters/sqlite"
	"github.com/mminer237/efw2-maker/internal/domain"
)

const wageCSV = "ssn,first_name,middle_initial,last_name,suffix,address_1,address_2,city,state,zip,email,wages,federal_tax,ss_wages,ss_tax,medicare_wages,medicare_tax,ss_tips,taxing_state,state_id,state_wages,state_tax\n" +
	"987-65-4321,John,Q,Smith,,42 Elm St,,Peoria,IL,61602,,50000.00,8000.00,50000.00,3100.00,50000.00,725.00,,IL,1,50000,2475\n"

type fixture struct {
	repo    *sqlite.Repository
	handler http.Handler
}

func setup(t *testing.T) *fixture {
	t.Helper()
	repo, err := sqlite.New(filepath.Join(t.TempDir(), "efw2.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	require.NoError(t, repo.Migrate(context.Background()))

	employer := domain.EmployerConfig{
		EIN: "12-3456789", UserID: "ABCDEFGH", Name: "Acme Corp",
		AddressLine1: "100 Main St", City: "Springfield", State: "IL", ZIP: "62701",
		ContactName: "Jane Doe", ContactPhone: "8005551234", ContactEmail: "jane@example.com",
	}
	h := New(repo, efw2.MustNew(0), pdf.Writer{}, employer, zaptest.NewLogger(t))
	h.now = func() time.Time { return time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC) }
	return &fixture{repo: repo, handler: h.Routes()}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, filename, body string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("wages", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(body))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/submissions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// upload creates a submission and returns its detail path.
func (f *fixture) upload(t *testing.T) string {
	t.Helper()
	rec := f.do(uploadRequest(t, "wages.csv", wageCSV, map[string]string{"tax_year": "2024", "notes": "Q4"}))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	return rec.Header().Get("Location")
}

func employeeForm(lastName string) url.Values {
	return url.Values{
		"ssn": {"111-22-3333"}, "first_name": {"Ana"}, "last_name": {lastName},
		"address_1": {"9 Pine Rd"}, "city": {"Austin"}, "state": {"TX"}, "zip": {"73301"},
		"wages": {"1,234.56"}, "federal_tax": {"0"}, "ss_wages": {"1234.56"}, "ss_tax": {"76.54"},
		"medicare_wages": {"1234.56"}, "medicare_tax": {"17.90"},
	}
}

func postForm(path string, v url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestIndex_Empty(t *testing.T) {
	f := setup(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No filings yet")
	assert.Contains(t, rec.Body.String(), `<option value="2024" selected>`)
}

func TestCreateSubmission(t *testing.T) {
	f := setup(t)
	path := f.upload(t)
	assert.Equal(t, "/submissions/1", path)

	s, err := f.repo.GetSubmission(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2024, s.Run.TaxYear)
	assert.Equal(t, "Q4", s.Notes)
	assert.Len(t, s.Employees, 1)
	assert.Len(t, s.Digest, 64)

	rec := f.do(httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Acme Corp")
	assert.Contains(t, body, "50,000.00")
	assert.Contains(t, body, "***-**-4321")
	assert.NotContains(t, body, "987654321")

	rec = f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Body.String(), `href="/submissions/1"`)
}

func TestCreateSubmission_HTMX(t *testing.T) {
	f := setup(t)
	req := uploadRequest(t, "wages.csv", wageCSV, nil)
	req.Header.Set("HX-Request", "true")
	rec := f.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/submissions/1", rec.Header().Get("HX-Redirect"))
}

func TestCreateSubmission_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		body     string
		fields   map[string]string
		want     string
	}{
		{"bad amount", "wages.csv", wageCSV + "111-22-3333,Ana,,Souza,,9 Pine Rd,,Austin,TX,73301,,abc,0,1,0,1,0,,TX,,0,0\n", nil, "row 2"},
		{"unsupported format", "wages.ods", wageCSV, nil, "unsupported file format"},
		{"bad year", "wages.csv", wageCSV, map[string]string{"tax_year": "next"}, "tax year"},
		{"name too long", "wages.csv", wageCSV + "111-22-3333,Ana,,Wolfeschlegelsteinhausenbergerdorff,,9 Pine Rd,,Austin,TX,73301,,1,0,1,0,1,0,,TX,,0,0\n", nil, "LastName"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			rec := f.do(uploadRequest(t, tt.filename, tt.body, tt.fields))
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)

			list, err := f.repo.ListSubmissions(context.Background())
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestCreateSubmission_MissingFile(t *testing.T) {
	f := setup(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("tax_year", "2024"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/submissions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	assert.Equal(t, http.StatusBadRequest, f.do(req).Code)
}

func TestDownloadFile(t *testing.T) {
	f := setup(t)
	path := f.upload(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, path+"/efw2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="W2REPORT_123456789_2024.txt"`, rec.Header().Get("Content-Disposition"))

	data := rec.Body.Bytes()
	require.Len(t, data, 5*512)
	assert.Equal(t, "RA", string(data[:2]))
	assert.Equal(t, efw2.Digest(data), rec.Header().Get("X-Content-SHA256"))
}

func TestDownloadPDF(t *testing.T) {
	f := setup(t)
	path := f.upload(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, path+"/pdf", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestAddEmployee(t *testing.T) {
	f := setup(t)
	path := f.upload(t)
	before, err := f.repo.GetSubmission(context.Background(), 1)
	require.NoError(t, err)

	rec := f.do(postForm(path+"/employees", employeeForm("Souza")))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	after, err := f.repo.GetSubmission(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, after.Employees, 2)
	assert.Equal(t, "Souza", after.Employees[1].LastName)
	assert.Equal(t, "1234.56", after.Employees[1].Amounts.Wages.StringFixed(2))
	assert.NotEqual(t, before.Digest, after.Digest)

	rec = f.do(httptest.NewRequest(http.MethodGet, path+"/efw2", nil))
	assert.Len(t, rec.Body.Bytes(), 6*512)
}

func TestAddEmployee_Rejected(t *testing.T) {
	f := setup(t)
	path := f.upload(t)

	rec := f.do(postForm(path+"/employees", employeeForm(strings.Repeat("X", 31))))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	form := employeeForm("Souza")
	form.Set("ss_tax", "-5")
	rec = f.do(postForm(path+"/employees", form))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "ss_tax")

	s, err := f.repo.GetSubmission(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, s.Employees, 1)
}

func TestDeleteEmployee(t *testing.T) {
	f := setup(t)
	path := f.upload(t)
	require.Equal(t, http.StatusSeeOther, f.do(postForm(path+"/employees", employeeForm("Souza"))).Code)

	s, err := f.repo.GetSubmission(context.Background(), 1)
	require.NoError(t, err)
	removed := s.Employees[0].ID

	req := httptest.NewRequest(http.MethodDelete, "/employees/"+itoa(removed), nil)
	req.Header.Set("HX-Request", "true")
	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, path, rec.Header().Get("HX-Redirect"))

	after, err := f.repo.GetSubmission(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, after.Employees, 1)
	assert.Equal(t, "Souza", after.Employees[0].LastName)
	assert.NotEqual(t, s.Digest, after.Digest)

	rec = f.do(httptest.NewRequest(http.MethodDelete, "/employees/"+itoa(removed), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteSubmission(t *testing.T) {
	f := setup(t)
	path := f.upload(t)

	rec := f.do(httptest.NewRequest(http.MethodDelete, path, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBadIDs(t *testing.T) {
	f := setup(t)
	assert.Equal(t, http.StatusBadRequest, f.do(httptest.NewRequest(http.MethodGet, "/submissions/abc", nil)).Code)
	assert.Equal(t, http.StatusNotFound, f.do(httptest.NewRequest(http.MethodGet, "/submissions/42", nil)).Code)
	assert.Equal(t, http.StatusNotFound, f.do(httptest.NewRequest(http.MethodGet, "/submissions/42/efw2", nil)).Code)
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
