package handlers

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/mminer237/efw2-maker/internal/adapters/efw2"
	"github.com/mminer237/efw2-maker/internal/adapters/wagefile"
	"github.com/mminer237/efw2-maker/internal/domain"
	"github.com/mminer237/efw2-maker/internal/ports"
	"github.com/mminer237/efw2-maker/internal/templates"
)

// maxUpload bounds the multipart body of a wage file upload.
const maxUpload = 32 << 20

type Handler struct {
	repo     ports.SubmissionRepository
	gen      ports.EFW2Generator
	reports  ports.ReportWriter
	employer domain.EmployerConfig
	logger   *zap.Logger
	now      func() time.Time
}

func New(repo ports.SubmissionRepository, gen ports.EFW2Generator, reports ports.ReportWriter,
	employer domain.EmployerConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, gen: gen, reports: reports, employer: employer, logger: logger, now: time.Now}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("POST /submissions", h.createSubmission)
	mux.HandleFunc("GET /submissions/{id}", h.viewSubmission)
	mux.HandleFunc("DELETE /submissions/{id}", h.deleteSubmission)
	mux.HandleFunc("POST /submissions/{id}/employees", h.addEmployee)
	mux.HandleFunc("DELETE /employees/{id}", h.deleteEmployee)
	mux.HandleFunc("GET /submissions/{id}/efw2", h.downloadFile)
	mux.HandleFunc("GET /submissions/{id}/pdf", h.downloadPDF)
	return mux
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.repo.ListSubmissions(r.Context())
	if err != nil {
		h.serverError(w, "handlers.index", err)
		return
	}
	page := templates.Index(submissions, h.gen.SupportedYears(), domain.DefaultTaxYear(h.now()))
	render(w, r, templates.Layout("EFW2 filings", page))
}

// createSubmission reads an uploaded wage file, encodes it once to reject
// anything that would not produce a valid file, and archives the result.
func (h *Handler) createSubmission(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("wages")
	if err != nil {
		http.Error(w, "wage file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	reader, err := wagefile.ForPath(header.Filename)
	if err != nil {
		h.reject(w, r, err)
		return
	}
	employees, err := reader.Read(file)
	if err != nil {
		h.reject(w, r, err)
		return
	}

	year := domain.DefaultTaxYear(h.now())
	if v := strings.TrimSpace(r.FormValue("tax_year")); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil {
			h.reject(w, r, &domain.ConfigurationError{Field: "tax year", Reason: fmt.Sprintf("%q is not a year", v)})
			return
		}
	}
	s := &domain.Submission{
		Employer: h.employer,
		Run: domain.RunParameters{
			TaxYear:   year,
			ResubWFID: strings.TrimSpace(r.FormValue("resub_wfid")),
			FinalYear: r.FormValue("final") != "",
		},
		Employees: employees,
		Notes:     r.FormValue("notes"),
	}
	if _, err := h.encode(r, s); err != nil {
		h.reject(w, r, err)
		return
	}
	if err := h.repo.CreateSubmission(r.Context(), s); err != nil {
		h.serverError(w, "handlers.createSubmission", err)
		return
	}
	h.logger.Info("created submission",
		zap.String("op", "handlers.createSubmission"),
		zap.Int64("id", s.ID),
		zap.String("file", header.Filename),
		zap.Int("employees", len(employees)),
	)
	redirect(w, r, "/submissions/"+strconv.FormatInt(s.ID, 10))
}

func (h *Handler) viewSubmission(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSubmission(w, r)
	if !ok {
		return
	}
	totals, err := efw2.Summarize(s.Employees)
	if err != nil {
		h.serverError(w, "handlers.viewSubmission", err)
		return
	}
	render(w, r, templates.Layout(s.Employer.Name, templates.Detail(s, totals)))
}

func (h *Handler) deleteSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.repo.DeleteSubmission(r.Context(), id); err != nil {
		h.serverError(w, "handlers.deleteSubmission", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) addEmployee(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSubmission(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	e, err := wagefile.FromValues(r.PostFormValue)
	if err != nil {
		h.reject(w, r, err)
		return
	}
	s.Employees = append(s.Employees, e)
	if _, err := h.encode(r, s); err != nil {
		h.reject(w, r, err)
		return
	}
	if err := h.repo.AddEmployee(r.Context(), s, &e); err != nil {
		h.serverError(w, "handlers.addEmployee", err)
		return
	}
	redirect(w, r, "/submissions/"+strconv.FormatInt(s.ID, 10))
}

func (h *Handler) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	e, err := h.repo.GetEmployee(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	} else if err != nil {
		h.serverError(w, "handlers.deleteEmployee", err)
		return
	}
	s, err := h.repo.GetSubmission(r.Context(), e.SubmissionID)
	if err != nil {
		h.serverError(w, "handlers.deleteEmployee", err)
		return
	}
	remaining := s.Employees[:0]
	for _, other := range s.Employees {
		if other.ID != id {
			remaining = append(remaining, other)
		}
	}
	s.Employees = remaining
	if _, err := h.encode(r, s); err != nil {
		h.logger.Warn("submission no longer encodes",
			zap.String("op", "handlers.deleteEmployee"),
			zap.Int64("id", s.ID),
			zap.Error(err),
		)
		s.Digest = ""
	}
	if err := h.repo.DeleteEmployee(r.Context(), s, id); err != nil {
		h.serverError(w, "handlers.deleteEmployee", err)
		return
	}
	redirect(w, r, "/submissions/"+strconv.FormatInt(s.ID, 10))
}

func (h *Handler) downloadFile(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSubmission(w, r)
	if !ok {
		return
	}
	data, err := h.encode(r, s)
	if err != nil {
		h.reject(w, r, err)
		return
	}
	filename := fmt.Sprintf("W2REPORT_%s_%d.txt", domain.Digits(s.Employer.EIN), s.Run.TaxYear)
	w.Header().Set("Content-Type", "text/plain; charset=us-ascii")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("X-Content-SHA256", s.Digest)
	w.Write(data)
}

func (h *Handler) downloadPDF(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSubmission(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.reports.Write(s, &buf); err != nil {
		h.reject(w, r, err)
		return
	}
	filename := fmt.Sprintf("W2REPORT_%s_%d_summary.pdf", domain.Digits(s.Employer.EIN), s.Run.TaxYear)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(buf.Bytes())
}

// encode generates the file for s and stamps its digest.
func (h *Handler) encode(r *http.Request, s *domain.Submission) ([]byte, error) {
	var buf bytes.Buffer
	if err := h.gen.Generate(r.Context(), s, &buf); err != nil {
		return nil, err
	}
	s.Digest = efw2.Digest(buf.Bytes())
	return buf.Bytes(), nil
}

func (h *Handler) loadSubmission(w http.ResponseWriter, r *http.Request) (*domain.Submission, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil, false
	}
	s, err := h.repo.GetSubmission(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return nil, false
	} else if err != nil {
		h.serverError(w, "handlers.loadSubmission", err)
		return nil, false
	}
	return s, true
}

// reject answers a request whose data cannot produce a valid file.
func (h *Handler) reject(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Info("rejected request",
		zap.String("op", "handlers.reject"),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.ErrorMessage(err.Error()).Render(r.Context(), w)
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("request failed", zap.String("op", op), zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// redirect sends htmx requests to url via HX-Redirect and everyone else via 303.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// render writes a templ component to the response.
func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(r.PathValue(key), 10, 64)
}
