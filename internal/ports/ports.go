package ports

import (
	"context"
	"io"

	"github.com/mminer237/efw2-maker/internal/domain"
)

// SubmissionRepository defines persistence operations for archived filings.
type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, s *domain.Submission) error
	GetSubmission(ctx context.Context, id int64) (*domain.Submission, error)
	ListSubmissions(ctx context.Context) ([]domain.Submission, error)
	UpdateSubmission(ctx context.Context, s *domain.Submission) error
	DeleteSubmission(ctx context.Context, id int64) error

	// AddEmployee and DeleteEmployee change one employee row and store s
	// (with its refreshed digest) atomically.
	AddEmployee(ctx context.Context, s *domain.Submission, e *domain.EmployeeWageRecord) error
	GetEmployee(ctx context.Context, id int64) (*domain.EmployeeWageRecord, error)
	DeleteEmployee(ctx context.Context, s *domain.Submission, id int64) error
}

// EFW2Generator defines the output generation port.
type EFW2Generator interface {
	// Generate writes a complete EFW2 file for the submission. The layout
	// is selected from s.Run.TaxYear.
	Generate(ctx context.Context, s *domain.Submission, w io.Writer) error

	// SupportedYears returns the tax years this generator can produce files for,
	// in ascending order, each with its SSA publication URL.
	SupportedYears() []domain.TaxYearInfo
}

// WageReader turns a tabular wage file into employee rows, in file order.
type WageReader interface {
	Read(r io.Reader) ([]domain.EmployeeWageRecord, error)
}

// ReportWriter renders a human-readable summary of a submission.
type ReportWriter interface {
	Write(s *domain.Submission, w io.Writer) error
}
