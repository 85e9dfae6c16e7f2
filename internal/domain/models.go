package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TaxYearInfo carries a supported tax year string and its SSA publication URL.
// Populated by the generator port so templates can build selects with spec links.
type TaxYearInfo struct {
	Year           string // e.g. "2024"
	PublicationURL string // e.g. "https://www.ssa.gov/employer/efw/24efw2.pdf"
}

// EmployerConfig holds the submitter and employer identity written into the
// RA and RE records. A single organization files for itself, so the same
// identity fills both the "company" and "submitter" blocks of RA.
type EmployerConfig struct {
	// EIN is the 9-digit Employer Identification Number. Dashes and spaces
	// are stripped before validation.
	EIN string
	// UserID is the 8-char BSO User ID from SSA registration.
	// Obtain at: https://www.ssa.gov/employer/
	UserID string
	// VendorCode is the 4-char NACTP software vendor code; blank for in-house software.
	VendorCode string
	// SoftwareCode: "98"=in-house program, "99"=off-the-shelf. Defaults to "98".
	SoftwareCode string

	Name         string
	AddressLine1 string // street or PO box (delivery address)
	AddressLine2 string // suite, room, attention (location address)
	City         string
	State        string
	ZIP          string
	ZIPExtension string

	ContactName    string
	ContactPhone   string // digits only once normalized, e.g. "8005551234"
	PhoneExtension string
	ContactEmail   string
	ContactFax     string

	// PreparerCode: A=Accounting Firm, L=Self-Prepared, S=Service Bureau,
	// P=Parent Company, O=Other. Defaults to "L".
	PreparerCode string
	// EmploymentCode: A/H/M/Q/R/X/F. Defaults to "R".
	EmploymentCode string
	// KindOfEmployer: F/S/T/Y/N. Defaults to "N".
	KindOfEmployer    string
	ThirdPartySickPay bool
}

// RunParameters are the per-run switches that are not part of the
// employer's identity.
type RunParameters struct {
	TaxYear int
	// ResubWFID is the Wage File Identifier of the rejected file being
	// resubmitted. Empty means an original submission.
	ResubWFID string
	// FinalYear marks the employer's last year of filing (RE terminating
	// business indicator).
	FinalYear bool
}

// Resubmission reports whether this run replaces a previously rejected file.
func (p RunParameters) Resubmission() bool { return strings.TrimSpace(p.ResubWFID) != "" }

// DefaultTaxYear is the calendar year before now: W-2s are filed in the
// year after the wages were paid.
func DefaultTaxYear(now time.Time) int { return now.Year() - 1 }

// WageAmounts are the seven summable W-2 boxes carried in RW and totalled in RT.
type WageAmounts struct {
	Wages         decimal.Decimal // Box 1
	FederalTax    decimal.Decimal // Box 2
	SSWages       decimal.Decimal // Box 3
	SSTax         decimal.Decimal // Box 4
	MedicareWages decimal.Decimal // Box 5
	MedicareTax   decimal.Decimal // Box 6
	SSTips        decimal.Decimal // Box 7
}

// StateWages are the Box 15–17 fields. They are archived and reported but
// not encoded, since the RS record is not part of the produced file.
type StateWages struct {
	TaxingState string
	StateID     string
	Wages       decimal.Decimal
	Tax         decimal.Decimal
}

type EmployeeWageRecord struct {
	ID            int64
	SubmissionID  int64
	SSN           string
	FirstName     string
	MiddleInitial string
	LastName      string
	Suffix        string
	AddressLine1  string
	AddressLine2  string
	City          string
	State         string
	ZIP           string
	ZIPExtension  string
	Email         string
	Amounts       WageAmounts
	StateInfo     StateWages
}

// Submission is one complete EFW2 filing: identity, run switches and the
// employee rows in input order.
type Submission struct {
	ID        int64
	Employer  EmployerConfig
	Run       RunParameters
	Employees []EmployeeWageRecord
	CreatedAt time.Time
	// Digest is the hex SHA-256 of the generated file, set once it has been produced.
	Digest string
	Notes  string
}
