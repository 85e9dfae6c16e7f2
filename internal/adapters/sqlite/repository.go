package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mminer237/efw2-maker/internal/domain"
)

type Repository struct {
	db *sql.DB
}

// New opens the SQLite database. Call Migrate (or run `dbmate up`) before
// the first write.
func New(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

// ── Submissions ───────────────────────────────────────────────────────────────

const submissionColumns = `
	ein, user_id, vendor_code, software_code, employer_name,
	addr1, addr2, city, state, zip, zip_ext,
	contact_name, contact_phone, phone_ext, contact_email, contact_fax,
	preparer_code, employment_code, kind_of_employer, third_party_sick_pay,
	tax_year, resub_wfid, final_year, digest, notes`

func submissionArgs(s *domain.Submission) []any {
	e := &s.Employer
	return []any{
		e.EIN, e.UserID, e.VendorCode, e.SoftwareCode, e.Name,
		e.AddressLine1, e.AddressLine2, e.City, e.State, e.ZIP, e.ZIPExtension,
		e.ContactName, e.ContactPhone, e.PhoneExtension, e.ContactEmail, e.ContactFax,
		e.PreparerCode, e.EmploymentCode, e.KindOfEmployer, boolToInt(e.ThirdPartySickPay),
		s.Run.TaxYear, s.Run.ResubWFID, boolToInt(s.Run.FinalYear), s.Digest, s.Notes,
	}
}

// CreateSubmission inserts the submission and all of its employees in one
// transaction.
func (r *Repository) CreateSubmission(ctx context.Context, s *domain.Submission) error {
	s.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	args := append(submissionArgs(s), s.CreatedAt)
	res, err := tx.ExecContext(ctx, `
		INSERT INTO submissions (`+submissionColumns+`, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`, args...)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id

	for i := range s.Employees {
		if err := insertEmployee(ctx, tx, id, &s.Employees[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *Repository) GetSubmission(ctx context.Context, id int64) (*domain.Submission, error) {
	s := &domain.Submission{}
	e := &s.Employer
	var sickPay, finalYear int
	err := r.db.QueryRowContext(ctx, `
		SELECT id, `+submissionColumns+`, created_at
		FROM submissions WHERE id=?`, id).Scan(
		&s.ID,
		&e.EIN, &e.UserID, &e.VendorCode, &e.SoftwareCode, &e.Name,
		&e.AddressLine1, &e.AddressLine2, &e.City, &e.State, &e.ZIP, &e.ZIPExtension,
		&e.ContactName, &e.ContactPhone, &e.PhoneExtension, &e.ContactEmail, &e.ContactFax,
		&e.PreparerCode, &e.EmploymentCode, &e.KindOfEmployer, &sickPay,
		&s.Run.TaxYear, &s.Run.ResubWFID, &finalYear, &s.Digest, &s.Notes,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.ThirdPartySickPay = sickPay == 1
	s.Run.FinalYear = finalYear == 1

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+employeeColumns+`
		FROM employees WHERE submission_id=? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var emp domain.EmployeeWageRecord
		if err := rows.Scan(employeeDest(&emp)...); err != nil {
			return nil, err
		}
		s.Employees = append(s.Employees, emp)
	}
	return s, rows.Err()
}

func (r *Repository) ListSubmissions(ctx context.Context) ([]domain.Submission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.ein, s.employer_name, s.tax_year, s.resub_wfid, s.digest, s.notes, s.created_at,
		       (SELECT COUNT(*) FROM employees e WHERE e.submission_id = s.id)
		FROM submissions s ORDER BY s.created_at DESC, s.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.Submission
	for rows.Next() {
		var s domain.Submission
		var count int
		if err := rows.Scan(&s.ID, &s.Employer.EIN, &s.Employer.Name, &s.Run.TaxYear,
			&s.Run.ResubWFID, &s.Digest, &s.Notes, &s.CreatedAt, &count); err != nil {
			return nil, err
		}
		// The list view only needs the count; rows are loaded by GetSubmission.
		s.Employees = make([]domain.EmployeeWageRecord, count)
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *Repository) UpdateSubmission(ctx context.Context, s *domain.Submission) error {
	return updateSubmission(ctx, r.db, s)
}

func updateSubmission(ctx context.Context, x execer, s *domain.Submission) error {
	args := append(submissionArgs(s), s.ID)
	_, err := x.ExecContext(ctx, `
		UPDATE submissions
		SET ein=?, user_id=?, vendor_code=?, software_code=?, employer_name=?,
		    addr1=?, addr2=?, city=?, state=?, zip=?, zip_ext=?,
		    contact_name=?, contact_phone=?, phone_ext=?, contact_email=?, contact_fax=?,
		    preparer_code=?, employment_code=?, kind_of_employer=?, third_party_sick_pay=?,
		    tax_year=?, resub_wfid=?, final_year=?, digest=?, notes=?
		WHERE id=?`, args...)
	return err
}

func (r *Repository) DeleteSubmission(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM submissions WHERE id=?`, id)
	return err
}

// ── Employees ─────────────────────────────────────────────────────────────────

const employeeColumns = `
	id, submission_id, ssn, first_name, middle_initial, last_name, suffix,
	addr1, addr2, city, state, zip, zip_ext, email,
	wages, fed_tax, ss_wages, ss_tax, med_wages, med_tax, ss_tips,
	state_code, state_id, state_wages, state_tax`

func employeeDest(e *domain.EmployeeWageRecord) []any {
	return []any{
		&e.ID, &e.SubmissionID, &e.SSN, &e.FirstName, &e.MiddleInitial, &e.LastName, &e.Suffix,
		&e.AddressLine1, &e.AddressLine2, &e.City, &e.State, &e.ZIP, &e.ZIPExtension, &e.Email,
		&e.Amounts.Wages, &e.Amounts.FederalTax, &e.Amounts.SSWages, &e.Amounts.SSTax,
		&e.Amounts.MedicareWages, &e.Amounts.MedicareTax, &e.Amounts.SSTips,
		&e.StateInfo.TaxingState, &e.StateInfo.StateID, &e.StateInfo.Wages, &e.StateInfo.Tax,
	}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertEmployee(ctx context.Context, x execer, submissionID int64, e *domain.EmployeeWageRecord) error {
	e.SubmissionID = submissionID
	res, err := x.ExecContext(ctx, `
		INSERT INTO employees (
			submission_id, ssn, first_name, middle_initial, last_name, suffix,
			addr1, addr2, city, state, zip, zip_ext, email,
			wages, fed_tax, ss_wages, ss_tax, med_wages, med_tax, ss_tips,
			state_code, state_id, state_wages, state_tax
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		submissionID, e.SSN, e.FirstName, e.MiddleInitial, e.LastName, e.Suffix,
		e.AddressLine1, e.AddressLine2, e.City, e.State, e.ZIP, e.ZIPExtension, e.Email,
		e.Amounts.Wages.String(), e.Amounts.FederalTax.String(), e.Amounts.SSWages.String(),
		e.Amounts.SSTax.String(), e.Amounts.MedicareWages.String(), e.Amounts.MedicareTax.String(),
		e.Amounts.SSTips.String(),
		e.StateInfo.TaxingState, e.StateInfo.StateID, e.StateInfo.Wages.String(), e.StateInfo.Tax.String(),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// AddEmployee inserts e under s and rewrites s (its digest in particular)
// in one transaction.
func (r *Repository) AddEmployee(ctx context.Context, s *domain.Submission, e *domain.EmployeeWageRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertEmployee(ctx, tx, s.ID, e); err != nil {
		return err
	}
	if err := updateSubmission(ctx, tx, s); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Repository) GetEmployee(ctx context.Context, id int64) (*domain.EmployeeWageRecord, error) {
	e := &domain.EmployeeWageRecord{}
	err := r.db.QueryRowContext(ctx, `
		SELECT `+employeeColumns+`
		FROM employees WHERE id=?`, id).Scan(employeeDest(e)...)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteEmployee removes employee id from s and rewrites s in one
// transaction. An id that does not belong to s is sql.ErrNoRows.
func (r *Repository) DeleteEmployee(ctx context.Context, s *domain.Submission, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM employees WHERE id=? AND submission_id=?`, id, s.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return sql.ErrNoRows
	}
	if err := updateSubmission(ctx, tx, s); err != nil {
		return err
	}
	return tx.Commit()
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
