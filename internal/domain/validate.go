package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// Digits returns only the ASCII digits of s, dropping dashes, spaces and
// any other separators.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeID strips the dashes and spaces from an EIN or SSN and requires
// exactly n ASCII digits to remain. Any other character is an error, never
// silently dropped.
func NormalizeID(s string, n int) (string, error) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '-' || r == ' ':
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			return "", fmt.Errorf("%q contains %q; only digits, dashes and spaces are allowed", s, r)
		}
	}
	if b.Len() != n {
		return "", fmt.Errorf("%q has %d digits, want %d", s, b.Len(), n)
	}
	return b.String(), nil
}

// WithDefaults fills the optional codes with the values SSA expects from a
// self-prepared, in-house, regular employer filing.
func (c EmployerConfig) WithDefaults() EmployerConfig {
	c.SoftwareCode = defaultStr(c.SoftwareCode, "98")
	c.PreparerCode = defaultStr(c.PreparerCode, "L")
	c.EmploymentCode = defaultStr(c.EmploymentCode, "R")
	c.KindOfEmployer = defaultStr(c.KindOfEmployer, "N")
	return c
}

// Validate checks the fixed-length identity invariants. Anything that fails
// here would be rejected by SSA before a single wage record is read.
func (c EmployerConfig) Validate() error {
	if _, err := NormalizeID(c.EIN, 9); err != nil {
		return &ConfigurationError{Field: "employer.ein", Reason: "EIN must be 9 digits long", Err: err}
	}
	if len(c.UserID) != 8 {
		return &ConfigurationError{Field: "employer.user_id", Reason: "user ID must be exactly 8 characters"}
	}
	for _, r := range c.UserID {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return &ConfigurationError{Field: "employer.user_id", Reason: "user ID must be alphanumeric"}
		}
	}
	if strings.TrimSpace(c.Name) == "" {
		return &ConfigurationError{Field: "employer.name", Reason: "required"}
	}
	if strings.TrimSpace(c.AddressLine1) == "" {
		return &ConfigurationError{Field: "employer.address_1", Reason: "required"}
	}
	if strings.TrimSpace(c.City) == "" {
		return &ConfigurationError{Field: "employer.city", Reason: "required"}
	}
	if len(strings.TrimSpace(c.State)) != 2 {
		return &ConfigurationError{Field: "employer.state", Reason: "must be a 2-letter abbreviation"}
	}
	if z := Digits(c.ZIP); len(z) != 5 {
		return &ConfigurationError{Field: "employer.zip", Reason: "must be 5 digits"}
	}
	if strings.TrimSpace(c.ContactName) == "" {
		return &ConfigurationError{Field: "employer.contact_name", Reason: "required"}
	}
	if strings.TrimSpace(c.ContactPhone) == "" {
		return &ConfigurationError{Field: "employer.contact_phone", Reason: "required"}
	}
	if !strings.Contains(c.ContactEmail, "@") {
		return &ConfigurationError{Field: "employer.contact_email", Reason: "must be an e-mail address"}
	}
	if c.SoftwareCode != "" && c.SoftwareCode != "98" && c.SoftwareCode != "99" {
		return &ConfigurationError{Field: "employer.software_code", Reason: `must be "98" or "99"`}
	}
	return nil
}

// Validate checks the run switches.
func (p RunParameters) Validate() error {
	if p.TaxYear < 1000 || p.TaxYear > 9999 {
		return &ConfigurationError{Field: "tax year", Reason: "must be a 4-digit year"}
	}
	if len(strings.TrimSpace(p.ResubWFID)) > 6 {
		return &ConfigurationError{Field: "resubmission WFID", Reason: "must be at most 6 characters"}
	}
	return nil
}

func defaultStr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
