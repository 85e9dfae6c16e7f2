package domain

import "fmt"

// ConfigurationError reports a missing or malformed configuration, including
// identity fields that break their fixed-length invariants.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := "configuration"
	if e.Field != "" {
		msg += " " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// InputParseError reports a wage-file row that could not be turned into an
// EmployeeWageRecord. Row is 1-based and counts data rows, not the header.
type InputParseError struct {
	Row    int
	Column string
	Err    error
}

func (e *InputParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d column %q: %v", e.Row, e.Column, e.Err)
}

func (e *InputParseError) Unwrap() error { return e.Err }

// FieldTooLongError is returned when a normalized value does not fit its
// column range. Values are never truncated.
type FieldTooLongError struct {
	Value string
	Width int
}

func (e *FieldTooLongError) Error() string {
	return fmt.Sprintf("value %q is %d characters, field allows %d", e.Value, len(e.Value), e.Width)
}

// InvalidFieldError is returned for values that cannot be encoded at all,
// such as negative amounts or an SSN that is not 9 digits.
type InvalidFieldError struct {
	Value  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid value %q: %s", e.Value, e.Reason)
}

// InternalLengthInvariantError means a fully assembled record is not exactly
// the record length. It is a generator bug, never a data problem.
type InternalLengthInvariantError struct {
	RecordType string
	Length     int
	Want       int
}

func (e *InternalLengthInvariantError) Error() string {
	return fmt.Sprintf("internal error: %s record is %d bytes (want %d)", e.RecordType, e.Length, e.Want)
}

// RecordError attaches record and field context to a formatting failure.
// Index is the 1-based RW position and is zero for the singleton records.
type RecordError struct {
	RecordType string
	Index      int
	Field      string
	Err        error
}

func (e *RecordError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("%s record %d field %s: %v", e.RecordType, e.Index, e.Field, e.Err)
	}
	return fmt.Sprintf("%s record field %s: %v", e.RecordType, e.Field, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }
