package efw2

import (
	"strconv"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"github.com/shopspring/decimal"

	"github.com/mminer237/efw2-maker/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// maxCentDigits keeps cent values inside int64.
const maxCentDigits = 18

// FormatText transliterates value to plain ASCII, uppercases it and
// left-justifies it in width columns filled with pad. A value that does not
// fit is an error, never truncated.
func FormatText(value string, width int, pad byte) (string, error) {
	return fit(strings.ToUpper(ascii(value)), width, pad)
}

// formatEmail is FormatText without the uppercasing.
func formatEmail(value string, width int, pad byte) (string, error) {
	return fit(ascii(value), width, pad)
}

// formatDigits keeps only the digits of value (phone, fax, ZIP) before
// justifying it.
func formatDigits(value string, width int, pad byte) (string, error) {
	return fit(domain.Digits(value), width, pad)
}

// FormatAmount renders a dollar amount as zero-padded integer cents.
func FormatAmount(value decimal.Decimal, width int) (string, error) {
	cents, err := centsOf(value)
	if err != nil {
		return "", err
	}
	return zeroPad(cents.String(), width)
}

// FormatCents renders an already-scaled cent value, as carried in Totals.
func FormatCents(cents int64, width int) (string, error) {
	if cents < 0 {
		return "", &domain.InvalidFieldError{Value: strconv.FormatInt(cents, 10), Reason: "amount must not be negative"}
	}
	return zeroPad(strconv.FormatInt(cents, 10), width)
}

// Cents converts a dollar amount to integer cents, rounding half away from zero.
func Cents(value decimal.Decimal) (int64, error) {
	cents, err := centsOf(value)
	if err != nil {
		return 0, err
	}
	if s := cents.String(); len(s) > maxCentDigits {
		return 0, &domain.FieldTooLongError{Value: s, Width: maxCentDigits}
	}
	return cents.IntPart(), nil
}

func centsOf(value decimal.Decimal) (decimal.Decimal, error) {
	if value.IsNegative() {
		return decimal.Zero, &domain.InvalidFieldError{Value: value.String(), Reason: "amount must not be negative"}
	}
	return value.Mul(hundred).Round(0), nil
}

// ascii transliterates value and turns control characters into spaces so
// a line break inside a cell cannot split a record. Plain ASCII text keeps
// its surrounding whitespace; the readers trim their cells.
func ascii(value string) string {
	out := unidecode.Unidecode(value)
	if !strings.HasSuffix(value, " ") {
		// unidecode separates romanized CJK syllables with a trailing space.
		out = strings.TrimRight(out, " ")
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, out)
}

func fit(s string, width int, pad byte) (string, error) {
	if len(s) > width {
		return "", &domain.FieldTooLongError{Value: s, Width: width}
	}
	return s + strings.Repeat(string([]byte{pad}), width-len(s)), nil
}

func zeroPad(digits string, width int) (string, error) {
	if len(digits) > width {
		return "", &domain.FieldTooLongError{Value: digits, Width: width}
	}
	return strings.Repeat("0", width-len(digits)) + digits, nil
}
