package templates

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	"github.com/mminer237/efw2-maker/internal/domain"
)

// amountToDisplay renders a dollar amount as "1,234.50".
func amountToDisplay(d decimal.Decimal) string {
	s := d.StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String() + "." + frac
}

// centsToDisplay renders an integer cent total as "1,234.50".
func centsToDisplay(cents int64) string {
	return amountToDisplay(decimal.New(cents, -2))
}

// itoa converts an int64 to a string, used for building URL paths.
func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

// maskSSN shows only the last four digits.
func maskSSN(ssn string) string {
	d := domain.Digits(ssn)
	if len(d) != 9 {
		return "***-**-****"
	}
	return "***-**-" + d[5:]
}

// html is a small writer helper for hand-assembled components. The first
// write error sticks.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

// text writes s HTML-escaped.
func (h *html) text(s string) { h.raw(templ.EscapeString(s)) }

// attr writes name="value" with the value escaped.
func (h *html) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (h *html) component(ctx context.Context, c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(ctx, h.w)
	}
}
