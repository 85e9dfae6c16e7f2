package efw2

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mminer237/efw2-maker/internal/adapters/efw2/spec"
	"github.com/mminer237/efw2-maker/internal/domain"
)

type Generator struct {
	year    int
	yspec   *spec.YearSpec
	variant spec.Variant
	logger  *zap.Logger
}

type Option func(*Generator)

// WithVariant selects the padding and address-order variant. The default
// is spec.SSA.
func WithVariant(v spec.Variant) Option { return func(g *Generator) { g.variant = v } }

func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

func New(year int, opts ...Option) (*Generator, error) {
	if year == 0 {
		year = spec.DefaultYear
	}
	yspec, exact := spec.ForYear(year)
	g := &Generator{year: year, yspec: yspec, variant: spec.SSA, logger: zap.NewNop()}
	for _, o := range opts {
		o(g)
	}
	if !exact {
		return g, fmt.Errorf("no exact layout for TY%d; using TY%d layout as fallback", year, spec.DefaultYear)
	}
	return g, nil
}

func MustNew(year int, opts ...Option) *Generator {
	g, _ := New(year, opts...)
	return g
}

// SupportedYears returns all tax years this generator supports, ascending,
// each paired with its SSA publication URL. Satisfies ports.EFW2Generator.
func (g *Generator) SupportedYears() []domain.TaxYearInfo {
	years := spec.Supported()
	out := make([]domain.TaxYearInfo, len(years))
	for i, y := range years {
		ys, _ := spec.ForYear(y)
		out[i] = domain.TaxYearInfo{
			Year:           strconv.Itoa(y),
			PublicationURL: ys.PublicationURL,
		}
	}
	return out
}

// Generate writes a complete EFW2 byte stream (no CR/LF between records).
// Record order: RA, RE, RW..., RT, RF. Every record is built and checked
// before the first byte reaches w, so a failed run writes nothing.
func (g *Generator) Generate(ctx context.Context, s *domain.Submission, w io.Writer) error {
	local := g.forYear(s.Run.TaxYear)

	sub := *s
	sub.Employer = s.Employer.WithDefaults()
	if err := sub.Employer.Validate(); err != nil {
		return err
	}
	if err := sub.Run.Validate(); err != nil {
		return err
	}

	var out bytes.Buffer
	out.Grow((len(sub.Employees) + 4) * spec.RecordLen)

	ra, err := local.buildRA(&sub)
	if err != nil {
		return err
	}
	out.WriteString(ra)

	re, err := local.buildRE(&sub)
	if err != nil {
		return err
	}
	out.WriteString(re)

	var totals Totals
	for i := range sub.Employees {
		if err := ctx.Err(); err != nil {
			return err
		}
		rw, line, err := local.buildRW(i+1, &sub.Employees[i])
		if err != nil {
			return err
		}
		out.WriteString(rw)
		totals = totals.Add(line)
	}

	rt, err := local.buildRT(totals)
	if err != nil {
		return err
	}
	out.WriteString(rt)

	rf, err := local.buildRF(totals.Count)
	if err != nil {
		return err
	}
	out.WriteString(rf)

	local.logger.Debug("assembled EFW2 file",
		zap.String("op", "efw2.Generate"),
		zap.Int("tax_year", local.yspec.TaxYear),
		zap.Int("rw_records", totals.Count),
		zap.Int("bytes", out.Len()),
	)

	_, err = w.Write(out.Bytes())
	return err
}

// Digest returns the hex SHA-256 of a generated file, as archived with the
// submission.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// forYear resolves the layout for a submission's tax year.
func (g *Generator) forYear(year int) *Generator {
	if year == 0 || year == g.year {
		return g
	}
	yspec, exact := spec.ForYear(year)
	if !exact {
		g.logger.Warn("no published layout for tax year; using default layout",
			zap.String("op", "efw2.Generate"),
			zap.Int("tax_year", year),
			zap.Int("layout_year", yspec.TaxYear),
		)
	}
	return &Generator{year: year, yspec: yspec, variant: g.variant, logger: g.logger}
}

// ---------------------------------------------------------------------------
// Record builders
// ---------------------------------------------------------------------------

// address is the common shape of the RA, RE and RW address blocks.
type address struct {
	line1, line2 string
	city, state  string
	zip, zipExt  string
}

func (g *Generator) putAddress(b *fixedBuf, prefix string, a address) {
	location, delivery := a.line2, a.line1
	if g.variant.AddressOrder == spec.DeliveryFirst {
		location, delivery = a.line1, a.line2
	}
	zip, ext := splitZIP(a.zip, a.zipExt)
	b.text(prefix+"LocationAddress", location)
	b.text(prefix+"DeliveryAddress", delivery)
	b.text(prefix+"City", a.city)
	b.text(prefix+"StateAbbrev", a.state)
	b.digits(prefix+"ZIPCode", zip)
	b.digits(prefix+"ZIPExtension", ext)
	b.text(prefix+"CountryCode", g.variant.CountryCode)
}

func employerAddress(e *domain.EmployerConfig) address {
	return address{e.AddressLine1, e.AddressLine2, e.City, e.State, e.ZIP, e.ZIPExtension}
}

func (g *Generator) buildRA(s *domain.Submission) (string, error) {
	e := &s.Employer

	b := g.newBuf("RA", g.yspec.RA, 0)
	b.put("RecordIdentifier", "RA")
	b.exactDigits("SubmitterEIN", e.EIN)
	b.text("UserID", e.UserID)
	b.text("SoftwareVendorCode", e.VendorCode)
	if s.Run.Resubmission() {
		b.put("ResubIndicator", "1")
		b.text("ResubWFID", s.Run.ResubWFID)
	} else {
		b.put("ResubIndicator", "0")
	}
	b.digits("SoftwareCode", e.SoftwareCode)

	// The company and submitter blocks are the same organization.
	b.text("CompanyName", e.Name)
	g.putAddress(b, "Company", employerAddress(e))
	b.text("SubmitterName", e.Name)
	g.putAddress(b, "Submitter", employerAddress(e))

	b.text("ContactName", e.ContactName)
	b.digits("ContactPhone", e.ContactPhone)
	b.digits("PhoneExtension", e.PhoneExtension)
	b.email("ContactEmail", e.ContactEmail)
	b.digits("ContactFax", e.ContactFax)
	b.text("PreparerCode", e.PreparerCode)
	return b.String()
}

func (g *Generator) buildRE(s *domain.Submission) (string, error) {
	e := &s.Employer

	b := g.newBuf("RE", g.yspec.RE, 0)
	b.put("RecordIdentifier", "RE")
	b.exactDigits("TaxYear", strconv.Itoa(s.Run.TaxYear))
	b.exactDigits("EmployerEIN", e.EIN)
	b.put("TerminatingBusiness", boolChar(s.Run.FinalYear))
	b.text("EmployerName", e.Name)
	g.putAddress(b, "", employerAddress(e))
	b.text("KindOfEmployer", e.KindOfEmployer)
	b.text("EmploymentCode", e.EmploymentCode)
	b.put("ThirdPartySickPay", boolChar(e.ThirdPartySickPay))
	b.text("ContactName", e.ContactName)
	b.digits("ContactPhone", e.ContactPhone)
	b.digits("PhoneExtension", e.PhoneExtension)
	b.digits("ContactFax", e.ContactFax)
	b.email("ContactEmail", e.ContactEmail)
	return b.String()
}

// buildRW returns the record and its contribution to the RT totals. The
// money columns are written from the same cent values that are returned, so
// RW and RT cannot disagree.
func (g *Generator) buildRW(index int, e *domain.EmployeeWageRecord) (string, Totals, error) {
	line, err := contribution(index, e.Amounts)
	if err != nil {
		return "", Totals{}, err
	}

	b := g.newBuf("RW", g.yspec.RW, index)
	b.put("RecordIdentifier", "RW")
	b.exactDigits("SSN", e.SSN)
	b.text("FirstName", e.FirstName)
	b.text("MiddleName", e.MiddleInitial)
	b.text("LastName", e.LastName)
	b.text("Suffix", e.Suffix)
	g.putAddress(b, "", address{e.AddressLine1, e.AddressLine2, e.City, e.State, e.ZIP, e.ZIPExtension})

	for _, f := range moneyFields {
		b.cents(f.rw, *f.cents(&line))
	}

	// Box 13 checkboxes are not tracked; SSA wants an explicit "0".
	b.put("StatutoryEmployee", "0")
	b.put("RetirementPlan", "0")
	b.put("ThirdPartySickPay", "0")

	rec, err := b.String()
	if err != nil {
		return "", Totals{}, err
	}
	return rec, line, nil
}

func (g *Generator) buildRT(t Totals) (string, error) {
	b := g.newBuf("RT", g.yspec.RT, 0)
	b.put("RecordIdentifier", "RT")
	b.count("TotalRWRecords", t.Count)
	for _, f := range moneyFields {
		b.cents(f.rt, *f.cents(&t))
	}
	return b.String()
}

func (g *Generator) buildRF(count int) (string, error) {
	b := g.newBuf("RF", g.yspec.RF, 0)
	b.put("RecordIdentifier", "RF")
	b.count("TotalRWRecords", count)
	return b.String()
}

// ---------------------------------------------------------------------------
// Buffer
// ---------------------------------------------------------------------------

// fixedBuf collects formatted values by field name and lays them out in
// layout order. The first formatting error sticks; later puts are ignored.
type fixedBuf struct {
	kind   string
	index  int
	fields []spec.Field
	pad    byte
	values map[string]string
	err    error
}

func (g *Generator) newBuf(kind string, fields []spec.Field, index int) *fixedBuf {
	return &fixedBuf{
		kind:   kind,
		index:  index,
		fields: fields,
		pad:    g.variant.Pad,
		values: make(map[string]string, len(fields)),
	}
}

// format looks up name in the layout and stores fn(value) at its width.
func (b *fixedBuf) format(name, value string, fn func(string, int, byte) (string, error)) {
	if b.err != nil {
		return
	}
	f, ok := spec.Lookup(b.fields, name)
	if !ok {
		b.err = fmt.Errorf("efw2: field %q not found in %s layout: generator bug", name, b.kind)
		return
	}
	s, err := fn(value, f.Len(), b.pad)
	if err != nil {
		b.err = &domain.RecordError{RecordType: b.kind, Index: b.index, Field: name, Err: err}
		return
	}
	b.values[name] = s
}

// put writes a literal code or indicator.
func (b *fixedBuf) put(name, value string) { b.format(name, value, fit) }

func (b *fixedBuf) text(name, value string)   { b.format(name, value, FormatText) }
func (b *fixedBuf) email(name, value string)  { b.format(name, value, formatEmail) }
func (b *fixedBuf) digits(name, value string) { b.format(name, value, formatDigits) }

// exactDigits requires value to have exactly as many digits as the field
// once dashes and spaces are removed (EIN, SSN, tax year).
func (b *fixedBuf) exactDigits(name, value string) {
	b.format(name, value, func(v string, width int, pad byte) (string, error) {
		d, err := domain.NormalizeID(v, width)
		if err != nil {
			return "", &domain.InvalidFieldError{Value: v, Reason: fmt.Sprintf("must be exactly %d digits, optionally separated by dashes or spaces", width)}
		}
		return d, nil
	})
}

func (b *fixedBuf) cents(name string, c int64) {
	b.format(name, "", func(_ string, width int, _ byte) (string, error) {
		return FormatCents(c, width)
	})
}

func (b *fixedBuf) count(name string, n int) {
	b.format(name, "", func(_ string, width int, _ byte) (string, error) {
		return zeroPad(strconv.Itoa(n), width)
	})
}

// String lays the fields out in order, filling unset ones with the pad
// character, and enforces the record length.
func (b *fixedBuf) String() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	var sb strings.Builder
	sb.Grow(spec.RecordLen)
	blank := string([]byte{b.pad})
	for _, f := range b.fields {
		if v, ok := b.values[f.Name]; ok {
			sb.WriteString(v)
			continue
		}
		sb.WriteString(strings.Repeat(blank, f.Len()))
	}
	if sb.Len() != spec.RecordLen {
		return "", &domain.InternalLengthInvariantError{RecordType: b.kind, Length: sb.Len(), Want: spec.RecordLen}
	}
	return sb.String(), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// splitZIP accepts "62701", "62701-1234" or a separate extension.
func splitZIP(zip, ext string) (string, string) {
	d := domain.Digits(zip)
	if strings.TrimSpace(ext) == "" && len(d) == 9 {
		return d[:5], d[5:]
	}
	return d, domain.Digits(ext)
}

func boolChar(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
