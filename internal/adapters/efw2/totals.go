package efw2

import (
	"github.com/shopspring/decimal"

	"github.com/mminer237/efw2-maker/internal/domain"
)

// Totals is the running RW count and the seven summable boxes in cents.
// It is a plain value: Add returns the next state, so the totals written to
// RT are a fold over the RW records actually emitted.
type Totals struct {
	Count         int
	Wages         int64
	FederalTax    int64
	SSWages       int64
	SSTax         int64
	MedicareWages int64
	MedicareTax   int64
	SSTips        int64
}

// Add folds one record's contribution (or another partial total) into t.
func (t Totals) Add(o Totals) Totals {
	t.Count += o.Count
	t.Wages += o.Wages
	t.FederalTax += o.FederalTax
	t.SSWages += o.SSWages
	t.SSTax += o.SSTax
	t.MedicareWages += o.MedicareWages
	t.MedicareTax += o.MedicareTax
	t.SSTips += o.SSTips
	return t
}

// Summarize folds every employee into a Totals without building records.
// Generate reaches the same value through the RW builder.
func Summarize(employees []domain.EmployeeWageRecord) (Totals, error) {
	var t Totals
	for i := range employees {
		c, err := contribution(i+1, employees[i].Amounts)
		if err != nil {
			return Totals{}, err
		}
		t = t.Add(c)
	}
	return t, nil
}

// moneyField pairs an RW money column with its cent slot in Totals.
type moneyField struct {
	rw    string
	rt    string
	value func(*domain.WageAmounts) decimal.Decimal
	cents func(*Totals) *int64
}

// moneyFields lists the seven summed boxes in record order.
var moneyFields = []moneyField{
	{"WagesTipsOther", "TotalWagesTipsOther", func(a *domain.WageAmounts) decimal.Decimal { return a.Wages }, func(t *Totals) *int64 { return &t.Wages }},
	{"FedIncomeTax", "TotalFedIncomeTax", func(a *domain.WageAmounts) decimal.Decimal { return a.FederalTax }, func(t *Totals) *int64 { return &t.FederalTax }},
	{"SSWages", "TotalSSWages", func(a *domain.WageAmounts) decimal.Decimal { return a.SSWages }, func(t *Totals) *int64 { return &t.SSWages }},
	{"SSTax", "TotalSSTax", func(a *domain.WageAmounts) decimal.Decimal { return a.SSTax }, func(t *Totals) *int64 { return &t.SSTax }},
	{"MedicareWages", "TotalMedicareWages", func(a *domain.WageAmounts) decimal.Decimal { return a.MedicareWages }, func(t *Totals) *int64 { return &t.MedicareWages }},
	{"MedicareTax", "TotalMedicareTax", func(a *domain.WageAmounts) decimal.Decimal { return a.MedicareTax }, func(t *Totals) *int64 { return &t.MedicareTax }},
	{"SSTips", "TotalSSTips", func(a *domain.WageAmounts) decimal.Decimal { return a.SSTips }, func(t *Totals) *int64 { return &t.SSTips }},
}

// contribution converts one employee's amounts to a single-record Totals.
// index is the 1-based RW position, used only for error context.
func contribution(index int, a domain.WageAmounts) (Totals, error) {
	t := Totals{Count: 1}
	for _, f := range moneyFields {
		c, err := Cents(f.value(&a))
		if err != nil {
			return Totals{}, &domain.RecordError{RecordType: "RW", Index: index, Field: f.rw, Err: err}
		}
		*f.cents(&t) = c
	}
	return t, nil
}
