// Package spec defines the EFW2 record layout per SSA Publication 42-007
// ("Specifications for Filing Forms W-2 Electronically").
// The RA/RE/RW/RT/RF positions have been stable since TY2021; only the
// publication URL differs between years.
package spec

import (
	"fmt"
	"strings"
)

const RecordLen = 512

type Field struct {
	Name        string
	Start       int
	End         int
	Type        FieldType
	Description string
}

func (f Field) Len() int { return f.End - f.Start + 1 }

type FieldType int

const (
	Alpha   FieldType = iota // left-justified, pad-filled, uppercase ASCII
	Numeric                  // digits only, left-justified, pad-filled
	Money                    // zero-padded integer cents, no decimal point
	Fixed                    // literal constant
	Blank                    // pad character only
)

type YearSpec struct {
	TaxYear        int
	PublicationURL string
	RA             []Field
	RE             []Field
	RW             []Field
	RT             []Field
	RF             []Field
}

// Lookup returns the named field of a record layout.
func Lookup(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

const DefaultYear = 2024

func Supported() []int { return []int{2021, 2022, 2023, 2024, 2025} }

// ForYear returns the layout for year, falling back to DefaultYear with
// ok=false when the year has no published layout here.
func ForYear(year int) (*YearSpec, bool) {
	s, ok := specs[year]
	if !ok {
		s = specs[DefaultYear]
	}
	return s, ok
}

var specs = map[int]*YearSpec{
	2021: withURL(2021),
	2022: withURL(2022),
	2023: withURL(2023),
	2024: withURL(2024),
	2025: withURL(2025),
}

func withURL(year int) *YearSpec {
	s := baseSpec(year)
	s.PublicationURL = fmt.Sprintf("https://www.ssa.gov/employer/efw/%02defw2.pdf", year%100)
	return s
}

// ── Layout variant ───────────────────────────────────────────────────────────

// AddressOrder selects which 22-char address slot comes first in RA, RE and RW.
type AddressOrder int

const (
	// LocationFirst writes the suite/attention line in the first slot and
	// the street in the second, as SSA publishes it.
	LocationFirst AddressOrder = iota
	// DeliveryFirst swaps them. Kept for files that must match older output.
	DeliveryFirst
)

// Variant carries the choices that historically drifted between builds of
// this kind of encoder. One Variant is picked per run and applied to every
// record.
type Variant struct {
	Pad          byte
	AddressOrder AddressOrder
	// CountryCode is written into every country-code column. SSA wants it
	// blank for U.S. addresses.
	CountryCode string
}

// SSA is the supported target format.
var SSA = Variant{Pad: ' ', AddressOrder: LocationFirst}

// ParseVariant builds a Variant from configuration strings. Empty strings
// select the SSA defaults.
func ParseVariant(pad, order, country string) (Variant, error) {
	v := SSA
	switch strings.ToLower(strings.TrimSpace(pad)) {
	case "", "space":
	case "nul", "null":
		v.Pad = 0
	default:
		return v, fmt.Errorf("unknown pad %q (want space or nul)", pad)
	}
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", "location-first":
	case "delivery-first":
		v.AddressOrder = DeliveryFirst
	default:
		return v, fmt.Errorf("unknown address order %q (want location-first or delivery-first)", order)
	}
	country = strings.ToUpper(strings.TrimSpace(country))
	if country != "" && len(country) != 2 {
		return v, fmt.Errorf("country code %q must be 2 letters", country)
	}
	v.CountryCode = country
	return v, nil
}

// baseSpec returns the record layout shared across TY2021–TY2025.
//
// RA key anchors:
//
//	  3- 11  Submitter EIN
//	 12- 19  User ID
//	 29      Resub Indicator
//	 30- 35  Resub WFID
//	 38- 94  Company Name           (57 chars)
//	217-273  Submitter Name         (57 chars)
//	396-422  Contact Name           (27 chars)
//	446-485  Contact E-Mail         (40 chars)
//	500      Preparer Code
func baseSpec(year int) *YearSpec {
	return &YearSpec{
		TaxYear: year,

		// ── RA (Submitter) ───────────────────────────────────────────────
		RA: []Field{
			{Name: "RecordIdentifier", Start: 1, End: 2, Type: Fixed, Description: "Constant 'RA'"},
			{Name: "SubmitterEIN", Start: 3, End: 11, Type: Numeric, Description: "Submitter EIN, 9 digits, no hyphens"},
			{Name: "UserID", Start: 12, End: 19, Type: Alpha, Description: "BSO User ID, 8 alphanumeric chars"},
			{Name: "SoftwareVendorCode", Start: 20, End: 23, Type: Alpha, Description: "NACTP vendor code; blank for in-house software"},
			{Name: "Blank24", Start: 24, End: 28, Type: Blank},
			{Name: "ResubIndicator", Start: 29, End: 29, Type: Alpha, Description: "0=original 1=resubmission"},
			{Name: "ResubWFID", Start: 30, End: 35, Type: Alpha, Description: "WFID of the rejected file (resubmissions only)"},
			{Name: "SoftwareCode", Start: 36, End: 37, Type: Numeric, Description: "98=in-house 99=off-the-shelf"},
			{Name: "CompanyName", Start: 38, End: 94, Type: Alpha},
			{Name: "CompanyLocationAddress", Start: 95, End: 116, Type: Alpha, Description: "Suite, room, attention"},
			{Name: "CompanyDeliveryAddress", Start: 117, End: 138, Type: Alpha, Description: "Street or PO box"},
			{Name: "CompanyCity", Start: 139, End: 160, Type: Alpha},
			{Name: "CompanyStateAbbrev", Start: 161, End: 162, Type: Alpha},
			{Name: "CompanyZIPCode", Start: 163, End: 167, Type: Numeric},
			{Name: "CompanyZIPExtension", Start: 168, End: 171, Type: Numeric},
			{Name: "Blank172", Start: 172, End: 176, Type: Blank},
			{Name: "CompanyForeignStateProvince", Start: 177, End: 199, Type: Alpha},
			{Name: "CompanyForeignPostalCode", Start: 200, End: 214, Type: Alpha},
			{Name: "CompanyCountryCode", Start: 215, End: 216, Type: Alpha, Description: "Blank for U.S."},
			{Name: "SubmitterName", Start: 217, End: 273, Type: Alpha},
			{Name: "SubmitterLocationAddress", Start: 274, End: 295, Type: Alpha},
			{Name: "SubmitterDeliveryAddress", Start: 296, End: 317, Type: Alpha},
			{Name: "SubmitterCity", Start: 318, End: 339, Type: Alpha},
			{Name: "SubmitterStateAbbrev", Start: 340, End: 341, Type: Alpha},
			{Name: "SubmitterZIPCode", Start: 342, End: 346, Type: Numeric},
			{Name: "SubmitterZIPExtension", Start: 347, End: 350, Type: Numeric},
			{Name: "Blank351", Start: 351, End: 355, Type: Blank},
			{Name: "SubmitterForeignStateProvince", Start: 356, End: 378, Type: Alpha},
			{Name: "SubmitterForeignPostalCode", Start: 379, End: 393, Type: Alpha},
			{Name: "SubmitterCountryCode", Start: 394, End: 395, Type: Alpha},
			{Name: "ContactName", Start: 396, End: 422, Type: Alpha},
			{Name: "ContactPhone", Start: 423, End: 437, Type: Numeric, Description: "Digits only, e.g. 8005551234"},
			{Name: "PhoneExtension", Start: 438, End: 442, Type: Numeric},
			{Name: "Blank443", Start: 443, End: 445, Type: Blank},
			{Name: "ContactEmail", Start: 446, End: 485, Type: Alpha, Description: "Mixed case allowed"},
			{Name: "Blank486", Start: 486, End: 488, Type: Blank},
			{Name: "ContactFax", Start: 489, End: 498, Type: Numeric},
			{Name: "Blank499", Start: 499, End: 499, Type: Blank},
			{Name: "PreparerCode", Start: 500, End: 500, Type: Alpha, Description: "A/L/S/P/O"},
			{Name: "Blank501", Start: 501, End: 512, Type: Blank},
		},

		// ── RE (Employer) ────────────────────────────────────────────────
		RE: []Field{
			{Name: "RecordIdentifier", Start: 1, End: 2, Type: Fixed, Description: "Constant 'RE'"},
			{Name: "TaxYear", Start: 3, End: 6, Type: Numeric},
			{Name: "AgentIndicatorCode", Start: 7, End: 7, Type: Alpha, Description: "Blank unless 2678/3504 agent or common paymaster"},
			{Name: "EmployerEIN", Start: 8, End: 16, Type: Numeric},
			{Name: "AgentForEIN", Start: 17, End: 25, Type: Numeric},
			{Name: "TerminatingBusiness", Start: 26, End: 26, Type: Alpha, Description: "1=final year of filing"},
			{Name: "EstablishmentNumber", Start: 27, End: 30, Type: Alpha},
			{Name: "OtherEIN", Start: 31, End: 39, Type: Numeric},
			{Name: "EmployerName", Start: 40, End: 96, Type: Alpha},
			{Name: "LocationAddress", Start: 97, End: 118, Type: Alpha},
			{Name: "DeliveryAddress", Start: 119, End: 140, Type: Alpha},
			{Name: "City", Start: 141, End: 162, Type: Alpha},
			{Name: "StateAbbrev", Start: 163, End: 164, Type: Alpha},
			{Name: "ZIPCode", Start: 165, End: 169, Type: Numeric},
			{Name: "ZIPExtension", Start: 170, End: 173, Type: Numeric},
			{Name: "KindOfEmployer", Start: 174, End: 174, Type: Alpha, Description: "F/S/T/Y/N"},
			{Name: "Blank175", Start: 175, End: 178, Type: Blank},
			{Name: "ForeignStateProvince", Start: 179, End: 201, Type: Alpha},
			{Name: "ForeignPostalCode", Start: 202, End: 216, Type: Alpha},
			{Name: "CountryCode", Start: 217, End: 218, Type: Alpha},
			{Name: "EmploymentCode", Start: 219, End: 219, Type: Alpha, Description: "A/H/M/Q/R/X/F"},
			{Name: "TaxJurisdictionCode", Start: 220, End: 220, Type: Alpha, Description: "Blank for W-2"},
			{Name: "ThirdPartySickPay", Start: 221, End: 221, Type: Alpha},
			{Name: "ContactName", Start: 222, End: 248, Type: Alpha},
			{Name: "ContactPhone", Start: 249, End: 263, Type: Numeric},
			{Name: "PhoneExtension", Start: 264, End: 268, Type: Numeric},
			{Name: "ContactFax", Start: 269, End: 278, Type: Numeric},
			{Name: "ContactEmail", Start: 279, End: 318, Type: Alpha},
			{Name: "Blank319", Start: 319, End: 512, Type: Blank},
		},

		// ── RW (Employee Wage) ───────────────────────────────────────────
		// Money fields 276-484 are optional benefit boxes this tool never
		// populates; they stay pad-filled.
		RW: []Field{
			{Name: "RecordIdentifier", Start: 1, End: 2, Type: Fixed},
			{Name: "SSN", Start: 3, End: 11, Type: Numeric},
			{Name: "FirstName", Start: 12, End: 26, Type: Alpha},
			{Name: "MiddleName", Start: 27, End: 41, Type: Alpha},
			{Name: "LastName", Start: 42, End: 61, Type: Alpha},
			{Name: "Suffix", Start: 62, End: 65, Type: Alpha},
			{Name: "LocationAddress", Start: 66, End: 87, Type: Alpha},
			{Name: "DeliveryAddress", Start: 88, End: 109, Type: Alpha},
			{Name: "City", Start: 110, End: 131, Type: Alpha},
			{Name: "StateAbbrev", Start: 132, End: 133, Type: Alpha},
			{Name: "ZIPCode", Start: 134, End: 138, Type: Numeric},
			{Name: "ZIPExtension", Start: 139, End: 142, Type: Numeric},
			{Name: "Blank143", Start: 143, End: 147, Type: Blank},
			{Name: "ForeignStateProvince", Start: 148, End: 170, Type: Alpha},
			{Name: "ForeignPostalCode", Start: 171, End: 185, Type: Alpha},
			{Name: "CountryCode", Start: 186, End: 187, Type: Alpha},
			{Name: "WagesTipsOther", Start: 188, End: 198, Type: Money, Description: "Box 1"},
			{Name: "FedIncomeTax", Start: 199, End: 209, Type: Money, Description: "Box 2"},
			{Name: "SSWages", Start: 210, End: 220, Type: Money, Description: "Box 3"},
			{Name: "SSTax", Start: 221, End: 231, Type: Money, Description: "Box 4"},
			{Name: "MedicareWages", Start: 232, End: 242, Type: Money, Description: "Box 5"},
			{Name: "MedicareTax", Start: 243, End: 253, Type: Money, Description: "Box 6"},
			{Name: "SSTips", Start: 254, End: 264, Type: Money, Description: "Box 7"},
			{Name: "Blank265", Start: 265, End: 275, Type: Blank, Description: "Reserved (was Advance EIC)"},
			{Name: "DependentCare", Start: 276, End: 286, Type: Money, Description: "Box 10"},
			{Name: "Code401k", Start: 287, End: 297, Type: Money, Description: "Box 12 D"},
			{Name: "Code403b", Start: 298, End: 308, Type: Money, Description: "Box 12 E"},
			{Name: "Code408k6", Start: 309, End: 319, Type: Money, Description: "Box 12 F"},
			{Name: "Code457bGovt", Start: 320, End: 330, Type: Money, Description: "Box 12 G"},
			{Name: "Code501c18D", Start: 331, End: 341, Type: Money, Description: "Box 12 H"},
			{Name: "Blank342", Start: 342, End: 352, Type: Blank},
			{Name: "NonqualPlan457", Start: 353, End: 363, Type: Money, Description: "Box 11"},
			{Name: "CodeW_HSA", Start: 364, End: 374, Type: Money, Description: "Box 12 W"},
			{Name: "NonqualNotSection457", Start: 375, End: 385, Type: Money, Description: "Box 11"},
			{Name: "CodeQ_CombatPay", Start: 386, End: 396, Type: Money, Description: "Box 12 Q"},
			{Name: "Blank397", Start: 397, End: 407, Type: Blank},
			{Name: "CodeC_GroupTermLife", Start: 408, End: 418, Type: Money, Description: "Box 12 C"},
			{Name: "CodeV_StockOptions", Start: 419, End: 429, Type: Money, Description: "Box 12 V"},
			{Name: "CodeY_409A", Start: 430, End: 440, Type: Money, Description: "Box 12 Y"},
			{Name: "CodeAA_Roth401k", Start: 441, End: 451, Type: Money, Description: "Box 12 AA"},
			{Name: "CodeBB_Roth403b", Start: 452, End: 462, Type: Money, Description: "Box 12 BB"},
			{Name: "CodeDD_EmpHealth", Start: 463, End: 473, Type: Money, Description: "Box 12 DD"},
			{Name: "CodeFF_QSEHRA", Start: 474, End: 484, Type: Money, Description: "Box 12 FF"},
			{Name: "Blank485", Start: 485, End: 485, Type: Blank},
			{Name: "StatutoryEmployee", Start: 486, End: 486, Type: Alpha, Description: "Box 13"},
			{Name: "Blank487", Start: 487, End: 487, Type: Blank},
			{Name: "RetirementPlan", Start: 488, End: 488, Type: Alpha, Description: "Box 13"},
			{Name: "ThirdPartySickPay", Start: 489, End: 489, Type: Alpha, Description: "Box 13"},
			{Name: "Blank490", Start: 490, End: 512, Type: Blank},
		},

		// ── RT (Total) ───────────────────────────────────────────────────
		RT: []Field{
			{Name: "RecordIdentifier", Start: 1, End: 2, Type: Fixed},
			{Name: "TotalRWRecords", Start: 3, End: 9, Type: Numeric, Description: "RW count, 7 digits zero-padded"},
			{Name: "TotalWagesTipsOther", Start: 10, End: 24, Type: Money},
			{Name: "TotalFedIncomeTax", Start: 25, End: 39, Type: Money},
			{Name: "TotalSSWages", Start: 40, End: 54, Type: Money},
			{Name: "TotalSSTax", Start: 55, End: 69, Type: Money},
			{Name: "TotalMedicareWages", Start: 70, End: 84, Type: Money},
			{Name: "TotalMedicareTax", Start: 85, End: 99, Type: Money},
			{Name: "TotalSSTips", Start: 100, End: 114, Type: Money},
			{Name: "Blank115", Start: 115, End: 512, Type: Blank, Description: "Optional benefit totals, not populated"},
		},

		// ── RF (Final) ───────────────────────────────────────────────────
		RF: []Field{
			{Name: "RecordIdentifier", Start: 1, End: 2, Type: Fixed},
			{Name: "Blank3", Start: 3, End: 7, Type: Blank},
			{Name: "TotalRWRecords", Start: 8, End: 16, Type: Numeric, Description: "RW count, 9 digits zero-padded"},
			{Name: "Blank17", Start: 17, End: 512, Type: Blank},
		},
	}
}
