package wagefile

import "github.com/mminer237/efw2-maker/internal/domain"

// FromValues builds one employee from column-named values, such as a
// submitted HTML form whose inputs share the wage file column names.
// Errors are reported against row 1.
func FromValues(get func(column string) string) (domain.EmployeeWageRecord, error) {
	r := row{
		SSN:           get("ssn"),
		FirstName:     get("first_name"),
		MiddleInitial: get("middle_initial"),
		LastName:      get("last_name"),
		Suffix:        get("suffix"),
		Address1:      get("address_1"),
		Address2:      get("address_2"),
		City:          get("city"),
		State:         get("state"),
		ZIP:           get("zip"),
		Email:         get("email"),
		Wages:         get("wages"),
		FederalTax:    get("federal_tax"),
		SSWages:       get("ss_wages"),
		SSTax:         get("ss_tax"),
		MedicareWages: get("medicare_wages"),
		MedicareTax:   get("medicare_tax"),
		SSTips:        get("ss_tips"),
		TaxingState:   get("taxing_state"),
		StateID:       get("state_id"),
		StateWages:    get("state_wages"),
		StateTax:      get("state_tax"),
	}
	return r.record(1)
}
