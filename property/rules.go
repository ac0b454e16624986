package property

// Rules holds the tenancy constants the engine enforces.
type Rules struct {
	// DormCapacity is the maximum number of Active Dorm tenants per unit.
	DormCapacity int

	// NoticePeriodDays is the minimum stay required for a deposit refund.
	NoticePeriodDays int

	// OverdueDays is the default window for the overdue report.
	OverdueDays int
}

func DefaultRules() Rules {
	return Rules{
		DormCapacity:     4,
		NoticePeriodDays: 30,
		OverdueDays:      7,
	}
}

// Normalize replaces non-positive values with the defaults.
func (r Rules) Normalize() Rules {
	d := DefaultRules()
	if r.DormCapacity <= 0 {
		r.DormCapacity = d.DormCapacity
	}
	if r.NoticePeriodDays <= 0 {
		r.NoticePeriodDays = d.NoticePeriodDays
	}
	if r.OverdueDays <= 0 {
		r.OverdueDays = d.OverdueDays
	}
	return r
}
