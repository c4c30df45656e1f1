package billing

// BillType is a tagged variant over the kinds of bills the engine issues.
// Behavioral differences between the kinds (number prefix, overlap
// exemption) are carried as properties of the variant instead of string
// switches scattered across call sites.
type BillType string

const (
	// BillTypeMonthlyRent covers one rent cycle of a contract
	BillTypeMonthlyRent BillType = "MONTHLY_RENT"
	// BillTypeUtilities covers metered electricity/water plus the shared
	// service fee for one utility period
	BillTypeUtilities BillType = "UTILITIES"
	// BillTypeOther is an ad-hoc charge outside the periodic cycles
	BillTypeOther BillType = "OTHER"
)

// IsValid checks if the type is a valid BillType
func (t BillType) IsValid() bool {
	switch t {
	case BillTypeMonthlyRent, BillTypeUtilities, BillTypeOther:
		return true
	}
	return false
}

// String returns the string representation of BillType
func (t BillType) String() string {
	return string(t)
}

// NumberPrefix returns the short code embedded in bill numbers of this type
func (t BillType) NumberPrefix() string {
	switch t {
	case BillTypeMonthlyRent:
		return "MR"
	case BillTypeUtilities:
		return "UT"
	case BillTypeOther:
		return "OT"
	default:
		return "XX"
	}
}

// OverlapExempt reports whether bills of this type may share a billing
// period on the same room. Ad-hoc charges legitimately coexist; periodic
// rent and utility bills must not.
func (t BillType) OverlapExempt() bool {
	return t == BillTypeOther
}
