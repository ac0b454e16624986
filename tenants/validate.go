package tenants

import (
	"strings"
	"unicode"

	"github.com/warp/tenancy-engine/property"
)

// normalize trims the free-text fields the operator types in.
func normalize(t property.Tenant) property.Tenant {
	t.Name = strings.TrimSpace(t.Name)
	t.Contact = strings.TrimSpace(t.Contact)
	t.GuardianName = strings.TrimSpace(t.GuardianName)
	t.GuardianContact = strings.TrimSpace(t.GuardianContact)
	t.GuardianRelation = strings.TrimSpace(t.GuardianRelation)
	t.EmergencyContact = strings.TrimSpace(t.EmergencyContact)
	return t
}

// Validate checks the record-level rules for a tenant.
//
// Names need at least two whitespace-separated tokens. Dorm tenants must
// carry a guardian with a full name and an all-digit contact; other tenants
// are held to the same checks only for the guardian fields they fill in.
func Validate(t property.Tenant) error {
	if !isFullName(t.Name) {
		return property.Invalid("name", "full name required (first and last name)")
	}
	if !t.Type.Valid() {
		return property.Invalid("type", "must be Family, Solo or Dorm")
	}
	if t.Status != property.TenantActive && t.Status != property.TenantMovedOut {
		return property.Invalid("status", "must be Active or Moved out")
	}

	if t.Type == property.UnitDorm {
		if !isFullName(t.GuardianName) {
			return property.Invalid("guardian_name", "dorm tenants require guardian full name (first and last)")
		}
		if !isDigits(t.GuardianContact) {
			return property.Invalid("guardian_contact", "must be numeric (digits only)")
		}
	} else {
		if t.GuardianName != "" && !isFullName(t.GuardianName) {
			return property.Invalid("guardian_name", "if provided, enter full name (first and last)")
		}
		if t.GuardianContact != "" && !isDigits(t.GuardianContact) {
			return property.Invalid("guardian_contact", "must be numeric (digits only)")
		}
	}

	if t.Contact != "" && !hasDigit(t.Contact) {
		return property.Invalid("contact", "should contain numbers (phone)")
	}
	if t.MoveIn != nil && t.MoveOut != nil && t.MoveOut.Before(*t.MoveIn) {
		return property.Invalid("move_out", "must not be before move-in")
	}
	return nil
}

func isFullName(s string) bool {
	return len(strings.Fields(s)) >= 2
}

// isDigits is false for the empty string.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
