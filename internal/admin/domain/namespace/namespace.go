// Package namespace maps tenant-facing collection names onto physical collection
// names in the shared database. It is the only place a physical name can be built.
package namespace

import (
	"regexp"
	"strings"

	"mongo-admin/internal/shared/errors"
)

// Separator joins the tenant id and the logical name.
const Separator = "_"

var (
	logicalNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	// Tenant ids may not contain the separator, so the first "_" of a physical
	// name always ends the tenant prefix.
	tenantIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

// PhysicalName is the tenant-qualified collection name used against the store.
// The zero value is invalid and is rejected by every repository.
type PhysicalName struct {
	tenantID string
	logical  string
}

// String returns "<tenantId>_<logicalName>".
func (p PhysicalName) String() string {
	if p.IsZero() {
		return ""
	}
	return p.tenantID + Separator + p.logical
}

// TenantID returns the owning tenant.
func (p PhysicalName) TenantID() string { return p.tenantID }

// Logical returns the tenant-facing name.
func (p PhysicalName) Logical() string { return p.logical }

// IsZero reports whether p was not produced by Resolve or OwnedBy.
func (p PhysicalName) IsZero() bool {
	return p.tenantID == "" || p.logical == ""
}

// ValidateTenantID rejects empty ids as missing and ids outside the allow-list
// as invalid.
func ValidateTenantID(tenantID string) error {
	if tenantID == "" {
		return errors.NewMissingTenantError()
	}
	if !tenantIDPattern.MatchString(tenantID) {
		return errors.NewInvalidTenantError(tenantID)
	}
	return nil
}

// ValidateLogicalName checks a logical name against the allow-list.
func ValidateLogicalName(logical string) error {
	if !logicalNamePattern.MatchString(logical) {
		return errors.NewInvalidNameError(logical)
	}
	return nil
}

// Resolve derives the physical name for a tenant's logical collection.
// The tenant is checked first so a missing identity never reaches name validation.
func Resolve(tenantID, logical string) (PhysicalName, error) {
	if err := ValidateTenantID(tenantID); err != nil {
		return PhysicalName{}, err
	}
	if err := ValidateLogicalName(logical); err != nil {
		return PhysicalName{}, err
	}
	return PhysicalName{tenantID: tenantID, logical: logical}, nil
}

// Prefix returns the exact physical-name prefix owned by tenantID.
func Prefix(tenantID string) string {
	return tenantID + Separator
}

// StripTenantPrefix removes an exact "<tenantId>_" prefix. It reports false when
// the name belongs to another tenant or nothing remains after the prefix.
func StripTenantPrefix(physical, tenantID string) (string, bool) {
	if tenantID == "" {
		return "", false
	}
	logical, ok := strings.CutPrefix(physical, Prefix(tenantID))
	if !ok || logical == "" {
		return "", false
	}
	return logical, true
}

// OwnedBy turns a raw enumerated collection name into a PhysicalName when it
// belongs to tenantID and its remainder is a valid logical name.
func OwnedBy(tenantID, raw string) (PhysicalName, bool) {
	if ValidateTenantID(tenantID) != nil {
		return PhysicalName{}, false
	}
	logical, ok := StripTenantPrefix(raw, tenantID)
	if !ok || ValidateLogicalName(logical) != nil {
		return PhysicalName{}, false
	}
	return PhysicalName{tenantID: tenantID, logical: logical}, true
}

// PrefixPattern is an anchored regular expression matching every physical name
// owned by tenantID, suitable for a listCollections name filter.
func PrefixPattern(tenantID string) string {
	return "^" + regexp.QuoteMeta(Prefix(tenantID))
}
