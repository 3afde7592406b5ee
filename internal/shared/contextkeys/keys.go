package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "mongo-admin context key " + string(c)
}

const (
	// TenantIDKey is the key for the resolved tenant (organization) id.
	TenantIDKey = contextKey("tenantID")
	// SubjectKey carries the token subject when the tenant came from a verified JWT.
	SubjectKey = contextKey("subject")
	// RequestIDKey is the key for the per-request correlation id.
	RequestIDKey = contextKey("requestID")
	// ComponentKey names the component handling the request, for log enrichment.
	ComponentKey = contextKey("component")
	// OperationKey names the admin operation in flight.
	OperationKey = contextKey("operation")
)
