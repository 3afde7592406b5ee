package utils

import (
	"context"
	"errors"

	"mongo-admin/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrTenantIDNotFound   = errors.New("tenantID not found in context")
	ErrTenantIDNotString  = errors.New("tenantID in context is not a string")
	ErrRequestIDNotFound  = errors.New("requestID not found in context")
	ErrRequestIDNotString = errors.New("requestID in context is not a string")
)

// GetTenantIDFromContext retrieves the tenant ID from the context.
// It returns the tenant ID and an error if the tenant ID is not found or is not a string.
// An empty string stored under the key is reported as not found.
func GetTenantIDFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.TenantIDKey)
	if val == nil {
		return "", ErrTenantIDNotFound
	}
	tenantID, ok := val.(string)
	if !ok {
		return "", ErrTenantIDNotString
	}
	if tenantID == "" {
		return "", ErrTenantIDNotFound
	}
	return tenantID, nil
}

// GetRequestIDFromContext retrieves the request ID from the context.
func GetRequestIDFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.RequestIDKey)
	if val == nil {
		return "", ErrRequestIDNotFound
	}
	requestID, ok := val.(string)
	if !ok {
		return "", ErrRequestIDNotString
	}
	return requestID, nil
}

// GetSubjectFromContext returns the verified token subject, or "" when the tenant
// was supplied by a trusted header.
func GetSubjectFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(contextkeys.SubjectKey).(string); ok {
		return s
	}
	return ""
}

// Context builder functions

// WithTenantID adds tenant ID to context
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, contextkeys.TenantIDKey, tenantID)
}

// WithSubject adds the token subject to context
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, contextkeys.SubjectKey, subject)
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextkeys.RequestIDKey, requestID)
}

// WithComponent adds component name to context
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, contextkeys.ComponentKey, component)
}

// WithOperation adds operation name to context
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, contextkeys.OperationKey, operation)
}

// HasTenantID reports whether a non-empty tenant id is present.
func HasTenantID(ctx context.Context) bool {
	_, err := GetTenantIDFromContext(ctx)
	return err == nil
}
