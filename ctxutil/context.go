// Package ctxutil carries request-scoped values between the HTTP layer and
// the rest of the application.
package ctxutil

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ginContextKey = "gin_context"
	userIDKey     = "user_id"
	tenantIDKey   = "tenant_id"

	// TraceIDKey is the logging field name for request trace ids.
	TraceIDKey = "trace_id"
)

// FromGinContext extracts the context.Context from *gin.Context.
func FromGinContext(c *gin.Context) context.Context {
	return c.Request.Context()
}

// WithGinContext returns a context.Context that embeds the *gin.Context.
func WithGinContext(ctx context.Context, c *gin.Context) context.Context {
	return context.WithValue(ctx, ginContextKey, c)
}

// GetGinContext extracts *gin.Context from context.Context if it exists.
func GetGinContext(ctx context.Context) (*gin.Context, bool) {
	c, ok := ctx.Value(ginContextKey).(*gin.Context)
	return c, ok
}

// GetValue retrieves a value from the context, checking the embedded
// gin.Context first.
func GetValue(ctx context.Context, key string) any {
	if c, ok := GetGinContext(ctx); ok {
		if val, exists := c.Get(key); exists {
			return val
		}
	}
	return ctx.Value(key)
}

// SetValue sets a value on the context and the embedded gin.Context.
func SetValue(ctx context.Context, key string, val any) context.Context {
	if c, ok := GetGinContext(ctx); ok {
		c.Set(key, val)
	}
	return context.WithValue(ctx, key, val)
}

// SetUserID sets the authenticated user id.
func SetUserID(ctx context.Context, uid string) context.Context {
	return SetValue(ctx, userIDKey, uid)
}

// GetUserID gets the authenticated user id, or "" when unauthenticated.
func GetUserID(ctx context.Context) string {
	if uid, ok := GetValue(ctx, userIDKey).(string); ok {
		return uid
	}
	return ""
}

// SetTenantID sets the caller's tenant id.
func SetTenantID(ctx context.Context, tid string) context.Context {
	return SetValue(ctx, tenantIDKey, tid)
}

// GetTenantID gets the caller's tenant id, or "" when unauthenticated.
func GetTenantID(ctx context.Context) string {
	if tid, ok := GetValue(ctx, tenantIDKey).(string); ok {
		return tid
	}
	return ""
}

// GetTraceID gets the trace id from the context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := GetValue(ctx, TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// SetTraceID sets the trace id on the context.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	return SetValue(ctx, TraceIDKey, traceID)
}

// EnsureTraceID returns a context that carries a trace id, generating one
// when absent.
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	if traceID := GetTraceID(ctx); traceID != "" {
		return ctx, traceID
	}
	traceID := uuid.NewString()
	return SetTraceID(ctx, traceID), traceID
}
