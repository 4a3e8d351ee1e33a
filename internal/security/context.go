package security

import "context"

type clientKeyCtx struct{}

// WithClientKey attaches the authenticated API key to ctx for auditing.
func WithClientKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, clientKeyCtx{}, key)
}

// ClientKey returns the API key stored by WithClientKey, or "".
func ClientKey(ctx context.Context) string {
	k, _ := ctx.Value(clientKeyCtx{}).(string)
	return k
}
