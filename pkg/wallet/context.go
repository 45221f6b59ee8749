package wallet

import "context"

type contextKey struct{}

// NewContext returns a copy of ctx scoped to m
func NewContext(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, contextKey{}, m)
}

// FromContext returns the Manager scoping ctx
func FromContext(ctx context.Context) (*Manager, bool) {
	if ctx == nil {
		return nil, false
	}
	m, ok := ctx.Value(contextKey{}).(*Manager)
	return m, ok && m != nil
}
