package core

import "context"

type routeKey struct{}

// WithRoute returns a context that records the current request path
func WithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, routeKey{}, route)
}

// RouteFromContext returns the path stored by WithRoute, if any
func RouteFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	route, _ := ctx.Value(routeKey{}).(string)
	return route
}
