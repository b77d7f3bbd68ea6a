package web

import "context"

// payloadKey stores a validated payload per request location.
type payloadKey struct {
	location Location
}

func withPayload(ctx context.Context, loc Location, payload any) context.Context {
	return context.WithValue(ctx, payloadKey{location: loc}, payload)
}

// Payload returns the value stored by the Validate middleware for the given location.
func Payload[T any](ctx context.Context, loc Location) (T, bool) {
	v, ok := ctx.Value(payloadKey{location: loc}).(T)
	return v, ok
}
