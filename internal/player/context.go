package player

import "context"

type loginNameKey struct{}

// WithLoginName offers name as the player name for sessions run with ctx,
// e.g. the user name of an ssh connection.
func WithLoginName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, loginNameKey{}, name)
}

func loginName(ctx context.Context) string {
	name, _ := ctx.Value(loginNameKey{}).(string)
	return name
}
