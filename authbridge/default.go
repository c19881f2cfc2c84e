package authbridge

import "context"

// Default is the process-wide bridge. Only entry points that cannot pass a
// *Bridge down (the CLI) should touch it.
var Default = New(WithGlobalLogger())

func Initialize(session Session) {
	Default.Initialize(session)
}

func GetAccessToken(ctx context.Context) (string, error) {
	return Default.GetAccessToken(ctx)
}

func Login(ctx context.Context) error {
	return Default.Login(ctx)
}

func Logout(ctx context.Context) error {
	return Default.Logout(ctx)
}
