// Package authbridge exposes token acquisition, login and logout as plain
// callable functions for code that cannot reach the identity session directly.
package authbridge

import (
	"context"
	"sync/atomic"

	"github.com/jrsteele09/go-patient-portal/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrNotInitialized is returned when the bridge is used before Initialize.
var ErrNotInitialized = errors.ErrNotInitialized

// Session is the handle an identity integration supplies to the bridge.
type Session interface {
	AccessToken(ctx context.Context) (string, error)
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
}

// Funcs holds the three function references the bridge dispatches to.
type Funcs struct {
	TokenGetter func(ctx context.Context) (string, error)
	Login       func(ctx context.Context) error
	Logout      func(ctx context.Context) error
}

// Bridge is safe for concurrent use. All three references are swapped together.
type Bridge struct {
	funcs  atomic.Pointer[Funcs]
	logger func() *zerolog.Logger
}

type Option func(*Bridge)

// WithLogger sets the logger used to report token acquisition failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Bridge) {
		b.logger = func() *zerolog.Logger { return &logger }
	}
}

// WithGlobalLogger reports through the zerolog global logger as it is at the
// time of the failure, so output set up after New is honoured.
func WithGlobalLogger() Option {
	return func(b *Bridge) {
		b.logger = func() *zerolog.Logger { return &log.Logger }
	}
}

func New(options ...Option) *Bridge {
	nop := zerolog.Nop()
	b := &Bridge{logger: func() *zerolog.Logger { return &nop }}
	for _, opt := range options {
		opt(b)
	}
	return b
}

// Initialize stores the token getter, login and logout triggers of session.
// It can be called any number of times; the last call wins. A nil session
// returns the bridge to the uninitialised state.
func (b *Bridge) Initialize(session Session) {
	if session == nil {
		b.funcs.Store(nil)
		return
	}
	b.InitializeFuncs(Funcs{
		TokenGetter: session.AccessToken,
		Login:       session.Login,
		Logout:      session.Logout,
	})
}

// InitializeFuncs is Initialize for callers holding bare functions.
func (b *Bridge) InitializeFuncs(funcs Funcs) {
	b.funcs.Store(&funcs)
}

// Initialized reports whether Initialize has been called.
func (b *Bridge) Initialized() bool {
	return b.funcs.Load() != nil
}

// GetAccessToken returns the current access token. When the underlying getter
// fails the error is logged and an empty token is returned with a nil error.
func (b *Bridge) GetAccessToken(ctx context.Context) (string, error) {
	funcs := b.funcs.Load()
	if funcs == nil || funcs.TokenGetter == nil {
		return "", ErrNotInitialized
	}
	token, err := funcs.TokenGetter(ctx)
	if err != nil {
		b.logger().Error().Err(err).Msg("Error acquiring token")
		return "", nil
	}
	return token, nil
}

// Login invokes the stored login trigger.
func (b *Bridge) Login(ctx context.Context) error {
	funcs := b.funcs.Load()
	if funcs == nil || funcs.Login == nil {
		return ErrNotInitialized
	}
	return funcs.Login(ctx)
}

// Logout invokes the stored logout trigger.
func (b *Bridge) Logout(ctx context.Context) error {
	funcs := b.funcs.Load()
	if funcs == nil || funcs.Logout == nil {
		return ErrNotInitialized
	}
	return funcs.Logout(ctx)
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying b.
func NewContext(ctx context.Context, b *Bridge) context.Context {
	return context.WithValue(ctx, contextKey{}, b)
}

// FromContext returns the bridge stored by NewContext, or nil.
func FromContext(ctx context.Context) *Bridge {
	b, _ := ctx.Value(contextKey{}).(*Bridge)
	return b
}
