package identity

import (
	"context"

	"github.com/jrsteele09/go-patient-portal/authbridge"
	"github.com/jrsteele09/go-patient-portal/internal/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// MachineSession is a bridge session for non-interactive callers. Tokens come
// from the client credentials grant and are cached until they expire.
type MachineSession struct {
	tokens oauth2.TokenSource
}

var _ authbridge.Session = (*MachineSession)(nil)

// NewMachineSession builds a session against https://{domain}/oauth/token.
func NewMachineSession(ctx context.Context, config Config) *MachineSession {
	ccConfig := &clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     IssuerURL(config.Domain) + "oauth/token",
	}
	if config.Audience != "" {
		ccConfig.EndpointParams = map[string][]string{"audience": {config.Audience}}
	}
	return &MachineSession{tokens: ccConfig.TokenSource(ctx)}
}

// NewStaticSession wraps a fixed access token, as supplied on the command line.
func NewStaticSession(accessToken string) *MachineSession {
	return &MachineSession{tokens: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})}
}

func (m *MachineSession) AccessToken(context.Context) (string, error) {
	token, err := m.tokens.Token()
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

func (m *MachineSession) Login(context.Context) error {
	return errors.ErrInteractiveLoginUnsupported
}

func (m *MachineSession) Logout(context.Context) error {
	return nil
}
