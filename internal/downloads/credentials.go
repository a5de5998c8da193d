package downloads

import (
	"context"
	"errors"

	"github.com/debrideck/debrideck/internal/debrid"
)

// ErrNoCredential is returned when no API credential is configured
// anywhere in the chain.
var ErrNoCredential = errors.New("no API credential configured")

// CredentialSource resolves the API credential for remote calls. The
// credential is resolved per call rather than captured at startup so a
// key saved through the settings API takes effect immediately.
type CredentialSource interface {
	Credential(ctx context.Context) (debrid.Credential, error)
}

// StaticCredential is a fixed credential, typically from config or env.
type StaticCredential debrid.Credential

func (s StaticCredential) Credential(ctx context.Context) (debrid.Credential, error) {
	if s == "" {
		return "", ErrNoCredential
	}
	return debrid.Credential(s), nil
}

// CredentialChain tries each source in order and returns the first
// credential found.
type CredentialChain []CredentialSource

func (c CredentialChain) Credential(ctx context.Context) (debrid.Credential, error) {
	for _, src := range c {
		cred, err := src.Credential(ctx)
		if err == nil && cred != "" {
			return cred, nil
		}
	}
	return "", ErrNoCredential
}
