// Package identity resolves the host application identity presented to the streaming engine,
// which keys entitlement and licensing on the caller.
package identity

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
	"github.com/vplayer/vplayer/constant"
	"github.com/vplayer/vplayer/key"
	"github.com/zalando/go-keyring"
)

// ErrUnavailable is returned when no identity could be resolved.
var ErrUnavailable = errors.New("application identity unavailable")

// keyringUser is the keyring account the identity is stored under.
const keyringUser = "app-id"

// Resolver produces the application identity.
type Resolver interface {
	Resolve() (string, error)
}

// Static always resolves to itself. An empty Static is unavailable.
type Static string

func (s Static) Resolve() (string, error) {
	if s == "" {
		return "", ErrUnavailable
	}
	return string(s), nil
}

// Keyring reads the identity from the system keyring.
type Keyring struct {
	Service string
}

func (k Keyring) Resolve() (string, error) {
	id, err := keyring.Get(k.service(), keyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrUnavailable
		}
		return "", fmt.Errorf("keyring: %w", err)
	}
	if id == "" {
		return "", ErrUnavailable
	}
	return id, nil
}

// Store saves id in the keyring.
func (k Keyring) Store(id string) error {
	return keyring.Set(k.service(), keyringUser, id)
}

// Forget removes the stored identity.
func (k Keyring) Forget() error {
	err := keyring.Delete(k.service(), keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func (k Keyring) service() string {
	if k.Service == "" {
		return constant.App
	}
	return k.Service
}

// Chain tries each resolver in order and returns the first identity found.
type Chain []Resolver

func (c Chain) Resolve() (string, error) {
	var errs []error
	for _, r := range c {
		id, err := r.Resolve()
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrUnavailable) {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
	}
	return "", ErrUnavailable
}

// FromConfig builds the resolver described by the identity.* settings:
// the configured app id first, then the keyring when enabled.
func FromConfig() Resolver {
	chain := Chain{Static(viper.GetString(key.IdentityAppID))}
	if viper.GetBool(key.IdentityKeyring) {
		chain = append(chain, Keyring{})
	}
	return chain
}
