package secret

import "errors"

var (
	// ErrMissingEnv is returned when a ${VAR} expansion names an unset variable.
	ErrMissingEnv = errors.New("secret: missing required environment variables")

	// ErrProviderNotRegistered is returned for a reference to an unknown provider.
	ErrProviderNotRegistered = errors.New("secret: provider not registered")

	// ErrEmptySecret is returned by a strict resolver when a provider yields "".
	ErrEmptySecret = errors.New("secret: resolved to empty value")

	// ErrSecretNotFound is returned by a provider that has no value for a ref.
	ErrSecretNotFound = errors.New("secret: not found")
)
