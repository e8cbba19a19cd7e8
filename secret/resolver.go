package secret

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const refPrefix = "secretref:"

var inlineRef = regexp.MustCompile(`secretref:([^:\s]+):(\S+)`)

// Resolver resolves values against a fixed set of providers.
type Resolver struct {
	providers map[string]Provider
	strict    bool
	lookup    LookupFunc
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithStrict makes an empty provider value an error.
func WithStrict() Option {
	return func(r *Resolver) { r.strict = true }
}

// WithLookup replaces the environment used for ${VAR} expansion.
func WithLookup(lookup LookupFunc) Option {
	return func(r *Resolver) { r.lookup = lookup }
}

// WithProvider registers p, replacing any provider of the same name.
func WithProvider(p Provider) Option {
	return func(r *Resolver) {
		if p != nil {
			r.providers[p.Name()] = p
		}
	}
}

// NewResolver creates a resolver. Without WithProvider options it knows the
// env and file providers.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{providers: make(map[string]Provider)}
	for _, opt := range opts {
		opt(r)
	}
	if len(r.providers) == 0 {
		r.providers["env"] = NewEnvProvider(r.lookup)
		r.providers["file"] = NewFileProvider("")
	}
	return r
}

// Resolve expands value and resolves any secret references in it.
func (r *Resolver) Resolve(ctx context.Context, value string) (string, error) {
	var (
		expanded string
		err      error
	)
	if r.lookup != nil {
		expanded, err = ExpandStrict(value, r.lookup)
	} else {
		expanded, err = ExpandEnvStrict(value)
	}
	if err != nil {
		return "", err
	}

	if provider, ref, ok := ParseSecretRef(expanded); ok {
		return r.resolveRef(ctx, provider, ref)
	}

	matches := inlineRef.FindAllStringSubmatchIndex(expanded, -1)
	out := expanded
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		resolved, err := r.resolveRef(ctx, out[m[2]:m[3]], out[m[4]:m[5]])
		if err != nil {
			return "", err
		}
		out = out[:m[0]] + resolved + out[m[1]:]
	}
	return out, nil
}

// ParseSecretRef splits a whole-value reference "secretref:<provider>:<ref>".
func ParseSecretRef(value string) (provider, ref string, ok bool) {
	rest, found := strings.CutPrefix(value, refPrefix)
	if !found {
		return "", "", false
	}
	provider, ref, found = strings.Cut(rest, ":")
	if !found || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}

func (r *Resolver) resolveRef(ctx context.Context, name, ref string) (string, error) {
	p, ok := r.providers[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrProviderNotRegistered, name)
	}
	v, err := p.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if r.strict && v == "" {
		return "", fmt.Errorf("%w: %s:%s", ErrEmptySecret, name, ref)
	}
	return v, nil
}
