// Package secret resolves configuration values that point at secrets
// instead of carrying them.
//
// A value is first expanded with ExpandEnvStrict, then any secret references
// are resolved through the registered providers:
//
//	secretref:env:TODOGATE_JWT_SECRET
//	secretref:file:/run/secrets/jwt
//	${JWT_SECRET}
//
// A reference may stand alone or appear inline ("Bearer secretref:env:TOKEN").
// Providers never log the values they return.
package secret
