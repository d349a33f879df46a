package tenant

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Resolver extracts a tenant lookup key from an HTTP request.
// An empty key with a nil error means "no tenant identified"; the
// middleware decides whether that is acceptable for the route.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(r *http.Request) (string, error)

func (f ResolverFunc) Resolve(r *http.Request) (string, error) { return f(r) }

// HostResolver uses the request's Host header as the lookup key.
// Each tenant owns a full host (a.example.com), so the header value maps
// directly onto Tenant.Host after stripping any port.
type HostResolver struct{}

// NewHostResolver creates a host-header resolver.
func NewHostResolver() *HostResolver { return &HostResolver{} }

func (hr *HostResolver) Resolve(req *http.Request) (string, error) {
	host := req.Host
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.ToLower(host), nil
}

// HeaderResolver reads the lookup key from an HTTP header, typically
// set by an API gateway or used by internal tooling.
type HeaderResolver struct {
	HeaderName string
}

// NewHeaderResolver creates a header resolver, defaulting to X-Tenant-ID.
func NewHeaderResolver(headerName string) *HeaderResolver {
	if headerName == "" {
		headerName = "X-Tenant-ID"
	}
	return &HeaderResolver{HeaderName: headerName}
}

func (hr *HeaderResolver) Resolve(req *http.Request) (string, error) {
	return req.Header.Get(hr.HeaderName), nil
}

// ClaimResolver reads the tenant id claim from a bearer token. The
// token signature is NOT verified here; that is the job of the
// authentication middleware that runs earlier in the chain. This
// resolver only lifts the already-trusted claim out of the token and
// must never be mounted on a surface without such middleware: on its
// own it would let any caller bind any tenant they name.
type ClaimResolver struct {
	// Claim is the JWT claim holding the tenant identifier.
	Claim string
}

// NewClaimResolver creates a claim resolver, defaulting to the "tid" claim.
func NewClaimResolver(claim string) *ClaimResolver {
	if claim == "" {
		claim = "tid"
	}
	return &ClaimResolver{Claim: claim}
}

func (cr *ClaimResolver) Resolve(req *http.Request) (string, error) {
	auth := req.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", nil
	}

	token, _, err := jwt.NewParser().ParseUnverified(strings.TrimPrefix(auth, prefix), jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("claim resolver: %w", errors.Join(ErrInvalidIdentifier, err))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", nil
	}
	id, _ := claims[cr.Claim].(string)
	return id, nil
}

// CompositeResolver tries resolvers in order and returns the first
// non-empty key.
type CompositeResolver struct {
	Resolvers []Resolver
}

// NewCompositeResolver creates a composite resolver.
func NewCompositeResolver(resolvers ...Resolver) *CompositeResolver {
	return &CompositeResolver{Resolvers: resolvers}
}

func (c *CompositeResolver) Resolve(r *http.Request) (string, error) {
	var errs []error
	for _, resolver := range c.Resolvers {
		key, err := resolver.Resolve(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if key != "" {
			return key, nil
		}
	}
	if len(errs) > 0 {
		return "", fmt.Errorf("composite resolver: %w", errors.Join(errs...))
	}
	return "", nil
}
