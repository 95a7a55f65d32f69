// Package tenant decides which store owns an incoming request and builds
// the per-request tenant context. It is the one place in the system where
// the three addressing schemes (custom domain, composed subdomain, path
// slug) meet; getting their precedence wrong is a cross-tenant data leak,
// so every rule lives here and nowhere else.
package tenant

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/leanttro/storefront/internal/domain"
)

// Resolver maps (host, path) to a store. Strategies run in fixed priority
// order and the first hit wins: domains are globally unambiguous by DNS
// construction, so both domain schemes outrank the collision-prone path
// slug.
type Resolver struct {
	stores     domain.StoreRepository
	baseDomain string
	rootHosts  map[string]struct{}

	// OnOutcome observes each resolution for metrics; may be nil.
	OnOutcome func(source Source)
}

// NewResolver creates a Resolver. extraRootHosts lists additional hosts
// (local development, load balancer health probes) that address the
// platform itself rather than any tenant.
func NewResolver(stores domain.StoreRepository, baseDomain string, extraRootHosts []string) *Resolver {
	roots := map[string]struct{}{
		strings.ToLower(baseDomain):          {},
		"www." + strings.ToLower(baseDomain): {},
		"localhost":                          {},
		"127.0.0.1":                          {},
	}
	for _, h := range extraRootHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			roots[h] = struct{}{}
		}
	}

	return &Resolver{
		stores:     stores,
		baseDomain: strings.ToLower(baseDomain),
		rootHosts:  roots,
	}
}

// Resolve runs the strategy chain for one request. It never returns an
// error for lookup failures: an unreachable directory degrades to "no
// store resolved" so the platform stays up through upstream hiccups, and
// the failure is logged.
func (r *Resolver) Resolve(ctx context.Context, host, path string) *Context {
	if IsAssetPath(path) {
		return r.outcome(&Context{Source: SourceNone})
	}

	host = normalizeHost(host)

	if !r.isRootHost(host) {
		// Custom domain: exact match against the store-owned domain field.
		if store, ok := r.lookup(ctx, host, r.stores.GetByCustomDomain); ok {
			return r.outcome(NewContext(store, SourceCustomDomain))
		}

		// Composed subdomain: exact match against {slug}.{base-domain}.
		if strings.HasSuffix(host, "."+r.baseDomain) {
			if store, ok := r.lookup(ctx, host, r.stores.GetByDomain); ok {
				return r.outcome(NewContext(store, SourceSubdomain))
			}
		}
	}

	// Path slug, unless the first segment belongs to the platform.
	segment := FirstSegment(path)
	if segment == "" || IsReservedSegment(segment) {
		return r.outcome(&Context{Source: SourceNone})
	}

	if store, ok := r.lookup(ctx, segment, r.stores.GetBySlug); ok {
		return r.outcome(NewContext(store, SourcePathSlug))
	}

	return r.outcome(&Context{Source: SourceNone})
}

func (r *Resolver) lookup(ctx context.Context, key string, get func(context.Context, string) (*domain.Store, error)) (*domain.Store, bool) {
	store, err := get(ctx, key)
	if err == nil {
		return store, true
	}
	if !errors.Is(err, domain.ErrNotFound) {
		log.Warn().Err(err).Str("key", key).Msg("tenant lookup failed, proceeding without store")
	}
	return nil, false
}

func (r *Resolver) isRootHost(host string) bool {
	_, ok := r.rootHosts[host]
	return ok
}

func (r *Resolver) outcome(c *Context) *Context {
	if r.OnOutcome != nil {
		r.OnOutcome(c.Source)
	}
	return c
}

// normalizeHost lowercases and strips any port.
func normalizeHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(strings.TrimSuffix(host, "."))
}
