// Package identity resolves decentralized identifiers to ledger account
// ids, with a persisted cache, staleness, and exactly-once-in-flight
// provisioning.
package identity

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/ledger"
)

// DefaultStaleAfter is the staleness window for cached bindings.
const DefaultStaleAfter = 24 * time.Hour

// DefaultRefreshTimeout bounds a background refresh attempt.
const DefaultRefreshTimeout = 30 * time.Second

// Provisioner creates or looks up the ledger account for an issuer.
// Implemented by mirror.ProvisionClient (production) and test fakes.
type Provisioner interface {
	Provision(ctx context.Context, issuer string) (string, error)
}

// Cache persists identity bindings across restarts.
// Implemented by store.Store.
type Cache interface {
	GetBinding(ctx context.Context, issuer string) (ledger.IdentityBinding, bool, error)
	PutBinding(ctx context.Context, b ledger.IdentityBinding) error
}

// Resolver maps issuers to account ids.
//
// Lifecycle per issuer: Unresolved -> Resolving -> Resolved -> Stale ->
// Resolving(refresh). Concurrent Resolve calls for the same unresolved
// issuer collapse into a single provisioning attempt; double-provisioning
// would create duplicate ledger-side identities.
type Resolver struct {
	provisioner Provisioner
	cache       Cache
	staleAfter  time.Duration
	refreshT    time.Duration
	group       singleflight.Group
	now         func() time.Time
	log         *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithStaleAfter sets the staleness window for cached bindings.
func WithStaleAfter(d time.Duration) Option {
	return func(r *Resolver) { r.staleAfter = d }
}

// WithRefreshTimeout bounds background refresh attempts.
func WithRefreshTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.refreshT = d }
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// New creates a Resolver backed by the given provisioner and cache.
func New(provisioner Provisioner, cache Cache, log *slog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		provisioner: provisioner,
		cache:       cache,
		staleAfter:  DefaultStaleAfter,
		refreshT:    DefaultRefreshTimeout,
		now:         time.Now,
		log:         log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the ledger account id for an issuer.
//
// A fresh cached binding is returned immediately. A stale binding is
// served optimistically while one background refresh flies
// (stale-while-revalidate). An unknown issuer triggers provisioning; all
// concurrent callers for the same issuer share the one in-flight attempt
// and its result. On failure the issuer stays unresolved and the caller
// receives RESOLUTION_FAILED, eligible for retry with backoff.
func (r *Resolver) Resolve(ctx context.Context, issuer string) (string, error) {
	issuer = ledger.CanonicalID(issuer)

	b, found, err := r.cache.GetBinding(ctx, issuer)
	if err != nil {
		return "", ledger.NewResolutionError(issuer, err)
	}
	if found {
		if r.fresh(b) {
			return b.AccountID, nil
		}
		r.refresh(issuer)
		return b.AccountID, nil
	}

	v, err, _ := r.group.Do(issuer, func() (any, error) {
		return r.provision(ctx, issuer)
	})
	if err != nil {
		if ledger.IsResolutionFailed(err) {
			return "", err
		}
		return "", ledger.NewResolutionError(issuer, err)
	}
	return v.(string), nil
}

// fresh reports whether a binding can be served without a refresh.
func (r *Resolver) fresh(b ledger.IdentityBinding) bool {
	return b.State == ledger.BindingResolved && r.now().Sub(b.ResolvedAt) < r.staleAfter
}

// provision performs the actual lookup and persists the result.
// Runs inside the single-flight group: one execution per issuer at a time.
func (r *Resolver) provision(ctx context.Context, issuer string) (string, error) {
	accountID, err := r.provisioner.Provision(ctx, issuer)
	if err != nil {
		return "", err
	}
	binding := ledger.IdentityBinding{
		Issuer:     issuer,
		AccountID:  accountID,
		ResolvedAt: r.now(),
		State:      ledger.BindingResolved,
	}
	if err := r.cache.PutBinding(ctx, binding); err != nil {
		return "", err
	}
	return accountID, nil
}

// refresh kicks off at most one background re-provisioning for a stale
// issuer. Callers are not blocked; the stale value keeps being served
// until the refresh lands. A failed refresh leaves the stale binding in
// place and is retried on a later Resolve.
func (r *Resolver) refresh(issuer string) {
	r.group.DoChan(issuer, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), r.refreshT)
		defer cancel()

		accountID, err := r.provision(ctx, issuer)
		if err != nil {
			r.log.Warn("identity refresh failed", "issuer", issuer, "err", err)
			return nil, err
		}
		return accountID, nil
	})
}

// MarkStale flags a cached binding as stale so the next Resolve serves it
// optimistically while revalidating. A binding past its staleness window
// is treated as stale either way.
func (r *Resolver) MarkStale(ctx context.Context, issuer string) error {
	issuer = ledger.CanonicalID(issuer)
	b, found, err := r.cache.GetBinding(ctx, issuer)
	if err != nil || !found {
		return err
	}
	b.State = ledger.BindingStale
	return r.cache.PutBinding(ctx, b)
}
