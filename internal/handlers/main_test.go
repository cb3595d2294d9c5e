package handlers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/serroba/redirect-gateway/internal/analytics"
	"github.com/serroba/redirect-gateway/internal/gateway"
	"github.com/serroba/redirect-gateway/internal/handlers"
	"github.com/serroba/redirect-gateway/internal/metrics"
	"github.com/serroba/redirect-gateway/internal/render"
	"github.com/serroba/redirect-gateway/internal/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testBaseURL     = "http://gw.test"
	testDestination = "https://example.com/page"
	testSiteKey     = "10000000-ffff-ffff-ffff-000000000001"
)

var errStore = errors.New("store unavailable")

// failingStore fails every operation.
type failingStore struct{}

func (failingStore) Put(context.Context, *gateway.Link) error { return errStore }

func (failingStore) Get(context.Context, gateway.Token) (*gateway.Link, error) {
	return nil, errStore
}

func (failingStore) Delete(context.Context, gateway.Token) error { return errStore }

func (failingStore) Take(context.Context, gateway.Token) (*gateway.Link, error) {
	return nil, errStore
}

// recorder captures published analytics events.
type recorder struct {
	issued   []analytics.LinkIssuedEvent
	resolved []analytics.LinkResolvedEvent
	verified []analytics.LinkVerifiedEvent
	err      error
}

func (r *recorder) events() handlers.Events {
	return handlers.Events{
		Issued: func(_ context.Context, e *analytics.LinkIssuedEvent) error {
			r.issued = append(r.issued, *e)

			return r.err
		},
		Resolved: func(_ context.Context, e *analytics.LinkResolvedEvent) error {
			r.resolved = append(r.resolved, *e)

			return r.err
		},
		Verified: func(_ context.Context, e *analytics.LinkVerifiedEvent) error {
			r.verified = append(r.verified, *e)

			return r.err
		},
	}
}

type fixture struct {
	links    *handlers.LinkHandler
	gates    *handlers.GateHandler
	events   *recorder
	metrics  *metrics.Recorder
	verifier *stubVerifier
}

type stubVerifier struct {
	err    error
	proofs []string
}

func (v *stubVerifier) Verify(_ context.Context, proof, _ string) error {
	v.proofs = append(v.proofs, proof)

	return v.err
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	repo     gateway.Repository
	resolver gateway.ResolverOptions
}

func withRepository(repo gateway.Repository) fixtureOption {
	return func(c *fixtureConfig) { c.repo = repo }
}

func withResolverOptions(opts gateway.ResolverOptions) fixtureOption {
	return func(c *fixtureConfig) { c.resolver = opts }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	cfg := &fixtureConfig{
		repo:     store.NewMemoryStore(),
		resolver: gateway.ResolverOptions{AllowEncoded: true},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	gen, err := gateway.NewTokenGenerator(gateway.MinTokenLength)
	require.NoError(t, err)

	issuer := gateway.NewIssuer(map[gateway.Mode]gateway.Strategy{
		gateway.ModeToken:   gateway.NewTokenStrategy(cfg.repo, gen),
		gateway.ModeEncoded: gateway.NewEncodedStrategy(),
	}, gateway.ModeToken, testBaseURL)

	verifier := &stubVerifier{}
	resolver := gateway.NewResolver(cfg.repo, cfg.resolver)
	gate := gateway.NewGate(resolver, verifier, testSiteKey, time.Second)
	pages := handlers.NewPages(render.MustNew(), handlers.PagesConfig{DelaySeconds: 5})
	events := &recorder{}
	rec := metrics.New("test")

	return &fixture{
		links:    handlers.NewLinkHandler(issuer, resolver, gate, pages, events.events(), rec, zap.NewNop()),
		gates:    handlers.NewGateHandler(gate, pages, "", events.events(), rec, zap.NewNop()),
		events:   events,
		metrics:  rec,
		verifier: verifier,
	}
}

// counterValue reads one series of a counter vector from the fixture's registry.
// Label values are given in label name order.
func counterValue(t *testing.T, f *fixture, name string, labels ...string) float64 {
	t.Helper()

	families, err := f.metrics.Registry().Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}

	series:
		for _, m := range family.GetMetric() {
			pairs := m.GetLabel()
			if len(pairs) != len(labels) {
				continue
			}

			for i, pair := range pairs {
				if pair.GetValue() != labels[i] {
					continue series
				}
			}

			return m.GetCounter().GetValue()
		}
	}

	return 0
}

// issue creates a link through the handler and returns its identifier.
func (f *fixture) issue(t *testing.T, protected bool) string {
	t.Helper()

	req := &handlers.EncodeRequest{Body: &handlers.EncodeBody{URL: testDestination, Protected: protected}}

	resp, err := f.links.Encode(context.Background(), req)
	require.NoError(t, err)

	return resp.Body.Token
}
