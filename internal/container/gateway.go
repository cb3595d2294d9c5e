package container

import (
	"fmt"
	"net/http"
	"time"

	"github.com/samber/do"
	"github.com/serroba/redirect-gateway/internal/gateway"
	"github.com/serroba/redirect-gateway/internal/metrics"
	"github.com/serroba/redirect-gateway/internal/verify"
	"go.uber.org/zap"
)

func MetricsPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*metrics.Recorder, error) {
		return metrics.New("gateway"), nil
	})
}

// VerifierPackage provides the client of the verification authority. Without a secret every
// proof is refused, so protected links stay closed.
func VerifierPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (gateway.Verifier, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.VerifySecret == "" {
			logger.Warn("verification secret not set, protected links cannot be released")

			return verify.Disabled{}, nil
		}

		timeout := time.Duration(opts.VerifyTimeoutMs) * time.Millisecond

		return verify.NewSiteVerifier(verify.Config{
			URL:     opts.VerifyURL,
			Secret:  opts.VerifySecret,
			SiteKey: opts.VerifySiteKey,
			RPS:     float64(opts.VerifyRPS),
			Burst:   max(1, opts.VerifyRPS),
		}, &http.Client{Timeout: timeout}), nil
	})
}

// GatewayPackage provides the Issuer, Resolver and Gate over the token store.
func GatewayPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*gateway.Resolver, error) {
		opts := do.MustInvoke[*Options](i)

		ts, err := do.Invoke[*TokenStore](i)
		if err != nil {
			return nil, err
		}

		return gateway.NewResolver(ts, gateway.ResolverOptions{
			AllowEncoded:        opts.EnableEncoded,
			RequireVerification: opts.RequireVerification,
			SingleUse:           opts.SingleUse,
		}), nil
	})

	do.Provide(i, func(i *do.Injector) (*gateway.Issuer, error) {
		opts := do.MustInvoke[*Options](i)

		ts, err := do.Invoke[*TokenStore](i)
		if err != nil {
			return nil, err
		}

		generate, err := gateway.NewTokenGenerator(opts.TokenLength)
		if err != nil {
			return nil, err
		}

		strategies := map[gateway.Mode]gateway.Strategy{
			gateway.ModeToken: gateway.NewTokenStrategy(ts, generate),
		}
		if opts.EnableEncoded {
			strategies[gateway.ModeEncoded] = gateway.NewEncodedStrategy()
		}

		mode := gateway.Mode(opts.DefaultMode)
		if _, ok := strategies[mode]; !ok {
			return nil, fmt.Errorf("default mode %q is not enabled", opts.DefaultMode)
		}

		return gateway.NewIssuer(strategies, mode, opts.BaseURL), nil
	})

	do.Provide(i, func(i *do.Injector) (*gateway.Gate, error) {
		opts := do.MustInvoke[*Options](i)

		resolver, err := do.Invoke[*gateway.Resolver](i)
		if err != nil {
			return nil, err
		}

		verifier, err := do.Invoke[gateway.Verifier](i)
		if err != nil {
			return nil, err
		}

		timeout := time.Duration(opts.VerifyTimeoutMs) * time.Millisecond

		return gateway.NewGate(resolver, verifier, opts.VerifySiteKey, timeout), nil
	})
}
