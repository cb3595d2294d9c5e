package container

import (
	"maps"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/samber/do"
	"github.com/serroba/redirect-gateway/internal/gateway"
	"github.com/serroba/redirect-gateway/internal/handlers"
	"github.com/serroba/redirect-gateway/internal/health"
	"github.com/serroba/redirect-gateway/internal/metrics"
	"github.com/serroba/redirect-gateway/internal/middleware"
	"github.com/serroba/redirect-gateway/internal/ratelimit"
	"github.com/serroba/redirect-gateway/internal/render"
	"go.uber.org/zap"
)

// HTTPPackage provides the router with /metrics mounted and the huma API with every route
// registered. Invoking huma.API is what registers the routes.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*chi.Mux, error) {
		recorder := do.MustInvoke[*metrics.Recorder](i)

		router := chi.NewMux()
		router.Use(chimiddleware.Recoverer)
		router.Handle("/metrics", recorder.Handler())

		return router, nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		recorder := do.MustInvoke[*metrics.Recorder](i)

		huma.NewError = handlers.NewAPIError

		config := huma.DefaultConfig("Redirect Gateway", "1.0.0")
		config.Formats = maps.Clone(config.Formats)
		config.Formats[handlers.FormContentType] = handlers.FormFormat

		api := humachi.New(router, config)
		api.UseMiddleware(middleware.RequestMeta(api, opts.TrustProxy))

		if opts.RateLimit {
			rl, err := do.Invoke[*RateLimit](i)
			if err != nil {
				return nil, err
			}

			api.UseMiddleware(middleware.RateLimit(
				api, rl.Limiter, ratelimit.NewOperationScopeResolver(), recorder, logger.Named("ratelimit"),
			))
		}

		links, gates, err := newHandlers(i, opts, recorder, logger)
		if err != nil {
			return nil, err
		}

		ts, err := do.Invoke[*TokenStore](i)
		if err != nil {
			return nil, err
		}

		var redisChecker health.Checker
		if opts.usesRedis() {
			rc, err := do.Invoke[*Redis](i)
			if err != nil {
				return nil, err
			}

			redisChecker = health.NewRedisChecker(rc.Client)
		}

		health.RegisterRoutes(api, health.NewHandler(ts.Checker, redisChecker))
		handlers.RegisterRoutes(api, links, gates)

		return api, nil
	})
}

func newHandlers(
	i *do.Injector, opts *Options, recorder *metrics.Recorder, logger *zap.Logger,
) (*handlers.LinkHandler, *handlers.GateHandler, error) {
	renderer, err := render.New()
	if err != nil {
		return nil, nil, err
	}

	issuer, err := do.Invoke[*gateway.Issuer](i)
	if err != nil {
		return nil, nil, err
	}

	resolver, err := do.Invoke[*gateway.Resolver](i)
	if err != nil {
		return nil, nil, err
	}

	gate, err := do.Invoke[*gateway.Gate](i)
	if err != nil {
		return nil, nil, err
	}

	events, err := do.Invoke[handlers.Events](i)
	if err != nil {
		return nil, nil, err
	}

	pages := handlers.NewPages(renderer, handlers.PagesConfig{
		DelaySeconds: opts.RedirectDelay,
		ScriptURL:    opts.ChallengeScriptURL,
		WidgetClass:  opts.ChallengeWidgetClass,
	})

	links := handlers.NewLinkHandler(issuer, resolver, gate, pages, events, recorder, logger)
	gates := handlers.NewGateHandler(gate, pages, opts.ProofField, events, recorder, logger)

	return links, gates, nil
}
