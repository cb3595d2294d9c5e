package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/serroba/redirect-gateway/internal/analytics"
	"github.com/serroba/redirect-gateway/internal/gateway"
	"github.com/serroba/redirect-gateway/internal/metrics"
	"go.uber.org/zap"
)

// LinkHandler issues links and serves identifier lookups.
type LinkHandler struct {
	issuer   *gateway.Issuer
	resolver *gateway.Resolver
	gate     *gateway.Gate
	pages    *Pages
	events   Events
	metrics  *metrics.Recorder
	logger   *zap.Logger
}

func NewLinkHandler(
	issuer *gateway.Issuer,
	resolver *gateway.Resolver,
	gate *gateway.Gate,
	pages *Pages,
	events Events,
	recorder *metrics.Recorder,
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		issuer:   issuer,
		resolver: resolver,
		gate:     gate,
		pages:    pages,
		events:   events,
		metrics:  recorder,
		logger:   logger,
	}
}

func (h *LinkHandler) Encode(ctx context.Context, req *EncodeRequest) (*EncodeResponse, error) {
	var body EncodeBody
	if req.Body != nil {
		body = *req.Body
	}

	if body.URL == "" {
		body.URL = req.URL
	}

	resp, err := h.issue(ctx, body.URL, body.Mode, body.Protected)
	if err != nil {
		return nil, err
	}

	resp.Status = http.StatusCreated
	resp.Location = resp.Body.LoaderURL

	return resp, nil
}

func (h *LinkHandler) EncodeQuery(ctx context.Context, req *EncodeQueryRequest) (*EncodeResponse, error) {
	resp, err := h.issue(ctx, req.URL, req.Mode, req.Protected)
	if err != nil {
		return nil, err
	}

	resp.Status = http.StatusOK

	return resp, nil
}

func (h *LinkHandler) issue(ctx context.Context, destination, mode string, protected bool) (*EncodeResponse, error) {
	meta := RequestMetaFromContext(ctx)

	link, err := h.issuer.Issue(ctx, gateway.IssueRequest{
		Destination: destination,
		Mode:        gateway.Mode(mode),
		Protected:   protected,
		Origin:      meta.Origin,
	})
	if err != nil {
		var verr *gateway.ValidationError
		if errors.As(err, &verr) {
			return nil, NewAPIError(http.StatusBadRequest, verr.Message)
		}

		h.logger.Error("failed to issue link", zap.String("mode", mode), zap.Error(err))

		return nil, NewAPIError(http.StatusInternalServerError, "failed to issue link")
	}

	h.metrics.Issued(string(link.Mode))

	event := &analytics.LinkIssuedEvent{
		Identifier: link.Identifier,
		Mode:       string(link.Mode),
		Protected:  link.Protected,
		IssuedAt:   time.Now(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		RequestID:  meta.RequestID,
	}

	if err := h.events.Issued(ctx, event); err != nil {
		h.logger.Error("failed to publish issued event",
			zap.String("identifier", link.Identifier),
			zap.Error(err),
		)
	}

	resp := &EncodeResponse{}
	resp.Body.LoaderURL = link.URL
	resp.Body.Mode = string(link.Mode)
	resp.Body.Protected = link.Protected

	if link.Mode == gateway.ModeEncoded {
		resp.Body.B64 = link.Identifier
	} else {
		resp.Body.Token = link.Identifier
	}

	return resp, nil
}

// Resolve serves the delivery page, the challenge page, or a generic failure page.
func (h *LinkHandler) Resolve(ctx context.Context, req *ResolveRequest) (*PageResponse, error) {
	res, err := h.resolver.Resolve(ctx, req.Identifier)

	switch {
	case err == nil:
	case gateway.IsMiss(err):
		h.observe(ctx, nil, metrics.OutcomeNotFound)

		return h.pages.NotFound()
	default:
		h.logger.Error("failed to resolve identifier", zap.Error(err))
		h.observe(ctx, nil, metrics.OutcomeError)

		return h.pages.Unavailable()
	}

	if res.Gated {
		h.observe(ctx, res, metrics.OutcomeGated)

		return h.pages.Challenge(h.gate.ChallengeFor(res))
	}

	h.observe(ctx, res, metrics.OutcomeDelivered)

	return h.pages.Delivery(res.Destination)
}

func (h *LinkHandler) observe(ctx context.Context, res *gateway.Resolution, outcome string) {
	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkResolvedEvent{
		Outcome:    outcome,
		ResolvedAt: time.Now(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
		RequestID:  meta.RequestID,
	}

	mode := ""
	if res != nil {
		mode = string(res.Mode)
		event.Mode = mode

		if res.Mode == gateway.ModeToken {
			event.Identifier = res.Identifier
		}
	}

	h.metrics.Resolved(mode, outcome)

	if err := h.events.Resolved(ctx, event); err != nil {
		h.logger.Error("failed to publish resolved event", zap.String("outcome", outcome), zap.Error(err))
	}
}
