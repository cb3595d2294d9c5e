package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/url"
	"strings"
	"time"

	"github.com/serroba/redirect-gateway/internal/analytics"
	"github.com/serroba/redirect-gateway/internal/codec"
	"github.com/serroba/redirect-gateway/internal/gateway"
	"github.com/serroba/redirect-gateway/internal/metrics"
	"go.uber.org/zap"
)

// DefaultProofField is the form field the hCaptcha widget submits.
const DefaultProofField = "h-captcha-response"

var errMalformedSubmission = errors.New("malformed submission")

// GateHandler serves challenge pages and accepts proofs.
type GateHandler struct {
	gate       *gateway.Gate
	pages      *Pages
	proofField string
	events     Events
	metrics    *metrics.Recorder
	logger     *zap.Logger
}

func NewGateHandler(
	gate *gateway.Gate,
	pages *Pages,
	proofField string,
	events Events,
	recorder *metrics.Recorder,
	logger *zap.Logger,
) *GateHandler {
	if proofField == "" {
		proofField = DefaultProofField
	}

	return &GateHandler{
		gate:       gate,
		pages:      pages,
		proofField: proofField,
		events:     events,
		metrics:    recorder,
		logger:     logger,
	}
}

func (h *GateHandler) Challenge(ctx context.Context, req *ChallengeRequest) (*PageResponse, error) {
	ch, err := h.gate.Challenge(ctx, req.Token)

	switch {
	case err == nil:
		return h.pages.Challenge(ch)
	case gateway.IsMiss(err):
		return h.pages.NotFound()
	default:
		h.logger.Error("failed to load challenge", zap.Error(err))

		return h.pages.Unavailable()
	}
}

// Verify redirects to the destination only once the authority accepted the proof.
func (h *GateHandler) Verify(ctx context.Context, req *VerifyRequest) (*PageResponse, error) {
	token, proof, err := h.parseSubmission(req.ContentType, req.RawBody)
	if err != nil {
		h.record(ctx, token, metrics.OutcomeRejected, 0)

		return h.pages.VerifyFailed("")
	}

	meta := RequestMetaFromContext(ctx)
	start := time.Now()
	res, err := h.gate.Verify(ctx, token, proof, meta.ClientIP)
	took := time.Since(start)

	switch {
	case err == nil:
		h.record(ctx, token, metrics.OutcomeVerified, took)

		return h.pages.Redirect(res.Destination), nil
	case errors.Is(err, gateway.ErrVerificationFailed):
		h.logger.Info("verification failed", zap.String("requestId", meta.RequestID), zap.Error(err))
		h.record(ctx, token, metrics.OutcomeRejected, took)

		return h.pages.VerifyFailed(token)
	case gateway.IsMiss(err):
		h.record(ctx, token, metrics.OutcomeNotFound, took)

		return h.pages.NotFound()
	default:
		h.logger.Error("failed to release destination", zap.Error(err))
		h.record(ctx, token, metrics.OutcomeError, took)

		return h.pages.Unavailable()
	}
}

func (h *GateHandler) parseSubmission(contentType string, body []byte) (token, proof string, err error) {
	fields := map[string]string{}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "application/json" {
		var raw map[string]any
		if err := json.Unmarshal(body, &raw); err != nil {
			return "", "", errMalformedSubmission
		}

		for k, v := range raw {
			if s, ok := v.(string); ok {
				fields[k] = s
			}
		}
	} else {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return "", "", errMalformedSubmission
		}

		for k := range values {
			fields[k] = values.Get(k)
		}
	}

	token = strings.TrimSpace(fields["token"])

	proof = fields["proof"]
	if proof == "" {
		proof = fields[h.proofField]
	}

	return token, proof, nil
}

func (h *GateHandler) record(ctx context.Context, token, outcome string, took time.Duration) {
	h.metrics.Verified(outcome, took)

	if !codec.IsURLSafe(token) {
		token = ""
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkVerifiedEvent{
		Token:      token,
		Outcome:    outcome,
		VerifiedAt: time.Now(),
		ClientIP:   meta.ClientIP,
		RequestID:  meta.RequestID,
	}

	if err := h.events.Verified(ctx, event); err != nil {
		h.logger.Error("failed to publish verified event", zap.String("outcome", outcome), zap.Error(err))
	}
}
