package handlers

import (
	"net/http"

	"github.com/serroba/redirect-gateway/internal/codec"
	"github.com/serroba/redirect-gateway/internal/gateway"
	"github.com/serroba/redirect-gateway/internal/render"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	cacheNoStore    = "no-store"
)

// PageResponse is an HTML page (or a bare redirect) with caching disabled.
type PageResponse struct {
	Status       int
	ContentType  string `header:"Content-Type"`
	CacheControl string `header:"Cache-Control"`
	Location     string `header:"Location"`
	Body         []byte
}

// PagesConfig tunes the visitor-facing pages.
type PagesConfig struct {
	// DelaySeconds is the delivery page countdown.
	DelaySeconds int
	ScriptURL    string
	WidgetClass  string
	// VerifyPath is the challenge form action.
	VerifyPath string
}

// Pages turns gateway outcomes into rendered responses.
type Pages struct {
	renderer *render.Renderer
	cfg      PagesConfig
}

func NewPages(renderer *render.Renderer, cfg PagesConfig) *Pages {
	if cfg.VerifyPath == "" {
		cfg.VerifyPath = "/verify"
	}

	return &Pages{renderer: renderer, cfg: cfg}
}

func (p *Pages) Delivery(destination string) (*PageResponse, error) {
	return page(http.StatusOK)(p.renderer.Delivery(render.DeliveryPage{
		Destination: destination,
		Seconds:     p.cfg.DelaySeconds,
	}))
}

func (p *Pages) Challenge(ch *gateway.Challenge) (*PageResponse, error) {
	return page(http.StatusOK)(p.renderer.Challenge(render.ChallengePage{
		Token:       ch.Token,
		SiteKey:     ch.SiteKey,
		ScriptURL:   p.cfg.ScriptURL,
		WidgetClass: p.cfg.WidgetClass,
		Action:      p.cfg.VerifyPath,
	}))
}

func (p *Pages) NotFound() (*PageResponse, error) {
	return page(http.StatusNotFound)(p.renderer.NotFound())
}

func (p *Pages) Unavailable() (*PageResponse, error) {
	return page(http.StatusServiceUnavailable)(p.renderer.Unavailable())
}

// VerifyFailed links back to the challenge only for well-formed tokens.
func (p *Pages) VerifyFailed(token string) (*PageResponse, error) {
	retry := ""
	if token != "" && codec.IsURLSafe(token) {
		retry = "/redirect/" + token
	}

	return page(http.StatusBadRequest)(p.renderer.VerifyFailed(retry))
}

// Redirect sends the client straight to destination.
func (p *Pages) Redirect(destination string) *PageResponse {
	return &PageResponse{
		Status:       http.StatusFound,
		CacheControl: cacheNoStore,
		Location:     destination,
	}
}

func page(status int) func([]byte, error) (*PageResponse, error) {
	return func(body []byte, err error) (*PageResponse, error) {
		if err != nil {
			return nil, NewAPIError(http.StatusInternalServerError, "failed to render page")
		}

		return &PageResponse{
			Status:       status,
			ContentType:  contentTypeHTML,
			CacheControl: cacheNoStore,
			Body:         body,
		}, nil
	}
}
