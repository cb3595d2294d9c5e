// Package render builds the HTML pages served to link visitors.
package render

import (
	"bytes"
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Challenge widget defaults for hCaptcha.
const (
	DefaultScriptURL   = "https://js.hcaptcha.com/1/api.js"
	DefaultWidgetClass = "h-captcha"
)

// DeliveryPage carries a released destination and the countdown length.
type DeliveryPage struct {
	Destination string
	Seconds     int
}

// ChallengePage asks the visitor for a proof. It never holds the destination.
type ChallengePage struct {
	Token       string
	SiteKey     string
	ScriptURL   string
	WidgetClass string
	Action      string
}

// MessagePage is a terminal or retryable notice.
type MessagePage struct {
	Title    string
	Message  string
	RetryURL string
}

// Renderer executes the embedded templates.
type Renderer struct {
	delivery  *template.Template
	challenge *template.Template
	message   *template.Template
}

func New() (*Renderer, error) {
	parse := func(page string) (*template.Template, error) {
		return template.ParseFS(templateFS, "templates/layout.html", "templates/"+page)
	}

	delivery, err := parse("delivery.html")
	if err != nil {
		return nil, err
	}

	challenge, err := parse("challenge.html")
	if err != nil {
		return nil, err
	}

	message, err := parse("message.html")
	if err != nil {
		return nil, err
	}

	return &Renderer{delivery: delivery, challenge: challenge, message: message}, nil
}

// MustNew panics if the embedded templates do not parse.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}

	return r
}

func (r *Renderer) Delivery(page DeliveryPage) ([]byte, error) {
	if page.Seconds < 0 {
		page.Seconds = 0
	}

	return execute(r.delivery, page)
}

func (r *Renderer) Challenge(page ChallengePage) ([]byte, error) {
	if page.ScriptURL == "" {
		page.ScriptURL = DefaultScriptURL
	}

	if page.WidgetClass == "" {
		page.WidgetClass = DefaultWidgetClass
	}

	if page.Action == "" {
		page.Action = "/verify"
	}

	return execute(r.challenge, page)
}

func (r *Renderer) Message(page MessagePage) ([]byte, error) {
	return execute(r.message, page)
}

// NotFound is shared by unknown tokens and malformed identifiers so the two are
// indistinguishable.
func (r *Renderer) NotFound() ([]byte, error) {
	return r.Message(MessagePage{
		Title:   "Link not available",
		Message: "This link is invalid or has expired.",
	})
}

// VerifyFailed lets the visitor retry the challenge for token.
func (r *Renderer) VerifyFailed(retryURL string) ([]byte, error) {
	return r.Message(MessagePage{
		Title:    "Verification failed",
		Message:  "We could not confirm you are human. Please try again.",
		RetryURL: retryURL,
	})
}

func (r *Renderer) Unavailable() ([]byte, error) {
	return r.Message(MessagePage{
		Title:   "Temporarily unavailable",
		Message: "Something went wrong on our side. Please try again shortly.",
	})
}

func execute(t *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
