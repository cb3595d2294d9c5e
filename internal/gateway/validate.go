package gateway

import (
	"net/url"
	"strings"

	validation "github.com/jellydator/validation"
)

// MaxDestinationLength bounds accepted destinations.
const MaxDestinationLength = 2048

var httpScheme = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
	},
	validation.NewError("validation_destination_scheme", "must start with http:// or https://"),
)

var absoluteWithHost = validation.NewStringRuleWithError(
	func(s string) bool {
		u, err := url.Parse(s)

		return err == nil && u.Host != ""
	},
	validation.NewError("validation_destination_host", "must be an absolute url with a host"),
)

// ValidateDestination checks a candidate destination URL.
func ValidateDestination(raw string) error {
	err := validation.Validate(raw,
		validation.Required,
		validation.Length(1, MaxDestinationLength),
		httpScheme,
		absoluteWithHost,
	)
	if err != nil {
		return &ValidationError{Message: MsgInvalidURL, Cause: err}
	}

	return nil
}
