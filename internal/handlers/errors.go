package handlers

import "github.com/danielgtaylor/huma/v2"

// APIError is the JSON error body of the issuance API.
type APIError struct {
	status  int
	Message string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) GetStatus() int {
	return e.status
}

// NewAPIError matches the signature of huma.NewError so it can replace it.
func NewAPIError(status int, msg string, errs ...error) huma.StatusError {
	apiErr := &APIError{status: status, Message: msg}

	for _, err := range errs {
		if err != nil {
			apiErr.Details = append(apiErr.Details, err.Error())
		}
	}

	return apiErr
}
