package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/danielgtaylor/huma/v2"
)

// FormContentType is the media type of an HTML form post.
const FormContentType = "application/x-www-form-urlencoded"

var errFormShape = errors.New("form values must be a flat object")

// FormFormat decodes form posts into the same shape as a JSON body, so operations
// declared with a JSON body also take plain HTML forms. Only the first value of a
// repeated key is used, and "true", "on" and "false" become booleans.
var FormFormat = huma.Format{
	Marshal:   marshalForm,
	Unmarshal: unmarshalForm,
}

func unmarshalForm(data []byte, v any) error {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return err
	}

	fields := make(map[string]any, len(values))

	for key := range values {
		switch raw := values.Get(key); raw {
		case "true", "on":
			fields[key] = true
		case "false":
			fields[key] = false
		default:
			fields[key] = raw
		}
	}

	encoded, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	return json.Unmarshal(encoded, v)
}

func marshalForm(w io.Writer, v any) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var fields map[string]any
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return errFormShape
	}

	values := url.Values{}

	for key, value := range fields {
		switch value.(type) {
		case map[string]any, []any:
			return errFormShape
		case nil:
			continue
		default:
			values.Set(key, fmt.Sprint(value))
		}
	}

	_, err = io.WriteString(w, values.Encode())

	return err
}
