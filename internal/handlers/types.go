package handlers

// EncodeBody is the body accepted by POST /encode, as JSON or a form post.
type EncodeBody struct {
	URL       string `doc:"Destination to wrap"                example:"https://example.com/page" json:"url,omitempty"`
	Mode      string `doc:"Identifier mode: token or encoded"  example:"token"                    json:"mode,omitempty"`
	Protected bool   `doc:"Require human verification (token)" json:"protected,omitempty"`
}

// EncodeRequest creates a link from a body or the url query parameter.
type EncodeRequest struct {
	URL  string `doc:"Destination, used when the body has none" query:"url"`
	Body *EncodeBody
}

// EncodeQueryRequest creates a link from query parameters only.
type EncodeQueryRequest struct {
	URL       string `doc:"Destination to wrap"                example:"https://example.com/page" query:"url"`
	Mode      string `doc:"Identifier mode: token or encoded"  query:"mode"`
	Protected bool   `doc:"Require human verification (token)" query:"protected"`
}

// LinkBody describes an issued link.
type LinkBody struct {
	LoaderURL string `doc:"Shareable gateway URL"             example:"http://localhost:8888/V1StGXR8_Z5jdHi6B-myT" json:"loader_url"`
	Token     string `doc:"Opaque token (token mode)"        json:"token,omitempty"`
	B64       string `doc:"Encoded destination (encoded mode)" json:"b64,omitempty"`
	Mode      string `doc:"Identifier mode"                  example:"token"                                   json:"mode"`
	Protected bool   `doc:"Whether the link is gated"        json:"protected"`
}

// EncodeResponse is returned for an issued link.
type EncodeResponse struct {
	Status   int
	Location string `header:"Location"`
	Body     LinkBody
}

// ResolveRequest looks up a token or encoded identifier.
type ResolveRequest struct {
	Identifier string `doc:"Token or base64url-encoded destination" path:"identifier"`
}

// ChallengeRequest asks for the challenge page of a token.
type ChallengeRequest struct {
	Token string `doc:"Link token" path:"token"`
}

// VerifyRequest carries a proof submission, as a form post or JSON.
type VerifyRequest struct {
	ContentType string `header:"Content-Type"`
	RawBody     []byte `contentType:"application/x-www-form-urlencoded"`
}
