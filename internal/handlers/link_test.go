package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/serroba/redirect-gateway/internal/codec"
	"github.com/serroba/redirect-gateway/internal/gateway"
	"github.com/serroba/redirect-gateway/internal/handlers"
	"github.com/serroba/redirect-gateway/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireAPIError(t *testing.T, err error, status int, msg string) {
	t.Helper()

	var apiErr *handlers.APIError

	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, status, apiErr.GetStatus())
	assert.Equal(t, msg, apiErr.Message)
}

func TestLinkHandler_Encode(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a token link", func(t *testing.T) {
		f := newFixture(t)
		req := &handlers.EncodeRequest{Body: &handlers.EncodeBody{}}
		req.Body.URL = testDestination

		resp, err := f.links.Encode(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.Status)
		assert.Len(t, resp.Body.Token, gateway.MinTokenLength)
		assert.Empty(t, resp.Body.B64)
		assert.Equal(t, testBaseURL+"/"+resp.Body.Token, resp.Body.LoaderURL)
		assert.Equal(t, resp.Body.LoaderURL, resp.Location)
		assert.Equal(t, "token", resp.Body.Mode)
		assert.False(t, resp.Body.Protected)
	})

	t.Run("falls back to the url query parameter", func(t *testing.T) {
		f := newFixture(t)

		resp, err := f.links.Encode(ctx, &handlers.EncodeRequest{URL: testDestination})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.Body.Token)
	})

	t.Run("encoded mode", func(t *testing.T) {
		f := newFixture(t)
		req := &handlers.EncodeRequest{Body: &handlers.EncodeBody{}}
		req.Body.URL = testDestination
		req.Body.Mode = "encoded"

		resp, err := f.links.Encode(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, codec.Encode(testDestination), resp.Body.B64)
		assert.Empty(t, resp.Body.Token)
		assert.Equal(t, "encoded", resp.Body.Mode)
	})

	t.Run("protected link", func(t *testing.T) {
		f := newFixture(t)
		req := &handlers.EncodeRequest{Body: &handlers.EncodeBody{}}
		req.Body.URL = testDestination
		req.Body.Protected = true

		resp, err := f.links.Encode(ctx, req)

		require.NoError(t, err)
		assert.True(t, resp.Body.Protected)
	})

	t.Run("invalid url is a 400", func(t *testing.T) {
		f := newFixture(t)
		req := &handlers.EncodeRequest{Body: &handlers.EncodeBody{}}
		req.Body.URL = "javascript:alert(1)"

		_, err := f.links.Encode(ctx, req)

		requireAPIError(t, err, http.StatusBadRequest, gateway.MsgInvalidURL)
		assert.Empty(t, f.events.issued)
	})

	t.Run("missing url is a 400", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.links.Encode(ctx, &handlers.EncodeRequest{})

		requireAPIError(t, err, http.StatusBadRequest, gateway.MsgInvalidURL)
	})

	t.Run("unknown mode is a 400", func(t *testing.T) {
		f := newFixture(t)
		req := &handlers.EncodeRequest{Body: &handlers.EncodeBody{}}
		req.Body.URL = testDestination
		req.Body.Mode = "hash"

		_, err := f.links.Encode(ctx, req)

		requireAPIError(t, err, http.StatusBadRequest, gateway.MsgInvalidMode)
	})

	t.Run("store failure is a 500", func(t *testing.T) {
		f := newFixture(t, withRepository(failingStore{}))
		req := &handlers.EncodeRequest{Body: &handlers.EncodeBody{}}
		req.Body.URL = testDestination

		_, err := f.links.Encode(ctx, req)

		requireAPIError(t, err, http.StatusInternalServerError, "failed to issue link")
	})

	t.Run("publishes an issued event and counts it", func(t *testing.T) {
		f := newFixture(t)
		token := f.issue(t, false)

		require.Len(t, f.events.issued, 1)
		assert.Equal(t, token, f.events.issued[0].Identifier)
		assert.Equal(t, "token", f.events.issued[0].Mode)
		assert.InDelta(t, 1, counterValue(t, f, "test_links_issued_total", "token"), 0)
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		f := newFixture(t)
		f.events.err = errors.New("broker down")
		req := &handlers.EncodeRequest{Body: &handlers.EncodeBody{}}
		req.Body.URL = testDestination

		resp, err := f.links.Encode(ctx, req)

		require.NoError(t, err)
		assert.NotEmpty(t, resp.Body.Token)
	})
}

func TestLinkHandler_EncodeQuery(t *testing.T) {
	f := newFixture(t)

	resp, err := f.links.EncodeQuery(context.Background(), &handlers.EncodeQueryRequest{
		URL:  testDestination,
		Mode: "encoded",
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Empty(t, resp.Location)
	assert.Equal(t, codec.Encode(testDestination), resp.Body.B64)
}

func TestLinkHandler_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("open token serves the delivery page", func(t *testing.T) {
		f := newFixture(t)
		token := f.issue(t, false)

		resp, err := f.links.Resolve(ctx, &handlers.ResolveRequest{Identifier: token})

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, "no-store", resp.CacheControl)
		assert.Contains(t, resp.ContentType, "text/html")
		assert.Contains(t, string(resp.Body), testDestination)
		assert.Contains(t, string(resp.Body), `data-seconds="5"`)
	})

	t.Run("encoded identifier serves the delivery page", func(t *testing.T) {
		f := newFixture(t)

		resp, err := f.links.Resolve(ctx, &handlers.ResolveRequest{Identifier: codec.Encode(testDestination)})

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Contains(t, string(resp.Body), testDestination)
	})

	t.Run("protected token serves the challenge without destination", func(t *testing.T) {
		f := newFixture(t)
		token := f.issue(t, true)

		resp, err := f.links.Resolve(ctx, &handlers.ResolveRequest{Identifier: token})

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Contains(t, string(resp.Body), testSiteKey)
		assert.Contains(t, string(resp.Body), token)
		assert.NotContains(t, string(resp.Body), testDestination)
	})

	t.Run("unknown and malformed identifiers share one page", func(t *testing.T) {
		f := newFixture(t)

		unknown, err := f.links.Resolve(ctx, &handlers.ResolveRequest{Identifier: "doesnotexist"})
		require.NoError(t, err)

		malformed, err := f.links.Resolve(ctx, &handlers.ResolveRequest{Identifier: "<script>alert(1)</script>"})
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, unknown.Status)
		assert.Equal(t, http.StatusNotFound, malformed.Status)
		assert.Equal(t, unknown.Body, malformed.Body)
		assert.NotContains(t, string(malformed.Body), "alert")
	})

	t.Run("store failure serves the unavailable page", func(t *testing.T) {
		f := newFixture(t, withRepository(failingStore{}))

		resp, err := f.links.Resolve(ctx, &handlers.ResolveRequest{Identifier: "some_token_0123456789ab"})

		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
	})

	t.Run("records the outcome", func(t *testing.T) {
		f := newFixture(t)
		token := f.issue(t, true)

		_, err := f.links.Resolve(ctx, &handlers.ResolveRequest{Identifier: token})
		require.NoError(t, err)

		_, err = f.links.Resolve(ctx, &handlers.ResolveRequest{Identifier: "doesnotexist"})
		require.NoError(t, err)

		require.Len(t, f.events.resolved, 2)
		assert.Equal(t, metrics.OutcomeGated, f.events.resolved[0].Outcome)
		assert.Equal(t, token, f.events.resolved[0].Identifier)
		assert.Equal(t, metrics.OutcomeNotFound, f.events.resolved[1].Outcome)
		assert.Empty(t, f.events.resolved[1].Identifier)
		assert.InDelta(t, 1, counterValue(t, f, "test_links_resolved_total", "token", metrics.OutcomeGated), 0)
	})
}
