package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func jsonResponse(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func TestGetDecodesDataPayload(t *testing.T) {
	client := newTestClient(t, jsonResponse(200,
		`{"success":true,"data":{"username":"mira_dev","followersCount":10}}`))

	var out struct {
		Username       string `json:"username"`
		FollowersCount int    `json:"followersCount"`
	}
	require.NoError(t, client.Get(context.Background(), "/api/mira_dev/profile", nil, &out))
	assert.Equal(t, "mira_dev", out.Username)
	assert.Equal(t, 10, out.FollowersCount)
}

func TestGetDecodesTopLevelFieldsWhenDataAbsent(t *testing.T) {
	client := newTestClient(t, jsonResponse(200,
		`{"success":true,"available":false,"message":"ok"}`))

	var out struct {
		Available bool `json:"available"`
	}
	require.NoError(t, client.Get(context.Background(), "/api/profile/username-check", nil, &out))
	assert.False(t, out.Available)
}

func TestBodySuccessFlagWinsOverHTTPStatus(t *testing.T) {
	// A 200 whose body says success:false is still a failure.
	client := newTestClient(t, jsonResponse(200,
		`{"success":false,"message":"Profile not found"}`))

	err := client.Get(context.Background(), "/api/nobody/profile", nil, nil)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 200, apiErr.Status)
	assert.Equal(t, "Profile not found", apiErr.Message)
	assert.False(t, apiErr.Fallback)
}

func TestErrorStatusWithBodyMessage(t *testing.T) {
	client := newTestClient(t, jsonResponse(500,
		`{"success":false,"message":"Database unavailable"}`))

	err := client.Get(context.Background(), "/api/mira_dev/profile", nil, nil)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, "Database unavailable", apiErr.Message)
	assert.False(t, apiErr.Fallback)
}

func TestErrorStatusWithoutMessageFallsBack(t *testing.T) {
	client := newTestClient(t, jsonResponse(429, `{}`))

	err := client.Get(context.Background(), "/api/chat/problem/p1/history", nil, nil)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 429, apiErr.Status)
	assert.Equal(t, GenericErrorMessage, apiErr.Message)
	assert.True(t, apiErr.Fallback)
}

func TestUnparseableBodyFallsBack(t *testing.T) {
	client := newTestClient(t, jsonResponse(200, `<html>gateway error</html>`))

	err := client.Get(context.Background(), "/api/mira_dev/profile", nil, nil)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, GenericErrorMessage, apiErr.Message)
	assert.True(t, apiErr.Fallback)
}

func TestTransportFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(srv.URL, time.Second)

	err := client.Get(context.Background(), "/api/mira_dev/profile", nil, nil)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.Status)
	assert.Equal(t, GenericErrorMessage, apiErr.Message)
	assert.True(t, apiErr.Fallback)
}

func TestBearerTokenHeader(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		jsonResponse(200, `{"success":true,"message":"ok"}`)(w, r)
	})
	client.SetTokenFunc(func() string { return "tok-123" })

	require.NoError(t, client.Post(context.Background(), "/api/auth/logout", nil, nil))
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestAnonymousRequestHasNoAuthHeader(t *testing.T) {
	var hasAuth bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		jsonResponse(200, `{"success":true}`)(w, r)
	})

	require.NoError(t, client.Get(context.Background(), "/api/mira_dev/profile", nil, nil))
	assert.False(t, hasAuth)
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "", Display(nil))
	assert.Equal(t, "Profile not found", Display(&Error{Message: "Profile not found"}))
	assert.Equal(t, GenericErrorMessage, Display(assert.AnError))
}

func TestNullDataFallsBackToRawBody(t *testing.T) {
	client := newTestClient(t, jsonResponse(200,
		`{"success":true,"data":null,"submissions":[]}`))

	var out struct {
		Submissions []struct{} `json:"submissions"`
	}
	require.NoError(t, client.Get(context.Background(), "/api/problems/p1/submissions", nil, &out))
	assert.NotNil(t, out.Submissions)
}
