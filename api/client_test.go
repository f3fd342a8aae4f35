package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeropapel/zeropapel-go/api"
	"github.com/zeropapel/zeropapel-go/credentials/storefake"
	"github.com/zeropapel/zeropapel-go/internal/apperrors"
	"github.com/zeropapel/zeropapel-go/transport"
)

func newClient(t *testing.T, baseURL string) *api.Client {
	t.Helper()

	tr, err := transport.New(baseURL, storefake.NewFakeStore())
	require.NoError(t, err)

	client, err := api.New(tr)
	require.NoError(t, err)
	return client
}

func TestLoginDecodesCredentialPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"user":          map[string]any{"id": 1, "email": "john.doe@example.com"},
		})
	}))
	defer srv.Close()

	resp, err := newClient(t, srv.URL).Login(context.Background(), "john.doe@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, "access-1", resp.AccessToken)
	require.Equal(t, "refresh-1", resp.RefreshToken)
	require.Equal(t, "john.doe@example.com", resp.User.Email)
}

func TestLoginMapsRejectionToInvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid email or password"})
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).Login(context.Background(), "john.doe@example.com", "wrong")
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidCredentials))

	var apiErr *transport.APIError
	require.True(t, apperrors.As(err, &apiErr))
	require.Equal(t, "Invalid email or password", apiErr.Message)
}

func TestRegisterMapsConflictToInvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "User already exists"})
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).Register(context.Background(), "john.doe@example.com", "password123")
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidCredentials))
}

func TestLoginKeepsNetworkFailuresDistinct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening any more

	_, err := newClient(t, srv.URL).Login(context.Background(), "john.doe@example.com", "password123")
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrNetworkFailure))
	require.False(t, apperrors.Is(err, apperrors.ErrInvalidCredentials))
}

func TestProfileUnwrapsUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/auth/profile", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{"id": 1, "email": "john.doe@example.com", "is_admin": true},
		})
	}))
	defer srv.Close()

	user, err := newClient(t, srv.URL).Profile(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, user.ID)
	require.True(t, user.IsAdmin)
}

func TestForgotPassword(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/forgot-password", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, newClient(t, srv.URL).ForgotPassword(context.Background(), "john.doe@example.com"))
	require.Equal(t, "john.doe@example.com", gotBody["email"])
}
