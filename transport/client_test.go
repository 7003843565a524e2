package transport_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cloudopshq/cloudops-go/credentials/storefakes"
	apperrors "github.com/cloudopshq/cloudops-go/internal/errors"
	"github.com/cloudopshq/cloudops-go/transport"
	"github.com/stretchr/testify/require"
)

const (
	staleToken   = "stale-access"
	freshToken   = "newtok"
	refreshToken = "refresh-1"
)

// testBackend is a stand-in API that rejects the stale access token and
// honours a refresh exchange.
type testBackend struct {
	refreshCalls  atomic.Int64
	resourceCalls atomic.Int64
	refreshStatus int // status for /auth/refresh/, 200 when zero
	rejectFresh   bool
	lastAuth      string
	lastBody      []byte
	lock          sync.Mutex
}

func (b *testBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh/" {
			b.refreshCalls.Add(1)
			if b.refreshStatus != 0 {
				w.WriteHeader(b.refreshStatus)
				_, _ = w.Write([]byte(`{"detail":"refresh token invalid"}`))
				return
			}
			var payload struct {
				Refresh string `json:"refresh"`
			}
			_ = json.NewDecoder(r.Body).Decode(&payload)
			if payload.Refresh != refreshToken {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"access": freshToken})
			return
		}

		b.resourceCalls.Add(1)
		body, _ := io.ReadAll(r.Body)
		b.lock.Lock()
		b.lastAuth = r.Header.Get("Authorization")
		b.lastBody = body
		b.lock.Unlock()

		auth := r.Header.Get("Authorization")
		if auth != "Bearer "+freshToken || b.rejectFresh {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"token expired"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
}

func (b *testBackend) authHeader() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.lastAuth
}

func (b *testBackend) requestBody() []byte {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.lastBody
}

func newTestClient(t *testing.T, backend *testBackend, store *storefakes.FakeStore, options ...transport.Option) *transport.Client {
	t.Helper()

	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	client, err := transport.New(server.URL, store, options...)
	require.NoError(t, err)
	return client
}

func TestNewValidation(t *testing.T) {
	_, err := transport.New("", storefakes.NewFakeStore())
	require.Error(t, err)

	_, err = transport.New("http://localhost", nil)
	require.Error(t, err)
}

func TestBearerAttachedFromStore(t *testing.T) {
	backend := &testBackend{}
	store := storefakes.NewFakeStore()
	require.NoError(t, store.Set(freshToken, refreshToken))
	client := newTestClient(t, backend, store)

	var out map[string]string
	require.NoError(t, client.Get(context.Background(), "/employees/", &out))
	require.Equal(t, "Bearer "+freshToken, backend.authHeader())
	require.Equal(t, "ok", out["status"])
}

func TestUnauthenticatedWhenStoreEmpty(t *testing.T) {
	backend := &testBackend{}
	client := newTestClient(t, backend, storefakes.NewFakeStore())

	err := client.Get(context.Background(), "/employees/", nil)
	require.Error(t, err)
	require.Empty(t, backend.authHeader())
	// No refresh attempt without a refresh token
	require.EqualValues(t, 0, backend.refreshCalls.Load())
}

func TestRefreshAndRetryOn401(t *testing.T) {
	backend := &testBackend{}
	store := storefakes.NewFakeStore()
	require.NoError(t, store.Set(staleToken, refreshToken))
	client := newTestClient(t, backend, store)

	var out map[string]string
	require.NoError(t, client.Get(context.Background(), "/employees/", &out))

	require.Equal(t, "ok", out["status"])
	require.EqualValues(t, 1, backend.refreshCalls.Load())
	require.EqualValues(t, 2, backend.resourceCalls.Load())
	// The retry carried exactly the token produced by the refresh
	require.Equal(t, "Bearer "+freshToken, backend.authHeader())
	require.Equal(t, freshToken, store.Access())
	require.Equal(t, refreshToken, store.Refresh())
}

func TestPostBodyResentOnRetry(t *testing.T) {
	backend := &testBackend{}
	store := storefakes.NewFakeStore()
	require.NoError(t, store.Set(staleToken, refreshToken))
	client := newTestClient(t, backend, store)

	body := map[string]string{"title": "quarterly report"}
	require.NoError(t, client.Post(context.Background(), "/tasks/", body, nil))

	var resent map[string]string
	require.NoError(t, json.Unmarshal(backend.requestBody(), &resent))
	require.Equal(t, "quarterly report", resent["title"])
}

func TestNoRefreshTokenPropagates401(t *testing.T) {
	backend := &testBackend{}
	store := storefakes.NewFakeStore()
	require.NoError(t, store.Set(staleToken, ""))
	client := newTestClient(t, backend, store)

	err := client.Get(context.Background(), "/employees/", nil)
	require.Error(t, err)

	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "token expired", apiErr.Detail)
	require.EqualValues(t, 0, backend.refreshCalls.Load())
	// Store untouched
	require.Equal(t, staleToken, store.Access())
}

func TestRefreshFailureClearsStoreAndNotifiesOnce(t *testing.T) {
	backend := &testBackend{refreshStatus: http.StatusUnauthorized}
	store := storefakes.NewFakeStore()
	require.NoError(t, store.Set(staleToken, refreshToken))

	var expirations atomic.Int64
	client := newTestClient(t, backend, store, transport.WithSessionExpiredHook(func() {
		expirations.Add(1)
	}))

	err := client.Get(context.Background(), "/employees/", nil)
	require.Error(t, err)

	// The original failure is what reaches the caller
	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "/employees/", apiErr.Path)

	require.Empty(t, store.Access())
	require.Empty(t, store.Refresh())
	require.EqualValues(t, 1, expirations.Load())
	require.EqualValues(t, 1, backend.refreshCalls.Load())
}

func TestRetried401IsFinal(t *testing.T) {
	// Refresh succeeds but the backend keeps rejecting: the retried 401
	// must propagate without a second refresh attempt.
	backend := &testBackend{rejectFresh: true}
	store := storefakes.NewFakeStore()
	require.NoError(t, store.Set(staleToken, refreshToken))
	client := newTestClient(t, backend, store)

	err := client.Get(context.Background(), "/employees/", nil)
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
	require.EqualValues(t, 1, backend.refreshCalls.Load())
	require.EqualValues(t, 2, backend.resourceCalls.Load())
}

func TestNon401ErrorsPropagateUnchanged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"not allowed"}`))
	}))
	t.Cleanup(server.Close)

	store := storefakes.NewFakeStore()
	require.NoError(t, store.Set(freshToken, refreshToken))
	client, err := transport.New(server.URL, store)
	require.NoError(t, err)

	reqErr := client.Get(context.Background(), "/payroll/", nil)
	require.Error(t, reqErr)
	require.True(t, apperrors.Is(reqErr, apperrors.ErrForbidden))
	// No side effects on the credential store
	require.Equal(t, freshToken, store.Access())
	require.Equal(t, refreshToken, store.Refresh())
}

func TestConcurrent401sShareOneRefresh(t *testing.T) {
	backend := &testBackend{}
	store := storefakes.NewFakeStore()
	require.NoError(t, store.Set(staleToken, refreshToken))
	client := newTestClient(t, backend, store)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.Get(context.Background(), "/employees/", nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, backend.refreshCalls.Load())
	require.Equal(t, freshToken, store.Access())
}
