package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudopshq/cloudops-go/credentials/storefakes"
	apperrors "github.com/cloudopshq/cloudops-go/internal/errors"
	"github.com/cloudopshq/cloudops-go/session"
	"github.com/cloudopshq/cloudops-go/transport"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testAccess   = "access-token"
	testRefresh  = "refresh-token"
	testPassword = "password123"
	testEmail    = "ann@cloudops.example"
)

type fixture struct {
	store      *storefakes.FakeStore
	controller *session.Controller
	calls      atomic.Int64
	needsOTP   bool
}

func setup(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{store: storefakes.NewFakeStore()}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		switch r.URL.Path {
		case "/auth/profile/":
			if r.Header.Get("Authorization") != "Bearer "+testAccess {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"invalid token"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":          7,
				"email":       testEmail,
				"first_name":  "Ann",
				"last_name":   "Chu",
				"role":        "HR_EXEC",
				"is_active":   true,
				"employee_id": 42,
			})
		case "/auth/login/":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["email"] != testEmail || body["password"] != testPassword {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"invalid credentials"}`))
				return
			}
			if f.needsOTP && body["otp"] == "" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"code":"2FA_REQUIRED","message":"Please enter your 2FA code."}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{
				"access":  testAccess,
				"refresh": testRefresh,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	api, err := transport.New(server.URL, f.store)
	require.NoError(t, err)

	f.controller, err = session.NewController(api, f.store)
	require.NoError(t, err)
	return f
}

func TestNewControllerValidation(t *testing.T) {
	_, err := session.NewController(nil, storefakes.NewFakeStore())
	require.Error(t, err)
}

func TestControllerStartsInitializing(t *testing.T) {
	f := setup(t)
	require.Equal(t, session.Initializing, f.controller.Status())
}

func TestRestoreWithEmptyStoreSkipsNetwork(t *testing.T) {
	f := setup(t)

	status := f.controller.Restore(context.Background())

	require.Equal(t, session.Unauthenticated, status)
	require.Equal(t, session.Unauthenticated, f.controller.Status())
	require.Nil(t, f.controller.Profile())
	require.EqualValues(t, 0, f.calls.Load())
}

func TestRestoreWithValidToken(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.store.Set(testAccess, testRefresh))

	status := f.controller.Restore(context.Background())

	require.Equal(t, session.Authenticated, status)
	profile := f.controller.Profile()
	require.NotNil(t, profile)
	require.Equal(t, "Ann", profile.FirstName)
	require.Equal(t, session.RoleHRExec, profile.Role)
	require.EqualValues(t, 42, *profile.EmployeeID)
}

func TestRestoreWithRejectedTokenClearsStore(t *testing.T) {
	f := setup(t)
	// No refresh token, so the 401 propagates without a refresh attempt
	require.NoError(t, f.store.Set("garbage", ""))

	status := f.controller.Restore(context.Background())

	require.Equal(t, session.Unauthenticated, status)
	require.Empty(t, f.store.Access())
	require.Empty(t, f.store.Refresh())
}

func TestLoginStoresPairAndFetchesProfile(t *testing.T) {
	f := setup(t)

	profile, err := f.controller.Login(context.Background(), testEmail, testPassword, "")
	require.NoError(t, err)

	require.Equal(t, "Ann Chu", profile.FullName())
	require.Equal(t, session.Authenticated, f.controller.Status())
	require.Equal(t, testAccess, f.store.Access())
	require.Equal(t, testRefresh, f.store.Refresh())
}

func TestLoginBadCredentials(t *testing.T) {
	f := setup(t)

	_, err := f.controller.Login(context.Background(), testEmail, "wrong", "")
	require.Error(t, err)
	require.Equal(t, session.Initializing, f.controller.Status())
	require.Empty(t, f.store.Access())
}

func TestLoginSignalsTwoFactorChallenge(t *testing.T) {
	f := setup(t)
	f.needsOTP = true

	_, err := f.controller.Login(context.Background(), testEmail, testPassword, "")
	require.Error(t, err)

	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)
	require.True(t, apiErr.TwoFactorRequired())
	require.ErrorIs(t, err, apperrors.ErrTwoFactorRequired)

	// Re-submitting with the passcode succeeds
	profile, err := f.controller.Login(context.Background(), testEmail, testPassword, "123456")
	require.NoError(t, err)
	require.Equal(t, "Ann", profile.FirstName)
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := setup(t)

	_, err := f.controller.Login(context.Background(), testEmail, testPassword, "")
	require.NoError(t, err)
	before := f.calls.Load()

	f.controller.Logout()
	require.Equal(t, session.Unauthenticated, f.controller.Status())
	require.Nil(t, f.controller.Profile())
	require.Empty(t, f.store.Access())

	// Second logout: no error, no network call
	f.controller.Logout()
	require.Equal(t, session.Unauthenticated, f.controller.Status())
	require.Equal(t, before, f.calls.Load())
}

func TestOnChangeFollowsTransitions(t *testing.T) {
	f := setup(t)

	var transitions []session.Status
	f.controller.OnChange(func(s session.Status) {
		transitions = append(transitions, s)
	})

	_, err := f.controller.Login(context.Background(), testEmail, testPassword, "")
	require.NoError(t, err)
	f.controller.Logout()
	f.controller.Logout() // already out, no extra notification

	require.Equal(t, []session.Status{session.Authenticated, session.Unauthenticated}, transitions)
}

func TestTokenInfoPeeksWithoutVerifying(t *testing.T) {
	f := setup(t)

	expiry := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(expiry),
	})
	signed, err := token.SignedString([]byte("server-side-secret"))
	require.NoError(t, err)
	require.NoError(t, f.store.Set(signed, testRefresh))

	info, err := f.controller.TokenInfo()
	require.NoError(t, err)
	require.Equal(t, "7", info.Subject)
	require.True(t, expiry.Equal(info.ExpiresAt.Time))
}

func TestTokenInfoWithoutToken(t *testing.T) {
	f := setup(t)

	_, err := f.controller.TokenInfo()
	require.Error(t, err)
}
