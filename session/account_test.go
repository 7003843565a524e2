package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudopshq/cloudops-go/credentials/storefakes"
	"github.com/cloudopshq/cloudops-go/session"
	"github.com/cloudopshq/cloudops-go/transport"
	"github.com/stretchr/testify/require"
)

type accountFixture struct {
	controller *session.Controller
	bodies     map[string]map[string]string
}

func setupAccount(t *testing.T) *accountFixture {
	t.Helper()

	f := &accountFixture{bodies: map[string]map[string]string{}}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var body map[string]string
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}
		f.bodies[r.URL.Path] = body

		switch r.URL.Path {
		case "/auth/login/send-otp/", "/auth/change-password/", "/auth/2fa/verify/", "/auth/2fa/disable/":
			_, _ = w.Write([]byte(`{"detail":"ok"}`))
		case "/auth/2fa/setup/":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"secret":      "JBSWY3DPEHPK3PXP",
				"otpauth_url": "otpauth://totp/CloudOps:ann@cloudops.example?secret=JBSWY3DPEHPK3PXP",
				"qr_code":     "data:image/png;base64,xyz",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	store := storefakes.NewFakeStore()
	require.NoError(t, store.Set(testAccess, testRefresh))
	api, err := transport.New(server.URL, store)
	require.NoError(t, err)

	f.controller, err = session.NewController(api, store)
	require.NoError(t, err)
	return f
}

func TestSendOTP(t *testing.T) {
	f := setupAccount(t)

	require.NoError(t, f.controller.SendOTP(context.Background(), testEmail, session.OTPChannelEmail))
	require.Equal(t, testEmail, f.bodies["/auth/login/send-otp/"]["email"])
	require.Equal(t, "email", f.bodies["/auth/login/send-otp/"]["channel"])
}

func TestChangePassword(t *testing.T) {
	f := setupAccount(t)

	require.NoError(t, f.controller.ChangePassword(context.Background(), "old-pass", "new-pass"))
	require.Equal(t, "old-pass", f.bodies["/auth/change-password/"]["old_password"])
	require.Equal(t, "new-pass", f.bodies["/auth/change-password/"]["new_password"])
}

func TestTwoFactorEnrolment(t *testing.T) {
	f := setupAccount(t)

	setup, err := f.controller.SetupTwoFactor(context.Background())
	require.NoError(t, err)
	require.Equal(t, "JBSWY3DPEHPK3PXP", setup.Secret)
	require.Contains(t, setup.OtpauthURL, "otpauth://totp/")

	require.NoError(t, f.controller.VerifyTwoFactor(context.Background(), "123456"))
	require.Equal(t, "123456", f.bodies["/auth/2fa/verify/"]["otp"])
}

func TestDisableTwoFactor(t *testing.T) {
	f := setupAccount(t)

	require.NoError(t, f.controller.DisableTwoFactor(context.Background(), "654321"))
	require.Equal(t, "654321", f.bodies["/auth/2fa/disable/"]["otp"])
}
