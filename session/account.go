package session

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// OTP delivery channels for SendOTP.
const (
	OTPChannelEmail = "email"
	OTPChannelSMS   = "sms"
)

// SendOTP asks the backend to deliver a one-time passcode over the given
// channel ahead of a two-factor login.
func (c *Controller) SendOTP(ctx context.Context, email, channel string) error {
	body := struct {
		Email   string `json:"email"`
		Channel string `json:"channel"`
	}{Email: email, Channel: channel}
	return c.api.Post(ctx, "/auth/login/send-otp/", body, nil)
}

// ChangePassword replaces the current password.
func (c *Controller) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}{OldPassword: oldPassword, NewPassword: newPassword}
	return c.api.Post(ctx, "/auth/change-password/", body, nil)
}

// TwoFactorSetup is the provisioning payload for an authenticator app.
type TwoFactorSetup struct {
	Secret     string `json:"secret"`
	OtpauthURL string `json:"otpauth_url"`
	QRCode     string `json:"qr_code"`
}

// SetupTwoFactor starts TOTP enrolment and returns the provisioning data.
func (c *Controller) SetupTwoFactor(ctx context.Context) (*TwoFactorSetup, error) {
	var setup TwoFactorSetup
	if err := c.api.Post(ctx, "/auth/2fa/setup/", nil, &setup); err != nil {
		return nil, err
	}
	return &setup, nil
}

// VerifyTwoFactor confirms enrolment with a code from the authenticator.
func (c *Controller) VerifyTwoFactor(ctx context.Context, otp string) error {
	body := struct {
		OTP string `json:"otp"`
	}{OTP: otp}
	return c.api.Post(ctx, "/auth/2fa/verify/", body, nil)
}

// DisableTwoFactor turns off two-factor authentication.
func (c *Controller) DisableTwoFactor(ctx context.Context, otp string) error {
	body := struct {
		OTP string `json:"otp"`
	}{OTP: otp}
	return c.api.Post(ctx, "/auth/2fa/disable/", body, nil)
}

// TokenInfo is a display-only peek at the stored access token's claims.
type TokenInfo struct {
	Subject   string
	IssuedAt  *jwt.NumericDate
	ExpiresAt *jwt.NumericDate
}

// TokenInfo parses the stored access token without verifying its signature.
// It exists purely for display; validity is still decided reactively by the
// backend rejecting a request.
func (c *Controller) TokenInfo() (*TokenInfo, error) {
	raw := c.creds.Access()
	if raw == "" {
		return nil, errors.New("[Controller.TokenInfo] no access token stored")
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, errors.Wrap(err, "[Controller.TokenInfo] parsing access token")
	}
	return &TokenInfo{
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}
