package main

import (
	"bufio"
	"fmt"
	"strings"

	apperrors "github.com/cloudopshq/cloudops-go/internal/errors"
	"github.com/cloudopshq/cloudops-go/transport"
	"github.com/spf13/cobra"
)

func newLoginCommand() *cobra.Command {
	var email, password, otp, otpChannel string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the backend and store the session tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}

			reader := bufio.NewReader(cmd.InOrStdin())
			if email == "" {
				email = prompt(cmd, reader, "Email: ")
			}
			if password == "" {
				password = prompt(cmd, reader, "Password: ")
			}

			profile, err := a.session.Login(cmd.Context(), email, password, otp)
			if err != nil {
				var apiErr *transport.APIError
				if apperrors.As(err, &apiErr) && apiErr.TwoFactorRequired() {
					if otpChannel != "" {
						if sendErr := a.session.SendOTP(cmd.Context(), email, otpChannel); sendErr != nil {
							return sendErr
						}
						cmd.Printf("A one-time passcode was sent via %s.\n", otpChannel)
					}
					otp = prompt(cmd, reader, "One-time passcode: ")
					profile, err = a.session.Login(cmd.Context(), email, password, otp)
				}
				if err != nil {
					return err
				}
			}

			cmd.Printf("Logged in as %s (%s)\n", profile.FullName(), profile.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	cmd.Flags().StringVar(&otp, "otp", "", "one-time passcode for two-factor accounts")
	cmd.Flags().StringVar(&otpChannel, "otp-channel", "", "deliver a passcode before prompting (email or sms)")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			a.session.Logout()
			cmd.Println("Logged out.")
			return nil
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			profile, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Printf("%s <%s>\n", profile.FullName(), profile.Email)
			cmd.Printf("Role: %s\n", profile.Role)
			if profile.EmployeeID != nil {
				cmd.Printf("Employee ID: %d\n", *profile.EmployeeID)
			}
			if info, err := a.session.TokenInfo(); err == nil && info.ExpiresAt != nil {
				cmd.Printf("Token expires: %s\n", info.ExpiresAt.Time.Local())
			}
			return nil
		},
	}
}

func prompt(cmd *cobra.Command, reader *bufio.Reader, label string) string {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
