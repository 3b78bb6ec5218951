package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kirilengovski/snowflake-oauth-test/internal/auth"
)

func newTokenCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "OAuth token operations",
		Long:  `Commands for acquiring and inspecting Azure AD access tokens.`,
	}

	cmd.AddCommand(
		newTokenGetCmd(opts),
		newTokenStatusCmd(opts),
	)

	return cmd
}

func newTokenGetCmd(opts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Acquire an access token and print it",
		Long: `Acquire an OAuth access token for the configured service principal and
print it to stdout, suitable for piping into other tools.

Example:
  snowflake-oauth-test token get
  snowflake-oauth-test token get --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			authenticator, err := newAuthenticator(opts)
			if err != nil {
				return err
			}
			token, err := authenticator.GetToken(cmd.Context(), force)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Acquire a fresh token even if a cached one is valid")

	return cmd
}

func newTokenStatusCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Acquire a token and show its lifecycle details",
		Long: `Acquire an access token and display the cached credential's state:
expiry (with the safety margin applied), remaining lifetime, and, when the
token is a JWT, its decoded claims.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenStatus(cmd, opts)
		},
	}
	return cmd
}

func runTokenStatus(cmd *cobra.Command, opts *RootOptions) error {
	out := cmd.OutOrStdout()

	authenticator, err := newAuthenticator(opts)
	if err != nil {
		return err
	}

	token, err := authenticator.GetToken(cmd.Context(), false)
	if err != nil {
		return err
	}

	info := authenticator.TokenInfo()

	fmt.Fprintln(out, "Token Status")
	fmt.Fprintln(out, "============")
	fmt.Fprintln(out)
	if info.Valid {
		color.New(color.FgGreen).Fprintln(out, "Status:  Valid")
	} else {
		color.New(color.FgRed).Fprintln(out, "Status:  Expired")
	}
	fmt.Fprintf(out, "Expires: %s (%s remaining, 300s safety margin applied)\n",
		info.ExpiresAt.Format(time.RFC3339), formatDuration(info.ExpiresIn))

	claims, err := auth.DecodeClaims(token)
	if err != nil {
		// Opaque token: nothing more to display.
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Decoded claims (unverified):")
	if claims.Issuer != "" {
		fmt.Fprintf(out, "  Issuer:   %s\n", claims.Issuer)
	}
	if len(claims.Audience) > 0 {
		fmt.Fprintf(out, "  Audience: %s\n", strings.Join(claims.Audience, ", "))
	}
	if claims.AppID != "" {
		fmt.Fprintf(out, "  App ID:   %s\n", claims.AppID)
	}
	if claims.TenantID != "" {
		fmt.Fprintf(out, "  Tenant:   %s\n", claims.TenantID)
	}
	if len(claims.Roles) > 0 {
		fmt.Fprintf(out, "  Roles:    %s\n", strings.Join(claims.Roles, ", "))
	}
	if !claims.Expiry.IsZero() {
		fmt.Fprintf(out, "  Expiry:   %s (server-declared, before margin)\n", claims.Expiry.Format(time.RFC3339))
	}
	return nil
}

// newAuthenticator resolves the config and builds an authenticator, failing
// with a UserError when required OAuth settings are missing.
func newAuthenticator(opts *RootOptions) (*auth.Authenticator, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, err
	}
	if missing := cfg.ValidateOAuth(); len(missing) > 0 {
		return nil, UserErr(fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", ")))
	}
	return auth.NewWithLogger(cfg.OAuthCredentials(), newLogger(opts.Debug)), nil
}

// newLogger returns a debug-level stderr logger when debug is set, and a
// discard logger otherwise.
func newLogger(debug bool) *slog.Logger {
	if debug {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if minutes > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%d hours", hours)
}
