package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kirilengovski/snowflake-oauth-test/internal/auth"
	"github.com/kirilengovski/snowflake-oauth-test/internal/warehouse"
)

type testOptions struct {
	suitePath string
	showToken bool
}

func newTestCmd(opts *RootOptions) *cobra.Command {
	testOpts := &testOptions{}

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run an end-to-end OAuth connection test",
		Long: `Validate the configuration, acquire an OAuth access token from Azure AD,
open a Snowflake session with it, and run verification queries.

Example:
  # Run the built-in checks
  snowflake-oauth-test test

  # Run checks from a YAML suite file
  snowflake-oauth-test test --suite checks.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnectionTest(cmd.Context(), cmd.OutOrStdout(), opts, testOpts)
		},
	}

	cmd.Flags().StringVar(&testOpts.suitePath, "suite", "", "YAML file with verification queries (default: built-in checks)")
	cmd.Flags().BoolVar(&testOpts.showToken, "show-token", false, "Print the acquired access token")

	return cmd
}

func runConnectionTest(ctx context.Context, out io.Writer, rootOpts *RootOptions, opts *testOptions) error {
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	fmt.Fprintln(out, "Snowflake OAuth Connection Test")
	fmt.Fprintln(out, "===============================")
	fmt.Fprintln(out)

	// Stage 1: configuration.
	cfg, err := resolveConfig(rootOpts)
	if err != nil {
		return err
	}
	if missing := cfg.Validate(); len(missing) > 0 {
		bad.Fprintln(out, "✗ configuration incomplete")
		return UserErr(fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", ")))
	}
	ok.Fprintln(out, "✓ configuration valid")
	printConnectionParams(out, cfg.ConnectionParams())

	// Stage 2: token acquisition.
	authenticator := auth.NewWithLogger(cfg.OAuthCredentials(), newLogger(rootOpts.Debug))
	token, err := authenticator.GetToken(ctx, false)
	if err != nil {
		bad.Fprintln(out, "✗ token acquisition failed")
		return err
	}
	info := authenticator.TokenInfo()
	ok.Fprintf(out, "✓ access token acquired (expires %s, %s remaining)\n",
		info.ExpiresAt.Format(time.RFC3339), formatDuration(info.ExpiresIn))
	if opts.showToken {
		fmt.Fprintf(out, "  token: %s\n", token)
	}

	// Stage 3: verification queries.
	suite := warehouse.DefaultSuite()
	if opts.suitePath != "" {
		suite, err = warehouse.LoadSuite(opts.suitePath)
		if err != nil {
			return UserErr(err)
		}
	}

	client, err := warehouse.NewClient(warehouse.Options{
		Account:   cfg.SnowflakeAccount,
		Role:      cfg.SnowflakeRole,
		Warehouse: cfg.SnowflakeWarehouse,
		Database:  cfg.SnowflakeDatabase,
		Schema:    cfg.SnowflakeSchema,
		Debug:     rootOpts.Debug,
	}, authenticator)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	passed := 0
	for _, check := range suite.Checks {
		result, err := client.Execute(ctx, check.Statement)
		if err != nil {
			bad.Fprintf(out, "✗ %s: %v\n", check.Name, err)
			continue
		}
		ok.Fprintf(out, "✓ %s\n", check.Name)
		printFirstRow(out, result)
		passed++
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Summary: %d/%d checks passed\n", passed, len(suite.Checks))
	if passed != len(suite.Checks) {
		return fmt.Errorf("%d of %d checks failed", len(suite.Checks)-passed, len(suite.Checks))
	}
	return nil
}

// printConnectionParams lists the session parameters in a stable order,
// without secrets (the params map never contains any).
func printConnectionParams(out io.Writer, params map[string]string) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %s: %s\n", k, params[k])
	}
}

// printFirstRow shows the first result row as column=value pairs.
func printFirstRow(out io.Writer, result *warehouse.Result) {
	if len(result.Rows) == 0 {
		return
	}
	row := result.Rows[0]
	for i, col := range result.Columns {
		if i >= len(row) {
			break
		}
		fmt.Fprintf(out, "    %s = %s\n", col, row[i])
	}
}
