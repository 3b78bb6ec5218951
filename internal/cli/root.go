package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/kirilengovski/snowflake-oauth-test/internal/config"
)

type RootOptions struct {
	Profile   string
	Account   string
	Warehouse string
	Database  string
	Schema    string
	Role      string
	Debug     bool
}

var DebugEnabled bool

func NewRootCmd() *cobra.Command {
	opts := &RootOptions{}
	cmd := &cobra.Command{
		Use:           "snowflake-oauth-test",
		Short:         "Test Snowflake connections authenticated with an Azure AD service principal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			DebugEnabled = opts.Debug
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Profile, "profile", "p", "", "Connection profile name (from config.toml)")
	cmd.PersistentFlags().StringVarP(&opts.Account, "account", "a", "", "Snowflake account identifier")
	cmd.PersistentFlags().StringVarP(&opts.Warehouse, "warehouse", "w", "", "Warehouse to use for test queries")
	cmd.PersistentFlags().StringVarP(&opts.Database, "database", "d", "", "Target database")
	cmd.PersistentFlags().StringVarP(&opts.Schema, "schema", "s", "", "Target schema")
	cmd.PersistentFlags().StringVarP(&opts.Role, "role", "r", "", "Snowflake role to use")
	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(
		newTestCmd(opts),
		newTokenCmd(opts),
	)

	return cmd
}

// resolveConfig builds the effective config from profile, environment and
// CLI flags (flags win).
func resolveConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.Profile)
	if err != nil {
		return config.Config{}, UserErr(err)
	}
	if opts.Account != "" {
		cfg.SnowflakeAccount = opts.Account
	}
	if opts.Warehouse != "" {
		cfg.SnowflakeWarehouse = opts.Warehouse
	}
	if opts.Database != "" {
		cfg.SnowflakeDatabase = opts.Database
	}
	if opts.Schema != "" {
		cfg.SnowflakeSchema = opts.Schema
	}
	if opts.Role != "" {
		cfg.SnowflakeRole = opts.Role
	}
	return cfg, nil
}

func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		if DebugEnabled {
			fmt.Fprintln(os.Stderr, "DEBUG STACK TRACE:")
			fmt.Fprintln(os.Stderr, string(debug.Stack()))
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
