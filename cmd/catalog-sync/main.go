// Package main runs the catalog services. Each subcommand starts one process:
//
//	catalog-sync catalog          product API and outbox relay
//	catalog-sync cart [--migrate] cart API and product.removed consumer
//	catalog-sync media            media.removed consumer
//	catalog-sync search           search projection consumer
//	catalog-sync migrate cart     cart schema migrations
package main

import (
	"fmt"
	"os"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configFile string
}

func (f *rootFlags) coreOptions() []core.Option {
	if f.configFile == "" {
		return nil
	}
	return []core.Option{core.WithConfigFile(f.configFile)}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "catalog-sync",
		Short:         "Product catalog and the services that follow it",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "YAML config file (defaults to ./configs/config.$APP_ENV.yaml)")

	rootCmd.AddCommand(
		newServiceCmd("catalog", "Serve the product API and relay the outbox", flags, catalogApp),
		newCartCmd(flags),
		newServiceCmd("media", "Collect media the catalog no longer references", flags, mediaApp),
		newServiceCmd("search", "Project products into Elasticsearch", flags, searchApp),
		newMigrateCmd(flags),
	)

	return rootCmd
}

func newServiceCmd(name, short string, flags *rootFlags, app func(*rootFlags) fx.Option) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(app(flags))
		},
	}
}

func newCartCmd(flags *rootFlags) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Serve the cart API and drop removed products from carts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if migrate {
				if err := migrateCart(flags); err != nil {
					return err
				}
			}
			return run(cartApp(flags))
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending cart migrations before starting")

	return cmd
}

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "cart",
		Short: "Apply pending cart migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrateCart(flags)
		},
	})
	return cmd
}
