package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"ProductCatalog/internal/auth"
	"ProductCatalog/internal/catalog"
	"ProductCatalog/internal/config"
	"ProductCatalog/pkg/kit"
)

const serviceName = "catalog"

func newRootCmd() *cobra.Command {
	v := config.New()

	root := &cobra.Command{
		Use:          "catalog",
		Short:        "In-memory product catalog service",
		SilenceUsage: true,
	}
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return config.BindFlags(v, cmd.Flags())
	}

	root.PersistentFlags().String(config.FlagName(config.KeyLogLevel), "info", "log level: debug|info|warn|error")
	root.PersistentFlags().String(config.FlagName(config.KeyAddr), "http://localhost:8082", "catalog base URL for client commands")

	root.AddCommand(
		newServeCmd(v),
		newBoundsCmd(v),
		newGetCmd(v),
		newListCmd(v),
	)
	return root
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load(v)

			log := kit.NewLogger(serviceName, cfg.LogLevel)
			defer func() { _ = log.Sync() }()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			svc := catalog.NewService(catalog.Options{
				Bounds:   cfg.Bounds,
				Log:      log,
				Registry: reg,
			})

			h := catalog.NewHandler(&catalog.Server{Service: svc, Log: log}, catalog.HTTPDeps{
				Log:            log,
				Service:        serviceName,
				Registry:       reg,
				MetricsEnabled: cfg.MetricsToken != "",
				MetricsToken:   cfg.MetricsToken,
				Verifier:       auth.NewVerifier(cfg.JWTSecret).WithIssuer(cfg.JWTIssuer),
				WriteLimitMin:  cfg.WriteLimit,
				TrustForwarded: cfg.TrustForwarded,
			})

			log.Info("catalog ready",
				zap.String("instance_id", svc.InstanceID()),
				zap.Int("max_name_len", cfg.Bounds.MaxNameLen),
				zap.Int("max_description_len", cfg.Bounds.MaxDescriptionLen),
				zap.Int("max_stock", cfg.Bounds.MaxStock),
			)

			if err := kit.RunHTTPServer(cmd.Context(), ":"+cfg.Port, h, log, cfg.ShutdownTimeout); err != nil {
				log.Error("http server stopped", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().String(config.FlagName(config.KeyPort), "8082", "listen port")
	return cmd
}

func newBoundsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "bounds",
		Short: "Print the validation bounds resolved from the environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), config.Load(v).Bounds)
		},
	}
}

func newGetCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("bad id %q", args[0])
			}

			p, err := catalog.NewClient(config.Load(v).Addr).Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
}

func newListCmd(v *viper.Viper) *cobra.Command {
	var (
		name               string
		minPrice, maxPrice string
		inStock            bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var f catalog.Filter
			flags := cmd.Flags()

			if flags.Changed("name") {
				f.NameContains = &name
			}
			if flags.Changed("min-price") {
				d, err := decimal.NewFromString(minPrice)
				if err != nil {
					return fmt.Errorf("bad --min-price: %w", err)
				}
				f.MinPrice = &d
			}
			if flags.Changed("max-price") {
				d, err := decimal.NewFromString(maxPrice)
				if err != nil {
					return fmt.Errorf("bad --max-price: %w", err)
				}
				f.MaxPrice = &d
			}
			f.InStockOnly = inStock

			out, err := catalog.NewClient(config.Load(v).Addr).List(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "case-insensitive name substring")
	cmd.Flags().StringVar(&minPrice, "min-price", "", "inclusive lower price bound")
	cmd.Flags().StringVar(&maxPrice, "max-price", "", "inclusive upper price bound")
	cmd.Flags().BoolVar(&inStock, "in-stock", false, "only products with stock > 0")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
