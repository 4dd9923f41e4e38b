package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	config "github.com/hanpama/querycost/internal/config"
	logger "github.com/hanpama/querycost/internal/logger"
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"schema":             "schema",
	"root":               "root",
	"operations":         "operations",
	"operations-out":     "operations",
	"fragments":          "fragments",
	"fragments-out":      "fragments",
	"out":                "output",
	"format":             "format",
	"concurrency":        "concurrency",
	"timeout":            "timeout",
	"placeholder":        "synth.placeholder",
	"max-depth":          "synth.max_depth",
	"classify":           "synth.classify",
	"default-field-cost": "cost.default_field_cost",
	"log-level":          "log.level",
	"log-env":            "log.env",
	"otel-endpoint":      "otel.endpoint",
	"otel-service":       "otel.service",
}

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     *zap.Logger
	out     io.Writer
}

// newRootCmd builds the command tree. If log is nil a logger is built from
// the configuration.
func newRootCmd(out io.Writer, log *zap.Logger) *cobra.Command {
	a := &app{v: config.New(), out: out, log: log}

	root := &cobra.Command{
		Use:   "querycost",
		Short: "Estimate the complexity of the GraphQL operations a client sends",
		Long: `querycost scores every query and mutation of a client codebase against a
GraphQL schema without executing them, and ranks them by complexity.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is ./querycost.yaml when present)")
	pf.String("log-level", "", "log level: debug, info, warn or error (default info)")
	pf.String("log-env", "", "log format: production (JSON) or development (console)")

	root.AddCommand(newAnalyzeCmd(a), newExtractCmd(a), newCatalogCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
			bindErr = a.v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return fmt.Errorf("bind flags: %w", bindErr)
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.log == nil {
		l, err := logger.New(logger.Environment(cfg.Log.Env), cfg.Log.Level)
		if err != nil {
			return err
		}
		a.log = l
	}
	return nil
}
