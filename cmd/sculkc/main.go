// Command sculkc lowers a JSON-encoded AST bundle into a tree of
// .mcfunction files. It is the command-line entry point for
// internal/codegen, mirroring plaid.go's role as a thin urfave/cli
// wrapper around a frontend/backend pair that does all the real work.
package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/carbonsmasher-forge/sculkgen/ast"
	"github.com/carbonsmasher-forge/sculkgen/internal/codegen"
	"github.com/carbonsmasher-forge/sculkgen/internal/config"
)

func main() {
	app := &cli.App{
		Name:  "sculkc",
		Usage: "lower a compiled sculk bundle into command functions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a YAML config file"},
			&cli.StringFlag{Name: "namespace", Aliases: []string{"n"}, Usage: "output namespace (overrides config)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output directory (overrides config)"},
			&cli.StringFlag{Name: "entry", Usage: "entry function name (overrides config)"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "enable debug logging"},
		},
		ArgsUsage: "<bundle.json>",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		zap.S().Errorw("sculkc failed", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log, err := newLogger(c.Bool("verbose"))
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	if c.Args().Len() < 1 {
		return errors.New("sculkc: missing required <bundle.json> argument")
	}
	bundlePath := c.Args().First()

	fileCfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	cfg := fileCfg.Overlay(config.Config{
		Namespace: c.String("namespace"),
		OutputDir: c.String("out"),
		Entry:     c.String("entry"),
	})
	cfg, err = cfg.Validate()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(bundlePath)
	if err != nil {
		return errors.Wrapf(err, "sculkc: reading %s", bundlePath)
	}

	namespace, program, table, pool, err := ast.DecodeEnvelope(data)
	if err != nil {
		return err
	}
	if cfg.Namespace != "" {
		namespace = cfg.Namespace
	}

	log.Infow("compiling", "namespace", namespace, "functions", len(table), "bundle", bundlePath)

	gen := codegen.NewGenerator(namespace, table, pool, log)
	ready, err := gen.Generate(program, cfg.Entry)
	if err != nil {
		return errors.Wrap(err, "sculkc: codegen failed")
	}

	if err := codegen.Output(ready, namespace, cfg.OutputDir); err != nil {
		return errors.Wrap(err, "sculkc: writing output")
	}

	log.Infow("done", "functions_written", len(ready), "dir", cfg.OutputDir)
	return nil
}

func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "sculkc: building logger")
	}
	return logger.Sugar(), nil
}
