package main

import (
	"fmt"
	"io"

	"github.com/iwvelando/construction-forecast/internal/calculator"
	"github.com/iwvelando/construction-forecast/internal/config"
	"github.com/iwvelando/construction-forecast/pkg/constants"
	"github.com/iwvelando/construction-forecast/pkg/output"
	"github.com/iwvelando/construction-forecast/pkg/params"
	"github.com/iwvelando/construction-forecast/pkg/project"
	"github.com/iwvelando/construction-forecast/pkg/reference"
	"github.com/iwvelando/construction-forecast/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCalculateCmd(opts *rootOptions) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Run the feasibility calculation for a project file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.LoadConfiguration(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
			}

			logger, err := initializeLogger(conf.Logging, opts.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			format := resolveOutputFormat(conf.Output.Format, outputFormat)
			if err := validation.ValidateOutputFormat(format); err != nil {
				return err
			}

			in, err := conf.Inputs()
			if err != nil {
				return err
			}
			overrides, err := conf.ParsedOverrides()
			if err != nil {
				return err
			}
			tables, err := conf.LoadTables()
			if err != nil {
				return err
			}

			return calculateAndWrite(cmd.OutOrStdout(), logger, tables, in, overrides, format)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "", "output format override: pretty, csv, json")

	return cmd
}

// resolveOutputFormat applies the CLI override over the configured format.
func resolveOutputFormat(configured, override string) string {
	if override != "" {
		return override
	}
	if configured == "" {
		return constants.OutputFormatPretty
	}
	return configured
}

// calculateAndWrite validates the inputs, runs the pipeline and renders the
// results. Validation warnings are logged and included in the output.
func calculateAndWrite(w io.Writer, logger *zap.Logger, tables *reference.Tables, in project.Inputs, overrides params.Overrides, format string) error {
	report := validation.ValidateInputs(in)
	if err := report.Err(); err != nil {
		return err
	}

	calc := calculator.New(tables, calculator.WithLogger(logger))
	results := calc.Calculate(in, overrides)

	warnings := append([]string{}, report.Warnings...)
	warnings = append(warnings, validation.ValidateLocation(tables, in.Location)...)
	warnings = append(warnings, validation.ValidateParameterRanges(results.Snapshot())...)
	warnings = append(warnings, validation.ValidateUnitMix(results.Zoning)...)
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.calculate"),
		)
	}

	return output.Write(w, format, results, warnings)
}
