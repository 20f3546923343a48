package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/iwvelando/construction-forecast/internal/config"
	"github.com/iwvelando/construction-forecast/pkg/constants"
	"github.com/iwvelando/construction-forecast/pkg/project"
	"github.com/iwvelando/construction-forecast/pkg/resolver"
	"github.com/iwvelando/construction-forecast/pkg/validation"
	"github.com/spf13/cobra"
)

func newParametersCmd(opts *rootOptions) *cobra.Command {
	var projectType, quality, location, tablesPath, outputFormat string

	cmd := &cobra.Command{
		Use:   "parameters",
		Short: "List the resolved calculation parameters for a tier and location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := project.ParseType(projectType)
			if err != nil {
				return err
			}
			q, err := project.ParseQualityLevel(quality)
			if err != nil {
				return err
			}
			format := resolveOutputFormat("", outputFormat)
			if err := validation.ValidateOutputFormat(format); err != nil {
				return err
			}

			conf := config.Configuration{Tables: tablesPath}
			tables, err := conf.LoadTables()
			if err != nil {
				return err
			}

			snapshot := resolver.New(tables, t).ResolveAll(q, project.NormalizeLocation(location), nil)
			w := cmd.OutOrStdout()

			switch format {
			case constants.OutputFormatJSON:
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(snapshot)
			case constants.OutputFormatCSV:
				fmt.Fprintln(w, "id,kind,value,source,min,max")
				for _, p := range snapshot.Parameters {
					minV, maxV := "", ""
					if p.Range != nil {
						minV, maxV = fmt.Sprint(p.Range.Min), fmt.Sprint(p.Range.Max)
					}
					fmt.Fprintf(w, "%s,%s,%v,%s,%s,%s\n", p.ID, p.Kind, p.Value, p.Source, minV, maxV)
				}
				return nil
			}

			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "PARAMETER\tVALUE\tSOURCE\tRANGE\n")
			for _, p := range snapshot.Parameters {
				rng := "-"
				if p.Range != nil {
					rng = fmt.Sprintf("%v - %v", p.Range.Min, p.Range.Max)
				}
				fmt.Fprintf(tw, "%s\t%v\t%s\t%s\n", p.Label, p.Value, p.Source, rng)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&projectType, "type", string(project.Apartment), "project type: apartment, villa")
	cmd.Flags().StringVar(&quality, "quality", string(project.Mid), "quality level: standard, mid, luxury")
	cmd.Flags().StringVar(&location, "location", "", "district key, e.g. konyaalti")
	cmd.Flags().StringVar(&tablesPath, "tables", "", "reference tables file replacing the embedded defaults")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "", "output format: pretty, csv, json")

	return cmd
}
