package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/iwvelando/construction-forecast/internal/config"
	"github.com/iwvelando/construction-forecast/internal/store"
	"github.com/iwvelando/construction-forecast/pkg/constants"
	"github.com/iwvelando/construction-forecast/pkg/params"
	"github.com/iwvelando/construction-forecast/pkg/project"
	"github.com/iwvelando/construction-forecast/pkg/reference"
	"github.com/iwvelando/construction-forecast/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// resolveStorePath picks the database path: flag, then environment, then
// the loaded configuration, then the default.
func resolveStorePath(opts *rootOptions, conf *config.Configuration) string {
	if opts.storePath != "" {
		return opts.storePath
	}
	if env := os.Getenv(constants.EnvPrefix + "_STORE_PATH"); env != "" {
		return env
	}
	if conf != nil && conf.Store.Path != "" {
		return conf.Store.Path
	}
	return constants.DefaultStorePath
}

// loadOptionalConfig loads the project file when there is one. A missing
// file is only an error when --config names it explicitly.
func loadOptionalConfig(cmd *cobra.Command, opts *rootOptions) (*config.Configuration, error) {
	if _, err := os.Stat(opts.configPath); errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return nil, nil
	}
	conf, err := config.LoadConfiguration(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
	}
	return conf, nil
}

// projectSession bundles what every project subcommand needs. conf is nil
// when no project file was found.
type projectSession struct {
	logger *zap.Logger
	conf   *config.Configuration
	store  *store.Store
}

func openProjectSession(cmd *cobra.Command, opts *rootOptions) (*projectSession, error) {
	conf, err := loadOptionalConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	logging := config.LoggingConfig{}
	if conf != nil {
		logging = conf.Logging
	}
	logger, err := initializeLogger(logging, opts.logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	st, err := store.Open(resolveStorePath(opts, conf), logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("opening project store: %w", err)
	}
	return &projectSession{logger: logger, conf: conf, store: st}, nil
}

func (s *projectSession) Close() {
	_ = s.store.Close()
	_ = s.logger.Sync()
}

// requireConfig returns the project file for commands that read inputs from it.
func (s *projectSession) requireConfig(opts *rootOptions) (*config.Configuration, error) {
	if s.conf == nil {
		return nil, fmt.Errorf("no project file found at %s", opts.configPath)
	}
	return s.conf, nil
}

// tables returns the reference tables the project file selects, or the
// embedded defaults without one.
func (s *projectSession) tables() (*reference.Tables, error) {
	if s.conf == nil {
		return reference.Default()
	}
	return s.conf.LoadTables()
}

// resolveProjectID accepts a full id or an unambiguous prefix of one.
func resolveProjectID(ctx context.Context, st *store.Store, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("project ID is required")
	}

	projects, err := st.List(ctx)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, p := range projects {
		if p.ID == input {
			return p.ID, nil
		}
		if strings.HasPrefix(p.ID, input) {
			matches = append(matches, p.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("project %q: %w", input, store.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("project ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

// withSavedProject opens a session, resolves id and hands the project to fn.
func withSavedProject(cmd *cobra.Command, opts *rootOptions, id string, fn func(*projectSession, *store.SavedProject) error) error {
	session, err := openProjectSession(cmd, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	resolved, err := resolveProjectID(cmd.Context(), session.store, id)
	if err != nil {
		return err
	}
	p, err := session.store.Get(cmd.Context(), resolved)
	if err != nil {
		return err
	}
	return fn(session, p)
}

func newProjectCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage saved projects",
	}

	cmd.AddCommand(
		newProjectSaveCmd(opts),
		newProjectUpdateCmd(opts),
		newProjectListCmd(opts),
		newProjectShowCmd(opts),
		newProjectDeleteCmd(opts),
		newProjectCalculateCmd(opts),
	)

	return cmd
}

func newProjectSaveCmd(opts *rootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the project file's inputs and overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openProjectSession(cmd, opts)
			if err != nil {
				return err
			}
			defer session.Close()

			conf, err := session.requireConfig(opts)
			if err != nil {
				return err
			}
			in, overrides, err := projectInputs(conf)
			if err != nil {
				return err
			}

			if name == "" {
				name = conf.Project.Name
			}
			saved, err := session.store.Save(cmd.Context(), name, in, overrides)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved project %s [%s]\n", saved.Name, saved.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "project name (defaults to the name in the project file)")

	return cmd
}

func newProjectUpdateCmd(opts *rootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Replace a saved project's inputs and overrides with the project file's",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSavedProject(cmd, opts, args[0], func(session *projectSession, p *store.SavedProject) error {
				conf, err := session.requireConfig(opts)
				if err != nil {
					return err
				}
				in, overrides, err := projectInputs(conf)
				if err != nil {
					return err
				}

				if name != "" {
					p.Name = name
				}
				p.Inputs = in
				p.Overrides = overrides
				if err := session.store.Update(cmd.Context(), p); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Updated project %s [%s]\n", p.Name, p.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new project name (keeps the saved name when empty)")

	return cmd
}

// projectInputs converts and validates the inputs of a project file.
func projectInputs(conf *config.Configuration) (project.Inputs, params.Overrides, error) {
	in, err := conf.Inputs()
	if err != nil {
		return project.Inputs{}, nil, err
	}
	overrides, err := conf.ParsedOverrides()
	if err != nil {
		return project.Inputs{}, nil, err
	}
	if err := validation.ValidateInputs(in).Err(); err != nil {
		return project.Inputs{}, nil, err
	}
	return in, overrides, nil
}

func newProjectListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openProjectSession(cmd, opts)
			if err != nil {
				return err
			}
			defer session.Close()

			projects, err := session.store.List(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(projects) == 0 {
				fmt.Fprintln(w, "No projects found.")
				return nil
			}

			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "ID\tNAME\tLOCATION\tTYPE\tQUALITY\tUPDATED\n")
			for _, p := range projects {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					p.ID[:8], p.Name, p.Inputs.Location, p.Inputs.ProjectType, p.Inputs.QualityLevel,
					p.UpdatedAt.Format(constants.DateLayout))
			}
			return tw.Flush()
		},
	}
}

func newProjectShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a saved project as a project file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSavedProject(cmd, opts, args[0], func(_ *projectSession, p *store.SavedProject) error {
				overrides := make(map[string]*float64, len(p.Overrides))
				for id, v := range p.Overrides {
					value := v
					overrides[string(id)] = &value
				}
				doc := struct {
					ID        string               `json:"id"`
					Project   config.ProjectConfig `json:"project"`
					Overrides map[string]*float64  `json:"overrides,omitempty"`
				}{
					ID:        p.ID,
					Project:   config.FromInputs(p.Name, p.Inputs),
					Overrides: overrides,
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			})
		},
	}
}

func newProjectDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a saved project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSavedProject(cmd, opts, args[0], func(session *projectSession, p *store.SavedProject) error {
				if err := session.store.Delete(cmd.Context(), p.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", p.ID)
				return nil
			})
		},
	}
}

func newProjectCalculateCmd(opts *rootOptions) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "calculate ID",
		Short: "Run the feasibility calculation for a saved project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSavedProject(cmd, opts, args[0], func(session *projectSession, p *store.SavedProject) error {
				configured := ""
				if session.conf != nil {
					configured = session.conf.Output.Format
				}
				format := resolveOutputFormat(configured, outputFormat)
				if err := validation.ValidateOutputFormat(format); err != nil {
					return err
				}
				tables, err := session.tables()
				if err != nil {
					return err
				}
				return calculateAndWrite(cmd.OutOrStdout(), session.logger, tables, p.Inputs, p.Overrides, format)
			})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "", "output format: pretty, csv, json")

	return cmd
}
