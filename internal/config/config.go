// Package config defines the data structures related to configuration and
// includes functions for loading a project file and converting it into
// calculation inputs.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/construction-forecast/pkg/constants"
	"github.com/iwvelando/construction-forecast/pkg/datetime"
	"github.com/iwvelando/construction-forecast/pkg/params"
	"github.com/iwvelando/construction-forecast/pkg/project"
	"github.com/iwvelando/construction-forecast/pkg/reference"
	"github.com/spf13/viper"
)

// DateLayout is the format expected in config files for start dates.
const DateLayout = constants.DateLayout

// Configuration holds all configuration for construction-forecast.
type Configuration struct {
	Project   ProjectConfig       `yaml:"project" json:"project"`
	Overrides map[string]*float64 `yaml:"overrides,omitempty" json:"overrides,omitempty"`
	// Tables optionally points at a YAML file replacing the embedded reference tables.
	Tables  string        `yaml:"tables,omitempty" json:"tables,omitempty"`
	Store   StoreConfig   `yaml:"store,omitempty" json:"-"`
	Logging LoggingConfig `yaml:"logging,omitempty" json:"-"`
	Output  OutputConfig  `yaml:"output,omitempty" json:"-"`
}

// ProjectConfig is the project section of a config file.
type ProjectConfig struct {
	Name         string  `yaml:"name,omitempty" json:"name,omitempty"`
	Location     string  `yaml:"location" json:"location"`
	LandSize     float64 `yaml:"landSize" json:"landSize"`
	EMSAL        float64 `yaml:"emsal" json:"emsal"`
	TAKS         float64 `yaml:"taks,omitempty" json:"taks,omitempty"`
	Cikma        float64 `yaml:"cikma,omitempty" json:"cikma,omitempty"`
	ProjectType  string  `yaml:"projectType" json:"projectType"`
	QualityLevel string  `yaml:"qualityLevel" json:"qualityLevel"`
	TotalSqm     float64 `yaml:"totalSqm,omitempty" json:"totalSqm,omitempty"`
	// UnitMix lists the planned unit types; empty selects the default mix.
	UnitMix []UnitConfig `yaml:"unitMix,omitempty" json:"unitMix,omitempty"`

	LandCost                    *float64 `yaml:"landCost,omitempty" json:"landCost,omitempty"`
	UnitCount                   *int     `yaml:"unitCount,omitempty" json:"unitCount,omitempty"`
	ConstructionMonths          *int     `yaml:"constructionMonths,omitempty" json:"constructionMonths,omitempty"`
	StartDate                   string   `yaml:"startDate,omitempty" json:"startDate,omitempty"`
	CostDistribution            string   `yaml:"costDistribution,omitempty" json:"costDistribution,omitempty"`
	MonthlyInflationRate        *float64 `yaml:"monthlyInflationRate,omitempty" json:"monthlyInflationRate,omitempty"`
	MonthlyAppreciationRate     *float64 `yaml:"monthlyAppreciationRate,omitempty" json:"monthlyAppreciationRate,omitempty"`
	MonthsToSellAfterCompletion *int     `yaml:"monthsToSellAfterCompletion,omitempty" json:"monthsToSellAfterCompletion,omitempty"`
	MonthlyDiscountRate         *float64 `yaml:"monthlyDiscountRate,omitempty" json:"monthlyDiscountRate,omitempty"`
}

// UnitConfig is one unit type of the unit mix.
type UnitConfig struct {
	Name    string  `yaml:"name,omitempty" json:"name,omitempty"`
	NetSize float64 `yaml:"netSize" json:"netSize"`
	Count   int     `yaml:"count" json:"count"`
}

// StoreConfig locates the saved-project database.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// newViper returns a viper instance with the defaults and the environment
// binding shared by every loader. CONSTRUCTION_FORECAST_OUTPUT_FORMAT
// overrides output.format, and so on.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("store.path", constants.DefaultStorePath)
	v.SetDefault("tables", "")
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r,
// e.g. an uploaded file.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// Inputs converts the project section into calculation inputs. Enumerations
// and dates are parsed here; range checks are left to the validation package.
func (c *Configuration) Inputs() (project.Inputs, error) {
	p := c.Project

	projectType, err := project.ParseType(p.ProjectType)
	if err != nil {
		return project.Inputs{}, err
	}
	quality, err := project.ParseQualityLevel(p.QualityLevel)
	if err != nil {
		return project.Inputs{}, err
	}
	start, err := datetime.ParseOptionalDate(p.StartDate)
	if err != nil {
		return project.Inputs{}, fmt.Errorf("invalid startDate: %w", err)
	}

	in := project.Inputs{
		Location:                    p.Location,
		LandSize:                    p.LandSize,
		EMSAL:                       p.EMSAL,
		TAKS:                        p.TAKS,
		Cikma:                       p.Cikma,
		ProjectType:                 projectType,
		QualityLevel:                quality,
		TotalSqm:                    p.TotalSqm,
		UnitMix:                     unitMix(p.UnitMix),
		LandCost:                    p.LandCost,
		UnitCount:                   p.UnitCount,
		ConstructionMonths:          p.ConstructionMonths,
		StartDate:                   start,
		MonthlyInflationRate:        p.MonthlyInflationRate,
		MonthlyAppreciationRate:     p.MonthlyAppreciationRate,
		MonthsToSellAfterCompletion: p.MonthsToSellAfterCompletion,
		MonthlyDiscountRate:         p.MonthlyDiscountRate,
	}
	if strings.TrimSpace(p.CostDistribution) != "" {
		dist, err := project.ParseDistribution(p.CostDistribution)
		if err != nil {
			return project.Inputs{}, err
		}
		in.CostDistribution = &dist
	}
	return in.WithDerivedArea(), nil
}

// ParsedOverrides returns the typed overrides. Unknown parameter ids are an
// error; null values are skipped.
func (c *Configuration) ParsedOverrides() (params.Overrides, error) {
	return params.ParseNullableOverrides(c.Overrides)
}

// LoadTables returns the reference tables the configuration selects.
func (c *Configuration) LoadTables() (*reference.Tables, error) {
	if strings.TrimSpace(c.Tables) == "" {
		return reference.Default()
	}
	tables, err := reference.LoadFile(c.Tables)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference tables %s: %w", c.Tables, err)
	}
	return tables, nil
}

// FromInputs builds a project section from calculation inputs, the inverse
// of Inputs.
func FromInputs(name string, in project.Inputs) ProjectConfig {
	p := ProjectConfig{
		Name:                        name,
		Location:                    in.Location,
		LandSize:                    in.LandSize,
		EMSAL:                       in.EMSAL,
		TAKS:                        in.TAKS,
		Cikma:                       in.Cikma,
		ProjectType:                 string(in.ProjectType),
		QualityLevel:                string(in.QualityLevel),
		TotalSqm:                    in.TotalSqm,
		LandCost:                    in.LandCost,
		UnitCount:                   in.UnitCount,
		ConstructionMonths:          in.ConstructionMonths,
		MonthlyInflationRate:        in.MonthlyInflationRate,
		MonthlyAppreciationRate:     in.MonthlyAppreciationRate,
		MonthsToSellAfterCompletion: in.MonthsToSellAfterCompletion,
		MonthlyDiscountRate:         in.MonthlyDiscountRate,
	}
	if in.StartDate != nil {
		p.StartDate = in.StartDate.Format(DateLayout)
	}
	if in.CostDistribution != nil {
		p.CostDistribution = string(*in.CostDistribution)
	}
	for _, u := range in.UnitMix {
		p.UnitMix = append(p.UnitMix, UnitConfig{Name: u.Name, NetSize: u.NetSize, Count: u.Count})
	}
	return p
}

func unitMix(units []UnitConfig) project.UnitMix {
	if len(units) == 0 {
		return nil
	}
	mix := make(project.UnitMix, 0, len(units))
	for _, u := range units {
		mix = append(mix, project.UnitType{Name: u.Name, NetSize: u.NetSize, Count: u.Count})
	}
	return mix
}
