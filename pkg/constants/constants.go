// Package constants provides shared constants for the construction-forecast application.
package constants

// DateLayout is the format expected in config files for start dates and is
// also the output date format.
const DateLayout = "2006-01-02"

// MonthLayout is the format used when labelling monthly breakdown rows.
const MonthLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 kuruş)
	CurrencyTolerance = 0.01

	// DistributionTolerance is the allowed drift of a spend curve from 1.0
	DistributionTolerance = 1e-9

	// SCurveSteepness is the logistic growth rate used by the s-curve spend profile
	SCurveSteepness = 10.0

	// SCurveMidpoint is the normalized month at which s-curve spending peaks
	SCurveMidpoint = 0.5
)

// Timeline defaults
const (
	// DefaultMonthlyInflationRate is the construction cost inflation per month
	DefaultMonthlyInflationRate = 0.025

	// DefaultMonthlyAppreciationRate is the sale price appreciation per month
	DefaultMonthlyAppreciationRate = 0.015

	// DefaultMonthlyDiscountRate is the opportunity-cost discount per month
	DefaultMonthlyDiscountRate = 0.01

	// DefaultMonthsToSell is the waiting period between completion and sale
	DefaultMonthsToSell = 6

	// DefaultCostDistribution is the spend profile used when none is supplied
	DefaultCostDistribution = "s-curve"
)

// Construction duration banding
const (
	VillaSmallAreaLimit       = 500.0
	VillaSmallMonths          = 10
	VillaLargeMonths          = 14
	ApartmentSmallAreaLimit   = 3000.0
	ApartmentMediumAreaLimit  = 8000.0
	ApartmentSmallMonths      = 14
	ApartmentMediumMonths     = 18
	ApartmentLargeMonths      = 24
	DefaultConstructionMonths = 18
)

// Default unit mix: net area of each unit type in m² and the share of the
// saleable area it is planned on
const (
	OneBedroomNetSize   = 65.0
	OneBedroomShare     = 0.30
	TwoBedroomNetSize   = 100.0
	TwoBedroomShare     = 0.50
	ThreeBedroomNetSize = 140.0
	ThreeBedroomShare   = 0.20

	// VillaNetSize is the default net area of a villa unit in m²
	VillaNetSize = 250.0
)

// Location fallbacks used when a district is missing from the location table
const (
	FallbackLandPricePerSqm      = 25000.0
	FallbackApartmentPricePerSqm = 45000.0
	FallbackVillaPricePerSqm     = 60000.0
	FallbackLocationPremium      = 1.0
)

// Scenario perturbations
const (
	OptimisticRevenueFactor  = 1.08
	OptimisticCostFactor     = 0.92
	PessimisticRevenueFactor = 0.92
	PessimisticCostFactor    = 1.15
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "project.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultStorePath is the default location of the saved project database
	DefaultStorePath = "construction-forecast.db"

	// EnvPrefix is the prefix for environment overrides of configuration keys
	EnvPrefix = "CONSTRUCTION_FORECAST"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultCacheTTLSeconds is how long memoized results live in the cache
	DefaultCacheTTLSeconds = 900
)
