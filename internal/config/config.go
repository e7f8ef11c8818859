package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/larryleihua/spatio-temporal-factor-copula/pkg/stfc"
)

// Keys shared by viper, the YAML config file, STFC_* environment variables and CLI flags
const (
	KeyModel           = "model"
	KeyDataFile        = "data"
	KeyCentersFile     = "centers"
	KeyParamsFile      = "params"
	KeyKcen            = "kcen"
	KeyBandwidth       = "g"
	KeyQuadratureOrder = "nq"
	KeyOccurrenceRule  = "occurrence-rule"
	KeyCacheQuadrature = "cache-quadrature"
	KeyWorkers         = "workers"
	KeyVerbosity       = "verbosity"
	KeyMetrics         = "metrics"

	// KcenFromCenters leaves kcen unset so it follows the center table length
	KcenFromCenters = -1

	// EnvPrefix is prepended to upper-cased keys, e.g. STFC_NQ
	EnvPrefix = "STFC"
)

// Config is the resolved configuration of one CLI run
type Config struct {
	Model           string  `mapstructure:"model" yaml:"model"`
	DataFile        string  `mapstructure:"data" yaml:"data"`
	CentersFile     string  `mapstructure:"centers" yaml:"centers"`
	ParamsFile      string  `mapstructure:"params" yaml:"params"`
	Kcen            int     `mapstructure:"kcen" yaml:"kcen"`
	Bandwidth       float64 `mapstructure:"g" yaml:"g"`
	QuadratureOrder int     `mapstructure:"nq" yaml:"nq"`
	OccurrenceRule  string  `mapstructure:"occurrence-rule" yaml:"occurrence-rule"`
	CacheQuadrature bool    `mapstructure:"cache-quadrature" yaml:"cache-quadrature"`
	Workers         int     `mapstructure:"workers" yaml:"workers"`
	Verbosity       int     `mapstructure:"verbosity" yaml:"verbosity"`
	Metrics         bool    `mapstructure:"metrics" yaml:"metrics"`
}

// SetDefaults installs default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyModel, string(stfc.ModelJoint))
	v.SetDefault(KeyKcen, KcenFromCenters)
	v.SetDefault(KeyBandwidth, 1.0)
	v.SetDefault(KeyQuadratureOrder, 25)
	v.SetDefault(KeyOccurrenceRule, stfc.ExactOne.String())
	v.SetDefault(KeyCacheQuadrature, true)
	v.SetDefault(KeyWorkers, 1)
	v.SetDefault(KeyVerbosity, 0)
	v.SetDefault(KeyMetrics, false)
}

// BindFlags registers the CLI flags on fs and binds them to v
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.String(KeyModel, string(stfc.ModelJoint), "Likelihood to evaluate (occurrence, intensity, joint)")
	fs.String(KeyDataFile, "", "Observation table CSV (time,count,longitude,latitude)")
	fs.String(KeyCentersFile, "", "Kernel center table CSV (longitude,latitude)")
	fs.String(KeyParamsFile, "", "YAML file with parameter vectors under 'sets'")
	fs.Int(KeyKcen, KcenFromCenters, "Number of kernel centers (-1 uses the center table length)")
	fs.Float64(KeyBandwidth, 1.0, "Kernel bandwidth g")
	fs.Int(KeyQuadratureOrder, 25, "Gauss-Legendre order for the joint model")
	fs.String(KeyOccurrenceRule, stfc.ExactOne.String(), "Occurrence event rule (exact-one, any-positive)")
	fs.Bool(KeyCacheQuadrature, true, "Reuse quadrature rules across evaluations")
	fs.Int(KeyWorkers, 1, "Parameter sets evaluated concurrently")
	fs.IntP(KeyVerbosity, "v", 0, "Log verbosity (0 info, 1 debug, 2 trace)")
	fs.Bool(KeyMetrics, false, "Print evaluation metrics after the results")

	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// NewViper returns a viper instance with defaults and environment binding applied
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows; bind the rest so
	// Unmarshal sees values that arrive only through the environment
	for _, key := range []string{KeyDataFile, KeyCentersFile, KeyParamsFile, KeyKcen} {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the optional config file and decodes v into a validated Config
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks for invalid configuration values.
func (c *Config) Validate() error {
	if _, err := stfc.ParseModel(c.Model); err != nil {
		return err
	}
	if _, err := stfc.ParseOccurrenceRule(c.OccurrenceRule); err != nil {
		return err
	}
	if c.DataFile == "" {
		return fmt.Errorf("data file is required")
	}
	if c.CentersFile == "" {
		return fmt.Errorf("centers file is required")
	}
	if c.ParamsFile == "" {
		return fmt.Errorf("params file is required")
	}
	if c.Kcen < KcenFromCenters {
		return fmt.Errorf("kcen must be >= 0, or -1 to use the center count, got %d", c.Kcen)
	}
	if !(c.Bandwidth > 0) || math.IsInf(c.Bandwidth, 0) {
		return fmt.Errorf("g must be positive and finite, got %v", c.Bandwidth)
	}
	if c.Model == string(stfc.ModelJoint) && c.QuadratureOrder < 1 {
		return fmt.Errorf("nq must be >= 1 for the joint model, got %d", c.QuadratureOrder)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.Verbosity < 0 {
		return fmt.Errorf("verbosity must be >= 0, got %d", c.Verbosity)
	}
	return nil
}

// EvaluatorOptions converts the configuration into stfc evaluator options.
// Logger and Observer are left for the caller to fill in.
func (c *Config) EvaluatorOptions() (stfc.Options, error) {
	rule, err := stfc.ParseOccurrenceRule(c.OccurrenceRule)
	if err != nil {
		return stfc.Options{}, err
	}
	opts := stfc.DefaultOptions()
	opts.OccurrenceRule = rule
	opts.CacheQuadrature = c.CacheQuadrature
	opts.Workers = c.Workers
	return opts, nil
}

// Hyperparams returns the scalar hyperparameters. A kcen of KcenFromCenters
// takes the number of centers; any other value, 0 included, is kept as given
// so the evaluators can check it against the center table.
func (c *Config) Hyperparams(centers int) stfc.Hyperparams {
	kcen := c.Kcen
	if kcen == KcenFromCenters {
		kcen = centers
	}
	return stfc.Hyperparams{
		Kcen:            kcen,
		Bandwidth:       c.Bandwidth,
		QuadratureOrder: c.QuadratureOrder,
	}
}
