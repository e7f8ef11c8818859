package config

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/larryleihua/spatio-temporal-factor-copula/pkg/stfc"
)

func validConfig() Config {
	return Config{
		Model:           "joint",
		DataFile:        "obs.csv",
		CentersFile:     "centers.csv",
		ParamsFile:      "params.yaml",
		Kcen:            3,
		Bandwidth:       0.5,
		QuadratureOrder: 25,
		OccurrenceRule:  "exact-one",
		Workers:         2,
	}
}

var _ = Describe("Config.Validate", func() {
	It("should accept a complete configuration", func() {
		cfg := validConfig()
		Expect(cfg.Validate()).To(Succeed())
	})

	DescribeTable("should reject invalid values",
		func(mutate func(*Config), substr string) {
			cfg := validConfig()
			mutate(&cfg)
			err := cfg.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(substr))
		},
		Entry("unknown model", func(c *Config) { c.Model = "gamma" }, "unknown model"),
		Entry("unknown occurrence rule", func(c *Config) { c.OccurrenceRule = "two" }, "unknown rule"),
		Entry("missing data file", func(c *Config) { c.DataFile = "" }, "data file"),
		Entry("missing centers file", func(c *Config) { c.CentersFile = "" }, "centers file"),
		Entry("missing params file", func(c *Config) { c.ParamsFile = "" }, "params file"),
		Entry("kcen below the unset marker", func(c *Config) { c.Kcen = -2 }, "kcen"),
		Entry("zero bandwidth", func(c *Config) { c.Bandwidth = 0 }, "g must be positive"),
		Entry("zero quadrature order", func(c *Config) { c.QuadratureOrder = 0 }, "nq"),
		Entry("zero workers", func(c *Config) { c.Workers = 0 }, "workers"),
		Entry("negative verbosity", func(c *Config) { c.Verbosity = -1 }, "verbosity"),
	)

	It("should not require nq outside the joint model", func() {
		cfg := validConfig()
		cfg.Model = "occurrence"
		cfg.QuadratureOrder = 0
		Expect(cfg.Validate()).To(Succeed())
	})
})

var _ = Describe("Load", func() {
	var (
		dir string
		v   *viper.Viper
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		v = NewViper()
	})

	It("should read a YAML config file on top of the defaults", func() {
		path := filepath.Join(dir, "stfc.yaml")
		Expect(os.WriteFile(path, []byte(`
model: occurrence
data: obs.csv
centers: centers.csv
params: params.yaml
g: 0.25
occurrence-rule: any-positive
`), 0o644)).To(Succeed())

		cfg, err := Load(v, path)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Model).To(Equal("occurrence"))
		Expect(cfg.Bandwidth).To(Equal(0.25))
		Expect(cfg.QuadratureOrder).To(Equal(25))
		Expect(cfg.Kcen).To(Equal(KcenFromCenters))
		Expect(cfg.Workers).To(Equal(1))
		Expect(cfg.CacheQuadrature).To(BeTrue())

		opts, err := cfg.EvaluatorOptions()
		Expect(err).NotTo(HaveOccurred())
		Expect(opts.OccurrenceRule).To(Equal(stfc.AnyPositive))
		Expect(opts.CacheQuadrature).To(BeTrue())
	})

	It("should let flags override the config file", func() {
		path := filepath.Join(dir, "stfc.yaml")
		Expect(os.WriteFile(path, []byte("data: a.csv\ncenters: b.csv\nparams: c.yaml\nnq: 10\n"), 0o644)).To(Succeed())

		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		Expect(BindFlags(v, fs)).To(Succeed())
		Expect(fs.Parse([]string{"--nq=7", "--workers=4", "-v", "2"})).To(Succeed())

		cfg, err := Load(v, path)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.QuadratureOrder).To(Equal(7))
		Expect(cfg.Workers).To(Equal(4))
		Expect(cfg.Verbosity).To(Equal(2))
		Expect(cfg.DataFile).To(Equal("a.csv"))
	})

	It("should read STFC_ environment variables", func() {
		for key, value := range map[string]string{
			"STFC_DATA":            "env.csv",
			"STFC_CENTERS":         "centers.csv",
			"STFC_PARAMS":          "params.yaml",
			"STFC_OCCURRENCE_RULE": "any-positive",
		} {
			Expect(os.Setenv(key, value)).To(Succeed())
			DeferCleanup(os.Unsetenv, key)
		}
		v = NewViper()

		cfg, err := Load(v, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.DataFile).To(Equal("env.csv"))
		Expect(cfg.OccurrenceRule).To(Equal("any-positive"))
	})

	It("should fail on a missing config file", func() {
		_, err := Load(v, filepath.Join(dir, "missing.yaml"))
		Expect(err).To(MatchError(ContainSubstring("reading config file")))
	})

	It("should fail validation when required files are absent", func() {
		_, err := Load(v, "")
		Expect(err).To(MatchError(ContainSubstring("invalid config")))
	})
})

var _ = Describe("Config.Hyperparams", func() {
	It("should take the center count when kcen is unset", func() {
		cfg := validConfig()
		cfg.Kcen = KcenFromCenters
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.Hyperparams(4)).To(Equal(stfc.Hyperparams{Kcen: 4, Bandwidth: 0.5, QuadratureOrder: 25}))
	})

	It("should keep an explicit kcen, including zero", func() {
		cfg := validConfig()
		cfg.Kcen = 3
		Expect(cfg.Hyperparams(4).Kcen).To(Equal(3))

		cfg.Kcen = 0
		Expect(cfg.Hyperparams(4).Kcen).To(Equal(0))
	})
})
