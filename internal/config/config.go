// Package config loads the employer identity and run settings from a YAML
// file, EFW2_* environment variables and command-line flags.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mminer237/efw2-maker/internal/adapters/efw2/spec"
	"github.com/mminer237/efw2-maker/internal/domain"
	"github.com/mminer237/efw2-maker/internal/logging"
)

// FileName is the sidecar config looked up next to the executable.
const FileName = "efw2.yaml"

// EnvPrefix prefixes environment overrides, e.g. EFW2_EMPLOYER_EIN.
const EnvPrefix = "EFW2"

// Config holds all configuration for efw2.
type Config struct {
	Employer Employer       `mapstructure:"employer"`
	Layout   Layout         `mapstructure:"layout"`
	Logging  logging.Config `mapstructure:"logging"`
	Archive  Archive        `mapstructure:"archive"`
}

// Employer mirrors domain.EmployerConfig with YAML keys.
type Employer struct {
	EIN               string `mapstructure:"ein"`
	UserID            string `mapstructure:"user_id"`
	VendorCode        string `mapstructure:"vendor_code"`
	SoftwareCode      string `mapstructure:"software_code"`
	Name              string `mapstructure:"name"`
	Address1          string `mapstructure:"address_1"`
	Address2          string `mapstructure:"address_2"`
	City              string `mapstructure:"city"`
	State             string `mapstructure:"state"`
	ZIP               string `mapstructure:"zip"`
	ZIPExtension      string `mapstructure:"zip_extension"`
	ContactName       string `mapstructure:"contact_name"`
	ContactPhone      string `mapstructure:"contact_phone"`
	PhoneExtension    string `mapstructure:"phone_extension"`
	ContactEmail      string `mapstructure:"contact_email"`
	ContactFax        string `mapstructure:"contact_fax"`
	PreparerCode      string `mapstructure:"preparer_code"`
	EmploymentCode    string `mapstructure:"employment_code"`
	KindOfEmployer    string `mapstructure:"kind_of_employer"`
	ThirdPartySickPay bool   `mapstructure:"third_party_sick_pay"`
}

// Layout selects the record layout variant. Empty values mean the SSA
// publication: space padding, location address before delivery address,
// blank country code.
type Layout struct {
	Pad          string `mapstructure:"pad"`           // space, nul
	AddressOrder string `mapstructure:"address_order"` // location-first, delivery-first
	CountryCode  string `mapstructure:"country_code"`
}

// Archive configures the optional SQLite filing archive.
type Archive struct {
	Path string `mapstructure:"path"`
}

// keys lists every setting so that AutomaticEnv can override keys the YAML
// file leaves out.
var keys = []string{
	"employer.ein", "employer.user_id", "employer.vendor_code", "employer.software_code",
	"employer.name", "employer.address_1", "employer.address_2", "employer.city",
	"employer.state", "employer.zip", "employer.zip_extension",
	"employer.contact_name", "employer.contact_phone", "employer.phone_extension",
	"employer.contact_email", "employer.contact_fax",
	"employer.preparer_code", "employer.employment_code", "employer.kind_of_employer",
	"employer.third_party_sick_pay",
	"layout.pad", "layout.address_order", "layout.country_code",
	"logging.level", "logging.format", "logging.outputFile",
	"archive.path",
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"log-level": "logging.level",
	"archive":   "archive.path",
}

// DefaultPath returns efw2.yaml in the executable's directory, falling back
// to the working directory when the executable cannot be located.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return FileName
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), FileName)
}

// Load reads the YAML file at path (DefaultPath when empty), applies EFW2_*
// environment overrides and any of flags that were set, and validates the
// result. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		v.SetDefault(k, "")
	}
	v.SetDefault("employer.third_party_sick_pay", false)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, &domain.ConfigurationError{Field: name, Reason: "cannot bind flag", Err: err}
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil, &domain.ConfigurationError{Field: "config file", Reason: path + " not found", Err: err}
		}
		return nil, &domain.ConfigurationError{Field: "config file", Reason: "cannot read " + path, Err: err}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, &domain.ConfigurationError{Field: "config file", Reason: "unable to decode", Err: err}
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Validate checks the employer identity and the layout variant.
func (c *Config) Validate() error {
	if err := c.EmployerConfig().WithDefaults().Validate(); err != nil {
		return err
	}
	if _, err := c.Variant(); err != nil {
		return err
	}
	return nil
}

// EmployerConfig converts the YAML section into the domain type.
func (c *Config) EmployerConfig() domain.EmployerConfig {
	e := c.Employer
	return domain.EmployerConfig{
		EIN:               strings.TrimSpace(e.EIN),
		UserID:            strings.TrimSpace(e.UserID),
		VendorCode:        strings.TrimSpace(e.VendorCode),
		SoftwareCode:      strings.TrimSpace(e.SoftwareCode),
		Name:              strings.TrimSpace(e.Name),
		AddressLine1:      strings.TrimSpace(e.Address1),
		AddressLine2:      strings.TrimSpace(e.Address2),
		City:              strings.TrimSpace(e.City),
		State:             strings.TrimSpace(e.State),
		ZIP:               strings.TrimSpace(e.ZIP),
		ZIPExtension:      strings.TrimSpace(e.ZIPExtension),
		ContactName:       strings.TrimSpace(e.ContactName),
		ContactPhone:      strings.TrimSpace(e.ContactPhone),
		PhoneExtension:    strings.TrimSpace(e.PhoneExtension),
		ContactEmail:      strings.TrimSpace(e.ContactEmail),
		ContactFax:        strings.TrimSpace(e.ContactFax),
		PreparerCode:      strings.TrimSpace(e.PreparerCode),
		EmploymentCode:    strings.TrimSpace(e.EmploymentCode),
		KindOfEmployer:    strings.TrimSpace(e.KindOfEmployer),
		ThirdPartySickPay: e.ThirdPartySickPay,
	}
}

// Variant parses the layout section.
func (c *Config) Variant() (spec.Variant, error) {
	v, err := spec.ParseVariant(c.Layout.Pad, c.Layout.AddressOrder, c.Layout.CountryCode)
	if err != nil {
		return spec.SSA, &domain.ConfigurationError{Field: "layout", Err: err}
	}
	return v, nil
}
