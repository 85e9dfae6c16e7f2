package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mminer237/efw2-maker/internal/adapters/efw2/spec"
	"github.com/mminer237/efw2-maker/internal/domain"
)

const validYAML = `
employer:
  ein: "12-3456789"
  user_id: ABCDEFGH
  name: Acme Corp
  address_1: 100 Main St
  address_2: Suite 200
  city: Springfield
  state: IL
  zip: "62701"
  contact_name: Jane Doe
  contact_phone: "(800) 555-1234"
  contact_email: jane@example.com
layout:
  pad: space
logging:
  level: warn
  format: json
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	conf, err := Load(writeConfig(t, validYAML), nil)
	require.NoError(t, err)

	e := conf.EmployerConfig()
	assert.Equal(t, "12-3456789", e.EIN)
	assert.Equal(t, "ABCDEFGH", e.UserID)
	assert.Equal(t, "Acme Corp", e.Name)
	assert.Equal(t, "100 Main St", e.AddressLine1)
	assert.Equal(t, "Suite 200", e.AddressLine2)
	assert.Equal(t, "62701", e.ZIP)
	assert.False(t, e.ThirdPartySickPay)
	assert.Equal(t, "warn", conf.Logging.Level)
	assert.Equal(t, "json", conf.Logging.Format)

	v, err := conf.Variant()
	require.NoError(t, err)
	assert.Equal(t, spec.SSA, v)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("EFW2_EMPLOYER_NAME", "Env Corp")
	t.Setenv("EFW2_ARCHIVE_PATH", "/tmp/filings.db")

	conf, err := Load(writeConfig(t, validYAML), nil)
	require.NoError(t, err)
	assert.Equal(t, "Env Corp", conf.Employer.Name)
	assert.Equal(t, "/tmp/filings.db", conf.Archive.Path)
}

func TestLoad_FlagOverride(t *testing.T) {
	fs := pflag.NewFlagSet("efw2", pflag.ContinueOnError)
	fs.String("log-level", "", "")
	fs.String("archive", "", "")
	require.NoError(t, fs.Parse([]string{"--log-level", "debug"}))

	conf, err := Load(writeConfig(t, validYAML), fs)
	require.NoError(t, err)
	assert.Equal(t, "debug", conf.Logging.Level)
	assert.Empty(t, conf.Archive.Path)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{
			name:  "short EIN",
			body:  "employer:\n  ein: 1234\n",
			field: "employer.ein",
		},
		{
			name: "user id length",
			body: `employer:
  ein: "123456789"
  user_id: ABC
`,
			field: "employer.user_id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body), nil)
			var cfgErr *domain.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "want ConfigurationError, got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestLoad_BadLayout(t *testing.T) {
	body := strings.Replace(validYAML, "pad: space", "pad: tab", 1)
	_, err := Load(writeConfig(t, body), nil)
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "want ConfigurationError, got %v", err)
	assert.Equal(t, "layout", cfgErr.Field)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "want ConfigurationError, got %v", err)
	assert.Equal(t, "config file", cfgErr.Field)
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, FileName, filepath.Base(DefaultPath()))
}
