package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	Name    string        `envconfig:"NAME" required:"true"`
	Limit   int           `split_words:"true" default:"5"`
	Timeout time.Duration `split_words:"true" default:"2s"`
}

func TestNewReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CFGTEST_NAME=from-file\nCFGTEST_LIMIT=9\n"), 0o600))

	SetEnvFile(path)
	t.Cleanup(func() {
		SetEnvFile("")
		_ = os.Unsetenv("CFGTEST_NAME")
		_ = os.Unsetenv("CFGTEST_LIMIT")
	})

	conf, err := New[sampleConfig]("CFGTEST")
	require.NoError(t, err)
	assert.Equal(t, "from-file", conf.Name)
	assert.Equal(t, 9, conf.Limit)
	assert.Equal(t, 2*time.Second, conf.Timeout)
}

func TestNewKeepsExistingEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CFGKEEP_NAME=from-file\n"), 0o600))
	t.Setenv("CFGKEEP_NAME", "from-env")

	SetEnvFile(path)
	t.Cleanup(func() { SetEnvFile("") })

	conf, err := New[sampleConfig]("CFGKEEP")
	require.NoError(t, err)
	assert.Equal(t, "from-env", conf.Name)
}

func TestNewMissingRequired(t *testing.T) {
	SetEnvFile("")
	_, err := New[sampleConfig]("CFGMISSING")
	require.Error(t, err)
}

func TestNewMissingEnvFile(t *testing.T) {
	SetEnvFile(filepath.Join(t.TempDir(), "absent.env"))
	t.Cleanup(func() { SetEnvFile("") })

	_, err := New[sampleConfig]("CFGABSENT")
	require.Error(t, err)
}

func TestMustNewPanics(t *testing.T) {
	SetEnvFile("")
	assert.Panics(t, func() { MustNew[sampleConfig]("CFGPANIC") })
}
