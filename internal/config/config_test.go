package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromReaderAppliesDefaults(t *testing.T) {
	cfg, err := LoadFromReader([]byte(`
classpath:
  entries:
    - /proj/build/classes
`))
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.TimeoutSeconds)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, []string{"/proj/build/classes"}, cfg.Classpath.Entries)
}

func TestLoadFromReaderParsesFilterLists(t *testing.T) {
	cfg, err := LoadFromReader([]byte(`
classpath:
  entries: ["/proj"]
filter:
  ignored_class_names: ["com.example\\..*"]
  focus: ["dir:.*"]
entry_point_classes: ["dir:/proj.app.Main"]
timeout_seconds: 30
`))
	require.NoError(t, err)
	assert.Equal(t, []string{`com.example\..*`}, cfg.Filter.IgnoredClassNames)
	assert.Equal(t, []string{"dir:/proj.app.Main"}, cfg.EntryPointClasses)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
}

func TestLoadFromReaderRejectsEmptyClasspath(t *testing.T) {
	_, err := LoadFromReader([]byte(`timeout_seconds: 10`))
	assert.Error(t, err)
}

func TestLoadFromReaderRejectsNegativeTimeout(t *testing.T) {
	_, err := LoadFromReader([]byte(`
classpath:
  entries: ["/proj"]
timeout_seconds: -1
`))
	assert.Error(t, err)
}
