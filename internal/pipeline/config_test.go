package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearPolicyEnv は POLICY_* を空にして実行環境の影響を受けないようにする
func clearPolicyEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"POLICY_URL", "POLICY_USER_AGENT", "POLICY_STRATEGY", "POLICY_ORIGIN",
		"POLICY_HTML_OUT", "POLICY_JSON_OUT", "POLICY_METRICS_FILE", "POLICY_TIMEOUT_SEC",
	} {
		t.Setenv(name, "")
	}
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultURL, cfg.Fetch.URL)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout())
	assert.Equal(t, 5, cfg.Extract.MaxRecords)
	assert.Equal(t, ".list-item", cfg.Extract.PrimarySelector)
	assert.Equal(t, "tr", cfg.Extract.FallbackSelector)
	assert.Equal(t, "index.html", cfg.Output.HTMLPath)
	assert.Equal(t, "public/data.json", cfg.Output.JSONPath)
	assert.Equal(t, "https://www.mohurd.gov.cn", cfg.SiteOrigin())
}

func TestLoadConfig_DefaultWhenNoFile(t *testing.T) {
	clearPolicyEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_YAMLOverridesDefaults(t *testing.T) {
	clearPolicyEnv(t)
	path := writeYAML(t, `
fetch:
  url: https://www.mee.gov.cn/zcwj/
  timeout_sec: 20
extract:
  primary_selector: "ul.list li"
  origin: https://www.mee.gov.cn
record:
  source: 生态环境部
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://www.mee.gov.cn/zcwj/", cfg.Fetch.URL)
	assert.Equal(t, 20, cfg.Fetch.TimeoutSec)
	assert.Equal(t, "ul.list li", cfg.Extract.PrimarySelector)
	assert.Equal(t, "生态环境部", cfg.Record.Source)

	// 未指定のフィールドは既定値のまま
	assert.Equal(t, DefaultUserAgent, cfg.Fetch.UserAgent)
	assert.Equal(t, "tr", cfg.Extract.FallbackSelector)
	assert.Equal(t, 5, cfg.Extract.MaxRecords)
	assert.Equal(t, "政策发布", cfg.Record.Type)
	assert.Equal(t, 23, cfg.Record.DeadlineDays)
}

func TestLoadConfig_ExampleFile(t *testing.T) {
	clearPolicyEnv(t)

	cfg, err := LoadConfig(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_EnvOverridesYAML(t *testing.T) {
	clearPolicyEnv(t)
	path := writeYAML(t, "fetch:\n  url: https://from-yaml.example/\n")

	t.Setenv("POLICY_URL", "https://from-env.example/list")
	t.Setenv("POLICY_TIMEOUT_SEC", "3")
	t.Setenv("POLICY_JSON_OUT", "out/data.json")
	t.Setenv("POLICY_STRATEGY", "feed")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://from-env.example/list", cfg.Fetch.URL)
	assert.Equal(t, 3, cfg.Fetch.TimeoutSec)
	assert.Equal(t, "out/data.json", cfg.Output.JSONPath)
	assert.Equal(t, StrategyFeed, cfg.Extract.Strategy)
}

func TestLoadConfig_OriginFollowsURL(t *testing.T) {
	clearPolicyEnv(t)
	t.Setenv("POLICY_URL", "https://www.mee.gov.cn/zcwj/")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "https://www.mee.gov.cn", cfg.SiteOrigin())

	records, err := NewSelectorExtractor(cfg).Extract([]byte(`<div class="list-item"><a href="/a.html">通知</a></div>`), capturedAt)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "https://www.mee.gov.cn/a.html", records[0].Link)
}

func TestLoadConfig_YAMLURLWithoutOrigin(t *testing.T) {
	clearPolicyEnv(t)
	path := writeYAML(t, "fetch:\n  url: http://gov.example.cn/list/\nextract:\n  origin: \"\"\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://gov.example.cn", cfg.SiteOrigin())
}

func TestLoadConfig_ExplicitOriginWins(t *testing.T) {
	clearPolicyEnv(t)
	t.Setenv("POLICY_URL", "https://www.mee.gov.cn/zcwj/")
	t.Setenv("POLICY_ORIGIN", "https://static.mee.gov.cn")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "https://static.mee.gov.cn", cfg.SiteOrigin())
}

func TestLoadConfig_TooManyRecords(t *testing.T) {
	clearPolicyEnv(t)
	path := writeYAML(t, "extract:\n  max_records: 50\n")

	_, err := LoadConfig(path)
	require.ErrorIs(t, err, ErrInvalidMaxRecords)
}

func TestLoadConfig_InvalidTimeoutEnv(t *testing.T) {
	clearPolicyEnv(t)
	t.Setenv("POLICY_TIMEOUT_SEC", "ten")

	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	clearPolicyEnv(t)
	path := writeYAML(t, "fetch: [not, a, map")

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearPolicyEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	clearPolicyEnv(t)
	path := writeYAML(t, "extract:\n  strategy: xpath\n")

	_, err := LoadConfig(path)
	require.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"missing url", func(c *Config) { c.Fetch.URL = "" }, ErrMissingURL},
		{"zero timeout", func(c *Config) { c.Fetch.TimeoutSec = 0 }, ErrInvalidTimeout},
		{"zero max records", func(c *Config) { c.Extract.MaxRecords = 0 }, ErrInvalidMaxRecords},
		{"too many records", func(c *Config) { c.Extract.MaxRecords = 50 }, ErrInvalidMaxRecords},
		{"unknown strategy", func(c *Config) { c.Extract.Strategy = "regex" }, ErrUnknownStrategy},
		{"missing selector", func(c *Config) { c.Extract.PrimarySelector = "" }, ErrMissingSelector},
		{"negative deadline", func(c *Config) { c.Record.DeadlineDays = -1 }, ErrInvalidDeadline},
		{"missing html path", func(c *Config) { c.Output.HTMLPath = "" }, ErrMissingOutput},
		{"missing json path", func(c *Config) { c.Output.JSONPath = "" }, ErrMissingOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			require.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestConfig_FeedStrategyWithoutSelector(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extract.Strategy = StrategyFeed
	cfg.Extract.PrimarySelector = ""

	require.NoError(t, cfg.Validate())
}

func TestConfig_SiteOrigin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extract.Origin = ""
	cfg.Fetch.URL = "https://www.mohurd.gov.cn/zhengce/zhengcefile/index.html"
	assert.Equal(t, "https://www.mohurd.gov.cn", cfg.SiteOrigin())

	cfg.Fetch.URL = "not a url"
	assert.Equal(t, "", cfg.SiteOrigin())
}
