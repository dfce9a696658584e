// =============================================================================
// config.go - パイプライン設定
// =============================================================================
//
// このファイルは設定の既定値、YAMLファイル、環境変数、CLIフラグを扱います。
//
// 【優先順位】（下ほど強い）
//   1. DefaultConfig() の既定値
//   2. -config で指定したYAMLファイル（mergoで既定値に上書きマージ）
//   3. POLICY_* 環境変数（.env も godotenv で読み込み済みの前提）
//   4. -out フラグ（出力パスのみ）
//
// 【設定グループ】
//   - FetchConfig:   取得先URL、User-Agent、タイムアウト
//   - ExtractConfig: 抽出戦略、セレクタ、件数上限、オリジン
//   - RecordConfig:  発行元ラベル、分類ラベル、締切プレースホルダー日数
//   - OutputConfig:  HTML/JSON出力パス、メトリクスファイル
//
// =============================================================================
package pipeline

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// 設定検証エラー
var (
	ErrMissingURL        = errors.New("fetch.url is required")
	ErrInvalidTimeout    = errors.New("fetch.timeout_sec must be at least 1")
	ErrInvalidMaxRecords = errors.New("extract.max_records must be between 1 and 5")
	ErrUnknownStrategy   = errors.New("extract.strategy must be 'selector' or 'feed'")
	ErrMissingSelector   = errors.New("extract.primary_selector is required for the selector strategy")
	ErrMissingOutput     = errors.New("output.html_path and output.json_path are required")
	ErrInvalidDeadline   = errors.New("record.deadline_days must be non-negative")
)

// 抽出戦略の名前
const (
	StrategySelector = "selector"
	StrategyFeed     = "feed"
)

// =============================================================================
// 設定構造体
// =============================================================================

// Config はパイプラインの全設定を保持する
type Config struct {
	Fetch   FetchConfig   `yaml:"fetch"`
	Extract ExtractConfig `yaml:"extract"`
	Record  RecordConfig  `yaml:"record"`
	Output  OutputConfig  `yaml:"output"`
}

// FetchConfig は取得に関する設定
type FetchConfig struct {
	URL        string `yaml:"url"`
	UserAgent  string `yaml:"user_agent"`
	TimeoutSec int    `yaml:"timeout_sec"`

	// MaxBodyKB はレスポンス本文の読み込み上限（KB）
	MaxBodyKB int `yaml:"max_body_kb"`
}

// Timeout はタイムアウトをtime.Durationで返す
func (c *FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// ExtractConfig は抽出に関する設定
type ExtractConfig struct {
	// Strategy は "selector"（HTML + CSSセレクタ）または "feed"（RSS/Atom）
	Strategy string `yaml:"strategy"`

	PrimarySelector  string `yaml:"primary_selector"`
	FallbackSelector string `yaml:"fallback_selector"`

	// Origin は "/" 始まりのリンクに付与するオリジン（空ならFetch.URLから導出）
	Origin string `yaml:"origin"`

	MaxRecords int `yaml:"max_records"`
}

// RecordConfig はレコードの固定フィールドに関する設定
type RecordConfig struct {
	Source string `yaml:"source"`
	Type   string `yaml:"type"`

	// DeadlineDays は締切プレースホルダー（採集日 + N日）の日数
	DeadlineDays int `yaml:"deadline_days"`
}

// OutputConfig は出力に関する設定
type OutputConfig struct {
	HTMLPath string `yaml:"html_path"`
	JSONPath string `yaml:"json_path"`

	// MetricsFile が指定された場合、Prometheus textfile形式で実行メトリクスを書き出す
	MetricsFile string `yaml:"metrics_file"`

	// CountdownRefreshSec はHTML内のカウントダウン更新間隔（秒）
	CountdownRefreshSec int `yaml:"countdown_refresh_sec"`
}

// =============================================================================
// 既定値
// =============================================================================

// MaxRecordsLimit は1回の実行で出力するレコード数の上限
const MaxRecordsLimit = 5

// DefaultURL は住建部の政策文件一覧ページ
const DefaultURL = "https://www.mohurd.gov.cn/zhengce/zhengcefile/"

// DefaultUserAgent はデスクトップブラウザ風のUser-Agent
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// DefaultConfig は既定の設定を返す
func DefaultConfig() *Config {
	return &Config{
		Fetch: FetchConfig{
			URL:        DefaultURL,
			UserAgent:  DefaultUserAgent,
			TimeoutSec: 10,
			MaxBodyKB:  4096,
		},
		Extract: ExtractConfig{
			Strategy:         StrategySelector,
			PrimarySelector:  ".list-item",
			FallbackSelector: "tr",
			MaxRecords:       MaxRecordsLimit,
		},
		Record: RecordConfig{
			Source:       "住房和城乡建设部",
			Type:         "政策发布",
			DeadlineDays: 23,
		},
		Output: OutputConfig{
			HTMLPath:            "index.html",
			JSONPath:            "public/data.json",
			CountdownRefreshSec: 60,
		},
	}
}

// SiteOrigin は相対リンクの解決に使うオリジンを返す
//
// Extract.Origin が空の場合は Fetch.URL の scheme://host を使う。
func (c *Config) SiteOrigin() string {
	if c.Extract.Origin != "" {
		return c.Extract.Origin
	}
	u, err := url.Parse(c.Fetch.URL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// =============================================================================
// 読み込み
// =============================================================================

// LoadConfig は既定値にYAMLファイルと環境変数を重ねて検証済みの設定を返す
//
// path が空の場合はYAMLを読まない。
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}

		// ゼロ値のフィールドは既定値を残す
		if err := mergo.Merge(cfg, fileCfg, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnv は POLICY_* 環境変数で設定を上書きする
func (c *Config) applyEnv() error {
	strVars := map[string]*string{
		"POLICY_URL":          &c.Fetch.URL,
		"POLICY_USER_AGENT":   &c.Fetch.UserAgent,
		"POLICY_STRATEGY":     &c.Extract.Strategy,
		"POLICY_ORIGIN":       &c.Extract.Origin,
		"POLICY_HTML_OUT":     &c.Output.HTMLPath,
		"POLICY_JSON_OUT":     &c.Output.JSONPath,
		"POLICY_METRICS_FILE": &c.Output.MetricsFile,
	}
	for name, dst := range strVars {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("POLICY_TIMEOUT_SEC"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("POLICY_TIMEOUT_SEC: %w", err)
		}
		c.Fetch.TimeoutSec = n
	}

	return nil
}

// Validate は設定を検証する
func (c *Config) Validate() error {
	if c.Fetch.URL == "" {
		return ErrMissingURL
	}

	if c.Fetch.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Extract.MaxRecords < 1 || c.Extract.MaxRecords > MaxRecordsLimit {
		return fmt.Errorf("%w: %d (1-%d)", ErrInvalidMaxRecords, c.Extract.MaxRecords, MaxRecordsLimit)
	}

	switch c.Extract.Strategy {
	case StrategySelector:
		if c.Extract.PrimarySelector == "" {
			return ErrMissingSelector
		}
	case StrategyFeed:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Extract.Strategy)
	}

	if c.Record.DeadlineDays < 0 {
		return ErrInvalidDeadline
	}

	if c.Output.HTMLPath == "" || c.Output.JSONPath == "" {
		return ErrMissingOutput
	}

	return nil
}

// =============================================================================
// フラグ解析
// =============================================================================

// ParseFlags はCLIフラグを解析して設定を読み込む
//
// 引数なしで実行できる（全フラグ任意）。-out は mode に対応する出力パスを上書きする。
func ParseFlags(mode Mode) (*Config, error) {
	configPath := flag.String("config", "", "optional: path to a YAML config file")
	out := flag.String("out", "", "optional: override the output path for this mode")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return nil, err
	}

	if *out != "" {
		switch mode {
		case ModeHTML:
			cfg.Output.HTMLPath = *out
		case ModeJSON:
			cfg.Output.JSONPath = *out
		}
	}

	return cfg, nil
}
