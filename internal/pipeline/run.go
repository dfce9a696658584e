// =============================================================================
// run.go - パイプラインの実行
// =============================================================================
//
// 取得 → 抽出 → 出力 を1回だけ直列に実行します。
//
//   ┌─────────────┐    ┌─────────────┐    ┌─────────────┐
//   │  1. 取得    │ -> │  2. 抽出    │ -> │  3. 出力    │
//   │  HTTP GET   │    │  selector / │    │  HTML or    │
//   │             │    │  feed       │    │  JSON       │
//   └─────────────┘    └─────────────┘    └─────────────┘
//
// 【エラーの扱い】
//   - 取得・解析の失敗は Outcome.Err に記録し、0件として出力まで進む
//     （HTMLは「暂无最新政策信息」カード、JSONは count: 0）
//   - 出力ファイルが書けない場合だけ error を返す
//
// =============================================================================
package pipeline

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
)

// Mode は出力形式
type Mode string

const (
	ModeHTML Mode = "html"
	ModeJSON Mode = "json"
)

// RunReport は1回の実行結果
type RunReport struct {
	RunID      string
	Mode       Mode
	OutputPath string
	Count      int
	FetchError string // 空なら取得・解析は成功
	CapturedAt time.Time
	Duration   time.Duration
	Records    []PolicyRecord
	Envelope   *ResultEnvelope // ModeJSON のみ
}

// Pipeline は1回分の実行に必要な依存をまとめる
type Pipeline struct {
	cfg       *Config
	client    *http.Client
	extractor Extractor
	metrics   *Metrics
	now       func() time.Time
}

// Option は Pipeline の依存を差し替える
type Option func(*Pipeline)

// WithClock は採集時刻の取得元を差し替える
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithHTTPClient はHTTPクライアントを差し替える
func WithHTTPClient(c *http.Client) Option {
	return func(p *Pipeline) { p.client = c }
}

// WithExtractor は抽出戦略を差し替える（設定の strategy より優先）
func WithExtractor(e Extractor) Option {
	return func(p *Pipeline) { p.extractor = e }
}

// WithMetrics はメトリクスの記録先を差し替える
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// NewPipeline は設定から Pipeline を作る
func NewPipeline(cfg *Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.client == nil {
		p.client = newHTTPClient(cfg.Fetch)
	}
	if p.metrics == nil {
		p.metrics = NewMetrics()
	}
	if p.extractor == nil {
		e, err := NewExtractor(cfg)
		if err != nil {
			return nil, err
		}
		p.extractor = e
	}

	return p, nil
}

// Metrics は記録中のメトリクスを返す
func (p *Pipeline) Metrics() *Metrics {
	return p.metrics
}

// Collect は取得と抽出を行い、結果を Outcome で返す
//
// 失敗しても Records は空スライス（nilではない）になる。
func (p *Pipeline) Collect(ctx context.Context) Outcome {
	out := Outcome{
		Records:    []PolicyRecord{},
		CapturedAt: p.now(),
	}

	start := time.Now()
	res := Fetch(ctx, p.client, p.cfg.Fetch)
	p.metrics.ObserveFetch(res, time.Since(start))
	if !res.OK() {
		out.Err = res.Err
		return out
	}
	infof("fetched %d bytes from %s", len(res.Body), res.URL)

	records, err := p.extractor.Extract(res.Body, out.CapturedAt)
	if err != nil {
		warnf("extract failed: %v", err)
		out.Err = err
		return out
	}

	out.Records = records
	return out
}

// Run は mode の形式で1回分のパイプラインを実行する
func (p *Pipeline) Run(ctx context.Context, mode Mode) (*RunReport, error) {
	started := time.Now()

	var path string
	switch mode {
	case ModeHTML:
		path = p.cfg.Output.HTMLPath
	case ModeJSON:
		path = p.cfg.Output.JSONPath
	default:
		return nil, fmt.Errorf("unknown output mode: %q", mode)
	}

	outcome := p.Collect(ctx)

	report := &RunReport{
		RunID:      newRunID(outcome.CapturedAt),
		Mode:       mode,
		OutputPath: path,
		Count:      len(outcome.Records),
		CapturedAt: outcome.CapturedAt,
		Records:    outcome.Records,
	}
	if outcome.Failed() {
		report.FetchError = outcome.Err.Error()
	}
	infof("collected %d policies (run=%s)", report.Count, report.RunID)

	switch mode {
	case ModeHTML:
		if err := WriteHTML(path, outcome.Records, outcome.CapturedAt, p.cfg); err != nil {
			return report, err
		}
	case ModeJSON:
		env := BuildEnvelope(outcome.Records, outcome.CapturedAt)
		if err := WriteJSON(path, env); err != nil {
			return report, err
		}
		report.Envelope = &env
	}
	infof("wrote %s", path)

	p.metrics.ObserveRun(report.Count, outcome.CapturedAt)
	if p.cfg.Output.MetricsFile != "" {
		if err := p.metrics.WriteTextfile(p.cfg.Output.MetricsFile); err != nil {
			warnf("%v", err)
		}
	}

	report.Duration = time.Since(started)
	return report, nil
}

// RunHTML は index.html を生成する
func (p *Pipeline) RunHTML(ctx context.Context) (*RunReport, error) {
	return p.Run(ctx, ModeHTML)
}

// RunJSON は data.json を生成する
func (p *Pipeline) RunJSON(ctx context.Context) (*RunReport, error) {
	return p.Run(ctx, ModeJSON)
}

// newRunID は採集時刻を埋め込んだULIDを返す
func newRunID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
