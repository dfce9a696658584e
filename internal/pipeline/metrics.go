// =============================================================================
// metrics.go - 実行メトリクス
// =============================================================================
//
// cronで1日1回動かす前提のため、HTTPでメトリクスを公開せず、
// node_exporter の textfile collector が読む形式でファイルに書き出します。
//
// 【メトリクス】
//   - policy_digest_fetch_total{result}        取得の成功/失敗回数
//   - policy_digest_fetch_duration_seconds     取得にかかった時間
//   - policy_digest_records                    直近の実行で抽出した件数
//   - policy_digest_last_run_timestamp_seconds 直近の実行時刻
//
// =============================================================================
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics は1プロセス分のメトリクスを保持する
type Metrics struct {
	registry *prometheus.Registry

	FetchTotal    *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	Records       prometheus.Gauge
	LastRun       prometheus.Gauge
}

// NewMetrics は専用レジストリにメトリクスを登録して返す
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "policy_digest_fetch_total",
				Help: "Total number of list page fetches.",
			},
			[]string{"result"}, // success, failure
		),
		FetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "policy_digest_fetch_duration_seconds",
				Help:    "Duration of the list page fetch.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10},
			},
		),
		Records: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "policy_digest_records",
				Help: "Number of policy records written by the last run.",
			},
		),
		LastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "policy_digest_last_run_timestamp_seconds",
				Help: "Unix time of the last completed run.",
			},
		),
	}
}

// ObserveFetch は取得結果を記録する
func (m *Metrics) ObserveFetch(res FetchResult, d time.Duration) {
	result := "success"
	if !res.OK() {
		result = "failure"
	}
	m.FetchTotal.WithLabelValues(result).Inc()
	m.FetchDuration.Observe(d.Seconds())
}

// ObserveRun は実行の完了を記録する
func (m *Metrics) ObserveRun(count int, at time.Time) {
	m.Records.Set(float64(count))
	m.LastRun.Set(float64(at.Unix()))
}

// WriteTextfile はメトリクスを textfile collector 形式で path に書き出す
func (m *Metrics) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
