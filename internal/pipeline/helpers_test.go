package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// capturedAt はテスト共通の採集時刻
var capturedAt = time.Date(2026, 10, 18, 9, 30, 5, 0, time.Local)

func fixedClock() time.Time { return capturedAt }

// testConfig は出力先を t.TempDir() に向けた既定設定を返す
func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Output.HTMLPath = filepath.Join(dir, "index.html")
	cfg.Output.JSONPath = filepath.Join(dir, "public", "data.json")
	return cfg
}

// readFixture は testdata/ のファイルを読む
func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", name, err)
	}
	return data
}

// captureLog はログ出力をバッファに差し替え、テスト終了時に戻す
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogOutput(&buf)
	t.Cleanup(func() { SetLogOutput(nil) })
	return &buf
}

func sampleRecords(n int) []PolicyRecord {
	stamp := newRecordStamp(DefaultConfig().Record)
	out := make([]PolicyRecord, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, stamp.build(i, "关于印发政策文件的通知 "+string(rune('A'+i-1)), "https://www.mohurd.gov.cn/gongkai/"+string(rune('a'+i-1))+".html", capturedAt))
	}
	return out
}
