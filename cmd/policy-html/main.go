// =============================================================================
// main.go - 政策通知ダイジェスト（HTML版）のエントリーポイント
// =============================================================================
//
// 一覧ページを取得し、最新の政策通知（最大5件）をカード形式の index.html に
// 書き出します。取得に失敗しても「暂无最新政策信息」のページを生成し、
// 終了コードは0のままです。
//
// 【CLIフラグ】（すべて任意）
//   -config  YAML設定ファイル
//   -out     出力パス（既定: index.html）
//
// 【環境変数】
//   POLICY_URL, POLICY_USER_AGENT, POLICY_TIMEOUT_SEC, POLICY_STRATEGY,
//   POLICY_ORIGIN, POLICY_HTML_OUT, POLICY_METRICS_FILE
//
// =============================================================================
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"policy-digest/internal/pipeline"
)

func main() {
	// .env が無くても環境変数だけで動く
	if err := godotenv.Load(); err != nil {
		pipeline.Infof(".env file not loaded: %v (using environment variables only)", err)
	}

	cfg, err := pipeline.ParseFlags(pipeline.ModeHTML)
	if err != nil {
		pipeline.Fatalf("%v", err)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		pipeline.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pipeline.Infof("starting policy collection from %s", cfg.Fetch.URL)
	report, err := p.RunHTML(ctx)
	if err != nil {
		pipeline.Fatalf("%v", err)
	}

	pipeline.PrintSummary(os.Stdout, report)
}
