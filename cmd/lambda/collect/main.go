// =============================================================================
// Lambda: collect-policies
// =============================================================================
//
// 一覧ページから政策通知を収集し、data.json を生成するLambda関数
// （EventBridgeのスケジュールで1日1回起動する想定）
//
// 環境変数:
//   - POLICY_CONFIG:       YAML設定ファイルのパス (任意)
//   - POLICY_URL:          取得先URL (任意、既定: 住建部 政策文件)
//   - POLICY_JSON_OUT:     出力パス (任意、既定: /tmp/data.json)
//   - POLICY_METRICS_FILE: メトリクスの出力パス (任意)
//
// 取得に失敗しても statusCode 200・count 0 で正常終了する。
// 出力ファイルが書けない場合のみエラーを返す。
//
// =============================================================================
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"policy-digest/internal/pipeline"
)

// lambdaJSONPath はLambdaで書き込み可能な既定の出力先
const lambdaJSONPath = "/tmp/data.json"

// Response はLambdaレスポンス
type Response struct {
	StatusCode int                      `json:"statusCode"`
	Message    string                   `json:"message"`
	RunID      string                   `json:"runId,omitempty"`
	Count      int                      `json:"count"`
	Envelope   *pipeline.ResultEnvelope `json:"envelope,omitempty"`
}

// Handler はLambdaのメインハンドラー
func Handler(ctx context.Context, event interface{}) (Response, error) {
	log.Println("Starting collect-policies Lambda...")

	cfg, err := loadConfig()
	if err != nil {
		log.Printf("Error loading config: %v", err)
		return Response{StatusCode: 400, Message: err.Error()}, err
	}

	log.Printf("Config: url=%s, strategy=%s, out=%s", cfg.Fetch.URL, cfg.Extract.Strategy, cfg.Output.JSONPath)

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return Response{StatusCode: 400, Message: err.Error()}, err
	}

	report, err := p.RunJSON(ctx)
	if err != nil {
		log.Printf("Error writing output: %v", err)
		return Response{StatusCode: 500, Message: err.Error()}, err
	}

	message := fmt.Sprintf("Collected %d policies, wrote %s", report.Count, report.OutputPath)
	if report.FetchError != "" {
		log.Printf("WARNING: no data collected: %s", report.FetchError)
		message = "No data collected: " + report.FetchError
	}

	return Response{
		StatusCode: 200,
		Message:    message,
		RunID:      report.RunID,
		Count:      report.Count,
		Envelope:   report.Envelope,
	}, nil
}

// loadConfig は環境変数から設定を読み込む
//
// POLICY_JSON_OUT が無い場合は /tmp に書く（Lambdaは /tmp 以外が読み取り専用）。
func loadConfig() (*pipeline.Config, error) {
	cfg, err := pipeline.LoadConfig(os.Getenv("POLICY_CONFIG"))
	if err != nil {
		return nil, err
	}
	if os.Getenv("POLICY_JSON_OUT") == "" {
		cfg.Output.JSONPath = lambdaJSONPath
	}
	return cfg, nil
}

func main() {
	// Lambdaのログは CloudWatch に集約されるので進捗も標準出力へ
	pipeline.SetLogOutput(os.Stdout)
	lambda.Start(Handler)
}
