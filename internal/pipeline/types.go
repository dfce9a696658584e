// =============================================================================
// types.go - データ構造定義
// =============================================================================
//
// このファイルは政策通知ダイジェスト全体で使用するデータ構造（型）を定義します。
//
// 【このファイルで定義している型】
//   - PolicyRecord:   抽出された政策通知1件
//   - ResultEnvelope: JSON出力のラッパー（更新時刻・件数・一覧）
//   - FetchResult:    HTTP取得の結果（本文 or 失敗理由）
//   - Outcome:        取得＋抽出の結果（レコード or 失敗理由）
//
// =============================================================================
package pipeline

import "time"

// -----------------------------------------------------------------------------
// PolicyRecord - 政策通知1件
// -----------------------------------------------------------------------------
//
// 一覧ページのノード1つから作られる。Date と Deadline はページから読み取らず、
// 採集時刻から合成する（ページに信頼できる公開日がないため）。
//
//	ID:       1始まりの連番（抽出順）
//	Title:    ノードのテキスト（空白を正規化）
//	Source:   発行元ラベル（固定値）
//	Date:     採集日（YYYY-MM-DD）
//	Deadline: 採集日 + 固定日数（YYYY-MM-DD、プレースホルダー）
//	Link:     最初の<a>のhref（"/"始まりはオリジンを付与）
//	Type:     分類ラベル（固定値）
type PolicyRecord struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Source   string `json:"source"`
	Date     string `json:"date"`
	Deadline string `json:"deadline"`
	Link     string `json:"link"`
	Type     string `json:"type"`
}

// ResultEnvelope はフロントエンドが読む data.json の形
//
// Count は常に len(Policies) と一致させる（BuildEnvelopeでのみ生成すること）。
type ResultEnvelope struct {
	LastUpdate string         `json:"lastUpdate"` // 採集時刻（秒精度）
	Count      int            `json:"count"`
	Policies   []PolicyRecord `json:"policies"`
}

// FetchResult は1回のHTTP GETの結果
//
// 失敗の種類（タイムアウト、DNS、4xx/5xx）は呼び出し側で区別しない。
// Err が nil なら Body が有効。
type FetchResult struct {
	URL        string
	StatusCode int
	Body       []byte
	Truncated  bool // max_body_kb で本文が切り詰められた
	Err        error
}

// OK は取得に成功したかどうかを返す
func (r FetchResult) OK() bool {
	return r.Err == nil
}

// Outcome は取得〜抽出の境界で返す結果
//
// 成功時は Records（0件もありうる）、失敗時は Err に理由が入り Records は空。
// レンダラーはどちらの場合も出力を生成する。
type Outcome struct {
	Records    []PolicyRecord
	CapturedAt time.Time
	Err        error
}

// Failed は取得または解析に失敗したかどうかを返す
func (o Outcome) Failed() bool {
	return o.Err != nil
}
