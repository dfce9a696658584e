// =============================================================================
// render_html.go - HTMLレポート生成
// =============================================================================
//
// レコード列から自己完結したHTMLドキュメント（index.html）を生成します。
//
// 【出力内容】
//   - レコード1件につきカード1枚（タイトル、発行元タグ、採集日、カウントダウン）
//   - 0件の場合は「暂无最新政策信息」のカードを1枚だけ出す
//   - カウントダウンはブラウザ側のスクリプトで計算・定期更新する
//     （生成側では実行しない。スクリプトはそのまま文字列として埋め込む）
//
// =============================================================================
package pipeline

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"time"
)

// EmptyStateMessage は0件時に表示するカードの文言
const EmptyStateMessage = "暂无最新政策信息"

// CountdownPlaceholder はスクリプト実行前のカウントダウン表示
const CountdownPlaceholder = "计算中..."

//go:embed templates/index.html.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// htmlPage はテンプレートに渡すデータ
type htmlPage struct {
	UpdatedAt            string
	Policies             []PolicyRecord
	EmptyMessage         string
	CountdownPlaceholder string
	DeadlineDays         int
	RefreshMillis        int
}

// RenderHTML はHTMLドキュメントを w に書き出す
//
// タイトル等はテンプレートでHTMLエスケープされる。
func RenderHTML(w io.Writer, records []PolicyRecord, capturedAt time.Time, cfg *Config) error {
	refresh := cfg.Output.CountdownRefreshSec
	if refresh <= 0 {
		refresh = 60
	}

	page := htmlPage{
		UpdatedAt:            capturedAt.Format("2006年01月02日 15:04"),
		Policies:             records,
		EmptyMessage:         EmptyStateMessage,
		CountdownPlaceholder: CountdownPlaceholder,
		DeadlineDays:         cfg.Record.DeadlineDays,
		RefreshMillis:        refresh * 1000,
	}
	return indexTemplate.ExecuteTemplate(w, "index.html.tmpl", page)
}

// WriteHTML はHTMLドキュメントを path に書き込む（既存ファイルは置き換える）
func WriteHTML(path string, records []PolicyRecord, capturedAt time.Time, cfg *Config) error {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, records, capturedAt, cfg); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}
