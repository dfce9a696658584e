// =============================================================================
// summary.go - 実行結果のコンソール表示
// =============================================================================
//
// 1回の実行で採集したレコードを表形式で標準出力に表示します。
// 中国語タイトルは表示幅（全角=2）で切り詰めて列を揃えます。
//
// =============================================================================
package pipeline

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// summaryTitleWidth はサマリー表のタイトル列の表示幅
const summaryTitleWidth = 48

// PrintSummary は実行結果と採集したレコードを表形式で w に書き出す
func PrintSummary(w io.Writer, report *RunReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"#", "Title", "Date", "Link"})

	for _, r := range report.Records {
		t.AppendRow(table.Row{r.ID, truncateWidth(r.Title, summaryTitleWidth), r.Date, r.Link})
	}

	footer := fmt.Sprintf("%d record(s) -> %s", report.Count, report.OutputPath)
	if report.FetchError != "" {
		footer = "no data: " + truncateWidth(report.FetchError, summaryTitleWidth)
	}
	t.AppendFooter(table.Row{"", footer, "", report.RunID})

	t.Render()
}
