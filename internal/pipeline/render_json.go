// =============================================================================
// render_json.go - JSONデータファイル生成
// =============================================================================
//
// フロントエンドが fetch('/data.json') で読む形式のJSONを生成します。
//
//	{
//	  "lastUpdate": "2026-10-18 09:30:00",
//	  "count": 2,
//	  "policies": [ { "id": 1, "title": "...", ... }, ... ]
//	}
//
// 中国語はエスケープせずそのまま出力し、2スペースでインデントする。
//
// =============================================================================
package pipeline

import (
	"bytes"
	"encoding/json"
	"io"
	"time"
)

// BuildEnvelope はレコード列から ResultEnvelope を作る
//
// Policies は0件でも null ではなく [] になる。
func BuildEnvelope(records []PolicyRecord, capturedAt time.Time) ResultEnvelope {
	policies := make([]PolicyRecord, len(records))
	copy(policies, records)

	return ResultEnvelope{
		LastUpdate: capturedAt.Format("2006-01-02 15:04:05"),
		Count:      len(policies),
		Policies:   policies,
	}
}

// RenderJSON は env をJSONで w に書き出す
func RenderJSON(w io.Writer, env ResultEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false) // "&" や "<" を含むタイトル・URLをそのまま残す
	return enc.Encode(env)
}

// WriteJSON は env を path に書き込む（既存ファイルは置き換える）
func WriteJSON(path string, env ResultEnvelope) error {
	var buf bytes.Buffer
	if err := RenderJSON(&buf, env); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}
