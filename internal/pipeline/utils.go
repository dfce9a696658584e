// =============================================================================
// utils.go - ユーティリティ関数
// =============================================================================
//
// このファイルはパイプライン全体で使用する汎用的なヘルパー関数を提供します。
//
// 【このファイルで提供する機能】
//   - 文字列操作: 空白正規化、表示幅での切り詰め
//   - ファイル出力: 親ディレクトリ作成＋上書き書き込み
//   - ログ出力: 進捗・警告・エラーメッセージ
//
// =============================================================================
package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"
)

// -----------------------------------------------------------------------------
// 文字列操作関数
// -----------------------------------------------------------------------------

// normalizeWhitespace は文字列内の連続する空白を単一スペースに正規化する
//
//	normalizeWhitespace("  关于  印发\n通知 ")  // "关于 印发 通知"
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateWidth は表示幅（全角=2）が maxWidth を超える場合に "..." で切り詰める
//
// 中国語タイトルは len() やrune数では端末の桁数と一致しないため runewidth を使う。
func truncateWidth(s string, maxWidth int) string {
	return runewidth.Truncate(s, maxWidth, "...")
}

// -----------------------------------------------------------------------------
// ファイル出力
// -----------------------------------------------------------------------------

// writeFile は data を path に書き込む（既存ファイルは完全に置き換える）
//
// public/data.json のように親ディレクトリが存在しない場合は作成する。
// アトミックな書き込みは行わない。
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// ログ出力関数
// -----------------------------------------------------------------------------

// logOut は進捗・診断メッセージの出力先
//
// 出力はファイルに書くので、標準出力をそのまま進捗表示に使う。テストでは差し替える。
var logOut io.Writer = os.Stdout

// SetLogOutput はログの出力先を変更する（nilの場合は標準出力）
func SetLogOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	logOut = w
}

// infof は情報メッセージを書き出す
//
// フォーマット: "INFO: メッセージ\n"
func infof(format string, args ...any) {
	fmt.Fprintf(logOut, "INFO: "+format+"\n", args...)
}

// warnf は警告メッセージを書き出す
//
// 取得失敗はここで報告し、処理は続行する。
func warnf(format string, args ...any) {
	fmt.Fprintf(logOut, "WARN: "+format+"\n", args...)
}

// errorf はエラーメッセージを書き出す（プログラムは終了しない）
func errorf(format string, args ...any) {
	fmt.Fprintf(logOut, "ERROR: "+format+"\n", args...)
}

// Infof は cmd/ から使うための infof
func Infof(format string, args ...any) { infof(format, args...) }

// Fatalf はエラーメッセージを書き出してプログラムを終了する
//
// 設定不正や出力ファイルの書き込み失敗など、成果物を作れない場合のみ使う。
func Fatalf(format string, args ...any) {
	errorf(format, args...)
	os.Exit(1)
}
