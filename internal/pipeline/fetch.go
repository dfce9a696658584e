// =============================================================================
// fetch.go - 一覧ページの取得
// =============================================================================
//
// 設定されたURLに対してHTTP GETを1回だけ送信し、本文をUTF-8で返します。
//
// 【方針】
//   - リトライしない
//   - 失敗（ネットワーク、タイムアウト、4xx/5xx、文字コード）は FetchResult.Err に
//     入れて返し、呼び出し側にはエラーとして伝播させない
//   - 中国の政府サイトは GBK / GB2312 のことがあるため、Content-Type や
//     <meta charset> から判定してUTF-8にデコードする
//
// =============================================================================
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

// ErrUnexpectedStatus は2xx以外のレスポンス
var ErrUnexpectedStatus = errors.New("unexpected status")

// newHTTPClient は取得用のHTTPクライアントを作る
func newHTTPClient(cfg FetchConfig) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout(),
		Transport: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			MaxIdleConns:    10,
			IdleConnTimeout: 30 * time.Second,
		},
	}
}

// Fetch は cfg.URL をGETして本文を返す
//
// 戻り値の OK() が false の場合、Body は空で Err に理由が入る。
// 失敗時は WARN を1行出力する。
func Fetch(ctx context.Context, client *http.Client, cfg FetchConfig) FetchResult {
	res := fetch(ctx, client, cfg)
	if !res.OK() {
		warnf("fetch %s failed: %v", cfg.URL, res.Err)
	}
	return res
}

func fetch(ctx context.Context, client *http.Client, cfg FetchConfig) FetchResult {
	res := FetchResult{URL: cfg.URL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.URL, http.NoBody)
	if err != nil {
		res.Err = fmt.Errorf("request creation failed: %w", err)
		return res
	}
	// ブロッキング回避のため、ブラウザ風のヘッダーを設定
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := client.Do(req)
	if err != nil {
		res.Err = fmt.Errorf("request failed: %w", err)
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		res.Err = fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
		return res
	}

	var body io.Reader = resp.Body
	var limited *io.LimitedReader
	if cfg.MaxBodyKB > 0 {
		limited = &io.LimitedReader{R: resp.Body, N: int64(cfg.MaxBodyKB) * 1024}
		body = limited
	}

	utf8Body, err := charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		res.Err = fmt.Errorf("decode body: %w", err)
		return res
	}

	data, err := io.ReadAll(utf8Body)
	if err != nil {
		res.Err = fmt.Errorf("failed to read response body: %w", err)
		return res
	}

	// 上限に達した後もまだ本文が残っていれば切り詰めが発生している
	if limited != nil && limited.N == 0 {
		if n, _ := io.ReadFull(resp.Body, make([]byte, 1)); n > 0 {
			res.Truncated = true
			warnf("response body from %s exceeded %d KB and was truncated", cfg.URL, cfg.MaxBodyKB)
		}
	}

	res.Body = data
	return res
}
