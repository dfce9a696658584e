// =============================================================================
// extract.go - 一覧ページからの政策レコード抽出
// =============================================================================
//
// 取得した本文を PolicyRecord の列（0〜MaxRecords件）に変換します。
// 抽出方法はサイトごとに差し替えられる戦略（Extractor）として実装します。
//
// 【含まれる戦略】
//   1. selector - goquery で HTML をパースし、CSSセレクタでノードを選ぶ
//   2. feed     - gofeed で RSS/Atom をパースする（extract_feed.go）
//
// 【selector戦略の選択ルール】
//   - まず primary_selector（既定: .list-item）を試す
//   - 1件もなければ fallback_selector（既定: tr）を試し、先頭行は見出し行として捨てる
//   - どちらも先頭から max_records 件だけ使い、残りは黙って捨てる
//
// fallbackはページ構造に依存するヒューリスティックで、崩れたページでは
// タイトルやリンクが空のレコードが出ることがある（エラーにはしない）。
//
// =============================================================================
package pipeline

import (
	"bytes"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Extractor は本文から政策レコードを抽出する戦略
//
// 空の本文に対しては空のスライスを返し、エラーにしない。
type Extractor interface {
	Extract(body []byte, capturedAt time.Time) ([]PolicyRecord, error)
}

// =============================================================================
// 戦略レジストリ
// =============================================================================

// ExtractorFactory は設定から Extractor を作る関数
type ExtractorFactory func(cfg *Config) Extractor

// extractorFactories は戦略名と生成関数の対応表
//
// キー: extract.strategy の値
var extractorFactories = map[string]ExtractorFactory{
	StrategySelector: func(cfg *Config) Extractor { return NewSelectorExtractor(cfg) },
	StrategyFeed:     func(cfg *Config) Extractor { return NewFeedExtractor(cfg) },
}

// Strategies は登録済みの戦略名を返す
func Strategies() []string {
	names := make([]string, 0, len(extractorFactories))
	for name := range extractorFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewExtractor は cfg.Extract.Strategy に対応する Extractor を返す
func NewExtractor(cfg *Config) (Extractor, error) {
	factory, ok := extractorFactories[cfg.Extract.Strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, cfg.Extract.Strategy)
	}
	return factory(cfg), nil
}

// =============================================================================
// レコード生成
// =============================================================================

// recordStamp はページから読み取らない固定フィールドを埋める
type recordStamp struct {
	source       string
	kind         string
	deadlineDays int
}

func newRecordStamp(cfg RecordConfig) recordStamp {
	return recordStamp{
		source:       cfg.Source,
		kind:         cfg.Type,
		deadlineDays: cfg.DeadlineDays,
	}
}

// build は1件分のレコードを作る
//
// Date は採集日、Deadline は採集日 + deadlineDays（実データ由来ではない）。
func (s recordStamp) build(id int, title, link string, capturedAt time.Time) PolicyRecord {
	return PolicyRecord{
		ID:       id,
		Title:    title,
		Source:   s.source,
		Date:     capturedAt.Format("2006-01-02"),
		Deadline: capturedAt.AddDate(0, 0, s.deadlineDays).Format("2006-01-02"),
		Link:     link,
		Type:     s.kind,
	}
}

// resolveLink は "/" 始まりのリンクにオリジンを付与する
//
//	resolveLink("https://www.mohurd.gov.cn", "/gongkai/a.html") // "https://www.mohurd.gov.cn/gongkai/a.html"
//	resolveLink("https://www.mohurd.gov.cn", "//cdn.example/a") // "https://cdn.example/a"
//	resolveLink("https://www.mohurd.gov.cn", "https://x/y")     // そのまま
//
// "./a.html" のような相対パスはそのまま返す。
func resolveLink(origin, href string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "//"):
		scheme := "https"
		if u, err := url.Parse(origin); err == nil && u.Scheme != "" {
			scheme = u.Scheme
		}
		return scheme + ":" + href
	case strings.HasPrefix(href, "/"):
		return strings.TrimRight(origin, "/") + href
	default:
		return href
	}
}

// =============================================================================
// selector戦略
// =============================================================================

// SelectorExtractor はCSSセレクタでHTMLからレコードを抽出する
type SelectorExtractor struct {
	Primary    string
	Fallback   string
	Origin     string
	MaxRecords int

	stamp recordStamp
}

// NewSelectorExtractor は設定から SelectorExtractor を作る
func NewSelectorExtractor(cfg *Config) *SelectorExtractor {
	return &SelectorExtractor{
		Primary:    cfg.Extract.PrimarySelector,
		Fallback:   cfg.Extract.FallbackSelector,
		Origin:     cfg.SiteOrigin(),
		MaxRecords: cfg.Extract.MaxRecords,
		stamp:      newRecordStamp(cfg.Record),
	}
}

// Extract はHTMLをパースしてレコードを返す
func (e *SelectorExtractor) Extract(body []byte, capturedAt time.Time) ([]PolicyRecord, error) {
	out := []PolicyRecord{}
	if len(bytes.TrimSpace(body)) == 0 {
		return out, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("parse HTML failed: %w", err)
	}

	e.selectNodes(doc).Each(func(i int, item *goquery.Selection) {
		title := normalizeWhitespace(item.Text())
		href, _ := item.Find("a").First().Attr("href")
		out = append(out, e.stamp.build(i+1, title, resolveLink(e.Origin, href), capturedAt))
	})

	return out, nil
}

// selectNodes は primary → fallback の順にノードを選び、MaxRecords件に切り詰める
func (e *SelectorExtractor) selectNodes(doc *goquery.Document) *goquery.Selection {
	items := doc.Find(e.Primary)

	if items.Length() == 0 && e.Fallback != "" {
		items = doc.Find(e.Fallback)
		if items.Length() == 0 {
			return items
		}
		// 表レイアウトの先頭行は見出し行
		items = items.Slice(1, goquery.ToEnd)
	}

	if e.MaxRecords > 0 && items.Length() > e.MaxRecords {
		items = items.Slice(0, e.MaxRecords)
	}
	return items
}
