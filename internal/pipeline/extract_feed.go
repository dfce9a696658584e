// =============================================================================
// extract_feed.go - RSS/Atom フィードからの抽出
// =============================================================================
//
// 一覧ページの代わりにRSS/Atomフィードを公開しているサイト向けの戦略です。
// gofeed でパースし、先頭から max_records 件を PolicyRecord に変換します。
//
// =============================================================================
package pipeline

import (
	"bytes"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedExtractor はRSS/Atomフィードからレコードを抽出する
type FeedExtractor struct {
	Origin     string
	MaxRecords int

	stamp recordStamp
}

// NewFeedExtractor は設定から FeedExtractor を作る
func NewFeedExtractor(cfg *Config) *FeedExtractor {
	return &FeedExtractor{
		Origin:     cfg.SiteOrigin(),
		MaxRecords: cfg.Extract.MaxRecords,
		stamp:      newRecordStamp(cfg.Record),
	}
}

// Extract はフィードをパースしてレコードを返す
//
// 項目の並びはフィードの記載順のまま（日付でソートしない）。
func (e *FeedExtractor) Extract(body []byte, capturedAt time.Time) ([]PolicyRecord, error) {
	out := []PolicyRecord{}
	if len(bytes.TrimSpace(body)) == 0 {
		return out, nil
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("RSS parse failed: %w", err)
	}

	items := feed.Items
	if e.MaxRecords > 0 && len(items) > e.MaxRecords {
		items = items[:e.MaxRecords]
	}

	for i, item := range items {
		link := item.Link
		if link == "" && len(item.Links) > 0 {
			link = item.Links[0]
		}
		out = append(out, e.stamp.build(i+1, normalizeWhitespace(item.Title), resolveLink(e.Origin, link), capturedAt))
	}

	return out, nil
}
