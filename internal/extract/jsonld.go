package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	json5 "github.com/yosuke-furukawa/json5/encoding/json5"
)

// jsonLDImage returns the image of the first schema.org Product described in
// the page's ld+json blocks. Blocks that are not valid JSON are retried with
// the JSON5 decoder, which accepts the trailing commas some themes emit, and
// skipped if that fails too.
func (e *Extractor) jsonLDImage(pageURL string, doc *goquery.Document) string {
	var image string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}

		var data any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			if err5 := json5.Unmarshal([]byte(raw), &data); err5 != nil {
				e.logger.Warn("could not parse JSON-LD block", "url", pageURL, "err", err)
				return true
			}
		}

		if node := findProduct(data); node != nil {
			image = imageOf(node["image"])
		}
		return image == ""
	})
	return image
}

// findProduct walks arrays and @graph containers looking for a Product node.
func findProduct(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if node := findProduct(item); node != nil {
				return node
			}
		}
	case map[string]any:
		if isProduct(t["@type"]) {
			return t
		}
		if graph, ok := t["@graph"]; ok {
			return findProduct(graph)
		}
	}
	return nil
}

func isProduct(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "Product"
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

// imageOf reads a schema.org image property: a URL string, a list whose first
// entry is used, or an ImageObject.
func imageOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		if len(t) > 0 {
			return imageOf(t[0])
		}
	case map[string]any:
		if u, ok := t["url"].(string); ok {
			return strings.TrimSpace(u)
		}
		if u, ok := t["contentUrl"].(string); ok {
			return strings.TrimSpace(u)
		}
	}
	return ""
}
