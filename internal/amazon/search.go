package amazon

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var asinPattern = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// ValidASIN reports whether s looks like a 10-character catalog code.
func ValidASIN(s string) bool {
	return asinPattern.MatchString(s)
}

// ExtractSearchResults converts search-results markup into records. A node
// missing its catalog identifier or price is dropped: partial rows are
// worse than fewer rows.
func ExtractSearchResults(html string) ([]SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	doc.Find(searchRules.Result).Each(func(_ int, node *goquery.Selection) {
		asin, _ := node.Attr(searchRules.ASINAttr)
		if !ValidASIN(asin) {
			return
		}

		price := strings.TrimSpace(node.Find(searchRules.Price).First().Text())
		if price == "" {
			return
		}

		results = append(results, SearchResult{
			ASIN:      asin,
			Title:     cleanText(node.Find(searchRules.Title).First().Text()),
			Price:     price,
			Prime:     node.Find(searchRules.Prime).Length() > 0,
			Sponsored: node.Find(searchRules.Sponsored).Length() > 0,
		})
	})

	return results, nil
}

// cleanText normalizes whitespace in extracted text.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
