package amazon

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractOrders converts order-history markup into Order records.
func ExtractOrders(html string) ([]Order, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var orders []Order
	doc.Find(orderRules.Card).Each(func(_ int, card *goquery.Selection) {
		order := Order{
			Number: cleanText(card.Find(orderRules.Number).First().Text()),
			Date:   cleanText(card.Find(orderRules.Date).First().Text()),
			Total:  cleanText(card.Find(orderRules.Total).First().Text()),
			Status: cleanText(card.Find(orderRules.Status).First().Text()),
			Items:  []OrderItem{},
		}

		// "Collected on 12 March 2025" in the status line carries the
		// collection date; a missing phrase means no date, not an empty one.
		if date := textAfterPrefix(order.Status, orderRules.CollectedPrefix); date != "" {
			order.CollectedOn = date
		}

		order.Address = extractAddress(card)

		card.Find(orderRules.Item).Each(func(_ int, node *goquery.Selection) {
			item := OrderItem{
				Title: cleanText(node.Find(orderRules.ItemTitle).First().Text()),
			}
			if item.Title == "" {
				return
			}
			if href, ok := node.Find(orderRules.ItemLink).First().Attr("href"); ok {
				item.Link = href
				item.ASIN = asinFromLink(href)
			}
			if src, ok := node.Find(orderRules.ItemImage).First().Attr("src"); ok {
				item.ImageURL = src
			}

			if ret := cleanText(node.Find(orderRules.ReturnControl).First().Text()); ret != "" {
				item.Returnable = true
				if date := textAfterInfix(ret, orderRules.ReturnUntil); date != "" {
					item.ReturnBy = date
				}
			}

			order.Items = append(order.Items, item)
		})

		orders = append(orders, order)
	})

	return orders, nil
}

func extractAddress(card *goquery.Selection) *Address {
	lines := card.Find(orderRules.Address)
	if lines.Length() == 0 {
		return nil
	}

	addr := &Address{}
	lines.Each(func(i int, line *goquery.Selection) {
		text := cleanText(line.Text())
		switch i {
		case 0:
			addr.Name = text
		case lines.Length() - 1:
			addr.Country = text
		default:
			if addr.Street == "" {
				addr.Street = text
			} else {
				addr.Street += ", " + text
			}
		}
	})
	return addr
}

// textAfterPrefix returns the remainder of text after the first occurrence
// of prefix, or "" when the phrase is absent.
func textAfterPrefix(text, prefix string) string {
	idx := strings.Index(text, prefix)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(text[idx+len(prefix):])
}

// textAfterInfix returns the remainder after an infix phrase ("Return
// items: Eligible until 31 January 2026" yields the date).
func textAfterInfix(text, infix string) string {
	idx := strings.LastIndex(text, infix)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(text[idx+len(infix):])
}

// asinFromLink pulls a catalog code out of a product URL path, which looks
// like /dp/B0ABCD1234 or /gp/product/B0ABCD1234.
func asinFromLink(href string) string {
	for _, marker := range []string{"/dp/", "/gp/product/"} {
		if idx := strings.Index(href, marker); idx >= 0 {
			rest := href[idx+len(marker):]
			if end := strings.IndexAny(rest, "/?#"); end >= 0 {
				rest = rest[:end]
			}
			if ValidASIN(rest) {
				return rest
			}
		}
	}
	return ""
}
