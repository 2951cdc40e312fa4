package amazon

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var cartCountPattern = regexp.MustCompile(`\((\d+) items?\)`)

// ExtractCart converts cart-page markup into a Cart record. The empty-cart
// phrase is checked first and wins over any item-like nodes that happen to
// be present (recommendation widgets reuse the item markup).
func ExtractCart(html string) (*Cart, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	container := doc.Find(cartRules.Container)
	if container.Length() == 0 {
		container = doc.Find("body")
	}

	if strings.Contains(container.Text(), cartRules.EmptyPhrase) {
		return &Cart{IsEmpty: true, Items: []CartItem{}}, nil
	}

	cart := &Cart{Items: []CartItem{}}
	container.Find(cartRules.Item).Each(func(_ int, node *goquery.Selection) {
		item := CartItem{
			Title:        cleanText(node.Find(cartRules.Title).First().Text()),
			Price:        strings.TrimSpace(node.Find(cartRules.Price).First().Text()),
			Availability: cleanText(node.Find(cartRules.Availability).First().Text()),
			Quantity:     1,
			Selected:     true,
		}

		// An item with neither title nor price is a markup fragment, not a
		// cart line; partial data is worse than no data here.
		if item.Title == "" && item.Price == "" {
			return
		}

		if qty := strings.TrimSpace(node.Find(cartRules.Quantity).First().Text()); qty != "" {
			if n, err := strconv.Atoi(qty); err == nil {
				item.Quantity = n
			}
		} else if val, ok := node.Find(cartRules.Quantity).First().Attr("value"); ok {
			if n, err := strconv.Atoi(val); err == nil {
				item.Quantity = n
			}
		}

		if asin, ok := node.Attr(cartRules.ItemASINAttr); ok && ValidASIN(asin) {
			item.ASIN = asin
		}
		if src, ok := node.Find(cartRules.Image).Attr("src"); ok {
			item.ImageURL = src
		}
		if href, ok := node.Find(cartRules.Link).Attr("href"); ok {
			item.Link = href
		}
		if checkbox := node.Find(cartRules.Checkbox); checkbox.Length() > 0 {
			_, item.Selected = checkbox.Attr("checked")
		}

		cart.Items = append(cart.Items, item)
	})

	cart.Subtotal = strings.TrimSpace(container.Find(cartRules.Subtotal).First().Text())

	// The subtotal label embeds the authoritative count ("Subtotal (3
	// items):"); the number of extracted lines is the fallback.
	cart.ItemCount = len(cart.Items)
	if label := container.Find(cartRules.CountLabel).Text(); label != "" {
		if m := cartCountPattern.FindStringSubmatch(label); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				cart.ItemCount = n
			}
		}
	}

	return cart, nil
}

// CountDeleteControls returns how many delete controls the cart markup
// carries. Mock clear-cart uses it to report the observed item count.
func CountDeleteControls(html string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, err
	}
	return doc.Find(cartRules.Delete).Length(), nil
}
