package amazon

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	ratingPattern = regexp.MustCompile(`([\d.]+) out of 5`)
	countPattern  = regexp.MustCompile(`([\d,]+)`)
	dataURLPrefix = regexp.MustCompile(`^data:(image/[a-z+]+);base64,`)
)

// ExtractProduct converts a product detail page into a Product record.
func ExtractProduct(html, asin string) (*Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	p := &Product{
		ASIN:  asin,
		Title: cleanText(doc.Find(productRules.Title).First().Text()),
		Price: strings.TrimSpace(doc.Find(productRules.Price).First().Text()),
	}

	if title, ok := doc.Find(productRules.RatingPopover).Attr("title"); ok {
		if m := ratingPattern.FindStringSubmatch(title); m != nil {
			p.Rating, _ = strconv.ParseFloat(m[1], 64)
		}
	}
	if text := doc.Find(productRules.ReviewCount).First().Text(); text != "" {
		if m := countPattern.FindStringSubmatch(text); m != nil {
			p.ReviewCount, _ = strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		}
	}

	p.SubscribeSave = doc.Find(productRules.SubscribeSave).Length() > 0

	if src, ok := doc.Find(productRules.Image).Attr("src"); ok {
		if m := dataURLPrefix.FindStringSubmatch(src); m != nil {
			p.Image = &ImagePayload{
				MediaType: m[1],
				Data:      src[len(m[0]):],
			}
		} else {
			p.ImageURL = src
		}
	}

	return p, nil
}

// ExtractAddToCartConfirmation inspects the post-click page and reports
// whether the confirmation element carried one of the acceptance phrases.
// The observed text is returned either way so a failure is diagnosable.
func ExtractAddToCartConfirmation(html string) (bool, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false, "", err
	}

	observed := cleanText(doc.Find(addToCartRules.Confirmation).First().Text())
	for _, phrase := range addToCartRules.Accepted {
		if strings.Contains(observed, phrase) {
			return true, observed, nil
		}
	}
	return false, observed, nil
}
