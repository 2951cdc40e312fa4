// Package amazon drives the marketplace site through a browser session and
// extracts typed records from its markup. Selectors are specific to the
// site's current markup and are expected to break when that changes; the
// rule tables in selectors.go are the single place to fix them.
package amazon

// SearchResult is one search-results entry. Nodes missing an ASIN or a
// price are dropped during extraction rather than emitted with
// placeholders.
type SearchResult struct {
	ASIN      string `json:"asin"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	Prime     bool   `json:"prime"`
	Sponsored bool   `json:"sponsored,omitempty"`
}

// ImagePayload is an inline image extracted from a product page.
type ImagePayload struct {
	Data      string `json:"data"` // base64
	MediaType string `json:"media_type"`
}

// Product is the detail record for one catalog item.
type Product struct {
	ASIN          string        `json:"asin"`
	Title         string        `json:"title"`
	Price         string        `json:"price"`
	Rating        float64       `json:"rating,omitempty"`
	ReviewCount   int           `json:"review_count,omitempty"`
	SubscribeSave bool          `json:"subscribe_save"`
	ImageURL      string        `json:"image_url,omitempty"`
	Image         *ImagePayload `json:"image,omitempty"`
}

// CartItem is one line of the shopping cart.
type CartItem struct {
	Title        string `json:"title"`
	Price        string `json:"price"`
	Quantity     int    `json:"quantity"`
	ASIN         string `json:"asin,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	Link         string `json:"link,omitempty"`
	Availability string `json:"availability,omitempty"`
	Selected     bool   `json:"selected"`
}

// Cart is the current cart contents.
type Cart struct {
	IsEmpty   bool       `json:"is_empty"`
	Items     []CartItem `json:"items"`
	Subtotal  string     `json:"subtotal,omitempty"`
	ItemCount int        `json:"item_count"`
}

// Address is a delivery address on an order.
type Address struct {
	Name    string `json:"name,omitempty"`
	Street  string `json:"street,omitempty"`
	Country string `json:"country,omitempty"`
}

// OrderItem is one line item of a past order.
type OrderItem struct {
	Title      string `json:"title"`
	ASIN       string `json:"asin,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	Link       string `json:"link,omitempty"`
	Returnable bool   `json:"returnable"`
	ReturnBy   string `json:"return_by,omitempty"`
}

// Order is one order-history entry.
type Order struct {
	Number      string      `json:"number"`
	Date        string      `json:"date"`
	Total       string      `json:"total"`
	Status      string      `json:"status,omitempty"`
	CollectedOn string      `json:"collected_on,omitempty"`
	Address     *Address    `json:"address,omitempty"`
	Items       []OrderItem `json:"items"`
}

// AddToCartResult reports the outcome of an add-to-cart flow. Observed
// carries the confirmation element's text for diagnosis on failure.
type AddToCartResult struct {
	ASIN     string `json:"asin"`
	Added    bool   `json:"added"`
	Observed string `json:"observed,omitempty"`
}

// ClearCartResult reports how many of the originally observed cart items
// were actually removed. Removed may be lower than Observed; that is a
// partial success, not a failure.
type ClearCartResult struct {
	Observed int `json:"observed"`
	Removed  int `json:"removed"`
	Failed   int `json:"failed"`
}

// BuyNowResult is the mocked purchase confirmation. No real transaction
// ever happens.
type BuyNowResult struct {
	ASIN    string `json:"asin"`
	Mocked  bool   `json:"mocked"`
	Message string `json:"message"`
}
