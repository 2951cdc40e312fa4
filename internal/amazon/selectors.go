package amazon

// Selector rule tables. Markup drift on the site is fixed here, not in the
// extraction code.

// searchRules locate fields inside one search-result node.
var searchRules = struct {
	Result    string
	ASINAttr  string
	Title     string
	Price     string
	Prime     string
	Sponsored string
}{
	Result:    `div[data-component-type="s-search-result"]`,
	ASINAttr:  "data-asin",
	Title:     "h2 span",
	Price:     ".a-price .a-offscreen",
	Prime:     "i.a-icon-prime",
	Sponsored: ".puis-sponsored-label-text",
}

// productRules locate fields on a product detail page.
var productRules = struct {
	Title         string
	Price         string
	RatingPopover string
	ReviewCount   string
	OneTime       string
	SubscribeSave string
	Image         string
}{
	Title:         "#productTitle",
	Price:         "#corePrice_feature_div .a-offscreen, .a-price .a-offscreen",
	RatingPopover: "#acrPopover",
	ReviewCount:   "#acrCustomerReviewText",
	OneTime:       "#newAccordionRow_0 input[type=radio], #oneTimeBuyBox input[type=radio]",
	SubscribeSave: "#snsAccordionRowMiddle, #sndbox-snsAccordion",
	Image:         "#landingImage",
}

// cartRules locate fields on the cart page.
var cartRules = struct {
	Container    string
	EmptyPhrase  string
	Item         string
	ItemASINAttr string
	Title        string
	Price        string
	Quantity     string
	Image        string
	Link         string
	Availability string
	Checkbox     string
	Subtotal     string
	CountLabel   string
	Delete       string
}{
	Container:    "#sc-active-cart",
	EmptyPhrase:  "Your Amazon Cart is empty",
	Item:         ".sc-list-item",
	ItemASINAttr: "data-asin",
	Title:        ".sc-product-title",
	Price:        ".sc-product-price",
	Quantity:     ".a-dropdown-prompt, input[name=quantityBox]",
	Image:        "img.sc-product-image",
	Link:         "a.sc-product-link",
	Availability: ".sc-product-availability",
	Checkbox:     ".sc-item-check-checkbox input[type=checkbox]",
	Subtotal:     "#sc-subtotal-amount-activecart .sc-price",
	CountLabel:   "#sc-subtotal-label-activecart",
	Delete:       `input[data-action="delete"], input[value="Delete"]`,
}

// addToCartRules locate the controls and confirmation of the add flow.
var addToCartRules = struct {
	AddButton       string
	CoverageDecline string
	Confirmation    string
	Accepted        []string
}{
	AddButton:       "#add-to-cart-button",
	CoverageDecline: "#attachSiNoCoverage, #attach-si-no-coverage",
	Confirmation:    "#NATC_SMART_WAGON_CONF_MSG_SUCCESS, #huc-v2-order-row-confirm-text, #sw-atc-confirmation h1",
	Accepted:        []string{"Added to cart", "Added to basket"},
}

// orderRules locate fields on the order-history page.
var orderRules = struct {
	Card            string
	Number          string
	Date            string
	Total           string
	Status          string
	CollectedPrefix string
	ReturnUntil     string
	Address         string
	Item            string
	ItemTitle       string
	ItemLink        string
	ItemImage       string
	ReturnControl   string
}{
	Card:            ".order-card",
	Number:          ".yohtmlc-order-id span[dir=ltr]",
	Date:            ".order-info .order-date span.a-color-secondary",
	Total:           ".order-info .order-total span.a-color-secondary",
	Status:          ".delivery-box .a-size-medium",
	CollectedPrefix: "Collected on ",
	ReturnUntil:     " until ",
	Address:         ".displayAddressDiv li",
	Item:            ".yohtmlc-item",
	ItemTitle:       ".yohtmlc-product-title, a.a-link-normal",
	ItemLink:        "a.a-link-normal",
	ItemImage:       "img",
	ReturnControl:   ".yohtmlc-return-text, .return-eligible",
}

// loginRules detect the identity-provider form a logged-out session is
// redirected to.
var loginRules = struct {
	Fields []string
}{
	Fields: []string{"#ap_email", "#ap_password", "form[name=signIn]"},
}
