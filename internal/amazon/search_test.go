package amazon

import "testing"

const searchHTML = `
<html><body>
<div class="s-main-slot">
  <div data-component-type="s-search-result" data-asin="B0ABCD1234">
    <h2><a><span>Wireless Mouse, Ergonomic</span></a></h2>
    <div class="a-price"><span class="a-offscreen">$24.99</span></div>
    <i class="a-icon a-icon-prime"></i>
  </div>
  <div data-component-type="s-search-result" data-asin="B0EFGH5678">
    <span class="puis-sponsored-label-text">Sponsored</span>
    <h2><a><span>Gaming Mouse RGB</span></a></h2>
    <div class="a-price"><span class="a-offscreen">$49.99</span></div>
  </div>
  <div data-component-type="s-search-result" data-asin="B0NOPRICE1">
    <h2><a><span>Unavailable Item</span></a></h2>
  </div>
  <div data-component-type="s-search-result" data-asin="">
    <h2><a><span>No ASIN Item</span></a></h2>
    <div class="a-price"><span class="a-offscreen">$9.99</span></div>
  </div>
</div>
</body></html>`

func TestExtractSearchResults(t *testing.T) {
	results, err := ExtractSearchResults(searchHTML)
	if err != nil {
		t.Fatalf("ExtractSearchResults failed: %v", err)
	}

	// Nodes without an ASIN or a price are dropped, not emitted with
	// placeholders.
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	first := results[0]
	if first.ASIN != "B0ABCD1234" {
		t.Errorf("ASIN = %q", first.ASIN)
	}
	if first.Title != "Wireless Mouse, Ergonomic" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Price != "$24.99" {
		t.Errorf("Price = %q", first.Price)
	}
	if !first.Prime {
		t.Error("Prime flag not detected")
	}
	if first.Sponsored {
		t.Error("first result wrongly flagged sponsored")
	}

	second := results[1]
	if !second.Sponsored {
		t.Error("sponsored flag not detected")
	}
	if second.Prime {
		t.Error("second result wrongly flagged prime")
	}
}

func TestExtractSearchResults_EmptyPage(t *testing.T) {
	results, err := ExtractSearchResults("<html><body><div>No results for query</div></body></html>")
	if err != nil {
		t.Fatalf("ExtractSearchResults failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results from empty page", len(results))
	}
}

func TestValidASIN(t *testing.T) {
	tests := []struct {
		asin string
		want bool
	}{
		{"B0ABCD1234", true},
		{"0747532699", true},
		{"B0ABC", false},
		{"B0ABCD12345", false},
		{"b0abcd1234", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidASIN(tt.asin); got != tt.want {
			t.Errorf("ValidASIN(%q) = %v, want %v", tt.asin, got, tt.want)
		}
	}
}

func TestIsLoginRedirect(t *testing.T) {
	login := `<html><body><form name="signIn"><input id="ap_email"><input id="ap_password"></form></body></html>`
	if !IsLoginRedirect(login) {
		t.Error("sign-in form not detected")
	}

	normal := `<html><body><div data-component-type="s-search-result"></div></body></html>`
	if IsLoginRedirect(normal) {
		t.Error("normal page misdetected as login redirect")
	}
}
