package amazon

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopctl/shopctl/internal/profile"
	"github.com/shopctl/shopctl/internal/session"
)

// newMockClient builds a client with every operation served from
// snapshots, so no browser is involved.
func newMockClient(t *testing.T, snapshots map[Operation]string) *Client {
	t.Helper()

	store := profile.NewStore(profile.Config{Dir: t.TempDir()})
	cookies, _ := json.Marshal([]profile.Cookie{{Name: "session-id", Value: "v", Domain: ".amazon.com"}})
	if err := os.WriteFile(store.Path("personal"), cookies, 0o600); err != nil {
		t.Fatal(err)
	}
	sess := session.New(store)

	snapDir := t.TempDir()
	dir := NewSnapshotDir(snapDir)
	mock := make(map[Operation]bool)
	for op, html := range snapshots {
		if _, err := dir.Write(op, html); err != nil {
			t.Fatal(err)
		}
		mock[op] = true
	}

	return NewClient(sess, nil, Config{SnapshotsDir: snapDir, MockOps: mock})
}

func TestClient_SearchFromSnapshot(t *testing.T) {
	c := newMockClient(t, map[Operation]string{OpSearch: searchHTML})

	results, err := c.Search(context.Background(), "wireless mouse")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}

func TestClient_ProductFromSnapshot(t *testing.T) {
	c := newMockClient(t, map[Operation]string{OpProduct: productHTML})

	p, err := c.Product(context.Background(), "B0ABCD1234")
	if err != nil {
		t.Fatalf("Product failed: %v", err)
	}
	if p.Title == "" || p.Price == "" {
		t.Errorf("product fields missing: %+v", p)
	}
}

func TestClient_Product_InvalidASIN(t *testing.T) {
	c := newMockClient(t, nil)
	if _, err := c.Product(context.Background(), "nope"); !errors.Is(err, ErrInvalidASIN) {
		t.Errorf("error = %v, want ErrInvalidASIN", err)
	}
}

func TestClient_CartFromSnapshot(t *testing.T) {
	c := newMockClient(t, map[Operation]string{OpCart: cartHTML})

	cart, err := c.Cart(context.Background())
	if err != nil {
		t.Fatalf("Cart failed: %v", err)
	}
	if cart.IsEmpty || len(cart.Items) != 2 {
		t.Errorf("cart = %+v", cart)
	}
}

func TestClient_OrdersFromSnapshot(t *testing.T) {
	c := newMockClient(t, map[Operation]string{OpOrders: ordersHTML})

	orders, err := c.Orders(context.Background())
	if err != nil {
		t.Fatalf("Orders failed: %v", err)
	}
	if len(orders) != 2 {
		t.Errorf("got %d orders", len(orders))
	}
}

func TestClient_AddToCartFromSnapshot(t *testing.T) {
	tests := []struct {
		name      string
		confText  string
		wantAdded bool
	}{
		{"accepted", "Added to cart", true},
		{"rejected", "Item temporarily unavailable", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := `<html><body><div id="NATC_SMART_WAGON_CONF_MSG_SUCCESS">` + tt.confText + `</div></body></html>`
			c := newMockClient(t, map[Operation]string{OpAddToCart: html})

			res, err := c.AddToCart(context.Background(), "B0ABCD1234")
			if err != nil {
				t.Fatalf("AddToCart failed: %v", err)
			}
			if res.Added != tt.wantAdded {
				t.Errorf("Added = %v, want %v", res.Added, tt.wantAdded)
			}
			if res.Observed != tt.confText {
				t.Errorf("Observed = %q, want %q", res.Observed, tt.confText)
			}
		})
	}
}

func TestClient_ClearCartFromSnapshot(t *testing.T) {
	html := `<html><body><div id="sc-active-cart">
<input data-action="delete"><input data-action="delete">
</div></body></html>`
	c := newMockClient(t, map[Operation]string{OpClearCart: html})

	res, err := c.ClearCart(context.Background())
	if err != nil {
		t.Fatalf("ClearCart failed: %v", err)
	}
	if res.Observed != 2 || res.Removed != 2 {
		t.Errorf("result = %+v, want observed=removed=2", res)
	}
}

func TestClient_MockBuyNow(t *testing.T) {
	c := newMockClient(t, nil)

	res, err := c.MockBuyNow(context.Background(), "B0ABCD1234")
	if err != nil {
		t.Fatalf("MockBuyNow failed: %v", err)
	}
	if !res.Mocked {
		t.Error("buy now must always report mocked")
	}
	if res.ASIN != "B0ABCD1234" {
		t.Errorf("ASIN = %q", res.ASIN)
	}

	if _, err := c.MockBuyNow(context.Background(), "bad"); !errors.Is(err, ErrInvalidASIN) {
		t.Errorf("error = %v, want ErrInvalidASIN", err)
	}
}

func TestClient_MissingSnapshotFails(t *testing.T) {
	c := newMockClient(t, nil)
	c.cfg.MockOps = map[Operation]bool{OpCart: true}

	if _, err := c.Cart(context.Background()); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("error = %v, want ErrNoSnapshot", err)
	}
}

func TestBoundedCtx_CallerCancelPropagates(t *testing.T) {
	caller, cancelCaller := context.WithCancel(context.Background())
	ctx, cancel := boundedCtx(context.Background(), caller, time.Minute)
	defer cancel()

	cancelCaller()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("caller cancellation did not reach the derived context")
	}
}

func TestBoundedCtx_TimeoutFiresWithoutCaller(t *testing.T) {
	ctx, cancel := boundedCtx(context.Background(), context.Background(), 10*time.Millisecond)
	defer cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("timeout did not fire")
	}
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", ctx.Err())
	}
}

func TestBoundedCtx_CancelStopsCallerWatch(t *testing.T) {
	caller, cancelCaller := context.WithCancel(context.Background())
	defer cancelCaller()

	ctx, cancel := boundedCtx(context.Background(), caller, time.Minute)
	cancel()
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Errorf("err = %v, want Canceled", ctx.Err())
	}
}
