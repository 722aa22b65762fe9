package assist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"phonestore/internal/models"
)

type stubFinder struct {
	products []models.Product
	err      error
	lastQ    string
}

func (f *stubFinder) FindProducts(ctx context.Context, query string) ([]models.Product, error) {
	f.lastQ = query
	if f.err != nil {
		return nil, f.err
	}

	var hits []models.Product
	for _, p := range f.products {
		name := strings.ToLower(p.Name)
		brand := strings.ToLower(p.Brand)
		q := strings.ToLower(query)
		if strings.Contains(name, q) || strings.Contains(brand, q) {
			hits = append(hits, p)
		}
	}
	return hits, nil
}

func catalogFinder() *stubFinder {
	return &stubFinder{products: []models.Product{
		{Name: "iPhone 15", Brand: "Apple", Price: 19990000},
		{Name: "iPhone 15 Pro Max", Brand: "Apple", Price: 29990000},
		{Name: "Galaxy S24", Brand: "Samsung", Price: 22990000},
	}}
}

func TestParseCheckoutIsTerminal(t *testing.T) {
	tests := []string{
		"thanh toán",
		"cho mình thanh toán nhé",
		"tìm iphone rồi thanh toán luôn",
		"Thanh Toán",
	}
	for _, msg := range tests {
		res, err := Parse(context.Background(), catalogFinder(), msg)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", msg, err)
		}
		if res.Action != ActionCheckout {
			t.Fatalf("Parse(%q) = %s, want checkout", msg, res.Action)
		}
	}
}

func TestParseAddToCartWithProductMatch(t *testing.T) {
	res, err := Parse(context.Background(), catalogFinder(), "thêm iphone 15 vào giỏ")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if res.Action != ActionAddToCart {
		t.Fatalf("expected add_to_cart, got %s", res.Action)
	}
	if res.Query != "iphone 15" {
		t.Fatalf("expected residual query %q, got %q", "iphone 15", res.Query)
	}
	if len(res.Products) != 1 || res.Products[0].Name != "iPhone 15" {
		t.Fatalf("expected top match iPhone 15, got %+v", res.Products)
	}
}

func TestParseBuyVerbAlsoAddsToCart(t *testing.T) {
	res, err := Parse(context.Background(), catalogFinder(), "mua galaxy s24")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if res.Action != ActionAddToCart {
		t.Fatalf("expected add_to_cart for buy verb, got %s", res.Action)
	}
	if len(res.Products) != 1 || res.Products[0].Brand != "Samsung" {
		t.Fatalf("unexpected match %+v", res.Products)
	}
}

func TestParseSearchReturnsAllMatches(t *testing.T) {
	res, err := Parse(context.Background(), catalogFinder(), "tìm iphone")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if res.Action != ActionSearch {
		t.Fatalf("expected search, got %s", res.Action)
	}
	if len(res.Products) != 2 {
		t.Fatalf("expected both iPhone models, got %d", len(res.Products))
	}
}

func TestParseAvailabilityQuestionIsSearch(t *testing.T) {
	finder := catalogFinder()
	res, err := Parse(context.Background(), finder, "shop có iphone 15 không")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if res.Action != ActionSearch {
		t.Fatalf("expected search for availability question, got %s", res.Action)
	}
	if finder.lastQ != "iphone 15" {
		t.Fatalf("expected stripped query %q, got %q", "iphone 15", finder.lastQ)
	}
	if len(res.Products) != 2 {
		t.Fatalf("expected both iPhone models, got %d", len(res.Products))
	}
}

func TestParseIntentWithNoProductHitTalksNotFound(t *testing.T) {
	res, err := Parse(context.Background(), catalogFinder(), "tìm nokia 3310")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if res.Action != ActionTalk {
		t.Fatalf("expected talk, got %s", res.Action)
	}
	if !strings.Contains(res.Reply, "nokia 3310") {
		t.Fatalf("expected reply to echo the query, got %q", res.Reply)
	}
}

func TestParseGreeting(t *testing.T) {
	res, err := Parse(context.Background(), catalogFinder(), "xin chào")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if res.Action != ActionTalk {
		t.Fatalf("expected talk, got %s", res.Action)
	}
	if res.Reply == fallbackResult().Reply {
		t.Fatal("expected a greeting reply, got the generic fallback")
	}
}

func TestParseFallback(t *testing.T) {
	for _, msg := range []string{"", "   ", "ờ"} {
		res, err := Parse(context.Background(), catalogFinder(), msg)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", msg, err)
		}
		if res.Action != ActionTalk {
			t.Fatalf("Parse(%q) = %s, want talk", msg, res.Action)
		}
	}
}

func TestParsePropagatesFinderError(t *testing.T) {
	finder := &stubFinder{err: errors.New("db down")}
	if _, err := Parse(context.Background(), finder, "tìm iphone"); err == nil {
		t.Fatal("expected finder error to propagate")
	}
}

func TestParseStripsFillerFromQuery(t *testing.T) {
	finder := catalogFinder()
	if _, err := Parse(context.Background(), finder, "cho mình xem cái iphone 15 với"); err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if finder.lastQ != "iphone 15" {
		t.Fatalf("expected stripped query %q, got %q", "iphone 15", finder.lastQ)
	}
}
