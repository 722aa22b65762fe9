package assist

import (
	"context"
	"fmt"
	"strings"

	"phonestore/internal/models"
)

// Action is the classified purpose of a chat utterance.
type Action string

const (
	ActionSearch    Action = "search"
	ActionAddToCart Action = "add_to_cart"
	ActionCheckout  Action = "checkout"
	ActionTalk      Action = "talk"
)

// ProductFinder looks up catalog products whose name or brand contains the
// query. The chat engine stays free of database concerns behind it.
type ProductFinder interface {
	FindProducts(ctx context.Context, query string) ([]models.Product, error)
}

// Result is the assistant's answer to one utterance.
type Result struct {
	Action   Action           `json:"action"`
	Reply    string           `json:"reply"`
	Query    string           `json:"query,omitempty"`
	Products []models.Product `json:"products,omitempty"`
}

// Keyword phrases, checked as case-insensitive substrings. Longer phrases
// come first so that stripping "thêm vào giỏ" wins over the bare "thêm".
var (
	checkoutKeywords = []string{
		"thanh toán", "thanh toan",
		"đặt hàng", "dat hang",
		"mua ngay",
		"checkout",
	}

	addToCartKeywords = []string{
		"thêm vào giỏ", "them vao gio",
		"bỏ vào giỏ", "bo vao gio",
		"cho vào giỏ", "cho vao gio",
		"vào giỏ", "vao gio",
		"thêm", "them",
	}

	buyKeywords = []string{
		"mua giúp", "mua giup",
		"mua", "đặt", "dat",
	}

	searchKeywords = []string{
		"tìm kiếm", "tim kiem",
		"tìm", "tim",
		"xem", "kiếm", "kiem",
		"search",
	}

	greetingKeywords = []string{
		"xin chào", "xin chao",
		"chào", "chao",
		"hello", "hi",
	}

	fillerWords = []string{
		"cho", "tôi", "toi", "mình", "minh", "bạn", "ban",
		"giúp", "giup", "với", "voi", "nhé", "nhe", "ạ", "a",
		"cái", "cai", "chiếc", "chiec", "một", "mot",
		"sản", "san", "phẩm", "pham", "hàng", "hang",
		"đi", "di", "là", "la", "cần", "can", "muốn", "muon",
		"có", "co", "không", "khong", "còn", "con", "shop",
	}
)

// Parse maps a free-text utterance to exactly one action. Rules run in a
// fixed order and the first match wins; keyword list order is the only
// tie-break.
func Parse(ctx context.Context, finder ProductFinder, message string) (Result, error) {
	text := normalize(message)
	if text == "" {
		return fallbackResult(), nil
	}

	// Rule 1: any checkout phrase is terminal, whatever else the text says.
	if containsAny(text, checkoutKeywords) {
		return Result{
			Action: ActionCheckout,
			Reply:  "Mình sẽ đưa bạn đến trang thanh toán nhé!",
		}, nil
	}

	// Rule 2: add-to-cart phrases outrank generic buy verbs, which outrank
	// search verbs.
	hasAdd := containsAny(text, addToCartKeywords)
	hasBuy := containsAny(text, buyKeywords)
	hasSearch := containsAny(text, searchKeywords) || isAvailabilityQuestion(text)

	// Rule 3: strip matched phrases and filler to get the product query.
	query := text
	query = stripPhrases(query, addToCartKeywords)
	query = stripPhrases(query, buyKeywords)
	query = stripPhrases(query, searchKeywords)
	query = stripFiller(query)

	if len([]rune(query)) > 1 {
		products, err := finder.FindProducts(ctx, query)
		if err != nil {
			return Result{}, err
		}

		if len(products) > 0 {
			if hasAdd || hasBuy {
				top := products[0]
				return Result{
					Action:   ActionAddToCart,
					Reply:    fmt.Sprintf("Đã thêm %s vào giỏ hàng của bạn.", top.Name),
					Query:    query,
					Products: products[:1],
				}, nil
			}
			return Result{
				Action:   ActionSearch,
				Reply:    fmt.Sprintf("Mình tìm thấy %d sản phẩm cho \"%s\".", len(products), query),
				Query:    query,
				Products: products,
			}, nil
		}

		if hasAdd || hasBuy || hasSearch {
			return Result{
				Action: ActionTalk,
				Reply:  fmt.Sprintf("Xin lỗi, mình không tìm thấy sản phẩm nào cho \"%s\".", query),
				Query:  query,
			}, nil
		}
	}

	if containsAny(text, greetingKeywords) {
		return Result{
			Action: ActionTalk,
			Reply:  "Xin chào! Mình có thể giúp bạn tìm điện thoại, thêm vào giỏ hoặc thanh toán.",
		}, nil
	}

	return fallbackResult(), nil
}

func fallbackResult() Result {
	return Result{
		Action: ActionTalk,
		Reply:  "Mình chưa hiểu ý bạn. Bạn có thể thử \"tìm iPhone 15\" hoặc \"thanh toán\" nhé.",
	}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// isAvailabilityQuestion spots the "có ... không" question frame, which asks
// whether something is in stock and counts as a search.
func isAvailabilityQuestion(text string) bool {
	words := strings.Fields(text)
	hasCo := false
	for _, w := range words {
		if w == "có" || w == "co" {
			hasCo = true
		}
		if hasCo && (w == "không" || w == "khong") {
			return true
		}
	}
	return false
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func stripPhrases(text string, phrases []string) string {
	for _, p := range phrases {
		text = strings.ReplaceAll(text, p, " ")
	}
	return strings.Join(strings.Fields(text), " ")
}

func stripFiller(text string) string {
	words := strings.Fields(text)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		filler := false
		for _, f := range fillerWords {
			if w == f {
				filler = true
				break
			}
		}
		if !filler {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
