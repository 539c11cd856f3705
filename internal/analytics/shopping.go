package analytics

import (
	"math"
	"strings"

	"github.com/kalambet/semplan/internal/plan"
)

const (
	// ShoppingGroupTitle names the single shopping group.
	ShoppingGroupTitle = "Product-focused Terms"
	maxShoppingItems   = 40
)

var purchaseTokens = []string{
	"buy", "price", "deal", "discount", "coupon",
	"best", "shop", "for sale", "free shipping",
}

// ShoppingItem is a keyword suggested for a Shopping campaign.
type ShoppingItem struct {
	Keyword              string  `json:"keyword"`
	EstimatedImpressions int     `json:"estimatedImpressions"`
	SuggestedCPC         float64 `json:"suggestedCpc"`
}

// ShoppingGroup is a titled list of shopping items.
type ShoppingGroup struct {
	Title string         `json:"title"`
	Items []ShoppingItem `json:"items"`
}

// ShoppingPlan selects keywords with purchase intent, up to 40, into one
// group. It returns an empty slice when no keyword qualifies.
func ShoppingPlan(groups []plan.AdGroup) []ShoppingGroup {
	var items []ShoppingItem
	for _, g := range groups {
		for _, k := range g.Keywords {
			if len(items) == maxShoppingItems {
				break
			}
			if !hasPurchaseIntent(k.Keyword) {
				continue
			}
			cpc := k.CPCLow
			if cpc == 0 {
				cpc = 1
			}
			items = append(items, ShoppingItem{
				Keyword:              k.Keyword,
				EstimatedImpressions: max(200, int(math.Round(float64(k.AvgMonthlySearches)*0.6))),
				SuggestedCPC:         math.Max(0.5, cpc),
			})
		}
	}
	if len(items) == 0 {
		return []ShoppingGroup{}
	}
	return []ShoppingGroup{{Title: ShoppingGroupTitle, Items: items}}
}

func hasPurchaseIntent(keyword string) bool {
	t := strings.ToLower(keyword)
	for _, pt := range purchaseTokens {
		if strings.Contains(t, pt) {
			return true
		}
	}
	return false
}
