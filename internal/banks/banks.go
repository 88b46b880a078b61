// Package banks translates bank-native category labels from statement exports
// into canonical categories. Labels a bank applies too broadly to map safely
// (both banks' "Professional Services") are intentionally absent from the
// tables so they fall through to the keyword cascade instead of being guessed.
package banks

import (
	"strings"

	"spendlens/internal/models"
)

var chaseCategories = map[string]models.Category{
	"food & drink":          models.CategoryFoodDining,
	"groceries":             models.CategoryGroceries,
	"gas":                   models.CategoryTransportation,
	"automotive":            models.CategoryTransportation,
	"travel":                models.CategoryTravel,
	"shopping":              models.CategoryShopping,
	"bills & utilities":     models.CategoryBillsUtilities,
	"entertainment":         models.CategoryEntertainment,
	"health & wellness":     models.CategoryHealthcare,
	"home":                  models.CategoryHousehold,
	"education":             models.CategoryEducation,
	"personal":              models.CategoryOther,
	"gifts & donations":     models.CategoryOther,
	"fees & adjustments":    models.CategoryBillsUtilities,
	"miscellaneous":         models.CategoryOther,
}

var capitalOneCategories = map[string]models.Category{
	"dining":              models.CategoryFoodDining,
	"grocery":             models.CategoryGroceries,
	"gas/automotive":      models.CategoryTransportation,
	"airfare":             models.CategoryTravel,
	"lodging":             models.CategoryTravel,
	"other travel":        models.CategoryTravel,
	"entertainment":       models.CategoryEntertainment,
	"health care":         models.CategoryHealthcare,
	"insurance":           models.CategoryBillsUtilities,
	"phone/cable":         models.CategoryBillsUtilities,
	"internet":            models.CategoryBillsUtilities,
	"utilities":           models.CategoryBillsUtilities,
	"education":           models.CategoryEducation,
	"fee/interest charge": models.CategoryBillsUtilities,
	"payment/credit":      models.CategoryPayment,
	"other services":      models.CategoryOther,
	"other":               models.CategoryOther,
}

// groceryMerchants decides whether a Capital One "Merchandise" charge is
// groceries rather than general shopping
var groceryMerchants = []string{
	"market", "food", "grocery", "supermarket", "produce",
	"whole foods", "trader joe", "wegmans", "shoprite", "price chopper",
	"hannaford", "stop & shop", "food co-op", "honest weight",
	"costco", "sams", "bj's wholesale",
}

// MapChaseCategory maps a Chase-native category label to a canonical
// category. Returns false for empty input and for labels with no safe
// mapping.
func MapChaseCategory(bankCategory string) (models.Category, bool) {
	key := strings.ToLower(strings.TrimSpace(bankCategory))
	if key == "" {
		return "", false
	}
	category, ok := chaseCategories[key]
	return category, ok
}

// MapCapitalOneCategory maps a Capital One-native category label to a
// canonical category. "Merchandise" is merchant-sensitive: grocery-store
// descriptions map to Groceries, everything else to Shopping.
func MapCapitalOneCategory(bankCategory, merchantDescription string) (models.Category, bool) {
	key := strings.ToLower(strings.TrimSpace(bankCategory))
	if key == "" {
		return "", false
	}

	if key == "merchandise" {
		merchant := strings.ToLower(merchantDescription)
		for _, keyword := range groceryMerchants {
			if strings.Contains(merchant, keyword) {
				return models.CategoryGroceries, true
			}
		}
		return models.CategoryShopping, true
	}

	category, ok := capitalOneCategories[key]
	return category, ok
}

// MapBankCategory resolves a bank-native label when the issuing bank is
// unknown: Chase's table first, then Capital One's.
func MapBankCategory(bankCategory, merchantDescription string) (models.Category, bool) {
	if category, ok := MapChaseCategory(bankCategory); ok {
		return category, true
	}
	return MapCapitalOneCategory(bankCategory, merchantDescription)
}
