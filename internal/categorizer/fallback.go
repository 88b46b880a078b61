package categorizer

import (
	"strings"

	"spendlens/internal/banks"
	"spendlens/internal/models"
)

// Fallback confidence levels. A bank-supplied category is trusted more than a
// keyword guess; both stay below the 1.0 reserved for user-taught rules.
const (
	confidenceBankBacked = 0.95
	confidenceKeyword    = 0.80
)

// keywordRule pairs a predicate keyword list with the category it implies
type keywordRule struct {
	category models.Category
	keywords []string
}

// expenseCascade is evaluated in fixed order, first match wins. The order
// matters: debt payments and own-money transfers must be recognized before
// broader merchant keywords get a chance.
var expenseCascade = []keywordRule{
	{models.CategoryPayment, []string{
		"payment thank you", "autopay", "card payment", "online payment",
		"crcardpmt", "epay", "e-payment", "loan payment", "mortgage payment",
	}},
	{models.CategoryTransfer, []string{
		"venmo", "zelle", "transfer", "wire out", "wire in", "cash app",
		"paypal transfer", "withdrawal transfer", "xfer",
	}},
	{models.CategoryFoodDining, []string{
		"restaurant", "cafe", "coffee", "starbucks", "dunkin", "mcdonald",
		"chipotle", "pizza", "sushi", "taco", "burger", "grill", "diner",
		"bakery", "doordash", "grubhub", "ubereats", "uber eats", "bar & ",
		"brewery", "deli",
	}},
	{models.CategoryGroceries, []string{
		"grocery", "market", "supermarket", "whole foods", "trader joe",
		"wegmans", "safeway", "kroger", "aldi", "shoprite", "costco",
		"food co-op", "produce",
	}},
	{models.CategoryTransportation, []string{
		"uber", "lyft", "gas", "shell", "exxon", "chevron", "sunoco",
		"parking", "toll", "transit", "metro", "mta", "amtrak", "auto repair",
		"car wash", "dmv",
	}},
	{models.CategoryBillsUtilities, []string{
		"electric", "utility", "utilities", "water bill", "sewer",
		"internet", "comcast", "xfinity", "verizon", "t-mobile", "at&t",
		"insurance", "phone", "cable", "national grid",
	}},
	{models.CategoryEntertainment, []string{
		"netflix", "spotify", "hulu", "disney", "hbo", "cinema", "theater",
		"theatre", "steam", "playstation", "xbox", "nintendo", "concert",
		"ticketmaster", "twitch",
	}},
	{models.CategoryEducation, []string{
		"tuition", "university", "college", "school", "udemy", "coursera",
		"textbook", "student loan",
	}},
	{models.CategoryShopping, []string{
		"amazon", "target", "walmart", "best buy", "ebay", "etsy", "nike",
		"macys", "nordstrom", "clothing", "apparel", "mall",
	}},
	{models.CategoryHealthcare, []string{
		"pharmacy", "cvs", "walgreens", "rite aid", "doctor", "dental",
		"dentist", "medical", "hospital", "clinic", "optical", "urgent care",
	}},
	{models.CategoryTravel, []string{
		"airline", "airlines", "airways", "delta", "united", "jetblue",
		"southwest", "hotel", "motel", "airbnb", "expedia", "hertz", "avis",
		"resort", "cruise",
	}},
	{models.CategoryHousehold, []string{
		"home depot", "lowes", "ikea", "furniture", "hardware", "cleaning",
		"lawn", "pest control", "plumber", "hvac",
	}},
}

// creditRules classify positive amounts: refunds and earnings are Income,
// incoming person-to-person money is Transfer, card payments stay Payment.
var creditRules = []keywordRule{
	{models.CategoryPayment, []string{"payment thank you", "autopay", "card payment", "online payment"}},
	{models.CategoryTransfer, []string{"venmo", "zelle", "transfer", "cash app"}},
	{models.CategoryIncome, []string{
		"refund", "reversal", "cashback", "cash back", "rebate",
		"payroll", "direct dep", "salary", "interest", "dividend", "deposit",
	}},
}

func matchCascade(description string, rules []keywordRule) (models.Category, bool) {
	desc := strings.ToLower(description)
	for _, rule := range rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(desc, keyword) {
				return rule.category, true
			}
		}
	}
	return "", false
}

// smartCategorize is the deterministic fallback. It never fails: every
// transaction gets a category and a confidence, classifier or not.
//
// Priority: bank-native "payment" type, then a mapped bank-native category,
// then credit handling for positive amounts, then the expense keyword
// cascade, then Other.
func smartCategorize(t *models.Transaction) (models.Category, float64) {
	if strings.EqualFold(strings.TrimSpace(t.Type), "payment") {
		return models.CategoryPayment, confidenceBankBacked
	}

	if t.OriginalCategory != "" {
		if category, ok := banks.MapBankCategory(t.OriginalCategory, t.Description); ok {
			return category, confidenceBankBacked
		}
	}

	if t.Amount.IsPositive() {
		if category, ok := matchCascade(t.Description, creditRules); ok {
			return category, confidenceKeyword
		}
		return models.CategoryIncome, confidenceKeyword
	}

	if category, ok := matchCascade(t.Description, expenseCascade); ok {
		return category, confidenceKeyword
	}

	return models.CategoryOther, confidenceKeyword
}
