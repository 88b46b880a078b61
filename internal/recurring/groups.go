package recurring

import (
	"strings"

	"github.com/shopspring/decimal"

	"spendlens/internal/models"
)

// semanticGroup buckets detected subscriptions by merchant keywords. Groups
// are tested in order and the first match wins; anything unmatched lands in
// Other Subscriptions.
type semanticGroup struct {
	name     string
	keywords []string
}

var semanticGroups = []semanticGroup{
	{"Streaming Services", []string{
		"netflix", "hulu", "disney", "hbo", "max", "paramount", "peacock",
		"youtube", "prime video", "apple tv",
	}},
	{"Music & Podcasts", []string{
		"spotify", "pandora", "apple music", "tidal", "audible", "sirius",
	}},
	{"Fitness & Health", []string{
		"gym", "fitness", "planet", "crunch", "peloton", "yoga", "equinox",
	}},
	{"Software & Tools", []string{
		"adobe", "microsoft", "github", "dropbox", "icloud", "google",
		"zoom", "notion", "canva",
	}},
	{"Utilities & Bills", []string{
		"electric", "electricity", "gas", "water", "internet", "phone",
		"cable", "insurance", "rent", "mortgage", "utility",
	}},
	{"News & Media", []string{
		"times", "post", "journal", "news", "substack", "medium", "economist",
	}},
}

const otherGroupName = "Other Subscriptions"

// groupSubscriptions partitions recurring transactions into semantic buckets
// and computes per-group monthly and annual totals. Groups with no members
// are omitted.
func groupSubscriptions(recurring []*models.RecurringTransaction) []*models.SubscriptionGroup {
	if len(recurring) == 0 {
		return []*models.SubscriptionGroup{}
	}

	byName := make(map[string]*models.SubscriptionGroup)
	order := make([]string, 0, len(semanticGroups)+1)

	groupFor := func(merchant string) string {
		lower := strings.ToLower(merchant)
		for _, group := range semanticGroups {
			for _, keyword := range group.keywords {
				if strings.Contains(lower, keyword) {
					return group.name
				}
			}
		}
		return otherGroupName
	}

	three := decimal.NewFromInt(3)
	twelve := decimal.NewFromInt(12)

	for _, r := range recurring {
		name := groupFor(r.Merchant)
		group, ok := byName[name]
		if !ok {
			group = &models.SubscriptionGroup{
				GroupName:    name,
				TotalMonthly: decimal.Zero,
				TotalAnnual:  decimal.Zero,
			}
			byName[name] = group
			order = append(order, name)
		}

		group.Subscriptions = append(group.Subscriptions, r)
		group.Count++

		switch r.Frequency {
		case models.FrequencyMonthly:
			group.TotalMonthly = group.TotalMonthly.Add(r.AverageAmount)
		case models.FrequencyQuarterly:
			group.TotalMonthly = group.TotalMonthly.Add(r.AverageAmount.Div(three))
		case models.FrequencyAnnual:
			group.TotalAnnual = group.TotalAnnual.Add(r.AverageAmount)
		}
	}

	groups := make([]*models.SubscriptionGroup, 0, len(byName))
	for _, name := range order {
		group := byName[name]
		group.TotalAnnual = group.TotalAnnual.Add(group.TotalMonthly.Mul(twelve)).Round(2)
		group.TotalMonthly = group.TotalMonthly.Round(2)
		groups = append(groups, group)
	}

	return groups
}
