package intasend

import "github.com/hitoshi/eduassist/internal/model"

var premiumFeatures = []string{
	"Unlimited quiz questions",
	"Unlimited flashcards",
	"Advanced AI models",
	"Progress analytics",
	"Priority support",
}

// Plans はプレミアムプランの一覧を返す。呼び出しごとに新しいスライスを返す。
func Plans() []model.Plan {
	return []model.Plan{
		{
			Name:     "Premium Monthly",
			Price:    500,
			Currency: model.DefaultCurrency,
			Features: append([]string(nil), premiumFeatures...),
			Duration: "1 month",
		},
		{
			Name:     "Premium Yearly",
			Price:    5000,
			Currency: model.DefaultCurrency,
			Features: append([]string(nil), premiumFeatures...),
			Duration: "1 year",
			Discount: "17% off",
		},
	}
}
