package catalogue

// Package is a purchasable subscription tier.
type Package struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	Price        int64  `yaml:"price" json:"price"`
	DailyAds     int    `yaml:"daily_ads" json:"daily_ads"`
	EarningPerAd int64  `yaml:"earning_per_ad" json:"earning_per_ad"`
	DurationDays int    `yaml:"duration_days" json:"duration_days"`
	Color        string `yaml:"color" json:"color,omitempty"`
}

// Ad is a timed viewing placement with a fixed reward.
type Ad struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Reward      int64  `yaml:"reward" json:"reward"`
	Duration    int    `yaml:"duration" json:"duration"` // seconds
	Thumbnail   string `yaml:"thumbnail" json:"thumbnail"`
}

// PaymentMethod is a channel accepted for deposits and withdrawals.
type PaymentMethod struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

type file struct {
	Packages       []Package       `yaml:"packages"`
	Ads            []Ad            `yaml:"ads"`
	PaymentMethods []PaymentMethod `yaml:"payment_methods"`
}
