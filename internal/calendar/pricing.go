// Package calendar holds the fixed date set and the pricing and capacity rules
// used to populate calendar records.
package calendar

import (
	"github.com/amjkhan-git/HMCC-Calendar/config"
	"github.com/amjkhan-git/HMCC-Calendar/internal/models"
)

// Quote is the derived pricing for one date.
type Quote struct {
	FoodAmount     float64            `json:"food_amount"`
	CleaningAmount float64            `json:"cleaning_amount"`
	Total          float64            `json:"total"`
	Tier           models.PricingTier `json:"tier"`
	Description    string             `json:"description"`
}

// Rules derives pricing and guest capacity from an immutable calendar config.
type Rules struct {
	cfg        config.CalendarConfig
	lastNights map[string]struct{}
}

func NewRules(cfg config.CalendarConfig) *Rules {
	set := make(map[string]struct{}, len(cfg.LastNights))
	for _, d := range cfg.LastNights {
		set[d] = struct{}{}
	}
	return &Rules{cfg: cfg, lastNights: set}
}

func (r *Rules) Config() config.CalendarConfig { return r.cfg }

func (r *Rules) IsLastNight(date string) bool {
	_, ok := r.lastNights[date]
	return ok
}

// IsWeekend treats Friday through Sunday as the weekend.
func IsWeekend(weekday string) bool {
	switch weekday {
	case "Friday", "Saturday", "Sunday":
		return true
	}
	return false
}

// DerivePricing picks the tier for a date. Last-nights membership wins over
// the weekend/weekday split.
func (r *Rules) DerivePricing(date, weekday string) Quote {
	var (
		rate config.TierRate
		tier models.PricingTier
	)
	switch {
	case r.IsLastNight(date):
		rate, tier = r.cfg.Pricing.LastNights, models.TierLastNights
	case IsWeekend(weekday):
		rate, tier = r.cfg.Pricing.Weekend, models.TierWeekend
	default:
		rate, tier = r.cfg.Pricing.Weekday, models.TierWeekday
	}
	return Quote{
		FoodAmount:     rate.Food,
		CleaningAmount: rate.Cleaning,
		Total:          rate.Total(),
		Tier:           tier,
		Description:    rate.Description,
	}
}

func (r *Rules) DeriveExpectedGuests(weekday string) int {
	if IsWeekend(weekday) {
		return r.cfg.WeekendGuests
	}
	return r.cfg.WeekdayGuests
}

// Description returns the configured description for a tier, or "" for none.
func (r *Rules) Description(tier *models.PricingTier) string {
	if tier == nil {
		return ""
	}
	switch *tier {
	case models.TierWeekday:
		return r.cfg.Pricing.Weekday.Description
	case models.TierWeekend:
		return r.cfg.Pricing.Weekend.Description
	case models.TierLastNights:
		return r.cfg.Pricing.LastNights.Description
	}
	return ""
}
