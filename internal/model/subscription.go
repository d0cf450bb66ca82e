package model

import (
	"time"
)

type Subscription struct {
	ID                     string     `db:"id" json:"id"`
	UserID                 string     `db:"user_id" json:"user_id"`
	PlanID                 string     `db:"plan_id" json:"plan_id"`
	Status                 string     `db:"status" json:"status"`
	Provider               string     `db:"provider" json:"provider"`
	ProviderCustomerID     *string    `db:"provider_customer_id" json:"-"`
	ProviderSubscriptionID *string    `db:"provider_subscription_id" json:"-"`
	CurrentPeriodEnd       *time.Time `db:"current_period_end" json:"current_period_end"`
	Amount                 *int       `db:"amount" json:"amount"`
	Currency               string     `db:"currency" json:"currency"`
	Interval               *string    `db:"interval" json:"interval"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
)

const (
	ProviderPolar  = "polar"
	ProviderStripe = "stripe"
)

const (
	PlanFree    = "free"
	PlanPro     = "pro"
	PlanPremium = "premium"
)

const (
	SubscriptionIntervalMonthly = "monthly"
	SubscriptionIntervalYearly  = "yearly"
)

func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}

func (s *Subscription) IsPaid() bool {
	return s.PlanID != PlanFree && s.IsActive()
}
