package model

// Subscription tiers. Paid tiers come from the payment provider's product
// metadata; anything without an active subscription is on the free tier.
const (
	TierFree = "free"
	TierPro  = "pro"
)

// Billing statuses.
const (
	BillingActive   = "active"
	BillingInactive = "inactive"
)

// FreeMemberLimit is the member cap for organizations on the free tier.
const FreeMemberLimit = 5

// Organization is a tenant: all items and members hang off one of these.
type Organization struct {
	BaseModel
	Name          string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Tier          string `gorm:"type:varchar(50);default:'free'" json:"tier"`
	BillingStatus string `gorm:"type:varchar(20);default:'inactive'" json:"billing_status"`
	MemberLimit   int    `gorm:"default:5" json:"member_limit"`

	// Payment provider references
	CustomerID     string `gorm:"type:varchar(255);index" json:"-"`
	SubscriptionID string `gorm:"type:varchar(255)" json:"-"`
}
