package model

import "github.com/google/uuid"

// ItemStatus is the stock status shown for an item. It is stored as
// entered and never derived from quantity vs minimum stock: an item can
// report "In Stock" while the below-minimum warning is showing.
type ItemStatus string

const (
	StatusInStock    ItemStatus = "In Stock"
	StatusLowStock   ItemStatus = "Low Stock"
	StatusOutOfStock ItemStatus = "Out of Stock"
	StatusOnOrder    ItemStatus = "On Order"
)

// Defaults applied when an item is created without the field set.
const (
	DefaultCategory = "Uncategorized"
	DefaultCurrency = "USD"
	DefaultUOM      = "EACH"
)

// InventoryItem represents one tracked asset, scoped to a single organization.
type InventoryItem struct {
	BaseModel
	OrgID uuid.UUID `gorm:"type:uuid;not null;index" json:"org_id"`

	Name          string     `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category      string     `gorm:"type:varchar(100)" json:"category"`
	Quantity      int        `gorm:"default:0" json:"quantity" validate:"gte=0"`
	Status        ItemStatus `gorm:"type:varchar(20)" json:"status"`
	Location      string     `gorm:"type:varchar(255)" json:"location"`
	Latitude      float64    `gorm:"default:0" json:"latitude"`
	Longitude     float64    `gorm:"default:0" json:"longitude"`
	Description   string     `gorm:"type:text" json:"description,omitempty"`
	Price         float64    `gorm:"default:0" json:"price" validate:"gte=0"`
	Currency      string     `gorm:"type:varchar(10)" json:"currency"`
	UnitOfMeasure string     `gorm:"type:varchar(20)" json:"unit_of_measure"`
	SKU           string     `gorm:"type:varchar(50)" json:"sku,omitempty"`
	MinimumStock  int        `gorm:"default:0" json:"minimum_stock" validate:"gte=0"`
	SupplierInfo  string     `gorm:"type:text" json:"supplier_info,omitempty"`

	// User tracking
	UpdatedByUserID *string `gorm:"type:varchar(255)" json:"updated_by_user_id,omitempty"`
}

// BelowMinimum reports whether the item should render the low-stock warning.
// Display-only: it does not feed back into Status.
func (i *InventoryItem) BelowMinimum() bool {
	return i.Quantity < i.MinimumStock
}

// ApplyDefaults fills unset optional fields before a create.
func (i *InventoryItem) ApplyDefaults() {
	if i.Category == "" {
		i.Category = DefaultCategory
	}
	if i.Status == "" {
		i.Status = StatusInStock
	}
	if i.Currency == "" {
		i.Currency = DefaultCurrency
	}
	if i.UnitOfMeasure == "" {
		i.UnitOfMeasure = DefaultUOM
	}
}
