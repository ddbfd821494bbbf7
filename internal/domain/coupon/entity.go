// internal/domain/coupon/entity.go
package coupon

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// DiscountKind represents the type of discount a coupon provides
type DiscountKind string

const (
	DiscountPercent DiscountKind = "percent"
	DiscountFixed   DiscountKind = "fixed"
)

// Coupon represents a promotional discount rule
type Coupon struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Code           string         `gorm:"uniqueIndex;not null;size:50" json:"code"`
	DiscountKind   DiscountKind   `gorm:"type:varchar(20);not null" json:"discount_kind"`
	DiscountValue  float64        `gorm:"not null" json:"discount_value"` // Percentage, or amount in cents
	ExpirationDate *time.Time     `json:"expiration_date,omitempty"`
	UsageLimit     *int           `json:"usage_limit,omitempty"` // nil = unlimited
	UsedCount      int            `gorm:"not null;default:0" json:"used_count"`
	MinimumAmount  int64          `gorm:"not null;default:0" json:"minimum_amount"` // Minimum subtotal in cents
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Coupon) TableName() string {
	return "coupons"
}

// IsExpired reports whether the coupon's expiration date has passed
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpirationDate != nil && now.After(*c.ExpirationDate)
}

// UsageExhausted reports whether the redemption cap has been reached
func (c *Coupon) UsageExhausted() bool {
	return c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit
}

// codePattern matches canonical coupon codes: alphanumeric plus _ and -,
// 3 to 50 characters, uppercase.
var codePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,50}$`)

// CanonicalizeCode trims surrounding whitespace and uppercases the code
func CanonicalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCode checks a canonical code against the allowed format
func ValidateCode(code string) error {
	if !codePattern.MatchString(code) {
		return fmt.Errorf("coupon code must be 3-50 characters of letters, digits, underscore or hyphen")
	}
	return nil
}
