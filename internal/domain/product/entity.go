// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents the product entity
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	SKU         string         `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Price       int64          `gorm:"not null" json:"price"` // Base price in cents
	MainImage   string         `gorm:"size:500" json:"main_image"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Sizes  []ProductSize  `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"sizes,omitempty"`
	Images []ProductImage `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images,omitempty"`
}

// ProductSize represents a per-size price and stock entry
type ProductSize struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Size      string    `gorm:"not null;size:50" json:"size"`
	Price     int64     `json:"price"` // Overrides product price if set
	Stock     int       `gorm:"default:0" json:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductImage represents product images
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	URL       string    `gorm:"not null;size:500" json:"url"`
	AltText   string    `gorm:"size:255" json:"alt_text"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	IsPrimary bool      `gorm:"default:false" json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (Product) TableName() string      { return "products" }
func (ProductSize) TableName() string  { return "product_sizes" }
func (ProductImage) TableName() string { return "product_images" }

// Snapshot is the display and pricing state captured when a product is added
// to the cart. No live reference to the catalog row is kept afterwards.
type Snapshot struct {
	ID        uint           `json:"id"`
	Name      string         `json:"name"`
	Price     int64          `json:"price"`
	MainImage string         `json:"main_image"`
	Sizes     []SizeSnapshot `json:"sizes,omitempty"`
	Images    []string       `json:"images,omitempty"`
}

// SizeSnapshot is a per-size price/stock entry inside a Snapshot
type SizeSnapshot struct {
	Size  string `json:"size"`
	Price int64  `json:"price"`
	Stock int    `json:"stock"`
}

// PriceFor resolves the unit price for a size selection: the matching size
// table entry wins when it carries its own price, otherwise the base price.
func (s Snapshot) PriceFor(size string) int64 {
	if size != "" {
		for _, entry := range s.Sizes {
			if entry.Size == size && entry.Price > 0 {
				return entry.Price
			}
		}
	}
	return s.Price
}

// SnapshotOf builds a Snapshot from a catalog product
func SnapshotOf(p *Product) Snapshot {
	snap := Snapshot{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		MainImage: p.MainImage,
	}

	for _, size := range p.Sizes {
		snap.Sizes = append(snap.Sizes, SizeSnapshot{
			Size:  size.Size,
			Price: size.Price,
			Stock: size.Stock,
		})
	}

	for _, image := range p.Images {
		snap.Images = append(snap.Images, image.URL)
	}

	// Fall back to the first image when no main image is set
	if snap.MainImage == "" && len(snap.Images) > 0 {
		snap.MainImage = snap.Images[0]
	}

	return snap
}
