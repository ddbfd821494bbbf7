// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		&product.Product{},
		&product.ProductSize{},
		&product.ProductImage{},
		&coupon.Coupon{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_active ON products(is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_sku ON products(sku)",
		"CREATE INDEX IF NOT EXISTS idx_products_slug ON products(slug)",

		// Product size indexes
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_product_sizes_product_size ON product_sizes(product_id, size)",

		// Product image indexes
		"CREATE INDEX IF NOT EXISTS idx_product_images_product_primary ON product_images(product_id, is_primary)",
		"CREATE INDEX IF NOT EXISTS idx_product_images_sort_order ON product_images(product_id, sort_order)",

		// Coupon indexes
		"CREATE INDEX IF NOT EXISTS idx_coupons_active ON coupons(is_active)",
		"CREATE INDEX IF NOT EXISTS idx_coupons_expiration ON coupons(expiration_date)",
		"CREATE INDEX IF NOT EXISTS idx_coupons_created_at ON coupons(created_at DESC)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	if err := m.seedCoupons(); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedProducts creates sample catalog products for development
func (m *Migration) seedProducts() error {
	var count int64
	if err := m.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("📦 Products already seeded, skipping")
		return nil
	}

	log.Println("📦 Seeding products...")

	products := []product.Product{
		{
			SKU:         "TSHIRT-001",
			Name:        "Classic Cotton T-Shirt",
			Slug:        "classic-cotton-t-shirt",
			Description: "Soft everyday cotton t-shirt",
			Price:       1999,
			MainImage:   "https://cdn.example.com/products/tshirt-001.jpg",
			IsActive:    true,
			Sizes: []product.ProductSize{
				{Size: "S", Stock: 50},
				{Size: "M", Stock: 80},
				{Size: "L", Stock: 60},
				{Size: "XL", Price: 2199, Stock: 30},
			},
		},
		{
			SKU:         "HOODIE-001",
			Name:        "Fleece Hoodie",
			Slug:        "fleece-hoodie",
			Description: "Heavyweight fleece hoodie",
			Price:       4999,
			MainImage:   "https://cdn.example.com/products/hoodie-001.jpg",
			IsActive:    true,
			Sizes: []product.ProductSize{
				{Size: "M", Stock: 40},
				{Size: "L", Stock: 35},
				{Size: "XL", Price: 5499, Stock: 20},
			},
		},
		{
			SKU:         "CAP-001",
			Name:        "Canvas Cap",
			Slug:        "canvas-cap",
			Description: "One-size canvas cap",
			Price:       1499,
			MainImage:   "https://cdn.example.com/products/cap-001.jpg",
			IsActive:    true,
		},
	}

	for i := range products {
		if err := m.db.Create(&products[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// seedCoupons creates sample coupons for development
func (m *Migration) seedCoupons() error {
	var count int64
	if err := m.db.Model(&coupon.Coupon{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("🎟️ Coupons already seeded, skipping")
		return nil
	}

	log.Println("🎟️ Seeding coupons...")

	nextMonth := time.Now().UTC().AddDate(0, 1, 0)
	limit := 1000

	coupons := []coupon.Coupon{
		{
			Code:          "SAVE10",
			DiscountKind:  coupon.DiscountPercent,
			DiscountValue: 10,
			IsActive:      true,
		},
		{
			Code:           "WELCOME20",
			DiscountKind:   coupon.DiscountPercent,
			DiscountValue:  20,
			MinimumAmount:  5000,
			ExpirationDate: &nextMonth,
			UsageLimit:     &limit,
			IsActive:       true,
		},
		{
			Code:          "FLAT5",
			DiscountKind:  coupon.DiscountFixed,
			DiscountValue: 500,
			MinimumAmount: 2500,
			IsActive:      true,
		},
	}

	for i := range coupons {
		if err := m.db.Create(&coupons[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// GetTableInfo logs row counts for the main tables
func (m *Migration) GetTableInfo() {
	tables := []string{"products", "product_sizes", "product_images", "coupons"}

	log.Println("📊 Database table info:")
	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err != nil {
			log.Printf("  %s: error (%v)", table, err)
			continue
		}
		log.Printf("  %s: %d rows", table, count)
	}
}
