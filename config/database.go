package config

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"food-delivery-backend/models"
)

// OpenDB connects to the sqlite database and migrates all models
func OpenDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.RecurringOrder{},
		&models.Address{},
		&models.Coupon{},
	); err != nil {
		return nil, err
	}

	seedCoupons(db)
	return db, nil
}

// seedCoupons makes sure the launch coupons exist; safe to run repeatedly
func seedCoupons(db *gorm.DB) {
	coupons := []models.Coupon{
		{Code: "WELCOME50", Description: "50% off up to 150 on your first order", Percent: 50, MaxDiscount: 150, MinPurchase: 200, IsActive: true},
		{Code: "FLAT20", Description: "20% off up to 100", Percent: 20, MaxDiscount: 100, MinPurchase: 300, IsActive: true},
	}
	for _, c := range coupons {
		var existing models.Coupon
		if err := db.Where("code = ?", c.Code).First(&existing).Error; err != nil {
			db.Create(&c)
		}
	}
}
