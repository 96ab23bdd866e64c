package database

import (
	"atelier-backend/domain"

	"gorm.io/gorm"
)

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Role{},
		&domain.User{},
		&domain.Customer{},
		&domain.Session{},
		&domain.Product{},
		&domain.Order{},
		&domain.Inquiry{},
		&domain.File{},
		&domain.FileLink{},
	)
}
