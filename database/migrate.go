package database

import (
	"errors"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Models lists every table in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.RoomType{},
		&models.Room{},
		&models.Reservation{},
		&models.CleaningTask{},
		&models.MaintenanceRequest{},
		&models.Invoice{},
		&models.Payment{},
		&models.Service{},
		&models.ServiceOrder{},
		&models.Feedback{},
		&models.Report{},
		&models.Notification{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}

type SeedOptions struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Seed inserts the first admin account and a starter catalog. It is a no-op
// for tables that already hold rows.
func Seed(db *gorm.DB, opts SeedOptions) error {
	if err := seedAdmin(db, opts); err != nil {
		return err
	}
	if err := seedRoomTypes(db); err != nil {
		return err
	}
	return seedServices(db)
}

func seedAdmin(db *gorm.DB, opts SeedOptions) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if opts.AdminEmail == "" || opts.AdminPassword == "" {
		utils.InfoLogger.Println("No admin account exists and ADMIN_EMAIL/ADMIN_PASSWORD are unset; skipping admin seed")
		return nil
	}
	if len(opts.AdminPassword) < 8 {
		return errors.New("admin password must be at least 8 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	name := opts.AdminName
	if name == "" {
		name = "Administrator"
	}
	admin := models.User{
		Name:     name,
		Email:    opts.AdminEmail,
		Password: string(hashed),
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	utils.InfoLogger.Printf("Seeded admin account %s", admin.Email)
	return nil
}

func seedRoomTypes(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.RoomType{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	types := []models.RoomType{
		{Name: "Standard", Description: "Queen bed, city view", BasePrice: 80, Capacity: 2},
		{Name: "Deluxe", Description: "King bed, balcony", BasePrice: 140, Capacity: 3},
		{Name: "Family Suite", Description: "Two bedrooms and a lounge", BasePrice: 220, Capacity: 5},
	}
	for i := range types {
		types[i].Slug = slug.Make(types[i].Name)
	}
	if err := db.Create(&types).Error; err != nil {
		return fmt.Errorf("seed room types: %w", err)
	}
	utils.InfoLogger.Printf("Seeded %d room types", len(types))
	return nil
}

func seedServices(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Service{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	services := []models.Service{
		{Name: "Breakfast in Room", Category: "Food", Price: 18, IsAvailable: true},
		{Name: "Laundry", Category: "Housekeeping", Price: 12, IsAvailable: true},
		{Name: "Airport Transfer", Category: "Transport", Price: 45, IsAvailable: true},
		{Name: "Spa Session", Category: "Wellness", Price: 60, IsAvailable: true},
	}
	for i := range services {
		services[i].Slug = slug.Make(services[i].Name)
	}
	if err := db.Create(&services).Error; err != nil {
		return fmt.Errorf("seed services: %w", err)
	}
	utils.InfoLogger.Printf("Seeded %d services", len(services))
	return nil
}
