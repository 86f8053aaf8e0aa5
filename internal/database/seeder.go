// server/internal/database/seeder.go
package database

import (
	"context"
	"log"

	"gatepass-api-server/config"
	"gatepass-api-server/internal/auth"
	"gatepass-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SeedSuperAdmin makes sure one SuperAdmin account exists so the system can
// be administered on a fresh database.
func SeedSuperAdmin(db *mongo.Database, cfg config.Config) error {
	userCollection := db.Collection("users")

	userID := cfg.Seed.SuperAdminUserID
	if userID == "" {
		userID = "superadmin"
	}

	count, err := userCollection.CountDocuments(context.Background(), bson.M{"userId": userID})
	if err != nil {
		return err
	}

	if count > 0 {
		log.Println("Super admin already exists. Seeding skipped.")
		return nil
	}

	log.Println("Super admin not found. Seeding...")
	password := cfg.Seed.SuperAdminPassword
	if password == "" {
		password = "superadminpassword"
	}
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	superAdmin := models.User{
		ServiceNo: "SA00000",
		UserID:    userID,
		Name:      "Super Admin",
		Email:     "superadmin@example.com",
		Password:  hashedPassword,
		Role:      models.RoleSuperAdmin,
		IsActive:  true,
	}

	_, err = userCollection.InsertOne(context.Background(), superAdmin)
	if err != nil {
		return err
	}

	log.Println("Super admin seeded successfully.")
	return nil
}
