package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/lefthq/left-backend/internal/database"
	"github.com/lefthq/left-backend/internal/logger"
	"github.com/lefthq/left-backend/internal/models"
)

func main() {
	godotenv.Load()

	email := flag.String("email", "", "Email address of the user to promote")
	revoke := flag.Bool("revoke", false, "Revoke the admin role instead of granting it")
	flag.Parse()

	if *email == "" {
		fmt.Println("Usage: promote-admin -email=user@example.com [-revoke]")
		return
	}

	if err := logger.Initialize("info", "promote-admin.log"); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Close()

	if err := database.Initialize(); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer database.Close()

	var user models.User
	if err := database.DB.Where("email = ?", *email).First(&user).Error; err != nil {
		fmt.Printf("user not found: %s\n", *email)
		return
	}

	if *revoke {
		err := database.DB.
			Where("user_id = ? AND role = ?", user.ID, models.RoleAdmin).
			Delete(&models.UserRole{}).Error
		if err != nil {
			log.Fatalf("failed to revoke admin role: %v", err)
		}
		fmt.Printf("revoked admin from %s\n", *email)
		return
	}

	var existing int64
	database.DB.Model(&models.UserRole{}).
		Where("user_id = ? AND role = ?", user.ID, models.RoleAdmin).
		Count(&existing)
	if existing > 0 {
		fmt.Printf("%s is already an admin\n", *email)
		return
	}

	role := models.UserRole{UserID: user.ID, Role: models.RoleAdmin}
	if err := database.DB.Create(&role).Error; err != nil {
		log.Fatalf("failed to grant admin role: %v", err)
	}
	fmt.Printf("granted admin to %s\n", *email)
}
