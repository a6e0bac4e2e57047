// Command admin is the operator CLI. User accounts are created here, not
// through the server: registration is a seed-time concern.
package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"threadtalk/backend/internal/config"
	"threadtalk/backend/internal/models"
	"threadtalk/backend/internal/storage"
)

func main() {
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: adduser <username> <display_name> <password> | listusers")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "adduser":
		if len(os.Args) != 5 {
			fmt.Println("Usage: admin adduser <username> <display_name> <password>")
			os.Exit(1)
		}
		if err := addUser(storageSvc, os.Args[2], os.Args[3], os.Args[4]); err != nil {
			log.Fatalf("Error creating user: %v", err)
		}
		fmt.Printf("User %s created.\n", os.Args[2])
	case "listusers":
		if err := listUsers(db); err != nil {
			log.Fatalf("Error listing users: %v", err)
		}
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func addUser(s *storage.Service, username, displayName, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.CreateUser(&models.User{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(hash),
	})
}

func listUsers(db *gorm.DB) error {
	var users []models.User
	if err := db.Order("created_at asc").Find(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		fmt.Printf("%s\t%s\t%s\n", u.ID, u.Username, u.DisplayName)
	}
	return nil
}
