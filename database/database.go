package database

import (
	"fmt"
	"log"
	"os"

	"buildtactical/internal/domain/billing"
	"buildtactical/internal/domain/files"
	"buildtactical/internal/domain/identity"
	"buildtactical/internal/domain/orgs"
	"buildtactical/internal/domain/proposals"
	"buildtactical/internal/domain/tracking"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatal("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	DB = db

	if err := DB.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Fatal("Failed to enable pgcrypto extension:", err)
	}

	if err := AutoMigrate(DB); err != nil {
		log.Fatal("AutoMigrate error:", err)
	}

	fmt.Println("Connected and migrated successfully")
}

// AutoMigrate runs migrations for every domain model. Shared with the test
// harness so in-memory databases carry the same schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// identity
		&identity.User{},
		&identity.VerificationToken{},

		// organizations
		&orgs.Organization{},
		&orgs.Member{},

		// tracking
		&tracking.Project{},
		&tracking.Task{},
		&tracking.Expense{},

		// proposals
		&proposals.Proposal{},

		// files
		&files.Attachment{},

		// billing
		&billing.Plan{},
		&billing.Subscription{},
		&billing.Payment{},
		&billing.WebhookEvent{},
	)
}
