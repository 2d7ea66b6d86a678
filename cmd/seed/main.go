package main

import (
	"context"
	"log"

	"gorm.io/gorm"

	"phonebook/internal/auth"
	"phonebook/internal/config"
	"phonebook/internal/db"
	"phonebook/internal/model"
	"phonebook/internal/repository"
)

// Seeds a verified demo account plus a handful of contacts for local
// development.
const (
	demoEmail    = "demo@phonebook.local"
	demoPassword = "demo-password"
)

var demoContacts = []model.Contact{
	{Name: "Allen Raymond", Email: "nulla.ante@vestibul.co.uk", Phone: "2215559508"},
	{Name: "Chaim Lewis", Email: "dui.in@egetlacus.ca", Phone: "2942322537"},
	{Name: "Kennedy Lane", Email: "mattis.cras@nonenimmauris.net", Phone: "3872521622"},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}, &model.Contact{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(gormDB)
	contacts := repository.NewContactRepository(gormDB)

	if _, err := users.FindByEmail(ctx, demoEmail); err == nil {
		log.Println("Demo account already exists, nothing to do")
		return
	} else if err != gorm.ErrRecordNotFound {
		log.Fatalf("check demo account: %v", err)
	}

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	hash, err := hasher.Hash(demoPassword)
	if err != nil {
		log.Fatalf("hash demo password: %v", err)
	}

	user := &model.User{
		Email:        demoEmail,
		PasswordHash: hash,
		Plan:         model.PlanStarter,
		Verified:     true,
		AvatarRef:    model.PlaceholderAvatar(demoEmail),
	}
	if err := users.Create(ctx, user); err != nil {
		log.Fatalf("create demo account: %v", err)
	}
	log.Printf("Created demo account %s (password %q)", demoEmail, demoPassword)

	for i := range demoContacts {
		if err := contacts.Create(ctx, &demoContacts[i]); err != nil {
			log.Fatalf("create contact %s: %v", demoContacts[i].Name, err)
		}
	}
	log.Printf("Seeded %d contacts", len(demoContacts))
}
