package config

import (
	"context"
	"log"

	"clinicdesk/internal/adapters/persistence/models"
	"clinicdesk/internal/adapters/persistence/repositories"
	"clinicdesk/internal/core/domain"
	"clinicdesk/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser creates the bootstrap admin when no admin account exists.
// Rotate the default password right after first login.
func (s *Seeder) seedAdminUser() error {
	userRepo := repositories.NewUserRepository(s.db)
	count, err := userRepo.CountByRole(context.Background(), string(domain.RoleAdmin))
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash(s.cfg.Admin.Password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:     s.cfg.Admin.Email,
		Username:  "admin",
		Password:  hashedPassword,
		Role:      domain.RoleAdmin,
		FirstName: "System",
		LastName:  "Administrator",
		IsActive:  true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Email)
	if s.cfg.Admin.Password == "admin123" {
		log.Println("⚠️ Default admin password in use, change it after first login")
	}
	return nil
}
