package database

import (
	"fmt"
	"log"

	config "github.com/annadmitrieva/tutor_admin/configs"
	"github.com/annadmitrieva/tutor_admin/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Tariff{},
		&models.PurchasedTariff{},
		&models.Lesson{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}

	// One non-terminal lesson per party per slot. Terminal lessons drop out of
	// the index so a freed slot can be booked again.
	for _, stmt := range []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_lessons_student_slot ON lessons (student_id, start_date) WHERE status NOT IN ('ALL_SUCCESS', 'UN_SUCCESS')`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_lessons_teacher_slot ON lessons (teacher_id, start_date) WHERE status NOT IN ('ALL_SUCCESS', 'UN_SUCCESS')`,
	} {
		if err := DB.Exec(stmt).Error; err != nil {
			log.Fatalf("🔥 Failed to create lesson slot index: %v", err)
		}
	}

	fmt.Println("✅ Database migration successful")
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var count int64
	if err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error; err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
	}

	adminUser := models.User{
		FullName: config.Config("ADMIN_FULL_NAME"),
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     "admin",
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
	}

	log.Println("✅ Admin user seeded successfully")
}
