package database

import (
	"fmt"
	"log"

	"github.com/leohmarruda/health-food-score/config"
	"github.com/leohmarruda/health-food-score/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dialector := dialectorFromEnv()

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	log.Println("Database connection established")

	// Migration logic
	log.Println("Running migrations...")
	err = DB.AutoMigrate(
		&models.Food{},
		&models.FoodAdditive{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}
	log.Println("Migrations completed")
}

// dialectorFromEnv selects postgres by default; DB_DRIVER=sqlite switches
// to an embedded file database for local development.
func dialectorFromEnv() gorm.Dialector {
	if config.GetEnv("DB_DRIVER", "postgres") == "sqlite" {
		return sqlite.Open(config.GetEnv("DB_PATH", "foods.db"))
	}

	host := config.GetEnv("DB_HOST", "localhost")
	user := config.GetEnv("DB_USER", "postgres")
	password := config.GetEnv("DB_PASSWORD", "password")
	dbname := config.GetEnv("DB_NAME", "healthfoodscore")
	port := config.GetEnv("DB_PORT", "5432")
	sslmode := config.GetEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)
	return postgres.Open(dsn)
}
