package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/salmanshahriar/whos-fake/models/postgres"

	_ "github.com/lib/pq"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectGORM returns a GORM DB instance connected to PostgreSQL
func ConnectGORM() (*gorm.DB, error) {
	user := os.Getenv("POSTGRES_USER")
	password := os.Getenv("POSTGRES_PASSWORD")
	host := os.Getenv("POSTGRES_HOST")
	port := os.Getenv("POSTGRES_PORT")
	database := os.Getenv("POSTGRES_DATABASE")
	verbose := os.Getenv("VERBOSE_POSTGRES")

	dsn := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		user, password, host, port, database)

	sqlConn, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Printf("Error connecting to PostgreSQL: %v", err)
		return nil, err
	}

	gormConfig := &gorm.Config{}
	if verbose == "true" {
		newLogger := logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  logger.Info,
				IgnoreRecordNotFoundError: false,
				Colorful:                  true,
			},
		)
		gormConfig.Logger = newLogger
	}

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{
		Conn:                 sqlConn,
		PreferSimpleProtocol: true,
	}), gormConfig)
	if err != nil {
		log.Printf("Error connecting to PostgreSQL with GORM: %v", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying SQL DB: %v", err)
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		log.Printf("Error pinging PostgreSQL: %v", err)
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Successfully connected to PostgreSQL with GORM")
	return db, nil
}

// MigrateDatabase migrates the GORM models to the PostgreSQL database
func MigrateDatabase(db *gorm.DB) error {
	err := db.AutoMigrate(
		postgres.Room{},
		postgres.Player{},
		postgres.Word{},
		postgres.RoomEvent{})
	if err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	log.Println("PostgreSQL database migrated successfully")
	return nil
}

// defaultWords is the built-in word bank, loaded once when the words
// table is empty. Everyday words work best for the table talk.
var defaultWords = []string{
	"Pizza", "Beach", "Library", "Airport", "Circus",
	"Hospital", "Submarine", "Volcano", "Bakery", "Campfire",
	"Waterfall", "Lighthouse", "Carnival", "Museum", "Treehouse",
	"Iceberg", "Jungle", "Castle", "Rooftop", "Aquarium",
	"Desert", "Spaceship", "Stadium", "Windmill", "Cave",
	"Garden", "Harbor", "Mountain", "Orchestra", "Playground",
	"Sauna", "Skyscraper", "Swamp", "Theater", "Vineyard",
	"Wedding", "Zoo", "Barbershop", "Casino", "Elevator",
}

// SeedWords fills the word bank if it has never been populated.
func SeedWords(db *gorm.DB) error {
	var count int64
	if err := db.Model(&postgres.Word{}).Count(&count).Error; err != nil {
		return fmt.Errorf("counting words: %w", err)
	}
	if count > 0 {
		return nil
	}

	words := make([]postgres.Word, 0, len(defaultWords))
	for _, w := range defaultWords {
		words = append(words, postgres.Word{Word: w})
	}
	if err := db.Create(&words).Error; err != nil {
		return fmt.Errorf("seeding words: %w", err)
	}
	log.Printf("Seeded word bank with %d words", len(words))
	return nil
}
