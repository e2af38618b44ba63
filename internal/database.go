package internal

import (
	"fmt"

	"DR-CONTRACTS/internal/config"
	"DR-CONTRACTS/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB(cfg *config.Config) error {
	dsn := cfg.Database.DSN()

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(DB); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	fmt.Println("Database connected and migrated successfully")
	return nil
}

// Migrate creates or updates every table the service owns. It only adds
// tables and columns, existing data is preserved.
func Migrate(db *gorm.DB) error {
	tables := []struct {
		name  string
		model any
	}{
		{"contract_templates", &models.ContractTemplate{}},
		{"contract_contexts", &models.ContractContext{}},
		{"contract_documents", &models.ContractDocument{}},
		{"activity_logs", &models.ActivityLog{}},
	}

	for _, t := range tables {
		if !db.Migrator().HasTable(t.name) {
			fmt.Printf("Creating %s table...\n", t.name)
		}
		if err := db.AutoMigrate(t.model); err != nil {
			return fmt.Errorf("failed to migrate %s table: %w", t.name, err)
		}
	}
	return nil
}

func CloseDB() error {
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
