// Command reset_db clears every forum table while keeping the schema.
//
//	go run ./tools/reset_db            # asks for confirmation
//	go run ./tools/reset_db -yes       # no prompt
package main

import (
	"flag"
	"fmt"
	"log"

	"forum-system/config"
	dbPkg "forum-system/pkg/db"

	"gorm.io/gorm"
)

// tables children first, so foreign keys never block a delete
var tables = []string{"message", "room_participant", "room", "topic", "account"}

func main() {
	cfgPath := flag.String("config", config.DefaultPath, "config file")
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	cfg := config.Load(*cfgPath)

	db, err := dbPkg.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	fmt.Println("Database connected successfully")
	fmt.Printf("Driver: %s\n", cfg.Database.Driver)

	if !*yes {
		fmt.Printf("\nWARNING: This operation will CLEAR ALL DATA in tables %v!\n", tables)
		fmt.Print("Type 'YES' to confirm: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "YES" {
			fmt.Println("Operation cancelled")
			return
		}
	}

	if err := reset(db, cfg.Database.Driver); err != nil {
		log.Fatalf("Database reset failed: %v", err)
	}

	fmt.Println("\nDatabase reset completed!")
	fmt.Println("All table data cleared, table structure preserved")
	fmt.Println("Auto-increment IDs reset to 1")
}

// reset deletes every row and restarts id sequences
func reset(db *gorm.DB, driver string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("Clearing table %s... ", table)
			if err := tx.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
				fmt.Println("Failed")
				return fmt.Errorf("clear %s: %w", table, err)
			}
			fmt.Println("Success")
		}

		for _, table := range tables {
			if table == "room_participant" {
				continue
			}
			if err := resetSequence(tx, driver, table); err != nil {
				return fmt.Errorf("reset %s ids: %w", table, err)
			}
		}
		return nil
	})
}

func resetSequence(tx *gorm.DB, driver, table string) error {
	switch driver {
	case "mysql", "":
		return tx.Exec(fmt.Sprintf("ALTER TABLE %s AUTO_INCREMENT = 1", table)).Error
	case "postgres":
		return tx.Exec(fmt.Sprintf("ALTER SEQUENCE %s_id_seq RESTART WITH 1", table)).Error
	case "sqlite":
		// sqlite_sequence only exists once an AUTOINCREMENT table has rows
		if !tx.Migrator().HasTable("sqlite_sequence") {
			return nil
		}
		return tx.Exec("DELETE FROM sqlite_sequence WHERE name = ?", table).Error
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
}
