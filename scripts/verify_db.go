package main

import (
	"fmt"
	"log"

	"github.com/glebarez/sqlite"
	"github.com/wwwzy/aixcollect/internal/storage"
	"gorm.io/gorm"
)

func main() {
	// Connect to the database
	db, err := gorm.Open(sqlite.Open("aixcollect.db"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	fmt.Println("--- Verifying aixcollect Database ---")

	var runCount int64
	// We need to verify if the table exists first to avoid panic if migration didn't run
	if !db.Migrator().HasTable(&storage.CollectionRun{}) {
		fmt.Println("Table 'collection_runs' does not exist yet.")
		return
	}

	db.Model(&storage.CollectionRun{}).Count(&runCount)
	fmt.Printf("Total Collection Run Records: %d\n", runCount)

	if runCount == 0 {
		return
	}

	var runs []storage.CollectionRun
	db.Order("finished_at desc").Limit(10).Find(&runs)
	fmt.Println("Latest 10 Runs (Local Time):")
	for _, r := range runs {
		status := "ok"
		if !r.Success {
			status = "FAILED"
		}
		msg := r.ErrorMessage
		if len(msg) > 50 {
			msg = msg[:47] + "..."
		}
		fmt.Printf("  [%s] %s %s %s records=%d %s\n",
			r.FinishedAt.Local().Format("2006-01-02 15:04:05"), r.ServerName, r.Kind, status, r.RecordsCollected, msg)
	}

	var failedCount int64
	db.Model(&storage.CollectionRun{}).Where("success = ?", false).Count(&failedCount)
	fmt.Printf("\nFailed Runs: %d\n", failedCount)
}
