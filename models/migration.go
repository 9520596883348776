package models

import (
	"log"

	"bitbucket.org/mmdatafocus/consign_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Organization{},
		&Provider{}, &Item{}, &SaleRecord{},
		&Payout{}, &Statement{},
		&DailyReconciliation{},
		&NotificationOutboxRecord{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
