package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/nurpe/contracts-ledger/internal/model"
)

var migrationStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_jobs_unpaid ON jobs (contract_id) WHERE paid IS NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_client_status ON contracts (client_id, status);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_contractor_status ON contracts (contractor_id, status);`,
}

// Migrate creates the ledger tables and the secondary indexes. The statements
// are written to run unchanged on postgres and sqlite.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Profile{}, &model.Contract{}, &model.Job{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
