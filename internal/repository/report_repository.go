package repository

import (
	"context"
	"time"

	"github.com/nurpe/contracts-ledger/internal/model"
)

// ProfessionTotals sums job prices created in [from, to) per contractor
// profession. Equal totals are ordered by profession name.
func (r *LedgerRepository) ProfessionTotals(
	ctx context.Context,
	from, to time.Time,
	limit int,
) ([]model.ProfessionTotal, error) {
	var rows []model.ProfessionTotal
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.profession AS profession,
			SUM(j.price) AS total
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.contractor_id
		WHERE j.created_at >= ?
			AND j.created_at < ?
		GROUP BY p.profession
		ORDER BY SUM(j.price) DESC, p.profession ASC
		LIMIT ?
	`, from, to, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ClientTotals sums job prices created in [from, to) per client across all of
// the client's contracts. Equal totals are ordered by profile id.
func (r *LedgerRepository) ClientTotals(
	ctx context.Context,
	from, to time.Time,
	limit int,
) ([]model.ClientTotal, error) {
	rows := []model.ClientTotal{}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.id AS id,
			p.first_name || ' ' || p.last_name AS full_name,
			SUM(j.price) AS paid
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.client_id
		WHERE j.created_at >= ?
			AND j.created_at < ?
		GROUP BY p.id, p.first_name, p.last_name
		ORDER BY SUM(j.price) DESC, p.id ASC
		LIMIT ?
	`, from, to, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
