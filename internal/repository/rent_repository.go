package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ssizenet/intranet-api/internal/model"
)

// RentRepo provides persistence and conflict detection for equipment
// rentals. Conflict detection treats bookings as half-open intervals
// [start, end) over the real datetime columns; the legacy combined_date
// string is stored for display only.
type RentRepo struct{ DB *sql.DB }

func NewRentRepo(db *sql.DB) *RentRepo { return &RentRepo{DB: db} }

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Back-to-back bookings (e1 == s2) do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// EquipmentConflict reports whether two equipment lists share a category
// with at least one common item. Only same-category items collide; the same
// item name under different categories is a different physical asset.
func EquipmentConflict(a, b []model.Equipment) bool {
	for _, ea := range a {
		for _, eb := range b {
			if ea.Category != eb.Category {
				continue
			}
			for _, ia := range ea.Items {
				for _, ib := range eb.Items {
					if ia == ib {
						return true
					}
				}
			}
		}
	}
	return false
}

const rentColumns = `id, start_date, end_date, team, title, applicant_id, applicant_name,
	approved, equipment, combined_date, created_at, updated_at`

func scanRent(row interface{ Scan(...interface{}) error }) (model.Rent, error) {
	var (
		rent  model.Rent
		equip []byte
	)
	err := row.Scan(&rent.ID, &rent.StartDate, &rent.EndDate, &rent.Team, &rent.Title,
		&rent.ApplicantID, &rent.ApplicantName, &rent.Approved, &equip,
		&rent.CombinedDate, &rent.CreatedAt, &rent.UpdatedAt)
	if err != nil {
		return model.Rent{}, err
	}
	if err := scanJSON(equip, &rent.EquipmentList); err != nil {
		return model.Rent{}, err
	}
	return rent, nil
}

// Create inserts a rental after checking for equipment conflicts. The
// overlapping window is read under FOR UPDATE inside one transaction, so
// two concurrent applications for the same window serialize and at most
// one can commit. Returns ErrConflict when a stored booking overlaps in
// time and shares equipment.
func (r *RentRepo) Create(ctx context.Context, rent model.Rent) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx,
		"SELECT equipment FROM rents WHERE start_date < ? AND end_date > ? FOR UPDATE",
		rent.EndDate, rent.StartDate)
	if err != nil {
		return err
	}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			rows.Close()
			return err
		}
		var stored []model.Equipment
		if err := scanJSON(raw, &stored); err != nil {
			rows.Close()
			return err
		}
		if EquipmentConflict(stored, rent.EquipmentList) {
			rows.Close()
			return ErrConflict
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	equip, err := jsonColumn(rent.EquipmentList)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO rents
		 (id, start_date, end_date, team, title, applicant_id, applicant_name, approved, equipment, combined_date)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		rent.ID, rent.StartDate, rent.EndDate, rent.Team, rent.Title,
		rent.ApplicantID, rent.ApplicantName, rent.Approved, equip, rent.CombinedDate)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// List returns one page of rentals, newest start date first. Page is
// 1-based.
func (r *RentRepo) List(ctx context.Context, page, count int) ([]model.Rent, error) {
	if page < 1 {
		page = 1
	}
	if count < 1 {
		count = 10
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+rentColumns+" FROM rents ORDER BY start_date DESC LIMIT ? OFFSET ?",
		count, (page-1)*count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRents(rows)
}

// ListMonth returns rentals overlapping the given calendar month in UTC.
func (r *RentRepo) ListMonth(ctx context.Context, year, month int) ([]model.Rent, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+rentColumns+" FROM rents WHERE start_date < ? AND end_date >= ? ORDER BY start_date",
		end, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRents(rows)
}

func collectRents(rows *sql.Rows) ([]model.Rent, error) {
	out := []model.Rent{}
	for rows.Next() {
		rent, err := scanRent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rent)
	}
	return out, rows.Err()
}

// GetByID fetches a rental. sql.ErrNoRows when absent.
func (r *RentRepo) GetByID(ctx context.Context, id string) (model.Rent, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+rentColumns+" FROM rents WHERE id=? LIMIT 1", id)
	return scanRent(row)
}

// Update rewrites the mutable fields of a rental and resets approval to
// pending; any time or equipment change has to be re-reviewed.
func (r *RentRepo) Update(ctx context.Context, rent model.Rent) error {
	equip, err := jsonColumn(rent.EquipmentList)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE rents
		 SET start_date=?, end_date=?, team=?, title=?, equipment=?, combined_date=?,
		     approved=?, updated_at=NOW()
		 WHERE id=?`,
		rent.StartDate, rent.EndDate, rent.Team, rent.Title, equip, rent.CombinedDate,
		model.ApprovalPending, rent.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetApproved stores the approval decision.
func (r *RentRepo) SetApproved(ctx context.Context, id string, approved int) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE rents SET approved=?, updated_at=NOW() WHERE id=?", approved, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a rental unconditionally; unlike update/approve there is
// no time gate on deletion.
func (r *RentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM rents WHERE id=?", id)
	return err
}
