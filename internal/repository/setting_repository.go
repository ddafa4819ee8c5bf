package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ssizenet/intranet-api/internal/model"
)

// SettingRepo persists the (categoryType, category) → items catalog. The
// auth engine reads "authorityList" entries to expand responsibility tags;
// the management endpoints mutate entries of any category type.
type SettingRepo struct{ DB *sql.DB }

func NewSettingRepo(db *sql.DB) *SettingRepo { return &SettingRepo{DB: db} }

// Create inserts a new catalog entry. A duplicate composite key surfaces as
// ErrIDExists.
func (r *SettingRepo) Create(ctx context.Context, s model.Setting) error {
	items, err := jsonColumn(s.Items)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO settings (category_type, category, items) VALUES (?,?,?)",
		s.CategoryType, s.Category, items)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrIDExists
		}
		return err
	}
	return nil
}

// Get loads one catalog entry. sql.ErrNoRows when absent.
func (r *SettingRepo) Get(ctx context.Context, categoryType, category string) (model.Setting, error) {
	var (
		s   model.Setting
		raw []byte
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT category_type, category, items FROM settings WHERE category_type=? AND category=? LIMIT 1",
		categoryType, category).
		Scan(&s.CategoryType, &s.Category, &raw)
	if err != nil {
		return model.Setting{}, err
	}
	if err := scanJSON(raw, &s.Items); err != nil {
		return model.Setting{}, err
	}
	return s, nil
}

// Update replaces the items of an existing entry. sql.ErrNoRows when the
// entry does not exist.
func (r *SettingRepo) Update(ctx context.Context, categoryType, category string, items []model.SettingItem) error {
	raw, err := jsonColumn(items)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE settings SET items=? WHERE category_type=? AND category=?",
		raw, categoryType, category)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a catalog entry; deleting an absent entry is not an error.
func (r *SettingRepo) Delete(ctx context.Context, categoryType, category string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM settings WHERE category_type=? AND category=?", categoryType, category)
	return err
}

// AuthorityItems resolves one responsibility tag into its granted
// authority strings. A missing catalog entry contributes nothing rather
// than failing, so stale tags on a user cannot block signin.
func (r *SettingRepo) AuthorityItems(ctx context.Context, category string) ([]string, error) {
	s, err := r.Get(ctx, model.AuthorityCategoryType, category)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	items := make([]string, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, it.Item)
	}
	return items, nil
}
