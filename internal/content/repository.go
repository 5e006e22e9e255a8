// Package content serves the editorial side of the storefront: banners,
// FAQs, company info, and contact messages.
package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Ixollozi/Lux-wood/internal/domain"
)

// companyInfoID is the well-known key of the single company-info row. The
// single-instance invariant lives here, in the accessor, not in the row.
const companyInfoID = 1

type Repository struct {
	db *sql.DB
}

func isInvalidUUID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ActiveBanners(ctx context.Context) ([]domain.Banner, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title_ru, title_en, title_uz,
		       description_ru, description_en, description_uz,
		       link, sort_order, active, created_at
		FROM banners
		WHERE active
		ORDER BY sort_order, created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var banners []domain.Banner
	for rows.Next() {
		var b domain.Banner
		if err := rows.Scan(&b.ID,
			&b.Title.RU, &b.Title.EN, &b.Title.UZ,
			&b.Description.RU, &b.Description.EN, &b.Description.UZ,
			&b.Link, &b.SortOrder, &b.Active, &b.CreatedAt); err != nil {
			return nil, err
		}
		banners = append(banners, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return banners, nil
}

func (r *Repository) FAQCategories(ctx context.Context) ([]domain.FAQCategory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name_ru, name_en, name_uz, sort_order
		FROM faq_categories
		ORDER BY sort_order, name_ru
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var categories []domain.FAQCategory
	for rows.Next() {
		var c domain.FAQCategory
		if err := rows.Scan(&c.ID, &c.Name.RU, &c.Name.EN, &c.Name.UZ, &c.SortOrder); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

// ActiveFAQs lists active questions, optionally restricted to a category.
func (r *Repository) ActiveFAQs(ctx context.Context, categoryID string) ([]domain.FAQ, error) {
	query := `
		SELECT id, category_id,
		       question_ru, question_en, question_uz,
		       answer_ru, answer_en, answer_uz,
		       sort_order, active
		FROM faqs
		WHERE active`
	var args []any
	if categoryID != "" {
		query += ` AND category_id = $1`
		args = append(args, categoryID)
	}
	query += ` ORDER BY sort_order, question_ru`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		// A malformed category id matches nothing, same as an unknown one.
		if isInvalidUUID(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var faqs []domain.FAQ
	for rows.Next() {
		var f domain.FAQ
		if err := rows.Scan(&f.ID, &f.CategoryID,
			&f.Question.RU, &f.Question.EN, &f.Question.UZ,
			&f.Answer.RU, &f.Answer.EN, &f.Answer.UZ,
			&f.SortOrder, &f.Active); err != nil {
			return nil, err
		}
		faqs = append(faqs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return faqs, nil
}

func (r *Repository) ActiveAdvantages(ctx context.Context) ([]domain.Advantage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title_ru, title_en, title_uz,
		       description_ru, description_en, description_uz,
		       icon, sort_order, active
		FROM advantages
		WHERE active
		ORDER BY sort_order, title_ru
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var advantages []domain.Advantage
	for rows.Next() {
		var a domain.Advantage
		if err := rows.Scan(&a.ID,
			&a.Title.RU, &a.Title.EN, &a.Title.UZ,
			&a.Description.RU, &a.Description.EN, &a.Description.UZ,
			&a.Icon, &a.SortOrder, &a.Active); err != nil {
			return nil, err
		}
		advantages = append(advantages, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return advantages, nil
}

// CompanyInfo loads the singleton configuration record, initializing it
// with defaults on first access.
func (r *Repository) CompanyInfo(ctx context.Context) (*domain.CompanyInfo, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO company_info (id, name_ru, email, phone)
		VALUES ($1, 'LuxWood', 'info@luxwood.com', '+7 (999) 123-45-67')
		ON CONFLICT (id) DO NOTHING
	`, companyInfoID)
	if err != nil {
		return nil, fmt.Errorf("initialize company info: %w", err)
	}

	info := &domain.CompanyInfo{}
	err = r.db.QueryRowContext(ctx, `
		SELECT id,
		       name_ru, name_en, name_uz,
		       about_text_ru, about_text_en, about_text_uz,
		       mission_ru, mission_en, mission_uz,
		       history_ru, history_en, history_uz,
		       address_ru, address_en, address_uz,
		       city_ru, city_en, city_uz,
		       working_hours_ru, working_hours_en, working_hours_uz,
		       email, phone, postal_code, map_url, telegram, instagram
		FROM company_info
		WHERE id = $1
	`, companyInfoID).Scan(&info.ID,
		&info.Name.RU, &info.Name.EN, &info.Name.UZ,
		&info.AboutText.RU, &info.AboutText.EN, &info.AboutText.UZ,
		&info.Mission.RU, &info.Mission.EN, &info.Mission.UZ,
		&info.History.RU, &info.History.EN, &info.History.UZ,
		&info.Address.RU, &info.Address.EN, &info.Address.UZ,
		&info.City.RU, &info.City.EN, &info.City.UZ,
		&info.WorkingHours.RU, &info.WorkingHours.EN, &info.WorkingHours.UZ,
		&info.Email, &info.Phone, &info.PostalCode, &info.MapURL, &info.Telegram, &info.Instagram)
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (r *Repository) CreateContactMessage(ctx context.Context, msg *domain.ContactMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO contact_messages (id, name, email, phone, subject, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW())
		RETURNING created_at
	`, msg.ID, msg.Name, msg.Email, msg.Phone, msg.Subject, msg.Message).Scan(&msg.CreatedAt)
}
