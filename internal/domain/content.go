package domain

import (
	"time"

	"github.com/Ixollozi/Lux-wood/internal/i18n"
)

type Banner struct {
	ID          string    `json:"id"`
	Title       i18n.Text `json:"title"`
	Description i18n.Text `json:"description"`
	Link        string    `json:"link,omitempty"`
	SortOrder   int       `json:"sort_order"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (b Banner) LocalizedFields() map[string]i18n.Text {
	return map[string]i18n.Text{
		"title":       b.Title,
		"description": b.Description,
	}
}

type FAQCategory struct {
	ID        string    `json:"id"`
	Name      i18n.Text `json:"name"`
	SortOrder int       `json:"sort_order"`
}

func (c FAQCategory) LocalizedFields() map[string]i18n.Text {
	return map[string]i18n.Text{"name": c.Name}
}

type FAQ struct {
	ID         string    `json:"id"`
	CategoryID *string   `json:"category_id,omitempty"`
	Question   i18n.Text `json:"question"`
	Answer     i18n.Text `json:"answer"`
	SortOrder  int       `json:"sort_order"`
	Active     bool      `json:"active"`
}

func (f FAQ) LocalizedFields() map[string]i18n.Text {
	return map[string]i18n.Text{
		"question": f.Question,
		"answer":   f.Answer,
	}
}

type Advantage struct {
	ID          string    `json:"id"`
	Title       i18n.Text `json:"title"`
	Description i18n.Text `json:"description"`
	Icon        string    `json:"icon,omitempty"`
	SortOrder   int       `json:"sort_order"`
	Active      bool      `json:"active"`
}

func (a Advantage) LocalizedFields() map[string]i18n.Text {
	return map[string]i18n.Text{
		"title":       a.Title,
		"description": a.Description,
	}
}

// CompanyInfo is a single well-known configuration record. The single-row
// invariant is enforced by the content repository's load-or-init accessor,
// not by the row itself.
type CompanyInfo struct {
	ID           int       `json:"id"`
	Name         i18n.Text `json:"name"`
	AboutText    i18n.Text `json:"about_text"`
	Mission      i18n.Text `json:"mission"`
	History      i18n.Text `json:"history"`
	Address      i18n.Text `json:"address"`
	City         i18n.Text `json:"city"`
	WorkingHours i18n.Text `json:"working_hours"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PostalCode   string    `json:"postal_code,omitempty"`
	MapURL       string    `json:"map_url,omitempty"`
	Telegram     string    `json:"telegram,omitempty"`
	Instagram    string    `json:"instagram,omitempty"`
}

func (c CompanyInfo) LocalizedFields() map[string]i18n.Text {
	return map[string]i18n.Text{
		"name":          c.Name,
		"about_text":    c.AboutText,
		"mission":       c.Mission,
		"history":       c.History,
		"address":       c.Address,
		"city":          c.City,
		"working_hours": c.WorkingHours,
	}
}

type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
