package content

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Ixollozi/Lux-wood/internal/domain"
	"github.com/Ixollozi/Lux-wood/internal/i18n"
	"github.com/Ixollozi/Lux-wood/internal/notify"
)

type Handler struct {
	repo       *Repository
	resolver   i18n.Resolver
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
}

func NewHandler(repo *Repository, resolver i18n.Resolver, dispatcher *notify.Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{
		repo:       repo,
		resolver:   resolver,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

type bannerView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
}

func (h *Handler) HandleBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.repo.ActiveBanners(r.Context())
	if err != nil {
		h.logger.Error("failed to list banners", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	loc := i18n.FromRequest(r)
	views := make([]bannerView, 0, len(banners))
	for _, b := range banners {
		views = append(views, bannerView{
			ID:          b.ID,
			Title:       h.resolver.Resolve(b, "title", loc),
			Description: h.resolver.Resolve(b, "description", loc),
			Link:        b.Link,
		})
	}

	h.writeJSON(w, http.StatusOK, views)
}

type advantageView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

func (h *Handler) HandleAdvantages(w http.ResponseWriter, r *http.Request) {
	advantages, err := h.repo.ActiveAdvantages(r.Context())
	if err != nil {
		h.logger.Error("failed to list advantages", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	loc := i18n.FromRequest(r)
	views := make([]advantageView, 0, len(advantages))
	for _, a := range advantages {
		views = append(views, advantageView{
			ID:          a.ID,
			Title:       h.resolver.Resolve(a, "title", loc),
			Description: h.resolver.Resolve(a, "description", loc),
			Icon:        a.Icon,
		})
	}

	h.writeJSON(w, http.StatusOK, views)
}

type faqView struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
}

func (h *Handler) HandleFAQs(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromRequest(r)

	categories, err := h.repo.FAQCategories(r.Context())
	if err != nil {
		h.logger.Error("failed to list faq categories", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = h.resolver.Resolve(c, "name", loc)
	}

	faqs, err := h.repo.ActiveFAQs(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.logger.Error("failed to list faqs", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	views := make([]faqView, 0, len(faqs))
	for _, f := range faqs {
		view := faqView{
			ID:       f.ID,
			Question: h.resolver.Resolve(f, "question", loc),
			Answer:   h.resolver.Resolve(f, "answer", loc),
		}
		if f.CategoryID != nil {
			view.Category = names[*f.CategoryID]
		}
		views = append(views, view)
	}

	h.writeJSON(w, http.StatusOK, views)
}

type companyView struct {
	Name         string `json:"name"`
	AboutText    string `json:"about_text,omitempty"`
	Mission      string `json:"mission,omitempty"`
	History      string `json:"history,omitempty"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
	WorkingHours string `json:"working_hours,omitempty"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	MapURL       string `json:"map_url,omitempty"`
	Telegram     string `json:"telegram,omitempty"`
	Instagram    string `json:"instagram,omitempty"`
}

func (h *Handler) HandleCompany(w http.ResponseWriter, r *http.Request) {
	info, err := h.repo.CompanyInfo(r.Context())
	if err != nil {
		h.logger.Error("failed to load company info", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	loc := i18n.FromRequest(r)
	h.writeJSON(w, http.StatusOK, companyView{
		Name:         h.resolver.Resolve(*info, "name", loc),
		AboutText:    h.resolver.Resolve(*info, "about_text", loc),
		Mission:      h.resolver.Resolve(*info, "mission", loc),
		History:      h.resolver.Resolve(*info, "history", loc),
		Address:      h.resolver.Resolve(*info, "address", loc),
		City:         h.resolver.Resolve(*info, "city", loc),
		WorkingHours: h.resolver.Resolve(*info, "working_hours", loc),
		Email:        info.Email,
		Phone:        info.Phone,
		MapURL:       info.MapURL,
		Telegram:     info.Telegram,
		Instagram:    info.Instagram,
	})
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (h *Handler) HandleContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Subject == "" || req.Message == "" {
		h.writeError(w, http.StatusUnprocessableEntity, "name, email, subject and message are required")
		return
	}

	msg := &domain.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := h.repo.CreateContactMessage(r.Context(), msg); err != nil {
		h.logger.Error("failed to store contact message", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.dispatcher != nil {
		h.dispatcher.Enqueue(notify.ContactNotification(msg))
	}

	h.logger.Info("contact message received", "message_id", msg.ID, "subject", msg.Subject)
	h.writeJSON(w, http.StatusCreated, msg)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
