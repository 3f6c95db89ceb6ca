package api

import (
	"time"

	cfdomain "github.com/felixgeelhaar/tollgate/internal/cancelflow/domain"
	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
	updomain "github.com/felixgeelhaar/tollgate/internal/upgrade/domain"
)

type priceDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Display  string `json:"display,omitempty"`
}

func (p *priceDTO) toDomain() *domain.Price {
	if p == nil {
		return nil
	}
	return &domain.Price{Amount: p.Amount, Currency: p.Currency, Display: p.Display}
}

type promotionDTO struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	PercentOff     int       `json:"percent_off"`
	PromoPrice     *priceDTO `json:"promo_price,omitempty"`
	ExpiresAt      string    `json:"expires_at,omitempty"`
	RequiresCoupon bool      `json:"requires_coupon"`
}

type productDTO struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Type        string        `json:"type"`
	Price       priceDTO      `json:"price"`
	Promotion   *promotionDTO `json:"promotion,omitempty"`
}

func (p productDTO) toDomain() domain.Product {
	out := domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Type:        domain.ProductType(p.Type),
		Price:       domain.Price{Amount: p.Price.Amount, Currency: p.Price.Currency, Display: p.Price.Display},
	}
	if p.Promotion != nil {
		out.Promotion = &domain.Promotion{
			ID:             p.Promotion.ID,
			Name:           p.Promotion.Name,
			PercentOff:     p.Promotion.PercentOff,
			PromoPrice:     p.Promotion.PromoPrice.toDomain(),
			ExpiresAt:      p.Promotion.ExpiresAt,
			RequiresCoupon: p.Promotion.RequiresCoupon,
		}
	}
	return out
}

type remoteConfigDTO struct {
	DefaultPath           string              `json:"default_checkout_path,omitempty"`
	PathByJurisdiction    map[string]string   `json:"checkout_path_by_jurisdiction,omitempty"`
	DisabledJurisdictions []string            `json:"disabled_jurisdictions,omitempty"`
	Migration             *migrationPromptDTO `json:"migration_prompt,omitempty"`
}

type migrationPromptDTO struct {
	Enabled   bool   `json:"enabled"`
	ProductID string `json:"product_id,omitempty"`
	Title     string `json:"title,omitempty"`
	Body      string `json:"body,omitempty"`
}

func (r *remoteConfigDTO) toDomain() *domain.RemoteConfig {
	if r == nil {
		return nil
	}
	cfg := &domain.RemoteConfig{
		DefaultPath: domain.CheckoutPath(r.DefaultPath),
	}
	if len(r.PathByJurisdiction) > 0 {
		cfg.PathByJurisdiction = make(map[domain.Jurisdiction]domain.CheckoutPath, len(r.PathByJurisdiction))
		for j, p := range r.PathByJurisdiction {
			cfg.PathByJurisdiction[domain.Jurisdiction(j)] = domain.CheckoutPath(p)
		}
	}
	for _, j := range r.DisabledJurisdictions {
		cfg.DisabledJurisdictions = append(cfg.DisabledJurisdictions, domain.Jurisdiction(j))
	}
	if r.Migration != nil {
		cfg.Migration = &domain.MigrationPrompt{
			Enabled:   r.Migration.Enabled,
			ProductID: r.Migration.ProductID,
			Title:     r.Migration.Title,
			Body:      r.Migration.Body,
		}
	}
	return cfg
}

type productsResponse struct {
	Products []productDTO     `json:"products"`
	Config   *remoteConfigDTO `json:"config,omitempty"`
}

type checkoutSessionRequest struct {
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id,omitempty"`
	Path      string `json:"checkout_path"`
}

type checkoutSessionResponse struct {
	ID            string `json:"id"`
	CheckoutURL   string `json:"checkout_url"`
	TransactionID string `json:"transaction_id,omitempty"`
	ProductID     string `json:"product_id"`
}

type paymentIntentRequest struct {
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id,omitempty"`
}

type paymentIntentResponse struct {
	ID            string `json:"id"`
	ClientSecret  string `json:"client_secret"`
	TransactionID string `json:"transaction_id"`
	CheckoutURL   string `json:"checkout_url,omitempty"`
	ProductID     string `json:"product_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

type transactionDTO struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Status      string    `json:"status"`
	Source      string    `json:"source,omitempty"`
	Amount      *int64    `json:"amount,omitempty"`
	Currency    string    `json:"currency,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t transactionDTO) toDomain() *domain.Transaction {
	return &domain.Transaction{
		ID:          t.ID,
		ProductID:   t.ProductID,
		ProductName: t.ProductName,
		Status:      domain.TransactionStatus(t.Status),
		Source:      domain.EntitlementSource(t.Source),
		Amount:      t.Amount,
		Currency:    t.Currency,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type entitlementDTO struct {
	ID             string     `json:"id"`
	ProductID      string     `json:"product_id"`
	Source         string     `json:"source"`
	Active         bool       `json:"active"`
	Status         string     `json:"status"`
	PurchasedAt    time.Time  `json:"purchased_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	PausedAt       *time.Time `json:"paused_at,omitempty"`
	PauseResumesAt *time.Time `json:"pause_resumes_at,omitempty"`
	WillRenew      bool       `json:"will_renew"`
	IsTrial        bool       `json:"is_trial"`
	TrialEndsAt    *time.Time `json:"trial_ends_at,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
}

func (e entitlementDTO) toDomain() domain.Entitlement {
	return domain.Entitlement{
		ID:             e.ID,
		ProductID:      e.ProductID,
		Source:         domain.EntitlementSource(e.Source),
		Active:         e.Active,
		Status:         e.Status,
		PurchasedAt:    e.PurchasedAt,
		ExpiresAt:      e.ExpiresAt,
		PausedAt:       e.PausedAt,
		PauseResumesAt: e.PauseResumesAt,
		WillRenew:      e.WillRenew,
		IsTrial:        e.IsTrial,
		TrialEndsAt:    e.TrialEndsAt,
		CancelledAt:    e.CancelledAt,
	}
}

type entitlementsResponse struct {
	Entitlements []entitlementDTO `json:"entitlements"`
}

type cancelFlowConfigRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id,omitempty"`
}

type cancelQuestionOptionDTO struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	TriggersOffer bool   `json:"triggers_offer"`
	TriggersPause bool   `json:"triggers_pause"`
}

type cancelQuestionDTO struct {
	ID       string                    `json:"id"`
	Text     string                    `json:"text"`
	Type     string                    `json:"type"`
	Required bool                      `json:"required"`
	Options  []cancelQuestionOptionDTO `json:"options,omitempty"`
}

type retentionOfferDTO struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	CTA   string `json:"cta"`
	Value string `json:"value,omitempty"`
}

type pauseOptionDTO struct {
	ID           string     `json:"id"`
	Label        string     `json:"label"`
	DurationType string     `json:"duration_type"`
	Days         int        `json:"days,omitempty"`
	ResumesAt    *time.Time `json:"resumes_at,omitempty"`
}

type cancelFlowConfigResponse struct {
	Enabled   bool                `json:"enabled"`
	Questions []cancelQuestionDTO `json:"questions"`
	Offer     *retentionOfferDTO  `json:"offer,omitempty"`
	Pause     *struct {
		Options []pauseOptionDTO `json:"options"`
	} `json:"pause,omitempty"`
}

func (r cancelFlowConfigResponse) toDomain() *cfdomain.Config {
	cfg := &cfdomain.Config{Enabled: r.Enabled}
	for _, q := range r.Questions {
		question := cfdomain.Question{
			ID:       q.ID,
			Text:     q.Text,
			Type:     cfdomain.QuestionType(q.Type),
			Required: q.Required,
		}
		for _, o := range q.Options {
			question.Options = append(question.Options, cfdomain.Option{
				ID:            o.ID,
				Label:         o.Label,
				TriggersOffer: o.TriggersOffer,
				TriggersPause: o.TriggersPause,
			})
		}
		cfg.Questions = append(cfg.Questions, question)
	}
	if r.Offer != nil {
		cfg.Offer = &cfdomain.RetentionOffer{
			Title: r.Offer.Title,
			Body:  r.Offer.Body,
			CTA:   r.Offer.CTA,
			Value: r.Offer.Value,
		}
	}
	if r.Pause != nil {
		cfg.Pause = &cfdomain.PauseConfig{}
		for _, o := range r.Pause.Options {
			cfg.Pause.Options = append(cfg.Pause.Options, cfdomain.PauseOption{
				ID:           o.ID,
				Label:        o.Label,
				DurationType: cfdomain.PauseDurationType(o.DurationType),
				Days:         o.Days,
				ResumesAt:    o.ResumesAt,
			})
		}
	}
	return cfg
}

type cancelFlowRespondRequest struct {
	UserID     string            `json:"user_id"`
	Outcome    string            `json:"outcome"`
	LastStep   int               `json:"last_step"`
	OfferShown bool              `json:"offer_shown"`
	PauseShown bool              `json:"pause_shown"`
	Answers    map[string]string `json:"answers,omitempty"`
}

type pauseSubscriptionRequest struct {
	UserID   string `json:"user_id"`
	OptionID string `json:"option_id"`
}

type pauseSubscriptionResponse struct {
	ResumesAt time.Time `json:"resumes_at"`
}

type upgradeOfferRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id,omitempty"`
}

type productSummaryDTO struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Price priceDTO `json:"price"`
}

func (p *productSummaryDTO) toDomain() *updomain.ProductSummary {
	if p == nil {
		return nil
	}
	return &updomain.ProductSummary{
		ID:    p.ID,
		Name:  p.Name,
		Price: domain.Price{Amount: p.Price.Amount, Currency: p.Price.Currency, Display: p.Price.Display},
	}
}

type upgradeOfferResponse struct {
	Available      bool               `json:"available"`
	Current        *productSummaryDTO `json:"current_product,omitempty"`
	Target         *productSummaryDTO `json:"target_product,omitempty"`
	SavingsPercent int                `json:"savings_percent,omitempty"`
	Proration      string             `json:"proration,omitempty"`
	Title          string             `json:"title,omitempty"`
	Body           string             `json:"body,omitempty"`
	CTA            string             `json:"cta,omitempty"`
}

func (r upgradeOfferResponse) toDomain() *updomain.Offer {
	return &updomain.Offer{
		Available:      r.Available,
		Current:        r.Current.toDomain(),
		Target:         r.Target.toDomain(),
		SavingsPercent: r.SavingsPercent,
		Proration:      r.Proration,
		Title:          r.Title,
		Body:           r.Body,
		CTA:            r.CTA,
	}
}

type upgradeRespondRequest struct {
	UserID   string `json:"user_id"`
	Decision string `json:"decision"`
}

type executeUpgradeRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id,omitempty"`
}

type migrationConvertedRequest struct {
	UserID        string `json:"user_id"`
	TransactionID string `json:"transaction_id,omitempty"`
}

type portalSessionRequest struct {
	UserID string `json:"user_id"`
}

type portalSessionResponse struct {
	URL string `json:"url"`
}

type funnelEventRequest struct {
	Name       string            `json:"name"`
	UserID     string            `json:"user_id,omitempty"`
	ProductID  string            `json:"product_id,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type errorBody struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
	Error  string `json:"error"`
}
