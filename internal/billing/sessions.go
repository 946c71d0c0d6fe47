package billing

import (
	"context"

	"go-inventory-cloud/internal/apperr"
	"go-inventory-cloud/internal/model"
	"go-inventory-cloud/internal/repository"
)

// Session actions accepted by the billing session endpoint.
const (
	ActionPortal   = "portal"
	ActionCheckout = "checkout"
)

// SessionService turns a portal/checkout request into a provider redirect
// URL for the caller's organization.
type SessionService struct {
	orgRepo  repository.OrgRepository
	provider Provider
}

func NewSessionService(orgRepo repository.OrgRepository, provider Provider) *SessionService {
	return &SessionService{orgRepo: orgRepo, provider: provider}
}

// CreateSession resolves the actor's organization and asks the provider for
// a redirect URL. A portal request without a provisioned portal falls back
// to a checkout session when a price id is supplied, so the caller always
// has an actionable next step.
func (s *SessionService) CreateSession(ctx context.Context, actor model.Actor, action, priceID, returnURL string) (string, error) {
	if !actor.IsAdmin() {
		return "", apperr.New(apperr.KindAuthorization, "only organization admins can manage billing")
	}

	org, err := s.orgRepo.FindByID(actor.OrgID)
	if err != nil {
		return "", apperr.New(apperr.KindNotFound, "organization not found")
	}

	switch action {
	case ActionPortal:
		if org.CustomerID == "" {
			return s.checkoutFallback(ctx, org, priceID, returnURL,
				"Customer Portal not configured: no billing customer on file")
		}
		url, err := s.provider.CreatePortalSession(ctx, org.CustomerID, returnURL)
		if err != nil {
			return s.checkoutFallback(ctx, org, priceID, returnURL, err.Error())
		}
		return url, nil

	case ActionCheckout:
		if priceID == "" {
			return "", apperr.New(apperr.KindValidation, "priceId is required for checkout")
		}
		return s.provider.CreateCheckoutSession(ctx, org.CustomerID, org.ID, priceID, returnURL)

	default:
		return "", apperr.New(apperr.KindValidation, "action must be 'portal' or 'checkout'")
	}
}

func (s *SessionService) checkoutFallback(ctx context.Context, org *model.Organization, priceID, returnURL, reason string) (string, error) {
	if priceID == "" {
		return "", apperr.New(apperr.KindUpstream, reason)
	}
	return s.provider.CreateCheckoutSession(ctx, org.CustomerID, org.ID, priceID, returnURL)
}
