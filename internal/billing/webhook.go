// Package billing reconciles payment-provider subscription events into
// organization billing state and brokers checkout/portal sessions.
package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-inventory-cloud/internal/apperr"
	"go-inventory-cloud/internal/model"
	"go-inventory-cloud/internal/repository"
	"go-inventory-cloud/internal/ws"
)

// Subscription event types delivered by the provider.
const (
	EventSubscriptionCreated = "subscription.created"
	EventSubscriptionUpdated = "subscription.updated"
	EventSubscriptionDeleted = "subscription.deleted"
)

// signatureTolerance bounds how old a signed payload may be before it is
// rejected as a possible replay.
const signatureTolerance = 5 * time.Minute

var (
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrUnknownOrg       = errors.New("event does not resolve to a known organization")
)

// Event is the provider's webhook envelope.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object Subscription `json:"object"`
	} `json:"data"`
}

// Subscription is the event object carrying the customer reference and the
// product metadata the org's tier and member limit come from.
type Subscription struct {
	ID       string            `json:"id"`
	Customer string            `json:"customer"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
}

// VerifySignature checks a "t=<unix>,v1=<hex>" header where v1 is the
// HMAC-SHA256 of "<t>.<payload>" under the shared secret. now is injectable
// for tests.
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	var ts string
	var sigs []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts = kv[1]
		case "v1":
			sigs = append(sigs, kv[1])
		}
	}
	if ts == "" || len(sigs) == 0 {
		return ErrInvalidSignature
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	age := now.Sub(time.Unix(unix, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range sigs {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// Sign produces the signature header for a payload. Exported for tests and
// for local webhook replay tooling.
func Sign(payload []byte, secret string, now time.Time) string {
	ts := strconv.FormatInt(now.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

// Reconciler applies subscription events to organization billing state.
type Reconciler struct {
	orgRepo repository.OrgRepository
	wsHub   *ws.Hub
}

func NewReconciler(orgRepo repository.OrgRepository, hub *ws.Hub) *Reconciler {
	return &Reconciler{orgRepo: orgRepo, wsHub: hub}
}

// Apply processes one event. Unknown event types return nil so the handler
// acknowledges them; the provider retries on anything non-2xx. Re-applying
// the same event writes the same values, so redelivery cannot corrupt state.
func (r *Reconciler) Apply(raw []byte) error {
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return apperr.Wrap(apperr.KindValidation, "malformed event payload", err)
	}

	switch event.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		return r.applyActive(&event)
	case EventSubscriptionDeleted:
		return r.applyDeleted(&event)
	default:
		// Acknowledged but ignored.
		return nil
	}
}

func (r *Reconciler) applyActive(event *Event) error {
	sub := event.Data.Object
	org, err := r.resolveOrg(&sub)
	if err != nil {
		return err
	}

	tier := sub.Metadata["tier"]
	if tier == "" {
		tier = model.TierPro
	}
	limit := model.FreeMemberLimit
	if raw, ok := sub.Metadata["member_limit"]; ok {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	fields := map[string]interface{}{
		"tier":            tier,
		"billing_status":  model.BillingActive,
		"member_limit":    limit,
		"subscription_id": sub.ID,
	}
	if sub.Customer != "" {
		fields["customer_id"] = sub.Customer
	}
	if err := r.orgRepo.UpdateBilling(org.ID, fields); err != nil {
		return err
	}

	r.notify(org, "subscription_active", fmt.Sprintf("Subscription active on the %s plan", tier))
	return nil
}

func (r *Reconciler) applyDeleted(event *Event) error {
	sub := event.Data.Object
	org, err := r.resolveOrg(&sub)
	if err != nil {
		return err
	}

	fields := map[string]interface{}{
		"tier":            model.TierFree,
		"billing_status":  model.BillingInactive,
		"member_limit":    model.FreeMemberLimit,
		"subscription_id": "",
	}
	if err := r.orgRepo.UpdateBilling(org.ID, fields); err != nil {
		return err
	}

	r.notify(org, "subscription_cancelled", "Subscription cancelled, organization reverted to the free plan")
	return nil
}

// resolveOrg looks the organization up by provider customer id, falling
// back to the organization id the checkout flow stamps into event metadata.
func (r *Reconciler) resolveOrg(sub *Subscription) (*model.Organization, error) {
	if sub.Customer != "" {
		if org, err := r.orgRepo.FindByCustomerID(sub.Customer); err == nil {
			return org, nil
		}
	}

	if raw, ok := sub.Metadata["organization_id"]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			if org, err := r.orgRepo.FindByID(id); err == nil {
				return org, nil
			}
		}
	}

	return nil, ErrUnknownOrg
}

func (r *Reconciler) notify(org *model.Organization, action, message string) {
	r.wsHub.Notify(ws.Event{
		Type:    "billing",
		Action:  action,
		OrgID:   org.ID.String(),
		Message: message,
	})
}
