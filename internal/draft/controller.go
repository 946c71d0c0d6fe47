// Package draft manages per-item editing sessions. Each session holds a
// deep copy of the canonical item: nothing the user types is visible to the
// list view until a save succeeds.
package draft

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-inventory-cloud/internal/apperr"
	"go-inventory-cloud/internal/geocode"
	"go-inventory-cloud/internal/model"
	"go-inventory-cloud/internal/service"
)

// State is the editing lifecycle position of a session.
type State string

const (
	StateEditing State = "editing"
	StateSaving  State = "saving"
)

// Geocoder is the slice of the geocoding client the controller needs.
type Geocoder interface {
	ForwardGeocode(ctx context.Context, address string) geocode.Result
	ReverseGeocode(ctx context.Context, lat, lng float64) geocode.ReverseResult
}

// defaultDebounce is how long the location text must be stable before a
// forward geocode fires.
const defaultDebounce = 400 * time.Millisecond

type session struct {
	id     uuid.UUID
	itemID uuid.UUID
	actor  model.Actor

	mu           sync.Mutex
	state        State
	draft        model.InventoryItem
	addressFound bool

	// geocodeGen invalidates in-flight geocode responses that were
	// superseded by a newer edit: a stale response must never overwrite
	// a draft that changed underneath it.
	geocodeGen uint64
	debouncer  *geocode.Debouncer
}

// View is the session snapshot returned to callers.
type View struct {
	SessionID    uuid.UUID           `json:"session_id"`
	ItemID       uuid.UUID           `json:"item_id"`
	State        State               `json:"state"`
	Draft        model.InventoryItem `json:"draft"`
	AddressFound bool                `json:"address_found"`
}

// Patch carries the fields one edit event changes. Setting Location starts
// a debounced forward geocode; setting Latitude/Longitude directly bypasses
// geocoding entirely (coordinates and location text are independently
// editable).
type Patch struct {
	Name          *string           `json:"name,omitempty"`
	Category      *string           `json:"category,omitempty"`
	Quantity      *int              `json:"quantity,omitempty"`
	Status        *model.ItemStatus `json:"status,omitempty"`
	Location      *string           `json:"location,omitempty"`
	Latitude      *float64          `json:"latitude,omitempty"`
	Longitude     *float64          `json:"longitude,omitempty"`
	Description   *string           `json:"description,omitempty"`
	Price         *float64          `json:"price,omitempty"`
	Currency      *string           `json:"currency,omitempty"`
	UnitOfMeasure *string           `json:"unit_of_measure,omitempty"`
	SKU           *string           `json:"sku,omitempty"`
	MinimumStock  *int              `json:"minimum_stock,omitempty"`
	SupplierInfo  *string           `json:"supplier_info,omitempty"`
}

// Controller owns the open editing sessions.
type Controller struct {
	inventory service.InventoryService
	geo       Geocoder
	debounce  time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

type Option func(*Controller)

// WithDebounce overrides the geocode debounce window (used by tests).
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

func NewController(inventory service.InventoryService, geo Geocoder, opts ...Option) *Controller {
	c := &Controller{
		inventory: inventory,
		geo:       geo,
		debounce:  defaultDebounce,
		sessions:  make(map[uuid.UUID]*session),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open starts an editing session with a deep copy of the canonical item.
func (c *Controller) Open(ctx context.Context, actor model.Actor, itemID uuid.UUID) (*View, error) {
	item, err := c.inventory.Get(ctx, actor, itemID)
	if err != nil {
		return nil, err
	}

	draft := *item
	if item.UpdatedByUserID != nil {
		v := *item.UpdatedByUserID
		draft.UpdatedByUserID = &v
	}

	s := &session{
		id:        uuid.New(),
		itemID:    itemID,
		actor:     actor,
		state:     StateEditing,
		draft:     draft,
		debouncer: geocode.NewDebouncer(c.debounce),
	}

	c.mu.Lock()
	c.sessions[s.id] = s
	c.mu.Unlock()

	return s.view(), nil
}

// Update applies an edit event to the draft.
func (c *Controller) Update(ctx context.Context, actor model.Actor, sessionID uuid.UUID, patch *Patch) (*View, error) {
	s, err := c.lookup(actor, sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEditing {
		return nil, apperr.New(apperr.KindConflict, "session is not editable right now")
	}

	applyPatch(&s.draft, patch)

	if patch.Latitude != nil || patch.Longitude != nil {
		// Direct coordinate edits supersede any pending geocode.
		s.geocodeGen++
		s.debouncer.Stop()
	} else if patch.Location != nil {
		c.scheduleGeocode(s, *patch.Location)
	}

	return s.viewLocked(), nil
}

// scheduleGeocode debounces a forward geocode for the latest location text.
// Caller holds s.mu.
func (c *Controller) scheduleGeocode(s *session, address string) {
	s.geocodeGen++
	gen := s.geocodeGen

	s.debouncer.Call(func() {
		result := c.geo.ForwardGeocode(context.Background(), address)

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.geocodeGen {
			// The draft moved on while this request was in flight.
			return
		}
		if result.Found {
			s.draft.Latitude = result.Latitude
			s.draft.Longitude = result.Longitude
			s.addressFound = true
		} else {
			// Keep existing coordinates on a miss.
			s.addressFound = false
		}
	})
}

// UseCurrentLocation populates coordinates from the device position, then
// reverse-geocodes to backfill the location text. On a reverse miss the
// location falls back to formatted coordinates rather than going blank.
func (c *Controller) UseCurrentLocation(ctx context.Context, actor model.Actor, sessionID uuid.UUID, lat, lng float64) (*View, error) {
	s, err := c.lookup(actor, sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.state != StateEditing {
		s.mu.Unlock()
		return nil, apperr.New(apperr.KindConflict, "session is not editable right now")
	}
	s.draft.Latitude = lat
	s.draft.Longitude = lng
	s.geocodeGen++
	gen := s.geocodeGen
	s.debouncer.Stop()
	s.mu.Unlock()

	reverse := c.geo.ReverseGeocode(ctx, lat, lng)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.geocodeGen {
		// The draft moved on while the reverse lookup was in flight.
		return s.viewLocked(), nil
	}
	if reverse.Found {
		s.draft.Location = reverse.Address
		s.addressFound = true
	} else {
		s.draft.Location = geocode.FallbackAddress(lat, lng)
		s.addressFound = false
	}
	return s.viewLocked(), nil
}

// Save submits the full draft through the inventory store. Success closes
// the session; failure keeps it open in the editing state for a retry.
func (c *Controller) Save(ctx context.Context, actor model.Actor, sessionID uuid.UUID) error {
	s, err := c.lookup(actor, sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.state == StateSaving {
		s.mu.Unlock()
		return apperr.New(apperr.KindConflict, "save already in progress")
	}
	s.state = StateSaving
	req := updateRequestFrom(s.draft)
	s.mu.Unlock()

	if err := c.inventory.Update(ctx, actor, s.itemID, req); err != nil {
		s.mu.Lock()
		s.state = StateEditing
		s.mu.Unlock()
		return err
	}

	c.close(s)
	return nil
}

// Cancel discards the draft and closes the session.
func (c *Controller) Cancel(actor model.Actor, sessionID uuid.UUID) error {
	s, err := c.lookup(actor, sessionID)
	if err != nil {
		return err
	}
	c.close(s)
	return nil
}

// Get returns the current session snapshot.
func (c *Controller) Get(actor model.Actor, sessionID uuid.UUID) (*View, error) {
	s, err := c.lookup(actor, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(), nil
}

func (c *Controller) lookup(actor model.Actor, sessionID uuid.UUID) (*session, error) {
	c.mu.Lock()
	s, ok := c.sessions[sessionID]
	c.mu.Unlock()
	if !ok || s.actor.UserID != actor.UserID {
		return nil, apperr.New(apperr.KindNotFound, "editing session not found")
	}
	return s, nil
}

func (c *Controller) close(s *session) {
	s.mu.Lock()
	s.debouncer.Stop()
	s.geocodeGen++
	s.mu.Unlock()

	c.mu.Lock()
	delete(c.sessions, s.id)
	c.mu.Unlock()
}

func (s *session) view() *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *session) viewLocked() *View {
	return &View{
		SessionID:    s.id,
		ItemID:       s.itemID,
		State:        s.state,
		Draft:        s.draft,
		AddressFound: s.addressFound,
	}
}

// updateRequestFrom delegates the full draft to the inventory store's
// partial-update path.
func updateRequestFrom(d model.InventoryItem) *service.UpdateItemRequest {
	return &service.UpdateItemRequest{
		Name:          &d.Name,
		Category:      &d.Category,
		Quantity:      &d.Quantity,
		Status:        &d.Status,
		Location:      &d.Location,
		Latitude:      &d.Latitude,
		Longitude:     &d.Longitude,
		Description:   &d.Description,
		Price:         &d.Price,
		Currency:      &d.Currency,
		UnitOfMeasure: &d.UnitOfMeasure,
		SKU:           &d.SKU,
		MinimumStock:  &d.MinimumStock,
		SupplierInfo:  &d.SupplierInfo,
	}
}

func applyPatch(draft *model.InventoryItem, p *Patch) {
	if p.Name != nil {
		draft.Name = *p.Name
	}
	if p.Category != nil {
		draft.Category = *p.Category
	}
	if p.Quantity != nil {
		draft.Quantity = *p.Quantity
	}
	if p.Status != nil {
		draft.Status = *p.Status
	}
	if p.Location != nil {
		draft.Location = *p.Location
	}
	if p.Latitude != nil {
		draft.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		draft.Longitude = *p.Longitude
	}
	if p.Description != nil {
		draft.Description = *p.Description
	}
	if p.Price != nil {
		draft.Price = *p.Price
	}
	if p.Currency != nil {
		draft.Currency = *p.Currency
	}
	if p.UnitOfMeasure != nil {
		draft.UnitOfMeasure = *p.UnitOfMeasure
	}
	if p.SKU != nil {
		draft.SKU = *p.SKU
	}
	if p.MinimumStock != nil {
		draft.MinimumStock = *p.MinimumStock
	}
	if p.SupplierInfo != nil {
		draft.SupplierInfo = *p.SupplierInfo
	}
}
