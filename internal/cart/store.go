package cart

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/storefront/internal/domain"
)

const (
	OpAdd         = "add"
	OpRemove      = "remove"
	OpSetQuantity = "set_quantity"
	OpClear       = "clear"
	OpHydrate     = "hydrate"
)

// Hooks observe the store. They run with the store lock held and must not call
// back into it.
type Hooks struct {
	OnMutation     func(op string)
	OnPersistError func(op string, err error)
}

type Option func(*Store)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithCurrency(code string) Option {
	return func(s *Store) { s.currency = code }
}

func WithHooks(h Hooks) Option {
	return func(s *Store) { s.hooks = h }
}

func WithSaveTimeout(d time.Duration) Option {
	return func(s *Store) { s.saveTimeout = d }
}

// Store owns the ordered line items of one shopper's cart. Every mutation goes
// through Add, Remove, SetQuantity or Clear, and each one that changes state
// writes the full snapshot to the slot. The in-memory lines stay authoritative
// when the slot fails.
type Store struct {
	mu          sync.Mutex
	lines       []LineItem
	slot        Slot
	log         zerolog.Logger
	currency    string
	hooks       Hooks
	saveTimeout time.Duration
}

// NewStore builds a store and hydrates it once from slot. A nil slot keeps the
// cart in memory only.
func NewStore(ctx context.Context, slot Slot, opts ...Option) *Store {
	s := &Store{
		slot:        slot,
		log:         log.With().Str("component", "cart").Logger(),
		currency:    domain.DefaultCurrency,
		saveTimeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) {
	if s.slot == nil {
		return
	}
	raw, err := s.slot.Load(ctx)
	if err != nil {
		s.persistFailed(OpHydrate, err)
		return
	}
	lines, err := DecodeSnapshot(raw)
	if err != nil {
		s.persistFailed(OpHydrate, err)
		return
	}
	s.lines = lines
}

// Add puts qty units of the variant into the cart. An empty variantID falls back
// to the product's first variant. qty is clamped; a clamped qty of zero is a
// no-op, and merging into an existing line saturates at MaxQuantity. Products
// without an ID are ignored, as no snapshot could keep them.
func (s *Store) Add(p domain.Product, qty int, variantID string) {
	q := Clamp(qty)
	if q <= 0 || p.ID == "" {
		return
	}
	if variantID == "" {
		variantID = p.FirstVariantID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key{ProductID: p.ID, VariantID: variantID}
	if i := s.indexOf(key); i >= 0 {
		s.lines[i].Quantity = Clamp(s.lines[i].Quantity + q)
	} else {
		s.lines = append(s.lines, LineItem{Product: p, VariantID: variantID, Quantity: q})
	}
	s.commit(OpAdd)
}

// Remove drops the matching line. Missing lines are ignored.
func (s *Store) Remove(productID, variantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(Key{ProductID: productID, VariantID: variantID})
	if i < 0 {
		return
	}
	s.removeAt(i)
	s.commit(OpRemove)
}

// SetQuantity replaces the line quantity with Clamp(qty), removing the line when
// that is zero. Missing lines are ignored.
func (s *Store) SetQuantity(productID, variantID string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(Key{ProductID: productID, VariantID: variantID})
	if i < 0 {
		return
	}
	q := Clamp(qty)
	if q <= 0 {
		s.removeAt(i)
	} else {
		if s.lines[i].Quantity == q {
			return
		}
		s.lines[i].Quantity = q
	}
	s.commit(OpSetQuantity)
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.commit(OpClear)
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LineItem, len(s.lines))
	copy(out, s.lines)
	return out
}

// Count is the sum of all line quantities.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// Subtotal sums minimum variant price times quantity in the store currency.
func (s *Store) Subtotal() domain.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := domain.ZeroMoney(s.currency)
	for _, l := range s.lines {
		total = total.Plus(l.Total())
	}
	return total
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

func (s *Store) Empty() bool { return s.Len() == 0 }

func (s *Store) indexOf(k Key) int {
	for i, l := range s.lines {
		if l.Key() == k {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(i int) {
	s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
}

func (s *Store) commit(op string) {
	if s.hooks.OnMutation != nil {
		s.hooks.OnMutation(op)
	}
	if s.slot == nil {
		return
	}
	b, err := EncodeSnapshot(s.lines)
	if err != nil {
		s.persistFailed(op, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()
	if err := s.slot.Save(ctx, b); err != nil {
		s.persistFailed(op, err)
	}
}

func (s *Store) persistFailed(op string, err error) {
	s.log.Warn().Err(err).Str("op", op).Msg("cart persistence skipped")
	if s.hooks.OnPersistError != nil {
		s.hooks.OnPersistError(op, err)
	}
}
