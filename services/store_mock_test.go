package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"checkout-service/models"
	"checkout-service/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memStore is an in-memory repository.Store for exercising the
// transaction engines without a database. WithinTransaction runs the
// callback directly; tests arrange failures so partial state never
// matters to their assertions.
type memStore struct {
	mu sync.Mutex

	variants map[uuid.UUID]*models.ProductVariant
	carts    map[string]*models.Cart
	orders   map[uuid.UUID]*models.Order
	history  []models.OrderStatusHistory
	outbox   []models.ComplianceOutbox
	seqs     map[string]int

	// failOrderCreates makes the next N order creates fail with a
	// duplicate-key error, simulating an order-number collision.
	failOrderCreates int
	nextOutboxID     int64
}

func newMemStore() *memStore {
	return &memStore{
		variants: make(map[uuid.UUID]*models.ProductVariant),
		carts:    make(map[string]*models.Cart),
		orders:   make(map[uuid.UUID]*models.Order),
		seqs:     make(map[string]int),
	}
}

func cartKey(userID, dispensaryID uuid.UUID) string {
	return userID.String() + "|" + dispensaryID.String()
}

func (m *memStore) addVariant(v models.ProductVariant) *models.ProductVariant {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	m.variants[v.ID] = &v
	return &v
}

func (m *memStore) addCart(userID, dispensaryID uuid.UUID, items ...models.CartItem) {
	cart := &models.Cart{ID: uuid.New(), UserID: userID, DispensaryID: dispensaryID}
	for i := range items {
		items[i].ID = uuid.New()
		items[i].CartID = cart.ID
	}
	cart.Items = items
	m.carts[cartKey(userID, dispensaryID)] = cart
}

func (m *memStore) Orders() repository.OrderRepository        { return &memOrderRepo{m} }
func (m *memStore) Inventory() repository.InventoryRepository { return &memInventoryRepo{m} }
func (m *memStore) Carts() repository.CartRepository          { return &memCartRepo{m} }
func (m *memStore) Outbox() repository.OutboxRepository       { return &memOutboxRepo{m} }
func (m *memStore) Sequences() repository.SequenceRepository  { return &memSequenceRepo{m} }

func (m *memStore) WithinTransaction(_ context.Context, fn func(repository.Store) error) error {
	return fn(m)
}

// ---- orders ----

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) Create(_ context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failOrderCreates > 0 {
		r.s.failOrderCreates--
		return gorm.ErrDuplicatedKey
	}
	for _, existing := range r.s.orders {
		if existing.OrderNumber == order.OrderNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	order.CreatedAt = time.Now().UTC()
	stored := *order
	r.s.orders[order.ID] = &stored
	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *order
	out.StatusHistory = r.historyFor(id)
	return &out, nil
}

func (r *memOrderRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *order
	return &out, nil
}

func (r *memOrderRepo) Update(_ context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.orders[order.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Status = order.Status
	stored.PaymentStatus = order.PaymentStatus
	stored.ConfirmedAt = order.ConfirmedAt
	stored.CompletedAt = order.CompletedAt
	stored.CancelledAt = order.CancelledAt
	return nil
}

func (r *memOrderRepo) AppendHistory(_ context.Context, entry *models.OrderStatusHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().UTC()
	r.s.history = append(r.s.history, *entry)
	return nil
}

func (r *memOrderRepo) historyFor(orderID uuid.UUID) []models.OrderStatusHistory {
	var out []models.OrderStatusHistory
	for _, h := range r.s.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *memOrderRepo) FindByUserID(_ context.Context, userID uuid.UUID, status *models.OrderStatus, page, limit int) ([]models.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Order
	for _, o := range r.s.orders {
		if o.UserID == userID && (status == nil || o.Status == *status) {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) FindByDispensaryID(_ context.Context, dispensaryID uuid.UUID, status *models.OrderStatus, page, limit int) ([]models.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Order
	for _, o := range r.s.orders {
		if o.DispensaryID == dispensaryID && (status == nil || o.Status == *status) {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) HasUserPurchasedProduct(_ context.Context, userID, productID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.UserID != userID || o.Status == models.StatusCancelled {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

// ---- inventory ----

type memInventoryRepo struct{ s *memStore }

func (r *memInventoryRepo) AdjustQuantity(_ context.Context, variantID uuid.UUID, delta int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	variant, ok := r.s.variants[variantID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	variant.Quantity += delta
	if variant.Quantity < 0 {
		variant.Quantity = 0
	}
	return variant.Quantity, nil
}

func (r *memInventoryRepo) FindVariant(_ context.Context, variantID uuid.UUID) (*models.ProductVariant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	variant, ok := r.s.variants[variantID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *variant
	return &out, nil
}

func (r *memInventoryRepo) ListBelowThreshold(_ context.Context, dispensaryID uuid.UUID) ([]models.ProductVariant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.ProductVariant
	for _, v := range r.s.variants {
		if v.DispensaryID == dispensaryID && v.Quantity <= v.LowStockThreshold {
			out = append(out, *v)
		}
	}
	return out, nil
}

// ---- carts ----

type memCartRepo struct{ s *memStore }

func (r *memCartRepo) GetCartSummary(_ context.Context, userID, dispensaryID uuid.UUID) (*models.CartSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cart, ok := r.s.carts[cartKey(userID, dispensaryID)]
	if !ok {
		return &models.CartSummary{}, nil
	}
	summary := &models.CartSummary{}
	for _, item := range cart.Items {
		variant, ok := r.s.variants[item.VariantID]
		if !ok {
			return nil, repository.ErrNotFound
		}
		line := models.CartSummaryItem{
			VariantID:      item.VariantID,
			ProductID:      variant.ProductID,
			ProductName:    variant.ProductName,
			VariantName:    variant.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			LineTotalCents: item.UnitPriceCents * int64(item.Quantity),
			BatchNumber:    variant.BatchNumber,
			LicenseNumber:  variant.LicenseNumber,
		}
		summary.Items = append(summary.Items, line)
		summary.SubtotalCents += line.LineTotalCents
	}
	return summary, nil
}

func (r *memCartRepo) Clear(_ context.Context, userID, dispensaryID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if cart, ok := r.s.carts[cartKey(userID, dispensaryID)]; ok {
		cart.Items = nil
	}
	return nil
}

func (r *memCartRepo) Get(_ context.Context, userID, dispensaryID uuid.UUID) (*models.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cart, ok := r.s.carts[cartKey(userID, dispensaryID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *cart
	return &out, nil
}

func (r *memCartRepo) AddItem(_ context.Context, userID, dispensaryID, variantID uuid.UUID, quantity int, unitPriceCents int64) (*models.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := cartKey(userID, dispensaryID)
	cart, ok := r.s.carts[key]
	if !ok {
		cart = &models.Cart{ID: uuid.New(), UserID: userID, DispensaryID: dispensaryID}
		r.s.carts[key] = cart
	}
	for i := range cart.Items {
		if cart.Items[i].VariantID == variantID {
			cart.Items[i].Quantity += quantity
			out := *cart
			return &out, nil
		}
	}
	cart.Items = append(cart.Items, models.CartItem{
		ID:             uuid.New(),
		CartID:         cart.ID,
		VariantID:      variantID,
		Quantity:       quantity,
		UnitPriceCents: unitPriceCents,
	})
	out := *cart
	return &out, nil
}

// ---- outbox ----

type memOutboxRepo struct{ s *memStore }

func (r *memOutboxRepo) Enqueue(_ context.Context, event *models.ComplianceOutbox) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextOutboxID++
	event.ID = r.s.nextOutboxID
	event.CreatedAt = time.Now().UTC()
	r.s.outbox = append(r.s.outbox, *event)
	return nil
}

func (r *memOutboxRepo) FetchPending(_ context.Context, limit int) ([]models.ComplianceOutbox, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.ComplianceOutbox
	for _, e := range r.s.outbox {
		if e.SentAt == nil {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memOutboxRepo) MarkSent(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	for i := range r.s.outbox {
		if r.s.outbox[i].ID == id {
			r.s.outbox[i].SentAt = &now
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memOutboxRepo) MarkFailed(_ context.Context, id int64, lastError string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.outbox {
		if r.s.outbox[i].ID == id {
			r.s.outbox[i].Attempts++
			r.s.outbox[i].LastError = lastError
			return nil
		}
	}
	return repository.ErrNotFound
}

// ---- sequences ----

type memSequenceRepo struct{ s *memStore }

func (r *memSequenceRepo) Next(_ context.Context, dispensaryID uuid.UUID, seqDate string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := dispensaryID.String() + "|" + seqDate
	r.s.seqs[key]++
	return r.s.seqs[key], nil
}
