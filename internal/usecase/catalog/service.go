package catalog

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/hwstudio/product-catalog/internal/domain"
	"github.com/hwstudio/product-catalog/internal/pkg/clock"
	"github.com/hwstudio/product-catalog/internal/pkg/logger"
)

// Persister dumps a freshly created product record synchronously.
type Persister interface {
	DumpProduct(p domain.Product) error
}

// DumpScheduler accepts deferred re-dump requests after a review lands.
// Implementations receive immutable snapshots and must not block.
type DumpScheduler interface {
	Schedule(p domain.Product, reviews []domain.Review)
}

// Reporter renders a product with its reviews into display text.
type Reporter interface {
	ProductReport(p domain.Product, reviews []domain.Review, at time.Time) string
}

// Snapshot is one product with its reviews, as handed to Restore.
type Snapshot struct {
	Product domain.Product
	Reviews []domain.Review
}

// entry is the unit of concurrency: its mutex serializes the
// read-modify-write of one product's reviews and rating. Operations on
// different ids never contend on an entry lock.
type entry struct {
	mu      sync.Mutex
	product domain.Product
	reviews []domain.Review
}

// Service is the single source of truth for products and their reviews.
// A product's stored rating always equals the rounded mean of the levels
// of its current review list.
type Service struct {
	mu      sync.RWMutex
	entries map[int]*entry

	seq      *Sequence
	persist  Persister
	dumps    DumpScheduler
	clock    clock.Clock
	reporter Reporter
	validate *validator.Validate
	logger   *logger.Logger
}

// NewService creates a catalog service.
func NewService(
	persist Persister,
	dumps DumpScheduler,
	seq *Sequence,
	clk clock.Clock,
	reporter Reporter,
	log *logger.Logger,
) *Service {
	return &Service{
		entries:  make(map[int]*entry),
		seq:      seq,
		persist:  persist,
		dumps:    dumps,
		clock:    clk,
		reporter: reporter,
		validate: validator.New(),
		logger:   log,
	}
}

// CreateInput carries the arguments of Create.
type CreateInput struct {
	Name  string  `validate:"required,min=1,max=255"`
	Price float64 `validate:"gte=0"`
	Kind  domain.Kind
}

// Food products get a week of shelf life at creation.
const foodShelfLifeDays = 7

// Create constructs a product of the requested kind with the next
// sequential id, no rating and an empty review list, then dumps the new
// record. Invalid arguments are rejected with ErrInvalidInput and nothing
// is created.
func (s *Service) Create(input CreateInput) (domain.Product, error) {
	if err := s.validate.Struct(input); err != nil {
		s.logger.Error("Product validation failed", err)
		return domain.Product{}, fmt.Errorf("create product: %w", domain.ErrInvalidInput)
	}

	var bestBefore time.Time
	if input.Kind == domain.Food {
		bestBefore = s.clock.Now().AddDate(0, 0, foodShelfLifeDays)
	}

	product := domain.NewProduct(
		s.seq.Next(),
		input.Name,
		decimal.NewFromFloat(input.Price).Round(2),
		input.Kind,
		bestBefore,
	)

	s.mu.Lock()
	s.entries[product.ID] = &entry{product: product}
	s.mu.Unlock()

	// A failed dump must not un-create the product; the record will be
	// rewritten by the next scheduled dump.
	if err := s.persist.DumpProduct(product); err != nil {
		s.logger.Error("Failed to dump new product record", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
		"kind":       product.Kind.String(),
	}).Info("Product created")

	return product, nil
}

// FindByID returns the current product value for id, or ErrNoSuchProduct.
// The distinct error keeps "does not exist" apart from "not rated yet".
func (s *Service) FindByID(id int) (domain.Product, error) {
	e := s.lookup(id)
	if e == nil {
		return domain.Product{}, fmt.Errorf("find product %d: %w", id, domain.ErrNoSuchProduct)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.product, nil
}

// Review appends a review to the product, re-sorts its review list and
// recomputes the aggregate rating, all under the product's own lock. The
// new product value replaces the old one; the review list is preserved.
// A re-dump of the record is scheduled outside the critical section.
func (s *Service) Review(id int, rating domain.Rating, comment string) (domain.Product, error) {
	e := s.lookup(id)
	if e == nil {
		return domain.Product{}, fmt.Errorf("review product %d: %w", id, domain.ErrNoSuchProduct)
	}

	e.mu.Lock()
	e.reviews = append(e.reviews, domain.NewReview(rating, comment))
	domain.SortReviews(e.reviews)
	aggregate := aggregateRating(e.reviews)
	e.product = e.product.WithRating(aggregate)

	product := e.product
	snapshot := make([]domain.Review, len(e.reviews))
	copy(snapshot, e.reviews)
	e.mu.Unlock()

	if s.dumps != nil {
		s.dumps.Schedule(product, snapshot)
	}

	s.logger.WithFields(map[string]interface{}{
		"product_id": id,
		"rating":     rating.Level(),
		"aggregate":  aggregate.Level(),
		"reviews":    len(snapshot),
	}).Debug("Review added")

	return product, nil
}

// Reviews returns a snapshot copy of the product's review list, ordered
// by descending rating.
func (s *Service) Reviews(id int) ([]domain.Review, error) {
	e := s.lookup(id)
	if e == nil {
		return nil, fmt.Errorf("reviews of product %d: %w", id, domain.ErrNoSuchProduct)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	snapshot := make([]domain.Review, len(e.reviews))
	copy(snapshot, e.reviews)
	return snapshot, nil
}

// List returns a snapshot of all products matching filter, ordered by
// less. Either may be nil: no filtering, id order. The store is never
// mutated and the snapshot is safe against concurrent writers.
func (s *Service) List(filter func(domain.Product) bool, less func(a, b domain.Product) bool) []domain.Product {
	products := s.snapshot()

	if filter != nil {
		kept := products[:0]
		for _, p := range products {
			if filter(p) {
				kept = append(kept, p)
			}
		}
		products = kept
	}

	if less == nil {
		less = ByID
	}
	sort.SliceStable(products, func(i, j int) bool {
		return less(products[i], products[j])
	})
	return products
}

// DiscountsByNameAndRating sums the discount currently in effect for each
// product, grouped under a "name stars" key.
func (s *Service) DiscountsByNameAndRating() map[string]decimal.Decimal {
	now := s.clock.Now()
	totals := make(map[string]decimal.Decimal)
	for _, p := range s.snapshot() {
		key := p.Name + " " + p.Rating.Stars()
		totals[key] = totals[key].Add(p.Discount(now))
	}
	return totals
}

// ProductReport renders the localized report for one product.
func (s *Service) ProductReport(id int) (string, error) {
	e := s.lookup(id)
	if e == nil {
		return "", fmt.Errorf("report for product %d: %w", id, domain.ErrNoSuchProduct)
	}

	e.mu.Lock()
	product := e.product
	reviews := make([]domain.Review, len(e.reviews))
	copy(reviews, e.reviews)
	e.mu.Unlock()

	return s.reporter.ProductReport(product, reviews, s.clock.Now()), nil
}

// Restore seeds the store from loaded records and moves the id sequence
// past the highest restored id. Review lists are re-sorted and ratings
// kept as persisted.
func (s *Service) Restore(snapshots []Snapshot) {
	s.mu.Lock()
	for _, snap := range snapshots {
		reviews := make([]domain.Review, len(snap.Reviews))
		copy(reviews, snap.Reviews)
		domain.SortReviews(reviews)
		s.entries[snap.Product.ID] = &entry{product: snap.Product, reviews: reviews}
		s.seq.Advance(snap.Product.ID)
	}
	s.mu.Unlock()

	s.logger.Infof("Restored %d products into the catalog", len(snapshots))
}

// lookup fetches the entry for id under the read lock.
func (s *Service) lookup(id int) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[id]
}

// snapshot copies the current product values out of all entries.
func (s *Service) snapshot() []domain.Product {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	products := make([]domain.Product, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		products = append(products, e.product)
		e.mu.Unlock()
	}
	return products
}

// aggregateRating is the rounded mean of all review levels: round half up,
// clamped to the rating scale. An empty list aggregates to NotRated.
func aggregateRating(reviews []domain.Review) domain.Rating {
	if len(reviews) == 0 {
		return domain.NotRated
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating.Level()
	}
	mean := float64(sum) / float64(len(reviews))
	return domain.RatingFromLevel(int(math.Floor(mean + 0.5)))
}
