package catalog

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hwstudio/product-catalog/internal/domain"
	"github.com/hwstudio/product-catalog/internal/pkg/clock"
	"github.com/hwstudio/product-catalog/internal/pkg/logger"
)

// MockPersister is a mock implementation of Persister
type MockPersister struct {
	mock.Mock
}

func (m *MockPersister) DumpProduct(p domain.Product) error {
	args := m.Called(p)
	return args.Error(0)
}

// MockScheduler is a mock implementation of DumpScheduler
type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Schedule(p domain.Product, reviews []domain.Review) {
	m.Called(p, reviews)
}

// stubReporter satisfies Reporter without formatting anything real
type stubReporter struct{}

func (stubReporter) ProductReport(p domain.Product, reviews []domain.Review, at time.Time) string {
	return p.Name
}

func newTestService(t *testing.T) (*Service, *MockPersister, *MockScheduler, *clock.Fake) {
	t.Helper()

	persister := new(MockPersister)
	scheduler := new(MockScheduler)
	clk := clock.NewFake(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	svc := NewService(persister, scheduler, NewSequence(1), clk, stubReporter{}, logger.New("test"))

	return svc, persister, scheduler, clk
}

func TestService_Create_Success(t *testing.T) {
	svc, persister, _, _ := newTestService(t)
	persister.On("DumpProduct", mock.Anything).Return(nil)

	p, err := svc.Create(CreateInput{Name: "Juice", Price: 76.99, Kind: domain.Drink})
	require.NoError(t, err)

	assert.Equal(t, 1, p.ID)
	assert.Equal(t, "Juice", p.Name)
	assert.Equal(t, domain.NotRated, p.Rating)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("76.99")))

	second, err := svc.Create(CreateInput{Name: "Fairy", Price: 176.99, Kind: domain.NonFood})
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)

	persister.AssertNumberOfCalls(t, "DumpProduct", 2)
}

func TestService_Create_FoodGetsShelfLife(t *testing.T) {
	svc, persister, _, clk := newTestService(t)
	persister.On("DumpProduct", mock.Anything).Return(nil)

	p, err := svc.Create(CreateInput{Name: "Chocolate", Price: 99.89, Kind: domain.Food})
	require.NoError(t, err)

	want := clk.Now().AddDate(0, 0, foodShelfLifeDays)
	assert.Equal(t, want, p.BestBefore)
}

func TestService_Create_InvalidInput(t *testing.T) {
	svc, persister, _, _ := newTestService(t)

	tests := []struct {
		name  string
		input CreateInput
	}{
		{"negative price", CreateInput{Name: "Juice", Price: -1, Kind: domain.Drink}},
		{"empty name", CreateInput{Name: "", Price: 10, Kind: domain.Drink}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(tt.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	// Nothing was created or dumped.
	assert.Empty(t, svc.List(nil, nil))
	persister.AssertNotCalled(t, "DumpProduct", mock.Anything)
}

func TestService_Create_DumpFailureKeepsProduct(t *testing.T) {
	svc, persister, _, _ := newTestService(t)
	persister.On("DumpProduct", mock.Anything).Return(assert.AnError)

	p, err := svc.Create(CreateInput{Name: "Juice", Price: 76.99, Kind: domain.Drink})
	require.NoError(t, err)

	found, err := svc.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, found)
}

func TestService_FindByID_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.FindByID(404)
	assert.ErrorIs(t, err, domain.ErrNoSuchProduct)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Review_AggregatesRating(t *testing.T) {
	svc, persister, scheduler, _ := newTestService(t)
	persister.On("DumpProduct", mock.Anything).Return(nil)
	scheduler.On("Schedule", mock.Anything, mock.Anything).Return()

	p, err := svc.Create(CreateInput{Name: "Juice", Price: 76.99, Kind: domain.Drink})
	require.NoError(t, err)

	// Levels 2, 4, 5: round(11/3) = round(3.67) = 4.
	for _, level := range []int{2, 4, 5} {
		p, err = svc.Review(p.ID, domain.RatingFromLevel(level), "a comment")
		require.NoError(t, err)
	}

	assert.Equal(t, domain.FourStars, p.Rating)
	assert.Equal(t, p.ID, 1)

	reviews, err := svc.Reviews(p.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 3)

	// Stored descending by rating.
	assert.Equal(t, domain.FiveStars, reviews[0].Rating)
	assert.Equal(t, domain.FourStars, reviews[1].Rating)
	assert.Equal(t, domain.TwoStars, reviews[2].Rating)
}

func TestService_Review_RoundsHalfUp(t *testing.T) {
	svc, persister, scheduler, _ := newTestService(t)
	persister.On("DumpProduct", mock.Anything).Return(nil)
	scheduler.On("Schedule", mock.Anything, mock.Anything).Return()

	// Levels 3, 4: mean 3.5 rounds up to 4.
	p, err := svc.Create(CreateInput{Name: "Tea", Price: 10, Kind: domain.NonFood})
	require.NoError(t, err)

	_, err = svc.Review(p.ID, domain.ThreeStars, "ok")
	require.NoError(t, err)
	p, err = svc.Review(p.ID, domain.FourStars, "good")
	require.NoError(t, err)

	assert.Equal(t, domain.FourStars, p.Rating)
}

func TestService_Review_NoSuchProduct(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Review(99, domain.FiveStars, "ghost review")
	assert.ErrorIs(t, err, domain.ErrNoSuchProduct)
}

func TestService_Review_SchedulesDumpSnapshot(t *testing.T) {
	svc, persister, scheduler, _ := newTestService(t)
	persister.On("DumpProduct", mock.Anything).Return(nil)

	p, err := svc.Create(CreateInput{Name: "Juice", Price: 76.99, Kind: domain.Drink})
	require.NoError(t, err)

	scheduler.On("Schedule", mock.MatchedBy(func(got domain.Product) bool {
		return got.ID == p.ID && got.Rating == domain.FiveStars
	}), mock.MatchedBy(func(reviews []domain.Review) bool {
		return len(reviews) == 1
	})).Return()

	_, err = svc.Review(p.ID, domain.FiveStars, "great")
	require.NoError(t, err)

	scheduler.AssertExpectations(t)
}

func TestService_Review_ConcurrentSameProduct_NoLostReviews(t *testing.T) {
	svc, persister, scheduler, _ := newTestService(t)
	persister.On("DumpProduct", mock.Anything).Return(nil)
	scheduler.On("Schedule", mock.Anything, mock.Anything).Return()

	p, err := svc.Create(CreateInput{Name: "Juice", Price: 76.99, Kind: domain.Drink})
	require.NoError(t, err)

	const reviewers = 50
	var wg sync.WaitGroup
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Review(p.ID, domain.FourStars, "concurrent")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	reviews, err := svc.Reviews(p.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, reviewers)

	final, err := svc.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FourStars, final.Rating)
}

func TestService_Review_ConcurrentDifferentProducts(t *testing.T) {
	svc, persister, scheduler, _ := newTestService(t)
	persister.On("DumpProduct", mock.Anything).Return(nil)
	scheduler.On("Schedule", mock.Anything, mock.Anything).Return()

	first, err := svc.Create(CreateInput{Name: "Juice", Price: 76.99, Kind: domain.Drink})
	require.NoError(t, err)
	second, err := svc.Create(CreateInput{Name: "Fairy", Price: 176.99, Kind: domain.NonFood})
	require.NoError(t, err)

	const perProduct = 25
	var wg sync.WaitGroup
	for i := 0; i < perProduct; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Review(first.ID, domain.TwoStars, "sour")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Review(second.ID, domain.FiveStars, "sparkling")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	firstReviews, err := svc.Reviews(first.ID)
	require.NoError(t, err)
	secondReviews, err := svc.Reviews(second.ID)
	require.NoError(t, err)

	assert.Len(t, firstReviews, perProduct)
	assert.Len(t, secondReviews, perProduct)

	p1, _ := svc.FindByID(first.ID)
	p2, _ := svc.FindByID(second.ID)
	assert.Equal(t, domain.TwoStars, p1.Rating)
	assert.Equal(t, domain.FiveStars, p2.Rating)
}

func TestService_List_FilterAndSort(t *testing.T) {
	svc, persister, _, _ := newTestService(t)
	persister.On("DumpProduct", mock.Anything).Return(nil)

	_, err := svc.Create(CreateInput{Name: "Juice", Price: 76.99, Kind: domain.Drink})
	require.NoError(t, err)
	_, err = svc.Create(CreateInput{Name: "Chocolate", Price: 99.89, Kind: domain.Food})
	require.NoError(t, err)
	_, err = svc.Create(CreateInput{Name: "Fairy", Price: 176.99, Kind: domain.NonFood})
	require.NoError(t, err)

	all := svc.List(nil, nil)
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{all[0].ID, all[1].ID, all[2].ID})

	byPriceDesc := svc.List(nil, Descending(ByPrice))
	assert.Equal(t, "Fairy", byPriceDesc[0].Name)
	assert.Equal(t, "Juice", byPriceDesc[2].Name)

	cheap := svc.List(func(p domain.Product) bool {
		return p.Price.LessThan(decimal.NewFromInt(100))
	}, ByPrice)
	require.Len(t, cheap, 2)
	assert.Equal(t, "Juice", cheap[0].Name)
	assert.Equal(t, "Chocolate", cheap[1].Name)
}

func TestService_DiscountsByNameAndRating(t *testing.T) {
	svc, persister, _, _ := newTestService(t)
	persister.On("DumpProduct", mock.Anything).Return(nil)

	// Fake clock sits at noon, outside the beverage window.
	drink, err := svc.Create(CreateInput{Name: "Juice", Price: 100, Kind: domain.Drink})
	require.NoError(t, err)
	nonfood, err := svc.Create(CreateInput{Name: "Fairy", Price: 100, Kind: domain.NonFood})
	require.NoError(t, err)

	totals := svc.DiscountsByNameAndRating()

	drinkKey := drink.Name + " " + drink.Rating.Stars()
	nonfoodKey := nonfood.Name + " " + nonfood.Rating.Stars()
	assert.Equal(t, "0.00", totals[drinkKey].StringFixed(2))
	assert.Equal(t, "5.00", totals[nonfoodKey].StringFixed(2))
}

func TestService_Restore_SeedsStoreAndSequence(t *testing.T) {
	svc, persister, _, _ := newTestService(t)
	persister.On("DumpProduct", mock.Anything).Return(nil)

	restored := domain.NewProduct(7, "Juice", decimal.RequireFromString("76.99"), domain.Drink, time.Time{})
	restored = restored.WithRating(domain.ThreeStars)
	svc.Restore([]Snapshot{{
		Product: restored,
		Reviews: []domain.Review{domain.NewReview(domain.ThreeStars, "fine")},
	}})

	found, err := svc.FindByID(7)
	require.NoError(t, err)
	assert.Equal(t, domain.ThreeStars, found.Rating)

	reviews, err := svc.Reviews(7)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)

	// The sequence continues past the restored id.
	next, err := svc.Create(CreateInput{Name: "Fairy", Price: 176.99, Kind: domain.NonFood})
	require.NoError(t, err)
	assert.Equal(t, 8, next.ID)
}

func TestService_ProductReport(t *testing.T) {
	svc, persister, _, _ := newTestService(t)
	persister.On("DumpProduct", mock.Anything).Return(nil)

	p, err := svc.Create(CreateInput{Name: "Juice", Price: 76.99, Kind: domain.Drink})
	require.NoError(t, err)

	text, err := svc.ProductReport(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Juice", text)

	_, err = svc.ProductReport(999)
	assert.ErrorIs(t, err, domain.ErrNoSuchProduct)
}

func TestAggregateRating(t *testing.T) {
	tests := []struct {
		name   string
		levels []int
		want   domain.Rating
	}{
		{"empty is not rated", nil, domain.NotRated},
		{"single review", []int{3}, domain.ThreeStars},
		{"example from the drinks aisle", []int{2, 4, 5}, domain.FourStars},
		{"half rounds up", []int{3, 4}, domain.FourStars},
		{"below half rounds down", []int{3, 3, 4}, domain.ThreeStars},
		{"all fives", []int{5, 5, 5}, domain.FiveStars},
		{"all zeros", []int{0, 0}, domain.NotRated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := make([]domain.Review, 0, len(tt.levels))
			for _, l := range tt.levels {
				reviews = append(reviews, domain.NewReview(domain.RatingFromLevel(l), ""))
			}
			assert.Equal(t, tt.want, aggregateRating(reviews))
		})
	}
}
