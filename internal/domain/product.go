package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind discriminates the product variants. Each kind carries its own
// discount policy; everything else about a product is shared.
type Kind int

const (
	// Food is a perishable product with a best-before date.
	Food Kind = iota
	// Drink is a beverage whose discount only applies in the evening window.
	Drink
	// NonFood is a durable product with the plain base discount.
	NonFood
)

// Wire tags used in flat-file records.
const (
	tagFood    = "FOOD"
	tagDrink   = "DRINK"
	tagNonFood = "NONFOOD"
)

// The evening window during which beverage discounts apply, local clock.
const (
	drinkDiscountStartHour   = 19
	drinkDiscountStartMinute = 30
	drinkDiscountEndHour     = 21
	drinkDiscountEndMinute   = 30
)

var halfPrice = decimal.NewFromFloat(0.5)

// String returns the wire tag for the kind.
func (k Kind) String() string {
	switch k {
	case Food:
		return tagFood
	case Drink:
		return tagDrink
	case NonFood:
		return tagNonFood
	}
	return fmt.Sprintf("KIND(%d)", int(k))
}

// ParseKind converts a wire tag back to a Kind.
func ParseKind(tag string) (Kind, error) {
	switch tag {
	case tagFood:
		return Food, nil
	case tagDrink:
		return Drink, nil
	case tagNonFood:
		return NonFood, nil
	}
	return 0, fmt.Errorf("unknown product kind %q: %w", tag, ErrInvalidInput)
}

// Product is an immutable catalog item. Transformations go through the
// With* methods, which return a new value carrying the same ID; nothing
// ever mutates a Product in place.
type Product struct {
	ID           int
	Name         string
	Price        decimal.Decimal
	Rating       Rating
	DiscountRate int // percent of price
	Kind         Kind
	BestBefore   time.Time // Food only, zero otherwise
}

// NewProduct creates a product of the given kind. Food products must carry
// a best-before date; for other kinds it is ignored.
func NewProduct(id int, name string, price decimal.Decimal, kind Kind, bestBefore time.Time) Product {
	p := Product{
		ID:           id,
		Name:         name,
		Price:        price,
		Rating:       NotRated,
		DiscountRate: defaultDiscountRate,
		Kind:         kind,
	}
	if kind == Food {
		p.BestBefore = bestBefore
	}
	return p
}

// defaultDiscountRate mirrors the 5% every product starts with.
const defaultDiscountRate = 5

// baseDiscount is round(price * rate/100, 2), half-up.
func (p Product) baseDiscount() decimal.Decimal {
	rate := decimal.NewFromInt(int64(p.DiscountRate)).Div(decimal.NewFromInt(100))
	return p.Price.Mul(rate).Round(2)
}

// Discount returns the discount amount in effect at the given instant.
// The policy dispatches on the product kind:
//   - Drink: base discount inside the 19:30-21:30 local window, else zero;
//   - Food: half price when the best-before date is the date of at, else base;
//   - NonFood: always the base discount.
func (p Product) Discount(at time.Time) decimal.Decimal {
	switch p.Kind {
	case Drink:
		if !inEveningWindow(at) {
			return decimal.Zero.Round(2)
		}
		return p.baseDiscount()
	case Food:
		if sameDate(p.BestBefore, at) {
			return p.Price.Mul(halfPrice).Round(2)
		}
		return p.baseDiscount()
	default:
		return p.baseDiscount()
	}
}

func inEveningWindow(at time.Time) bool {
	minutes := at.Hour()*60 + at.Minute()
	start := drinkDiscountStartHour*60 + drinkDiscountStartMinute
	end := drinkDiscountEndHour*60 + drinkDiscountEndMinute
	return minutes >= start && minutes <= end
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// WithName returns a copy with a new name and the same ID.
func (p Product) WithName(name string) Product {
	p.Name = name
	return p
}

// WithPrice returns a copy with a new price and the same ID.
func (p Product) WithPrice(price decimal.Decimal) Product {
	p.Price = price
	return p
}

// WithRating returns a copy with a new rating and the same ID.
func (p Product) WithRating(rating Rating) Product {
	p.Rating = rating
	return p
}

// WithDiscountRate returns a copy with a new discount percentage and the same ID.
func (p Product) WithDiscountRate(rate int) Product {
	p.DiscountRate = rate
	return p
}

// String is for logs and test failures, not for persistence.
func (p Product) String() string {
	return fmt.Sprintf("%s{id: %d, name: %s, price: %s, rating: %s, discount_rate: %d%%}",
		p.Kind, p.ID, p.Name, p.Price.StringFixed(2), p.Rating, p.DiscountRate)
}
