package domain

// Rating is an ordered, closed scale of customer star ratings.
// The zero value means the product has not been rated yet.
type Rating int

const (
	NotRated Rating = iota
	OneStar
	TwoStars
	ThreeStars
	FourStars
	FiveStars
)

const (
	// MaxRatingLevel is the highest level on the scale.
	MaxRatingLevel = 5

	filledStar = "★"
	emptyStar  = "☆"
)

// RatingFromLevel converts an integer level to a Rating.
// Values outside [0,5] fall back to NotRated; callers that need to treat
// out-of-range input as an error must check before converting.
func RatingFromLevel(level int) Rating {
	if level < 0 || level > MaxRatingLevel {
		return NotRated
	}
	return Rating(level)
}

// Level returns the integer level 0-5. Levels are monotonic with declaration
// order, which is what the aggregate-rating arithmetic relies on.
func (r Rating) Level() int {
	return int(r)
}

// Stars returns the display glyph, e.g. "★★★☆☆" for ThreeStars.
func (r Rating) Stars() string {
	stars := ""
	for i := 1; i <= MaxRatingLevel; i++ {
		if i <= r.Level() {
			stars += filledStar
		} else {
			stars += emptyStar
		}
	}
	return stars
}

// String makes Rating readable in logs and test failures.
func (r Rating) String() string {
	return r.Stars()
}
