package domain

import "sort"

// Review is an immutable pairing of a rating with free-text commentary.
// Reviews have no identity beyond value equality.
type Review struct {
	Rating  Rating
	Comment string
}

// NewReview creates a review.
func NewReview(rating Rating, comment string) Review {
	return Review{Rating: rating, Comment: comment}
}

// SortReviews orders reviews by descending rating for report presentation.
// The sort is stable: equally rated reviews keep their insertion order.
func SortReviews(reviews []Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].Rating.Level() > reviews[j].Rating.Level()
	})
}
