// Package report renders products and reviews into locale-specific
// display text. It is a read-only collaborator of the catalog store.
package report

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/hwstudio/product-catalog/internal/domain"
)

// Message keys double as the en-US format strings.
const (
	msgProduct   = "%s costs %v, rated %s, discount %v (as of %s)"
	msgReview    = "Review %s: %s"
	msgNoReviews = "No reviews yet"
)

var supported = []language.Tag{
	language.AmericanEnglish,
	language.BritishEnglish,
	language.Russian,
}

var matcher = language.NewMatcher(supported)

// Short date layouts per locale, used for the "as of" timestamp.
var dateLayouts = map[language.Tag]string{
	language.AmericanEnglish: "1/2/2006",
	language.BritishEnglish:  "02/01/2006",
	language.Russian:         "02.01.2006",
}

func init() {
	for _, tag := range []language.Tag{language.AmericanEnglish, language.BritishEnglish} {
		message.SetString(tag, msgProduct, "%s costs %v, rated %s, discount %v (as of %s)")
		message.SetString(tag, msgReview, "Review %s: %s")
		message.SetString(tag, msgNoReviews, "No reviews yet")
	}

	message.SetString(language.Russian, msgProduct, "%s стоит %v, рейтинг %s, скидка %v (на %s)")
	message.SetString(language.Russian, msgReview, "Отзыв %s: %s")
	message.SetString(language.Russian, msgNoReviews, "Пока нет отзывов")
}

// Formatter renders display text for one locale. Unsupported locales fall
// back to the closest supported match, en-US as the last resort.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// NewFormatter creates a formatter for the given locale tag.
func NewFormatter(tag language.Tag) *Formatter {
	// Match by index: the matcher's synthesized tag is not guaranteed to
	// equal one of the supported constants.
	_, index, _ := matcher.Match(tag)
	matched := supported[index]
	return &Formatter{
		tag:     matched,
		printer: message.NewPrinter(matched),
	}
}

// ParseLocale converts a BCP 47 string like "ru-RU" into a language tag,
// falling back to en-US when it cannot be parsed.
func ParseLocale(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.AmericanEnglish
	}
	return tag
}

// Tag reports the locale the formatter actually uses after matching.
func (f *Formatter) Tag() language.Tag {
	return f.tag
}

// FormatProduct renders the one-line product summary with locale-aware
// number formatting.
func (f *Formatter) FormatProduct(p domain.Product, at time.Time) string {
	return f.printer.Sprintf(msgProduct,
		p.Name,
		number.Decimal(p.Price.InexactFloat64(), number.Scale(2)),
		p.Rating.Stars(),
		number.Decimal(p.Discount(at).InexactFloat64(), number.Scale(2)),
		at.Format(dateLayouts[f.tag]),
	)
}

// FormatReview renders one review line.
func (f *Formatter) FormatReview(r domain.Review) string {
	return f.printer.Sprintf(msgReview, r.Rating.Stars(), r.Comment)
}

// ProductReport renders the full report: the product summary followed by
// its reviews, or the localized "no reviews" line.
func (f *Formatter) ProductReport(p domain.Product, reviews []domain.Review, at time.Time) string {
	var sb strings.Builder
	sb.WriteString(f.FormatProduct(p, at))
	sb.WriteByte('\n')

	if len(reviews) == 0 {
		sb.WriteString(f.printer.Sprintf(msgNoReviews))
		sb.WriteByte('\n')
		return sb.String()
	}

	for _, r := range reviews {
		sb.WriteString(f.FormatReview(r))
		sb.WriteByte('\n')
	}
	return sb.String()
}
