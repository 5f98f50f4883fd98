// Package flatfile persists the catalog as line-oriented text records,
// one product file plus one review file per product id, in a data directory.
package flatfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hwstudio/product-catalog/internal/domain"
	"github.com/hwstudio/product-catalog/internal/pkg/logger"
)

const (
	defaultDelimiter = ", "
	dateLayout       = "2006-01-02"

	productFilePrefix = "product_"
	reviewsFilePrefix = "reviews_"
	fileSuffix        = ".txt"
)

// Record is one fully loaded product together with its reviews.
type Record struct {
	Product domain.Product
	Reviews []domain.Review
}

// Gateway reads and writes catalog records under a single data directory.
type Gateway struct {
	dataDir string
	delim   string
	logger  *logger.Logger
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithDelimiter overrides the field delimiter of the record format.
func WithDelimiter(delim string) Option {
	return func(g *Gateway) {
		g.delim = delim
	}
}

// NewGateway creates a gateway rooted at dataDir, creating the directory
// if it does not exist yet.
func NewGateway(dataDir string, log *logger.Logger, opts ...Option) (*Gateway, error) {
	g := &Gateway{
		dataDir: dataDir,
		delim:   defaultDelimiter,
		logger:  log,
	}
	for _, opt := range opts {
		opt(g)
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w: %w", dataDir, domain.ErrIO, err)
	}

	// A crash between CreateTemp and Rename leaves a temp file behind that
	// no write will ever reclaim. Sweep them on open.
	leftovers, _ := filepath.Glob(filepath.Join(dataDir, "*"+fileSuffix+".tmp*"))
	for _, stale := range leftovers {
		if err := os.Remove(stale); err != nil {
			g.logger.Warnf("Failed to remove stale temp file %s: %v", stale, err)
		}
	}

	return g, nil
}

func (g *Gateway) productPath(id int) string {
	return filepath.Join(g.dataDir, fmt.Sprintf("%s%d%s", productFilePrefix, id, fileSuffix))
}

func (g *Gateway) reviewsPath(id int) string {
	return filepath.Join(g.dataDir, fmt.Sprintf("%s%d%s", reviewsFilePrefix, id, fileSuffix))
}

// FormatProduct renders the product record line:
// KIND, id, name, price, ratingLevel, discountPercent[, bestBefore].
// The rating is serialized as its 0-5 level to keep the format locale independent.
func (g *Gateway) FormatProduct(p domain.Product) string {
	fields := []string{
		p.Kind.String(),
		strconv.Itoa(p.ID),
		p.Name,
		p.Price.StringFixed(2),
		strconv.Itoa(p.Rating.Level()),
		strconv.Itoa(p.DiscountRate),
	}
	if p.Kind == domain.Food {
		fields = append(fields, p.BestBefore.Format(dateLayout))
	}
	return strings.Join(fields, g.delim)
}

// FormatReview renders the per-product review record line: ratingLevel, comment.
func (g *Gateway) FormatReview(r domain.Review) string {
	return strconv.Itoa(r.Rating.Level()) + g.delim + r.Comment
}

// DumpProduct writes the product record with create-or-truncate semantics.
// The record is published atomically (temp file plus rename) so a failed
// write never leaves a torn record behind.
func (g *Gateway) DumpProduct(p domain.Product) error {
	line := g.FormatProduct(p) + "\n"
	if err := g.writeAtomic(g.productPath(p.ID), []byte(line)); err != nil {
		return fmt.Errorf("dump product %d: %w: %w", p.ID, domain.ErrIO, err)
	}
	return nil
}

// DumpReviews writes the review file for a product, one record per line.
func (g *Gateway) DumpReviews(id int, reviews []domain.Review) error {
	var sb strings.Builder
	for _, r := range reviews {
		sb.WriteString(g.FormatReview(r))
		sb.WriteByte('\n')
	}
	if err := g.writeAtomic(g.reviewsPath(id), []byte(sb.String())); err != nil {
		return fmt.Errorf("dump reviews for product %d: %w: %w", id, domain.ErrIO, err)
	}
	return nil
}

// writeAtomic writes data to a temp file in the same directory and renames
// it over the target path.
func (g *Gateway) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(g.dataDir, filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// ParseProduct is the inverse of FormatProduct. Malformed numeric fields,
// unknown kind tags and malformed dates each produce a *ParseError naming
// the offending field and carrying the raw line.
func (g *Gateway) ParseProduct(line string) (domain.Product, error) {
	line = strings.TrimSpace(line)
	fields := strings.Split(line, g.delim)
	if len(fields) < 6 {
		return domain.Product{}, newParseError(line, "record", fmt.Errorf("expected at least 6 fields, got %d", len(fields)))
	}

	kind, err := domain.ParseKind(fields[0])
	if err != nil {
		return domain.Product{}, newParseError(line, "kind", err)
	}

	// Fields after the name are all numeric or a date, so the record is
	// parsed from both ends: the name is whatever sits between the id and
	// the trailing fields and may itself contain the delimiter, the same
	// way ParseReview protects comments.
	trailing := 3
	wantFields := 6
	if kind == domain.Food {
		trailing = 4
		wantFields = 7
	}
	if len(fields) < wantFields {
		return domain.Product{}, newParseError(line, "record", fmt.Errorf("expected at least %d fields for %s, got %d", wantFields, kind, len(fields)))
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return domain.Product{}, newParseError(line, "id", err)
	}

	name := strings.Join(fields[2:len(fields)-trailing], g.delim)
	tail := fields[len(fields)-trailing:]

	price, err := decimal.NewFromString(tail[0])
	if err != nil {
		return domain.Product{}, newParseError(line, "price", err)
	}
	if price.IsNegative() {
		return domain.Product{}, newParseError(line, "price", fmt.Errorf("negative price %s", tail[0]))
	}

	level, err := strconv.Atoi(tail[1])
	if err != nil {
		return domain.Product{}, newParseError(line, "rating", err)
	}

	rate, err := strconv.Atoi(tail[2])
	if err != nil {
		return domain.Product{}, newParseError(line, "discount_rate", err)
	}

	var bestBefore time.Time
	if kind == domain.Food {
		bestBefore, err = time.Parse(dateLayout, tail[3])
		if err != nil {
			return domain.Product{}, newParseError(line, "best_before", err)
		}
	}

	p := domain.NewProduct(id, name, price, kind, bestBefore)
	p = p.WithRating(domain.RatingFromLevel(level)).WithDiscountRate(rate)
	return p, nil
}

// ParseReview parses the per-product review record: ratingLevel, comment.
// The comment is the trailing field and may itself contain the delimiter.
func (g *Gateway) ParseReview(line string) (domain.Review, error) {
	line = strings.TrimRight(line, "\n")
	fields := strings.SplitN(line, g.delim, 2)
	if len(fields) != 2 {
		return domain.Review{}, newParseError(line, "record", fmt.Errorf("expected 2 fields"))
	}

	level, err := strconv.Atoi(fields[0])
	if err != nil {
		return domain.Review{}, newParseError(line, "rating", err)
	}

	return domain.NewReview(domain.RatingFromLevel(level), fields[1]), nil
}

// ParseTaggedReview parses the free-form ingestion record:
// productId, ratingLevel, comment.
func (g *Gateway) ParseTaggedReview(line string) (int, domain.Review, error) {
	line = strings.TrimRight(line, "\n")
	fields := strings.SplitN(line, g.delim, 3)
	if len(fields) != 3 {
		return 0, domain.Review{}, newParseError(line, "record", fmt.Errorf("expected 3 fields"))
	}

	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, domain.Review{}, newParseError(line, "product_id", err)
	}

	level, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, domain.Review{}, newParseError(line, "rating", err)
	}

	return id, domain.NewReview(domain.RatingFromLevel(level), fields[2]), nil
}
