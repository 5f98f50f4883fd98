package flatfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hwstudio/product-catalog/internal/domain"
)

// LoadAll recovers the whole catalog by scanning the data directory for
// product files. Each successfully parsed product gets its sibling review
// file attached; a missing review file means an empty list, not an error.
// Per-record failures are logged and skipped, never aborting the load.
func (g *Gateway) LoadAll() ([]Record, error) {
	entries, err := os.ReadDir(g.dataDir)
	if err != nil {
		return nil, fmt.Errorf("scan data directory %s: %w: %w", g.dataDir, domain.ErrIO, err)
	}

	var records []Record
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, productFilePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}

		product, err := g.loadProduct(filepath.Join(g.dataDir, name))
		if err != nil {
			g.logger.WithFields(map[string]interface{}{
				"file":  name,
				"error": err.Error(),
			}).Warn("Skipping unreadable product record")
			continue
		}

		reviews := g.loadReviews(product.ID)
		records = append(records, Record{Product: product, Reviews: reviews})
	}

	g.logger.Infof("Loaded %d products from %s", len(records), g.dataDir)
	return records, nil
}

// loadProduct reads and parses the single record line of a product file.
func (g *Gateway) loadProduct(path string) (domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: %w", domain.ErrIO, err)
	}
	return g.ParseProduct(string(data))
}

// loadReviews reads the sibling review file of a product. Bad lines are
// logged and skipped individually.
func (g *Gateway) loadReviews(id int) []domain.Review {
	f, err := os.Open(g.reviewsPath(id))
	if err != nil {
		if !os.IsNotExist(err) {
			g.logger.WithFields(map[string]interface{}{
				"product_id": id,
				"error":      err.Error(),
			}).Warn("Failed to open review file")
		}
		return nil
	}
	defer f.Close()

	var reviews []domain.Review
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		review, err := g.ParseReview(line)
		if err != nil {
			g.logger.WithFields(map[string]interface{}{
				"product_id": id,
				"error":      err.Error(),
			}).Warn("Skipping malformed review record")
			continue
		}
		reviews = append(reviews, review)
	}

	if err := scanner.Err(); err != nil {
		g.logger.WithFields(map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		}).Warn("Failed to read review file")
	}

	return reviews
}
