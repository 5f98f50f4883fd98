// Command shop is the demo driver: it recovers the catalog from disk,
// runs a pool of concurrent reviewer clients against it and prints the
// localized product reports plus the discount summary.
package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/hwstudio/product-catalog/internal/config"
	"github.com/hwstudio/product-catalog/internal/domain"
	"github.com/hwstudio/product-catalog/internal/pkg/clock"
	"github.com/hwstudio/product-catalog/internal/pkg/logger"
	"github.com/hwstudio/product-catalog/internal/report"
	"github.com/hwstudio/product-catalog/internal/repository/flatfile"
	"github.com/hwstudio/product-catalog/internal/usecase/catalog"
	"github.com/hwstudio/product-catalog/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	appLogger.Info("Starting shop demo...")

	gateway, err := flatfile.NewGateway(cfg.Store.DataDir, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open data directory", err)
	}

	dumps := worker.NewDumpWorker(gateway, cfg.Store.DumpDebounce, cfg.Store.DumpRetries, appLogger)
	formatter := report.NewFormatter(report.ParseLocale(cfg.Locale))

	svc := catalog.NewService(
		gateway,
		dumps,
		catalog.NewSequence(1),
		clock.Real{},
		formatter,
		appLogger,
	)

	records, err := gateway.LoadAll()
	if err != nil {
		appLogger.Fatal("Failed to load catalog", err)
	}
	snapshots := make([]catalog.Snapshot, 0, len(records))
	for _, rec := range records {
		snapshots = append(snapshots, catalog.Snapshot{Product: rec.Product, Reviews: rec.Reviews})
	}
	svc.Restore(snapshots)

	products := svc.List(nil, catalog.ByID)
	if len(products) == 0 {
		products = seedProducts(svc, appLogger)
	}

	runReviewers(svc, products, cfg.Shop, appLogger)

	for _, p := range products {
		text, err := svc.ProductReport(p.ID)
		if err != nil {
			appLogger.Error("Failed to build product report", err)
			continue
		}
		fmt.Println(text)
	}

	fmt.Println("Discounts by product and rating:")
	for key, total := range svc.DiscountsByNameAndRating() {
		fmt.Printf("  %s: %s\n", key, total.StringFixed(2))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := dumps.Shutdown(ctx); err != nil {
		appLogger.Error("Dump worker shutdown failed", err)
	}

	appLogger.Info("Shop demo finished")
}

// seedProducts creates the sample catalog on first run.
func seedProducts(svc *catalog.Service, appLogger *logger.Logger) []domain.Product {
	inputs := []catalog.CreateInput{
		{Name: "Juice", Price: 76.99, Kind: domain.Drink},
		{Name: "Chocolate", Price: 99.89, Kind: domain.Food},
		{Name: "Fairy", Price: 176.99, Kind: domain.NonFood},
	}

	products := make([]domain.Product, 0, len(inputs))
	for _, in := range inputs {
		p, err := svc.Create(in)
		if err != nil {
			appLogger.Error("Failed to create sample product", err)
			continue
		}
		products = append(products, p)
	}
	return products
}

// runReviewers drives a bounded pool of concurrent clients, each leaving
// reviews on every product in the shared catalog.
func runReviewers(svc *catalog.Service, products []domain.Product, shop config.ShopConfig, appLogger *logger.Logger) {
	comments := []string{
		"Would buy again",
		"Nothing special",
		"Better than expected",
		"Not worth the price",
		"Perfectly fine",
	}

	var wg sync.WaitGroup
	for client := 0; client < shop.Clients; client++ {
		wg.Add(1)
		go func(client int) {
			defer wg.Done()
			for i := 0; i < shop.ReviewsPerClient; i++ {
				for _, p := range products {
					level := (client+i+p.ID)%domain.MaxRatingLevel + 1
					comment := comments[(client+i)%len(comments)]
					if _, err := svc.Review(p.ID, domain.RatingFromLevel(level), comment); err != nil {
						appLogger.Error("Review failed", err)
					}
				}
			}
		}(client)
	}
	wg.Wait()

	appLogger.Infof("%d clients left %d reviews each per product", shop.Clients, shop.ReviewsPerClient)
}
