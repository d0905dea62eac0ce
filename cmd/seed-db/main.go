// Command seed-db loads the product catalog and default fees into the
// database. The catalog file may be plain JSON or gzip-compressed
// (products.json.gz); exports from the admin tooling come gzipped.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ovenline/bakery-api/internal/domain/fees"
	"github.com/ovenline/bakery-api/internal/domain/product"
	"github.com/ovenline/bakery-api/internal/storage/postgres"
)

type productJSON struct {
	ID         string `json:"id"`
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	PricePence int64  `json:"price_pence"`
	Category   string `json:"category"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file (.json or .json.gz)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, postgres.NewProductRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedFees(ctx, postgres.NewFeeRepository(pool)); err != nil {
		return errors.Wrap(err, "seed fees")
	}
	return nil
}

func seedProducts(ctx context.Context, repo *postgres.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	products, err := readProducts(productsFile)
	if err != nil {
		return err
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, p := range products {
		g.Go(func() error {
			id := p.ID
			if id == "" {
				id = uuid.New().String()
			}
			if err := repo.Upsert(ctx, product.Product{
				ID:         id,
				SKU:        p.SKU,
				Name:       p.Name,
				PricePence: p.PricePence,
				Category:   p.Category,
				Active:     true,
			}); err != nil {
				return err
			}
			slog.Info("upserted product", slog.String("sku", p.SKU), slog.String("name", p.Name))
			return nil
		})
	}
	return g.Wait()
}

func readProducts(path string) ([]productJSON, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open products file")
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip reader")
		}
		defer gz.Close()
		r = gz
	}

	var products []productJSON
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, errors.Wrap(err, "parse products JSON")
	}
	return products, nil
}

func seedFees(ctx context.Context, repo *postgres.FeeRepository) error {
	slog.Info("seeding default fees")

	defaults := []fees.Fee{
		{
			ID:          uuid.New().String(),
			Name:        fees.NameBagFee,
			AmountPence: 70,
			Active:      true,
		},
		{
			ID:     uuid.New().String(),
			Name:   fees.NameGST,
			Rate:   decimal.RequireFromString("0.06"),
			Active: true,
		},
	}

	for _, f := range defaults {
		if err := repo.Upsert(ctx, f); err != nil {
			return err
		}
		slog.Info("upserted fee", slog.String("name", f.Name))
	}
	return nil
}
