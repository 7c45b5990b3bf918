package main

import (
	"context"
	"log"
	"os"

	"github.com/go-faster/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/service"
)

// seedResult is one line of the summary table.
type seedResult struct {
	kind   string
	name   string
	action string
}

func main() {
	log.Println("Starting seed script...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, cfg.MySQLPool)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)

	var results []seedResult

	adminResult, err := seedAdmin(ctx, service.NewUserService(userRepo), userRepo)
	if err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
	results = append(results, adminResult)

	catalogResults, err := seedCatalog(ctx, categoryRepo, productRepo)
	if err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}
	results = append(results, catalogResults...)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Kind", "Name", "Action")
	for _, r := range results {
		if err := table.Append([]string{r.kind, r.name, r.action}); err != nil {
			log.Fatalf("Failed to render summary: %v", err)
		}
	}
	if err := table.Render(); err != nil {
		log.Fatalf("Failed to render summary: %v", err)
	}
	log.Printf("Seed completed successfully!")
}

// seedAdmin creates the single administrator unless one already exists.
// Credentials come from SEED_ADMIN_EMAIL, SEED_ADMIN_USERNAME and SEED_ADMIN_PASSWORD.
func seedAdmin(ctx context.Context, users service.UserService, repo repository.UserRepository) (seedResult, error) {
	email := envOr("SEED_ADMIN_EMAIL", "admin@example.com")
	result := seedResult{kind: "admin", name: email}

	count, err := repo.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return result, errors.Wrap(err, "count admins")
	}
	if count > 0 {
		result.action = "exists"
		return result, nil
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		result.action = "skipped (SEED_ADMIN_PASSWORD unset)"
		return result, nil
	}

	if _, err := users.CreateUser(ctx, service.CreateUserInput{
		Username: envOr("SEED_ADMIN_USERNAME", "admin"),
		Email:    email,
		Password: password,
		Role:     model.RoleAdmin,
	}); err != nil {
		return result, errors.Wrap(err, "create admin")
	}
	result.action = "created"
	return result, nil
}

// seedCatalog creates missing categories and products. Existing rows are left untouched.
func seedCatalog(ctx context.Context, categories repository.CategoryRepository, products repository.ProductRepository) ([]seedResult, error) {
	existing, err := products.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	known := make(map[string]bool, len(existing))
	for _, p := range existing {
		known[p.Name] = true
	}

	categoryIDs := make(map[string]*model.Category)
	var results []seedResult

	for _, item := range sampleCatalog {
		category, ok := categoryIDs[item.Category]
		if !ok {
			category, err = categories.FindByName(ctx, item.Category)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				category = &model.Category{Name: item.Category}
				if err := categories.Create(ctx, category); err != nil {
					return results, errors.Wrapf(err, "create category %s", item.Category)
				}
				results = append(results, seedResult{kind: "category", name: item.Category, action: "created"})
			case err != nil:
				return results, errors.Wrapf(err, "find category %s", item.Category)
			default:
				results = append(results, seedResult{kind: "category", name: item.Category, action: "exists"})
			}
			categoryIDs[item.Category] = category
		}

		if known[item.Name] {
			results = append(results, seedResult{kind: "product", name: item.Name, action: "exists"})
			continue
		}

		product := &model.Product{
			Name:        item.Name,
			Description: item.Description,
			Price:       decimal.RequireFromString(item.Price),
			Image:       model.Image{URL: item.ImageURL, Filename: item.Filename},
			CategoryID:  category.ID,
		}
		if err := products.Create(ctx, product); err != nil {
			return results, errors.Wrapf(err, "create product %s", item.Name)
		}
		results = append(results, seedResult{kind: "product", name: item.Name, action: "created"})
	}
	return results, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
