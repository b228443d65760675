// Package main provides a CLI tool for creating the schema and seeding demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"retailops/internal/config"
	"retailops/internal/core/apperror"
	appctx "retailops/internal/core/context"
	"retailops/internal/core/id"
	"retailops/internal/core/security"
	"retailops/internal/domain/audit"
	"retailops/internal/domain/auth"
	"retailops/internal/domain/catalog"
	"retailops/internal/domain/warehouse"
	"retailops/internal/infrastructure/storage/postgres"
	"retailops/internal/infrastructure/storage/postgres/catalog_repo"
	"retailops/internal/infrastructure/storage/postgres/schema"
	"retailops/pkg/logger"
)

// demoStores are the retail tenants created with SEED_DEMO_DATA=true.
var demoStores = []catalog.Store{
	{Name: "Toko Melati", Code: "MLT"},
	{Name: "Toko Kenanga", Code: "KNG"},
}

type demoProduct struct {
	code, name, category string
	stock                int
	purchase, selling    string
}

var demoProducts = []demoProduct{
	{"BRS-5KG", "Beras Premium 5kg", "Sembako", 120, "62000", "68500"},
	{"MNY-1L", "Minyak Goreng 1L", "Sembako", 200, "15500", "17000"},
	{"GLA-1KG", "Gula Pasir 1kg", "Sembako", 150, "14000", "15500"},
	{"TEH-25", "Teh Celup isi 25", "Minuman", 80, "6500", "8000"},
	{"KPI-200", "Kopi Bubuk 200g", "Minuman", 60, "18000", "21000"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		logger.Fatal(ctx, "failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := schema.Apply(ctx, pool); err != nil {
		logger.Fatal(ctx, "failed to apply schema", "error", err)
	}
	log.Info("schema applied")

	txManager := postgres.NewTxManager(pool, cfg.StatementTimeout)
	stores := catalog_repo.NewStoreRepo(txManager)
	categories := catalog_repo.NewCategoryRepo(txManager)

	warehouseService := warehouse.NewService(warehouse.ServiceConfig{
		Warehouses: catalog_repo.NewWarehouseRepo(txManager),
		Stores:     stores,
		Products:   catalog_repo.NewProductRepo(txManager),
		Categories: categories,
		Suppliers:  catalog_repo.NewSupplierRepo(txManager),
		TxManager:  txManager,
		Audit:      audit.LogSink{},
	})

	central, err := warehouseService.EnsureCentral(ctx)
	if err != nil {
		logger.Fatal(ctx, "failed to create central warehouse", "error", err)
	}
	log.Infow("central warehouse ready", "code", central.Warehouse.Code, "catalog_store_id", central.Store.ID)

	staff := appctx.UserContext{UserID: "gudang", Username: "gudang", Role: string(security.RoleWarehouse)}
	users := []appctx.UserContext{staff}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		retail, err := seedStores(ctx, stores)
		if err != nil {
			logger.Fatal(ctx, "failed to seed stores", "error", err)
		}
		for _, store := range retail {
			users = append(users, appctx.UserContext{
				UserID:   "adm-" + strings.ToLower(store.Code),
				Username: "admin " + store.Name,
				Role:     string(security.RoleAdmin),
				StoreID:  store.ID.String(),
			})
		}
		users = append(users, appctx.UserContext{UserID: "manager", Username: "manager", Role: string(security.RoleManager)})

		actor := security.Actor{UserID: staff.UserID, Username: staff.Username, Role: security.RoleWarehouse}
		if err := seedMasterCatalog(ctx, warehouseService, actor, log); err != nil {
			logger.Fatal(ctx, "failed to seed master catalog", "error", err)
		}
	}

	if err := seedUsers(ctx, pool, users); err != nil {
		logger.Fatal(ctx, "failed to seed users", "error", err)
	}

	// Tokens are only handed out for local work.
	if cfg.IsDevelopment() {
		jwtCfg := auth.DefaultJWTConfig(cfg.JWTSecret)
		jwtCfg.Issuer = cfg.JWTIssuer
		tokens := auth.NewJWTService(jwtCfg)
		for _, u := range users {
			token, expiresAt, err := tokens.GenerateAccessToken(u)
			if err != nil {
				logger.Fatal(ctx, "failed to issue token", "user_id", u.UserID, "error", err)
			}
			fmt.Printf("%-8s %-20s %s (expires %s)\n", u.Role, u.UserID, token, expiresAt.Format("15:04:05"))
		}
	}

	log.Info("seeding completed successfully")
}

func seedStores(ctx context.Context, repo *catalog_repo.StoreRepo) ([]*catalog.Store, error) {
	out := make([]*catalog.Store, 0, len(demoStores))
	for _, s := range demoStores {
		store := &catalog.Store{
			ID:     id.New(),
			Name:   s.Name,
			Code:   s.Code,
			Kind:   catalog.StoreKindRetail,
			Status: catalog.StoreActive,
		}
		if _, err := repo.Insert(ctx, store); err != nil {
			return nil, fmt.Errorf("insert store %s: %w", s.Code, err)
		}
		// Re-read so reruns pick up the id chosen the first time.
		stored, err := repo.GetByCode(ctx, s.Code)
		if err != nil {
			return nil, err
		}
		out = append(out, stored)
	}
	return out, nil
}

func seedMasterCatalog(ctx context.Context, svc *warehouse.Service, actor security.Actor, log *logger.Logger) error {
	categoryIDs := make(map[string]id.ID)
	for _, p := range demoProducts {
		if _, ok := categoryIDs[p.category]; ok {
			continue
		}
		c, err := svc.CreateMasterCategory(ctx, actor, p.category, nil)
		switch {
		case err == nil:
			categoryIDs[p.category] = c.ID
		case apperror.IsDuplicate(err):
			existing, err := svc.ListMasterCategories(ctx, actor)
			if err != nil {
				return err
			}
			for _, e := range existing {
				if e.Name == p.category {
					categoryIDs[p.category] = e.ID
				}
			}
		default:
			return fmt.Errorf("category %s: %w", p.category, err)
		}
	}

	for _, p := range demoProducts {
		categoryID := categoryIDs[p.category]
		_, err := svc.CreateMasterProduct(ctx, actor, warehouse.CreateProductInput{
			ProductCode:   p.code,
			Name:          p.name,
			Unit:          "pcs",
			CategoryID:    &categoryID,
			Stock:         p.stock,
			PurchasePrice: decimal.RequireFromString(p.purchase),
			SellingPrice:  decimal.RequireFromString(p.selling),
		})
		if apperror.IsDuplicate(err) {
			log.Infow("master product already exists", "product_code", p.code)
			continue
		}
		if err != nil {
			return fmt.Errorf("product %s: %w", p.code, err)
		}
	}
	return nil
}

func seedUsers(ctx context.Context, pool *postgres.Pool, users []appctx.UserContext) error {
	for _, u := range users {
		var storeID *id.ID
		if u.StoreID != "" {
			parsed, err := id.Parse(u.StoreID)
			if err != nil {
				return fmt.Errorf("user %s store: %w", u.UserID, err)
			}
			storeID = &parsed
		}
		_, err := pool.Exec(ctx, `
			INSERT INTO users (id, username, role, store_id)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE
			SET username = EXCLUDED.username, role = EXCLUDED.role, store_id = EXCLUDED.store_id
		`, u.UserID, u.Username, u.Role, storeID)
		if err != nil {
			return fmt.Errorf("upsert user %s: %w", u.UserID, err)
		}
	}
	return nil
}
