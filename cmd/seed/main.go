// Package main provides a CLI tool for seeding the database with initial data.
// It creates the admin user and, with SEED_DEMO_DATA=true, demo master data
// and opening stock balances.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"stockerp/internal/core/apperror"
	appctx "stockerp/internal/core/context"
	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/core/types"
	"stockerp/internal/domain"
	"stockerp/internal/domain/catalogs/category"
	"stockerp/internal/domain/catalogs/customer"
	"stockerp/internal/domain/catalogs/goods"
	"stockerp/internal/domain/catalogs/supplier"
	"stockerp/internal/domain/catalogs/unit"
	"stockerp/internal/domain/catalogs/warehouse"
	"stockerp/internal/domain/inventory"
	"stockerp/internal/infrastructure/storage/postgres"
	"stockerp/internal/infrastructure/storage/postgres/catalog_repo"
	"stockerp/internal/infrastructure/storage/postgres/inventory_repo"
	"stockerp/pkg/logger"
	"stockerp/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	adminID, err := seedAdminUser(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		// Attribute seeded rows to the admin in the audit log.
		ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: adminID.String()})
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@stockerp.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var existingID id.ID
	err := pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1 AND NOT deletion_mark`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now()

	_, err = pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name,
			is_active, is_admin, email_verified, email_verified_at,
			created_at, updated_at, version
		)
		VALUES ($1, $2, $3, 'System', 'Admin', true, true, true, $4, $4, $4, 1)
	`, userID, adminEmail, string(passwordHash), now)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert admin user: %w", err)
	}

	var adminRoleID id.ID
	err = pool.QueryRow(ctx, `SELECT id FROM roles WHERE code = 'admin'`).Scan(&adminRoleID)
	if err != nil {
		log.Warnw("admin role not found, skipping role assignment", "error", err)
	} else {
		_, err = pool.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id, granted_by)
			VALUES ($1, $2, NULL)
			ON CONFLICT (user_id, role_id) DO NOTHING
		`, userID, adminRoleID)
		if err != nil {
			log.Warnw("failed to assign admin role", "error", err)
		}
	}

	log.Infow("admin user created", "email", adminEmail, "user_id", userID)
	return userID, nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	txm := postgres.NewTxManager(pool)
	num := numerator.New(pool)
	auditStore, err := postgres.NewAuditStore(txm)
	if err != nil {
		return fmt.Errorf("create audit store: %w", err)
	}

	unitSvc := unit.NewService(catalog_repo.NewUnitRepo(txm), num, txm, auditStore)
	categorySvc := category.NewService(catalog_repo.NewCategoryRepo(txm), num, txm, auditStore)
	warehouseSvc := warehouse.NewService(catalog_repo.NewWarehouseRepo(txm), num, txm, auditStore)
	goodsSvc := goods.NewService(catalog_repo.NewGoodsRepo(txm), num, txm, auditStore)
	supplierSvc := supplier.NewService(catalog_repo.NewSupplierRepo(txm), num, txm, auditStore)
	customerSvc := customer.NewService(catalog_repo.NewCustomerRepo(txm), num, txm, auditStore)

	stockSvc := inventory.NewService(txm, inventory_repo.NewStockRepo(txm),
		postgres.NewMovementEvents(postgres.NewOutboxPublisher(txm)))

	// --- Units ---
	unitIDs := make(map[string]id.ID)
	for _, u := range []*unit.Unit{
		unit.NewUnit("PCS", "Piece", "pcs", unit.TypePiece),
		unit.NewUnit("KG", "Kilogram", "kg", unit.TypeWeight),
		unit.NewUnit("L", "Litre", "l", unit.TypeVolume),
		unit.NewUnit("BOX", "Box", "box", unit.TypePack),
	} {
		uid, err := ensure(ctx, unitSvc.CatalogService, u.Code, u)
		if err != nil {
			return fmt.Errorf("seed unit %s: %w", u.Code, err)
		}
		unitIDs[u.Code] = uid
	}

	// --- Categories ---
	office := category.NewFolder("CAT-OFFICE", "Office supplies")
	officeID, err := ensure(ctx, categorySvc.CatalogService, office.Code, office)
	if err != nil {
		return fmt.Errorf("seed category %s: %w", office.Code, err)
	}

	categoryIDs := make(map[string]id.ID)
	for _, name := range []struct{ code, name string }{
		{"CAT-PAPER", "Paper products"},
		{"CAT-WRITING", "Writing instruments"},
	} {
		c := category.NewCategory(name.code, name.name)
		c.ParentID = ptr(officeID.String())
		cid, err := ensure(ctx, categorySvc.CatalogService, c.Code, c)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.Code, err)
		}
		categoryIDs[name.code] = cid
	}

	// --- Warehouses ---
	main := warehouse.NewWarehouse("WH-001", "Main warehouse", warehouse.TypeMain)
	main.IsDefault = true
	main.Address = ptr("1 Warehouse street")

	retail := warehouse.NewWarehouse("WH-002", "Retail store", warehouse.TypeRetail)
	retail.Address = ptr("5 Market street")

	transit := warehouse.NewWarehouse("WH-003", "Transit", warehouse.TypeTransit)

	warehouseIDs := make(map[string]id.ID)
	for _, w := range []*warehouse.Warehouse{main, retail, transit} {
		wid, err := ensure(ctx, warehouseSvc.CatalogService, w.Code, w)
		if err != nil {
			return fmt.Errorf("seed warehouse %s: %w", w.Code, err)
		}
		warehouseIDs[w.Code] = wid
	}

	// --- Goods ---
	type goodsSeed struct {
		code, name    string
		unitCode      string
		categoryCode  string
		minStock      float64
		maxStock      float64
		purchasePrice float64
		salePrice     float64
		opening       float64
	}

	seeds := []goodsSeed{
		{"GD-00001", "Copy paper A4", "BOX", "CAT-PAPER", 10, 500, 3.20, 4.50, 120},
		{"GD-00002", "Ballpoint pen blue", "PCS", "CAT-WRITING", 50, 2000, 0.25, 0.60, 800},
		{"GD-00003", "Desktop stapler", "PCS", "CAT-OFFICE", 5, 100, 4.10, 7.90, 25},
		{"GD-00004", "Paper clips 28mm", "BOX", "CAT-PAPER", 20, 0, 0.80, 1.50, 60},
		{"GD-00005", "Lever arch binder", "PCS", "CAT-OFFICE", 0, 0, 1.90, 3.40, 0},
	}

	goodsIDs := make(map[string]id.ID)
	for _, s := range seeds {
		g := goods.NewGoods(s.code, s.name)
		if uid, ok := unitIDs[s.unitCode]; ok {
			g.UnitID = ptr(uid.String())
		}
		if cid, ok := categoryIDs[s.categoryCode]; ok {
			g.CategoryID = ptr(cid.String())
		}
		g.MinStock = types.NewQuantityFromFloat64(s.minStock)
		g.MaxStock = types.NewQuantityFromFloat64(s.maxStock)
		g.PurchasePrice = types.NewMoney(s.purchasePrice)
		g.SalePrice = types.NewMoney(s.salePrice)

		gid, err := ensure(ctx, goodsSvc.CatalogService, g.Code, g)
		if err != nil {
			return fmt.Errorf("seed goods %s: %w", g.Code, err)
		}
		goodsIDs[s.code] = gid
	}

	// --- Suppliers ---
	for _, s := range []*supplier.Supplier{
		newSupplier("SUP-001", "Office Wholesale Ltd", "orders@officewholesale.example", 30),
		newSupplier("SUP-002", "Paper Mill Direct", "sales@papermill.example", 14),
	} {
		if _, err := ensure(ctx, supplierSvc.CatalogService, s.Code, s); err != nil {
			return fmt.Errorf("seed supplier %s: %w", s.Code, err)
		}
	}

	// --- Customers ---
	for _, c := range []*customer.Customer{
		newCustomer("CUS-001", "Acme Corp"),
		newCustomer("CUS-002", "Brightside Consulting"),
	} {
		if _, err := ensure(ctx, customerSvc.CatalogService, c.Code, c); err != nil {
			return fmt.Errorf("seed customer %s: %w", c.Code, err)
		}
	}

	// --- Opening balances ---
	// Go through the mutation service so the ledger and the stored balances
	// stay consistent.
	mainID := warehouseIDs["WH-001"]
	for _, s := range seeds {
		if s.opening <= 0 {
			continue
		}
		gid := goodsIDs[s.code]

		balance, err := stockSvc.GetBalance(ctx, gid, mainID)
		if err != nil {
			return fmt.Errorf("check balance %s: %w", s.code, err)
		}
		if !balance.Quantity.IsZero() {
			continue
		}

		_, err = stockSvc.StockIn(ctx, inventory.Mutation{
			GoodsID:     gid,
			WarehouseID: mainID,
			Quantity:    types.NewQuantityFromFloat64(s.opening),
			Note:        "opening balance",
			Actor:       appctx.GetUserID(ctx),
		})
		if err != nil {
			return fmt.Errorf("opening balance %s: %w", s.code, err)
		}
	}

	log.Info("demo data seeded successfully")
	return nil
}

// ensure creates the entity unless one with the same code already exists,
// and returns the effective ID either way.
func ensure[T entity.Validatable](ctx context.Context, svc *domain.CatalogService[T], code string, ent T) (id.ID, error) {
	existing, err := svc.GetByCode(ctx, code)
	if err == nil {
		return catalogID(existing), nil
	}
	if !apperror.IsNotFound(err) {
		return id.Nil(), err
	}
	if err := svc.Create(ctx, ent); err != nil {
		return id.Nil(), err
	}
	return catalogID(ent), nil
}

func catalogID[T any](ent T) id.ID {
	if ident, ok := any(ent).(interface{ GetID() id.ID }); ok {
		return ident.GetID()
	}
	return id.Nil()
}

func newSupplier(code, name, email string, paymentTermsDays int) *supplier.Supplier {
	s := supplier.NewSupplier(code, name)
	s.Email = ptr(email)
	s.PaymentTermsDays = paymentTermsDays
	return s
}

func newCustomer(code, name string) *customer.Customer {
	return customer.NewCustomer(code, name)
}

func ptr[T any](v T) *T {
	return &v
}
