// Package integration spins up real PostgreSQL instances with
// testcontainers and exercises the services against them.
package integration

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	mpg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/opsync/backend/internal/domain/catalog"
	"github.com/opsync/backend/internal/domain/partner"
	"github.com/opsync/backend/internal/infrastructure/persistence"
)

var (
	sharedContainer    testcontainers.Container
	sharedContainerMu  sync.Mutex
	sharedContainerDSN string
)

// TestDB wraps a migrated PostgreSQL connection for one test
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	DSN   string
	t     *testing.T
}

// NewTestDB returns a connection to a shared PostgreSQL container with
// migrations applied. Tests are responsible for isolating their own
// data; CleanTables gives a blank slate.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	ctx := context.Background()

	if sharedContainer == nil {
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("opsync_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		require.NoError(t, err, "Failed to start PostgreSQL container")

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err, "Failed to get connection string")

		db, sqlDB := connect(t, dsn)
		runMigrations(t, sqlDB)
		require.NoError(t, sqlDB.Close())
		_ = db

		sharedContainer = container
		sharedContainerDSN = dsn
	}

	db, sqlDB := connect(t, sharedContainerDSN)
	tdb := &TestDB{DB: db, SqlDB: sqlDB, DSN: sharedContainerDSN, t: t}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return tdb
}

// CleanTables truncates every application table, leaving the schema and
// the number sequences intact
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	tables := []string{
		"payments", "invoice_lines", "invoices",
		"purchase_order_lines", "purchase_orders",
		"items", "customers", "suppliers", "users",
	}
	for _, table := range tables {
		require.NoError(tdb.t, tdb.DB.Exec("TRUNCATE TABLE "+table+" CASCADE").Error)
	}
}

// SeedCustomer inserts a customer and returns it
func (tdb *TestDB) SeedCustomer(name string) *partner.Customer {
	tdb.t.Helper()

	customer, err := partner.NewCustomer(name, "", "", "")
	require.NoError(tdb.t, err)

	repo := persistence.NewGormCustomerRepository(tdb.DB)
	require.NoError(tdb.t, repo.Save(context.Background(), customer))
	return customer
}

// SeedSupplier inserts a supplier and returns it
func (tdb *TestDB) SeedSupplier(name string) *partner.Supplier {
	tdb.t.Helper()

	supplier, err := partner.NewSupplier(name, "", "", "", "")
	require.NoError(tdb.t, err)

	repo := persistence.NewGormSupplierRepository(tdb.DB)
	require.NoError(tdb.t, repo.Save(context.Background(), supplier))
	return supplier
}

// SeedItem inserts a catalog item with the given price and returns it
func (tdb *TestDB) SeedItem(name, sku, price string) *catalog.Item {
	tdb.t.Helper()

	item, err := catalog.NewItem(name, sku, "", decimal.RequireFromString(price), false)
	require.NoError(tdb.t, err)

	repo := persistence.NewGormItemRepository(tdb.DB)
	require.NoError(tdb.t, repo.Save(context.Background(), item))
	return item
}

func connect(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		cfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), cfg)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get underlying SQL DB")

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, sqlDB
}

func runMigrations(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	migrationsPath := findMigrationsPath()
	require.NotEmpty(t, migrationsPath, "Could not find migrations directory")

	driver, err := mpg.WithInstance(sqlDB, &mpg.Config{})
	require.NoError(t, err, "Failed to create migration driver")

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	require.NoError(t, err, "Failed to create migrate instance")

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to run migrations")
	}
}

func findMigrationsPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}

	dir := filepath.Dir(filename)
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "migrations")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	return ""
}
