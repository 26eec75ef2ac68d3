package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	// SQLite driver (required for database/sql registration).
	_ "github.com/mattn/go-sqlite3"

	apperrors "github.com/sierra-outfitters/sierra-agent/internal/errors"
)

// Store is the SQLite-backed catalog database.
type Store struct {
	db *sql.DB
}

// Open opens the catalog database at the given path, creating the
// schema if it does not exist.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCatalogUnavailable,
			"failed to open catalog database", apperrors.CategorySystem)
	}

	// Set performance pragmas
	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, apperrors.Wrap(err, apperrors.CodeCatalogUnavailable,
				"failed to configure catalog database", apperrors.CategorySystem)
		}
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeCatalogUnavailable,
			"failed to initialize catalog schema", apperrors.CategorySystem)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ============================================================
// Schema
// ============================================================

func (s *Store) initSchema() error {
	schema := `
	-- Schema version tracking
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		description TEXT
	);

	CREATE TABLE IF NOT EXISTS orders (
		order_number    TEXT PRIMARY KEY,
		customer_name   TEXT NOT NULL,
		email           TEXT NOT NULL,
		products_json   TEXT NOT NULL,
		status          TEXT NOT NULL,
		tracking_number TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_orders_email ON orders(email);

	CREATE TABLE IF NOT EXISTS products (
		sku          TEXT PRIMARY KEY,
		product_name TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		inventory    INTEGER NOT NULL DEFAULT 0,
		tags_json    TEXT NOT NULL DEFAULT '[]',
		position     INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_products_position ON products(position);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return ensureSchemaVersion(s.db, 1, "Initial catalog schema")
}

func ensureSchemaVersion(db *sql.DB, version int, description string) error {
	var current sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&current); err != nil {
		return err
	}

	if !current.Valid || int(current.Int64) < version {
		_, err := db.Exec(
			"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
			version,
			description,
		)
		return err
	}
	return nil
}

// ============================================================
// Ingest
// ============================================================

// ImportOrders upserts the seed orders. Reimporting the same file is a
// no-op.
func (s *Store) ImportOrders(ctx context.Context, orders []Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeCatalogIngestFailed,
			"failed to begin order import", apperrors.CategorySystem)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO orders
			(order_number, customer_name, email, products_json, status, tracking_number)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeCatalogIngestFailed,
			"failed to prepare order import", apperrors.CategorySystem)
	}
	defer stmt.Close()

	for _, o := range orders {
		productsJSON, err := json.Marshal(o.ProductsOrdered)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeCatalogIngestFailed,
				fmt.Sprintf("failed to encode products for order %s", o.OrderNumber), apperrors.CategorySystem)
		}
		var tracking any
		if o.TrackingNumber != nil {
			tracking = *o.TrackingNumber
		}
		if _, err := stmt.ExecContext(ctx, o.OrderNumber, o.CustomerName, o.Email,
			string(productsJSON), o.Status, tracking); err != nil {
			return apperrors.Wrap(err, apperrors.CodeCatalogIngestFailed,
				fmt.Sprintf("failed to import order %s", o.OrderNumber), apperrors.CategorySystem)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeCatalogIngestFailed,
			"failed to commit order import", apperrors.CategorySystem)
	}
	return nil
}

// ImportProducts upserts the seed products, preserving file order so
// catalog listings stay stable.
func (s *Store) ImportProducts(ctx context.Context, products []Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeCatalogIngestFailed,
			"failed to begin product import", apperrors.CategorySystem)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO products
			(sku, product_name, description, inventory, tags_json, position)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeCatalogIngestFailed,
			"failed to prepare product import", apperrors.CategorySystem)
	}
	defer stmt.Close()

	for i, p := range products {
		tagsJSON, err := json.Marshal(p.Tags)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeCatalogIngestFailed,
				fmt.Sprintf("failed to encode tags for product %s", p.SKU), apperrors.CategorySystem)
		}
		if _, err := stmt.ExecContext(ctx, p.SKU, p.ProductName, p.Description,
			p.Inventory, string(tagsJSON), i); err != nil {
			return apperrors.Wrap(err, apperrors.CodeCatalogIngestFailed,
				fmt.Sprintf("failed to import product %s", p.SKU), apperrors.CategorySystem)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeCatalogIngestFailed,
			"failed to commit product import", apperrors.CategorySystem)
	}
	return nil
}

// ============================================================
// Queries
// ============================================================

// Orders returns every order, sorted by order number.
func (s *Store) Orders(ctx context.Context) ([]Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_number, customer_name, email, products_json, status, tracking_number
		FROM orders ORDER BY order_number`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		var productsJSON string
		var tracking sql.NullString
		if err := rows.Scan(&o.OrderNumber, &o.CustomerName, &o.Email,
			&productsJSON, &o.Status, &tracking); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := json.Unmarshal([]byte(productsJSON), &o.ProductsOrdered); err != nil {
			return nil, fmt.Errorf("decode products for order %s: %w", o.OrderNumber, err)
		}
		if tracking.Valid {
			t := tracking.String
			o.TrackingNumber = &t
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// Products returns every product in catalog order.
func (s *Store) Products(ctx context.Context) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sku, product_name, description, inventory, tags_json
		FROM products ORDER BY position, sku`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		var tagsJSON string
		if err := rows.Scan(&p.SKU, &p.ProductName, &p.Description, &p.Inventory, &tagsJSON); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &p.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for product %s: %w", p.SKU, err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
