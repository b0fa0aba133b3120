// Package testutil provides an in-memory SQLite database with the service
// schema, for repository and service tests.
package testutil

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "modernc.org/sqlite"
)

// Schema mirrors migrations/ in SQLite dialect.
const Schema = `
CREATE TABLE panchayaths (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	district TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE wards (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	panchayath_id INTEGER NOT NULL REFERENCES panchayaths (id),
	ward_number INTEGER NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (panchayath_id, ward_number)
);
CREATE TABLE survey_content (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT '',
	display_order INTEGER NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE stalls (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	counter_name TEXT NOT NULL UNIQUE,
	participant_name TEXT NOT NULL,
	mobile TEXT NOT NULL DEFAULT '',
	panchayath_id INTEGER NULL REFERENCES panchayaths (id),
	ward_id INTEGER NULL REFERENCES wards (id),
	is_verified BOOLEAN NOT NULL DEFAULT 0,
	registration_fee DECIMAL(12,2) NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	stall_id INTEGER NOT NULL REFERENCES stalls (id),
	name TEXT NOT NULL,
	cost_price DECIMAL(12,2) NOT NULL,
	margin_percent DECIMAL(5,2) NOT NULL DEFAULT 20,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE billing_transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	bill_number TEXT NOT NULL UNIQUE,
	stall_id INTEGER NOT NULL REFERENCES stalls (id),
	items TEXT NOT NULL,
	subtotal DECIMAL(12,2) NOT NULL,
	total DECIMAL(12,2) NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE payments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	payment_type TEXT NOT NULL CHECK (payment_type IN ('participant', 'other')),
	stall_id INTEGER NULL REFERENCES stalls (id),
	amount_paid DECIMAL(12,2) NOT NULL,
	narration TEXT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE registrations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	registration_type TEXT NOT NULL,
	name TEXT NOT NULL,
	mobile TEXT NOT NULL DEFAULT '',
	amount DECIMAL(12,2) NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE stall_enquiry_fields (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	label TEXT NOT NULL,
	field_type TEXT NOT NULL,
	options TEXT NULL,
	is_required BOOLEAN NOT NULL DEFAULT 0,
	display_order INTEGER NOT NULL DEFAULT 0,
	visible_when_field_id INTEGER NULL REFERENCES stall_enquiry_fields (id),
	visible_when_value TEXT NULL,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE stall_enquiries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	mobile TEXT NOT NULL,
	responses TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE admins (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	is_super BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE admin_permissions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	admin_id INTEGER NOT NULL REFERENCES admins (id) ON DELETE CASCADE,
	permission TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (admin_id, permission)
);
CREATE TABLE audit_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	entity_type TEXT NOT NULL,
	entity_id INTEGER NOT NULL,
	action TEXT NOT NULL,
	details TEXT NULL,
	user_id TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

var dbCounter atomic.Int64

// OpenDB returns a fresh in-memory database with the schema applied. Each call
// gets its own database; it is closed when the test ends.
func OpenDB(t testing.TB) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", dbCounter.Add(1))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A single connection keeps the in-memory database alive and serializes
	// transactions the way row locks would.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(Schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}
