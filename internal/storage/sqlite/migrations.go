package sqlite

import "database/sql"

// schema sets up the tables on startup. Money columns are TEXT so amounts keep
// their exact decimal representation; timestamps are unix milliseconds.
// places must exist before vendors and bookings, settlements before bookings.
const schema = `
CREATE TABLE IF NOT EXISTS places (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS vendors (
    id TEXT PRIMARY KEY,
    place_id TEXT NOT NULL UNIQUE,
    business_name TEXT NOT NULL DEFAULT '',
    vendor_full_name TEXT NOT NULL DEFAULT '',
    vendor_email TEXT NOT NULL DEFAULT '',
    vendor_phone_number TEXT NOT NULL DEFAULT '',
    account_holder_name TEXT NOT NULL DEFAULT '',
    account_number TEXT NOT NULL DEFAULT '',
    ifsc_code TEXT NOT NULL DEFAULT '',
    upi_id TEXT NOT NULL DEFAULT '',
    paid_so_far TEXT NOT NULL DEFAULT '0',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (place_id) REFERENCES places(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS settlements (
    id TEXT PRIMARY KEY,
    place_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    status TEXT NOT NULL,
    created_by TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (place_id) REFERENCES places(id)
);

CREATE TABLE IF NOT EXISTS bookings (
    id TEXT PRIMARY KEY,
    place_id TEXT NOT NULL,
    amount_payable_to_vendor TEXT NOT NULL,
    settlement_id TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (place_id) REFERENCES places(id),
    FOREIGN KEY (settlement_id) REFERENCES settlements(id)
);

CREATE TABLE IF NOT EXISTS notifications (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    place_id TEXT NOT NULL,
    message TEXT NOT NULL,
    is_read INTEGER NOT NULL DEFAULT 0,
    related_entity_type TEXT,
    related_entity_id TEXT,
    created_at INTEGER NOT NULL
);

-- settlement is one-way: a settled booking can never be cleared or moved
CREATE TRIGGER IF NOT EXISTS bookings_settlement_immutable
BEFORE UPDATE OF settlement_id ON bookings
WHEN OLD.settlement_id IS NOT NULL
BEGIN
    SELECT RAISE(ABORT, 'booking settlement is immutable');
END;

CREATE INDEX IF NOT EXISTS idx_bookings_place_id ON bookings(place_id);
CREATE INDEX IF NOT EXISTS idx_bookings_settlement_id ON bookings(settlement_id);
CREATE INDEX IF NOT EXISTS idx_settlements_place_id ON settlements(place_id);
CREATE INDEX IF NOT EXISTS idx_notifications_place_id ON notifications(place_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
