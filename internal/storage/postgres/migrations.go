package postgres

import "context"

// schema creates the payout tables. places, vendors and bookings normally
// belong to the wider admin application; they are created here only when
// missing so a fresh database is usable. settlement_id is added to an existing
// bookings table.
const schema = `
CREATE TABLE IF NOT EXISTS places (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS vendors (
    id TEXT PRIMARY KEY,
    place_id TEXT NOT NULL UNIQUE REFERENCES places(id) ON DELETE CASCADE,
    business_name TEXT NOT NULL DEFAULT '',
    vendor_full_name TEXT NOT NULL DEFAULT '',
    vendor_email TEXT NOT NULL DEFAULT '',
    vendor_phone_number TEXT NOT NULL DEFAULT '',
    account_holder_name TEXT NOT NULL DEFAULT '',
    account_number TEXT NOT NULL DEFAULT '',
    ifsc_code TEXT NOT NULL DEFAULT '',
    upi_id TEXT NOT NULL DEFAULT '',
    paid_so_far NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (paid_so_far >= 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS settlements (
    id TEXT PRIMARY KEY,
    place_id TEXT NOT NULL REFERENCES places(id),
    amount NUMERIC(12,2) NOT NULL CHECK (amount >= 0),
    status TEXT NOT NULL,
    created_by TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS bookings (
    id TEXT PRIMARY KEY,
    place_id TEXT NOT NULL REFERENCES places(id),
    amount_payable_to_vendor NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (amount_payable_to_vendor >= 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

ALTER TABLE bookings ADD COLUMN IF NOT EXISTS settlement_id TEXT REFERENCES settlements(id);

CREATE TABLE IF NOT EXISTS notifications (
    id BIGSERIAL PRIMARY KEY,
    place_id TEXT NOT NULL,
    message TEXT NOT NULL,
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    related_entity_type TEXT,
    related_entity_id TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE OR REPLACE FUNCTION bookings_settlement_immutable() RETURNS trigger AS $$
BEGIN
    IF OLD.settlement_id IS NOT NULL THEN
        RAISE EXCEPTION 'booking % settlement is immutable', OLD.id;
    END IF;
    RETURN NEW;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS bookings_settlement_immutable ON bookings;
CREATE TRIGGER bookings_settlement_immutable
    BEFORE UPDATE OF settlement_id ON bookings
    FOR EACH ROW EXECUTE FUNCTION bookings_settlement_immutable();

CREATE INDEX IF NOT EXISTS idx_bookings_place_id ON bookings(place_id);
CREATE INDEX IF NOT EXISTS idx_bookings_settlement_id ON bookings(settlement_id);
CREATE INDEX IF NOT EXISTS idx_settlements_place_id ON settlements(place_id);
CREATE INDEX IF NOT EXISTS idx_notifications_place_id ON notifications(place_id);
`

// Migrate creates the tables the payout engine needs.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}
