package enquiry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/groupenquiry/internal/booking"
)

// Schema creates the bookings table.  The form payload is kept as one JSON
// document; only the lookup keys get their own columns.
const Schema = `CREATE TABLE IF NOT EXISTS bookings (
	id               VARCHAR(64)  NOT NULL PRIMARY KEY,
	reference_number CHAR(14)     NOT NULL,
	submitted_at     DATETIME(6)  NOT NULL,
	locale           VARCHAR(16)  NOT NULL DEFAULT '',
	device           VARCHAR(16)  NOT NULL DEFAULT '',
	data             JSON         NOT NULL,
	UNIQUE KEY uq_bookings_reference (reference_number),
	KEY idx_bookings_submitted (submitted_at)
)`

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

const bookingColumns = `id, reference_number, submitted_at, locale, device, data`

type bookingRow struct {
	ID              string    `db:"id"`
	ReferenceNumber string    `db:"reference_number"`
	SubmittedAt     time.Time `db:"submitted_at"`
	Locale          string    `db:"locale"`
	Device          string    `db:"device"`
	Data            []byte    `db:"data"`
}

func (r bookingRow) stored() (booking.StoredBooking, error) {
	b := booking.StoredBooking{
		ID:              r.ID,
		ReferenceNumber: r.ReferenceNumber,
		SubmittedAt:     r.SubmittedAt.UTC(),
		Locale:          r.Locale,
		Device:          r.Device,
	}
	if err := json.Unmarshal(r.Data, &b.Data); err != nil {
		return booking.StoredBooking{}, fmt.Errorf("decode booking %s: %w", r.ReferenceNumber, err)
	}
	return b, nil
}

// SQLRepository stores bookings in MySQL.
type SQLRepository struct {
	db *sqlx.DB
}

// NewSQLRepository wraps db.  Run Schema (see database.EnsureSchema) first.
func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (s *SQLRepository) Save(ctx context.Context, b booking.StoredBooking) error {
	data, err := json.Marshal(b.Data)
	if err != nil {
		return fmt.Errorf("encode booking: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO bookings (`+bookingColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.ReferenceNumber, b.SubmittedAt.UTC(), b.Locale, b.Device, data)
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return ErrDuplicateReference
	}
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (s *SQLRepository) List(ctx context.Context) ([]booking.StoredBooking, error) {
	var rows []bookingRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY submitted_at, id`); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	out := make([]booking.StoredBooking, 0, len(rows))
	for _, r := range rows {
		b, err := r.stored()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *SQLRepository) ByReference(ctx context.Context, ref string) (booking.StoredBooking, error) {
	var r bookingRow
	err := s.db.GetContext(ctx, &r,
		`SELECT `+bookingColumns+` FROM bookings WHERE reference_number = ?`, ref)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.StoredBooking{}, ErrNotFound
	}
	if err != nil {
		return booking.StoredBooking{}, fmt.Errorf("get booking %s: %w", ref, err)
	}
	return r.stored()
}
