package repositories

import (
	"testing"
	"time"

	"github.com/createconomy/cemvp/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wireColumn is one result column as the server sends it
type wireColumn struct {
	oid    uint32
	format int16
	data   []byte
}

// wireRow decodes columns through the same pgtype.Map plans pgx uses for rows.Scan
type wireRow struct {
	m    *pgtype.Map
	cols []wireColumn
	err  error
}

func (r *wireRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	for i, col := range r.cols {
		if err := r.m.Scan(col.oid, col.format, col.data, dest[i]); err != nil {
			return err
		}
	}
	return nil
}

func encodeColumn(t *testing.T, m *pgtype.Map, oid uint32, format int16, value any) wireColumn {
	t.Helper()
	buf, err := m.Encode(oid, format, value, nil)
	require.NoError(t, err)
	return wireColumn{oid: oid, format: format, data: buf}
}

// ============================================================================
// scanAdminInfo
// ============================================================================

func TestScanAdminInfo_BinaryPermissions(t *testing.T) {
	m := pgtype.NewMap()

	// pgx asks for text[] results in binary
	require.Equal(t, int16(pgtype.BinaryFormatCode), m.FormatCodeForOID(pgtype.TextArrayOID))

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	row := &wireRow{m: m, cols: []wireColumn{
		encodeColumn(t, m, pgtype.UUIDOID, pgtype.BinaryFormatCode,
			pgtype.UUID{Bytes: [16]byte{0x11, 0x22}, Valid: true}),
		encodeColumn(t, m, pgtype.UUIDOID, pgtype.BinaryFormatCode,
			pgtype.UUID{Bytes: [16]byte{0x33, 0x44}, Valid: true}),
		encodeColumn(t, m, pgtype.TextArrayOID, pgtype.BinaryFormatCode, models.DefaultAdminPermissions),
		encodeColumn(t, m, pgtype.TimestamptzOID, pgtype.BinaryFormatCode, created),
	}}

	info, err := scanAdminInfo(row)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAdminPermissions, info.Permissions)
	assert.Equal(t, "11220000-0000-0000-0000-000000000000", info.ID)
	assert.Equal(t, "33440000-0000-0000-0000-000000000000", info.ProfileID)
	assert.True(t, created.Equal(info.CreatedAt))
}

func TestScanAdminInfo_EmptyPermissions(t *testing.T) {
	m := pgtype.NewMap()

	row := &wireRow{m: m, cols: []wireColumn{
		encodeColumn(t, m, pgtype.TextOID, pgtype.TextFormatCode, "admin-info-1"),
		encodeColumn(t, m, pgtype.TextOID, pgtype.TextFormatCode, "profile-1"),
		encodeColumn(t, m, pgtype.TextArrayOID, pgtype.BinaryFormatCode, []string{}),
		encodeColumn(t, m, pgtype.TimestamptzOID, pgtype.BinaryFormatCode, time.Now()),
	}}

	info, err := scanAdminInfo(row)
	require.NoError(t, err)
	assert.Empty(t, info.Permissions)
	assert.Equal(t, "profile-1", info.ProfileID)
}

func TestScanAdminInfo_NoRows(t *testing.T) {
	_, err := scanAdminInfo(&wireRow{err: pgx.ErrNoRows})
	assert.ErrorIs(t, err, models.ErrNotFound)
}
