package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ouidb "github.com/pre-history/mac-oui"
)

func buildRecords(t *testing.T) []ouidb.Record {
	t.Helper()
	db, err := ouidb.BuildFromRows([]ouidb.RawRow{
		{Line: 2, Prefix: "70:B3:D5", CompanyName: "Ieee Registration Authority", CountryCode: "US", BlockSize: "MA-L", DateCreated: "2014-08-22"},
		{Line: 3, Prefix: "00:55:DA:10:00:00/28", CompanyName: "Shinko Technos co.,ltd.", BlockSize: "MA-M"},
		{Line: 4, Prefix: "00:1C:B4", IsPrivate: "1", CompanyName: "Private", BlockSize: "MA-L"},
	})
	require.NoError(t, err)
	return db.AllRecords()
}

func TestAssignment_RoundTrip(t *testing.T) {
	recs := buildRecords(t)

	rows := make([]ouidb.RawRow, 0, len(recs))
	for i, r := range recs {
		a := FromRecord(r)
		rows = append(rows, a.RawRow(i+1))
	}

	assert.Equal(t, "70:B3:D5", rows[0].Prefix)
	assert.Equal(t, "2014-08-22", rows[0].DateCreated)
	assert.Equal(t, "00:55:DA:10:00:00/28", rows[1].Prefix)
	assert.Equal(t, "MA-M", rows[1].BlockSize)
	assert.Equal(t, "1", rows[2].IsPrivate)

	again, err := ouidb.BuildFromRows(rows)
	require.NoError(t, err)
	assert.Equal(t, recs, again.AllRecords())
}

func TestAssignment_TableName(t *testing.T) {
	assert.Equal(t, "oui_assignments", Assignment{}.TableName())
}

// Requires a reachable PostgreSQL; point OUI_POSTGRES_DSN at a scratch database.
func TestStore_Integration(t *testing.T) {
	dsn := os.Getenv("OUI_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("OUI_POSTGRES_DSN not set")
	}

	s, err := Open(dsn)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.db.Where("1 = 1").Delete(&Assignment{}).Error)

	ctx := context.Background()
	recs := buildRecords(t)

	n, err := s.SaveRecords(ctx, recs)
	require.NoError(t, err)
	assert.Equal(t, len(recs), n)

	// upsert keeps one row per prefix
	recs[0].CompanyName = "IEEE Registration Authority"
	_, err = s.SaveRecords(ctx, recs[:1])
	require.NoError(t, err)

	rows, err := s.LoadRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, len(recs))
	assert.Equal(t, "IEEE Registration Authority", rows[0].CompanyName)

	db, err := ouidb.BuildFromRows(rows)
	require.NoError(t, err)
	assert.Equal(t, len(recs), db.Len())

	// a refresh whose container block supersedes a stored nested block
	container, err := ouidb.BuildFromRows([]ouidb.RawRow{
		{Line: 2, Prefix: "00:55:DA", CompanyName: "Ieee Registration Authority", BlockSize: "MA-L"},
		{Line: 3, Prefix: "70:B3:D5", CompanyName: "Ieee Registration Authority", BlockSize: "MA-L"},
	})
	require.NoError(t, err)

	n, err = s.ReplaceRecords(ctx, container.AllRecords())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err = s.LoadRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "00:55:DA", rows[0].Prefix)
	assert.Equal(t, "70:B3:D5", rows[1].Prefix)

	reloaded, err := ouidb.BuildFromRows(rows)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Warnings())
	rec, ok := reloaded.LookupAddr(0x0055DA1ABCDE)
	require.True(t, ok)
	assert.Equal(t, "Ieee Registration Authority", rec.CompanyName)

	_, err = s.ReplaceRecords(ctx, nil)
	assert.Error(t, err)
	rows, err = s.LoadRows(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "a rejected replace keeps the stored set")
}
