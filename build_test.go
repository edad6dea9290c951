package mac_oui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(line int, prefix, name, size string) RawRow {
	return RawRow{
		Line:        line,
		Prefix:      prefix,
		CompanyName: name,
		BlockSize:   size,
		CountryCode: "us",
		DateCreated: "2015-11-17",
		DateUpdated: "2016-04-27",
	}
}

func TestBuild_Records(t *testing.T) {
	t.Run("creates records with derived fields", func(t *testing.T) {
		// Prepare
		rows := []RawRow{
			row(2, "70:B3:D5", "Ieee Registration Authority", "MA-L"),
			row(3, "70:B4:D5:E0:00:00/28", "Medium Corp", "MA-M"),
			{Line: 4, Prefix: "02:00:00", CompanyName: "Local Co", BlockSize: "MA-L", IsPrivate: "0"},
			{Line: 5, Prefix: "00:1C:B4", CompanyName: "Private", BlockSize: "MA-L", IsPrivate: "1"},
		}

		// Execute
		idx, warns := build(rows)

		// Check
		assert.Empty(t, warns)
		require.Len(t, idx.records, 4)

		r := idx.records[0]
		assert.Equal(t, "70:B3:D5", r.OUI)
		assert.Equal(t, uint64(0x70B3D5000000), r.Prefix)
		assert.Equal(t, 24, r.PrefixBits)
		assert.Equal(t, MAL, r.BlockSize)
		assert.Equal(t, "US", r.CountryCode)
		assert.Equal(t, 2015, r.DateCreated.Year())
		assert.Equal(t, 2016, r.DateUpdated.Year())
		assert.False(t, r.IsPrivate)
		assert.Equal(t, AddressRange{Low: 0x70B3D5000000, High: 0x70B3D5FFFFFF}, r.Range())

		m := idx.records[1]
		assert.Equal(t, MAM, m.BlockSize)
		assert.Equal(t, AddressRange{Low: 0x70B4D5E00000, High: 0x70B4D5EFFFFF}, m.Range())

		assert.True(t, idx.records[2].IsPrivate, "locally administered prefix")
		assert.True(t, idx.records[3].IsPrivate, "flagged private")
	})

	t.Run("infers block size when the label is empty", func(t *testing.T) {
		idx, warns := build([]RawRow{
			row(2, "70B3D5", "Large", ""),
			row(3, "70B4D5E", "Medium", ""),
			row(4, "70B5D5E74", "Small", ""),
			row(5, "70:B6:D5:00:00:00/32", "Odd", ""),
		})

		assert.Empty(t, warns)
		require.Len(t, idx.records, 4)
		assert.Equal(t, MAL, idx.records[0].BlockSize)
		assert.Equal(t, MAM, idx.records[1].BlockSize)
		assert.Equal(t, MAS, idx.records[2].BlockSize)
		assert.Equal(t, 32, idx.records[3].PrefixBits)
		assert.False(t, idx.records[3].BlockSize.Valid())
	})
}

func TestBuild_SkippedRows(t *testing.T) {
	t.Run("one malformed row among valid ones", func(t *testing.T) {
		// Prepare
		rows := []RawRow{
			row(2, "00:03:93", "Apple, Inc", "MA-L"),
			row(3, "00:05:0Z", "Broken", "MA-L"),
			row(4, "00:0A:27", "Apple, Inc", "MA-L"),
			row(5, "00:1B:63", "Apple, Inc", "MA-L"),
		}

		// Execute
		idx, warns := build(rows)

		// Check
		assert.Len(t, idx.records, 3)
		require.Len(t, warns, 1)
		assert.Equal(t, WarnSkippedRow, warns[0].Kind)
		assert.Equal(t, 3, warns[0].Line)
		assert.Equal(t, "00:05:0Z", warns[0].Prefix)
		assert.NotEmpty(t, warns[0].Reason)
	})

	t.Run("reports each kind of defect", func(t *testing.T) {
		bad := []RawRow{
			row(2, "", "No Prefix", "MA-L"),
			row(3, "00:03:93", "  ", "MA-L"),
			row(4, "00:03:93", "Bad Size", "MA-XL"),
			row(5, "00:03:93", "Wrong Width", "MA-M"),
			{Line: 6, Prefix: "00:03:93", CompanyName: "Bad Date", BlockSize: "MA-L", DateCreated: "17/11/2015"},
			{Line: 7, Prefix: "00:03:93", CompanyName: "Bad Date", BlockSize: "MA-L", DateUpdated: "yesterday"},
			row(8, "00:03:93:12", "No Size", ""),
		}

		idx, warns := build(bad)

		assert.Empty(t, idx.records)
		require.Len(t, warns, len(bad))
		for i, w := range warns {
			assert.Equal(t, WarnSkippedRow, w.Kind)
			assert.Equal(t, bad[i].Line, w.Line)
		}
	})
}

func TestBuild_Duplicates(t *testing.T) {
	t.Run("later row replaces an identical prefix", func(t *testing.T) {
		// Prepare
		rows := []RawRow{
			row(2, "00:03:93", "Apple Computer", "MA-L"),
			row(3, "00:03:93", "Apple, Inc", "MA-L"),
		}

		// Execute
		idx, warns := build(rows)

		// Check
		require.Len(t, idx.records, 1)
		assert.Equal(t, "Apple, Inc", idx.records[0].CompanyName)
		require.Len(t, warns, 1)
		assert.Equal(t, WarnDuplicatePrefix, warns[0].Kind)
		assert.Equal(t, 3, warns[0].Line)
		assert.Equal(t, 2, warns[0].Other)

		assert.Empty(t, idx.names.lookup("Apple Computer"), "replaced record is not indexed by name")
		assert.Equal(t, []int{0}, idx.names.lookup("apple, inc"))
	})

	t.Run("different spellings of one block are duplicates", func(t *testing.T) {
		idx, warns := build([]RawRow{
			row(2, "70:B3:D5:E0:00:00/28", "First", "MA-M"),
			row(3, "70B3D5E", "Second", "MA-M"),
			row(4, "70-B3-D5-E0-00-00/28", "Third", ""),
		})

		require.Len(t, idx.records, 1)
		assert.Equal(t, "Third", idx.records[0].CompanyName)
		require.Len(t, warns, 2)
		assert.Equal(t, 2, warns[0].Other)
		assert.Equal(t, 3, warns[1].Other)
	})
}

func TestBuild_Overlaps(t *testing.T) {
	t.Run("nested block after its container is rejected", func(t *testing.T) {
		// Prepare
		rows := []RawRow{
			row(2, "70:B3:D5", "Ieee Registration Authority", "MA-L"),
			row(3, "70:B3:D5:E7:4", "Small Vendor", "MA-S"),
		}

		// Execute
		idx, warns := build(rows)

		// Check
		require.Len(t, idx.records, 1)
		assert.Equal(t, "Ieee Registration Authority", idx.records[0].CompanyName)
		require.Len(t, warns, 1)
		assert.Equal(t, WarnOverlapRejected, warns[0].Kind)
		assert.Equal(t, 3, warns[0].Line)
		assert.Equal(t, 2, warns[0].Other)
	})

	t.Run("container after a nested block is rejected", func(t *testing.T) {
		rows := []RawRow{
			row(2, "70:B3:D5:E7:4", "Small Vendor", "MA-S"),
			row(3, "70:B3:D5:E0:0", "Other Small", "MA-S"),
			row(4, "70:B3:D5", "Ieee Registration Authority", "MA-L"),
		}

		idx, warns := build(rows)

		require.Len(t, idx.records, 2)
		require.Len(t, warns, 1)
		assert.Equal(t, WarnOverlapRejected, warns[0].Kind)
		assert.Equal(t, 4, warns[0].Line)
		assert.Equal(t, 2, warns[0].Other, "earliest conflicting row is reported")
	})

	t.Run("siblings do not overlap", func(t *testing.T) {
		idx, warns := build([]RawRow{
			row(2, "70:B3:D5:E", "A", "MA-M"),
			row(3, "70:B3:D5:F", "B", "MA-M"),
			row(4, "70:B3:D4", "C", "MA-L"),
		})

		assert.Empty(t, warns)
		assert.Len(t, idx.records, 3)
	})

	t.Run("a replaced block keeps rejecting nested rows", func(t *testing.T) {
		idx, warns := build([]RawRow{
			row(2, "70:B3:D5", "Old", "MA-L"),
			row(3, "70:B3:D5", "New", "MA-L"),
			row(4, "70:B3:D5:E", "Nested", "MA-M"),
		})

		require.Len(t, idx.records, 1)
		assert.Equal(t, "New", idx.records[0].CompanyName)
		require.Len(t, warns, 2)
		assert.Equal(t, WarnOverlapRejected, warns[1].Kind)
		assert.Equal(t, 3, warns[1].Other)
	})
}

func TestRangeIndex_Lookup(t *testing.T) {
	idx, warns := build([]RawRow{
		row(2, "B8:27:EB", "Raspberry Pi Foundation", "MA-L"),
		row(3, "00:03:93", "Apple, Inc", "MA-L"),
		row(4, "70:B3:D5:E", "Medium", "MA-M"),
		row(5, "00:50:C2:00:1", "Small", "IAB"),
	})
	require.Empty(t, warns)

	for _, rec := range idx.records {
		r := rec.Range()
		for _, addr := range []uint64{r.Low, r.Low + 1, r.High - 1, r.High} {
			pos, ok := idx.ranges.lookup(addr)
			require.True(t, ok, FormatMAC(addr))
			assert.Equal(t, rec, idx.records[pos])
		}
	}

	for _, addr := range []uint64{0, 0x000392FFFFFF, 0x000394000000, 0x0050C2000FFF, 0x0050C2002000, 0x70B3D5DFFFFF, 0x70B3D5F00000, addrMask} {
		_, ok := idx.ranges.lookup(addr)
		assert.False(t, ok, FormatMAC(addr))
	}

	assert.Equal(t, 4, idx.ranges.len())
	for i := 1; i < len(idx.ranges.entries); i++ {
		assert.Less(t, idx.ranges.entries[i-1].High, idx.ranges.entries[i].Low, "sorted and disjoint")
	}
}

func TestAddressRange(t *testing.T) {
	r := prefixRange(0x70B3D5E00000, 28)
	assert.Equal(t, uint64(0x70B3D5E00000), r.Low)
	assert.Equal(t, uint64(0x70B3D5EFFFFF), r.High)
	assert.Equal(t, uint64(1<<20), r.Size())
	assert.True(t, r.Contains(0x70B3D5E74F81))
	assert.False(t, r.Contains(0x70B3D5F00000))
	assert.True(t, r.Overlaps(prefixRange(0x70B3D5000000, 24)))
	assert.False(t, r.Overlaps(prefixRange(0x70B3D5F00000, 28)))
	assert.Equal(t, "[70:B3:D5:E0:00:00, 70:B3:D5:EF:FF:FF]", r.String())

	single := prefixRange(0x020000000001, 48)
	assert.Equal(t, uint64(1), single.Size())
}

func TestBuildWarning_String(t *testing.T) {
	assert.Equal(t, `line 3: duplicate prefix "00:03:93" replaces line 2`,
		BuildWarning{Kind: WarnDuplicatePrefix, Line: 3, Prefix: "00:03:93", Other: 2}.String())
	assert.Contains(t,
		BuildWarning{Kind: WarnOverlapRejected, Line: 4, Prefix: "70:B3:D5:E", Reason: "x", Other: 2}.String(),
		"kept line 2")
	assert.Equal(t, `line 5: skipped row "": missing prefix`,
		BuildWarning{Kind: WarnSkippedRow, Line: 5, Reason: "missing prefix"}.String())
}
