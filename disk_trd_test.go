package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTRDGeometryOffsets(t *testing.T) {
	cases := []struct {
		track, side, sector int
		want                int
	}{
		{0, 0, 0, 0},
		{0, 0, 1, 256},
		{0, 1, 0, 16 * 256},
		{1, 0, 0, 2 * 16 * 256},
		{79, 1, 15, (79*2+1)*16*256 + 15*256},
	}
	for _, tc := range cases {
		got, ok := trdOffset(80, 2, tc.track, tc.side, tc.sector)
		require.True(t, ok)
		assert.Equal(t, tc.want, got)
	}

	_, ok := trdOffset(80, 2, 80, 0, 0)
	assert.False(t, ok, "track out of range")
	_, ok = trdOffset(80, 1, 0, 1, 0)
	assert.False(t, ok, "side out of range")
	_, ok = trdOffset(80, 2, 0, 0, 16)
	assert.False(t, ok, "sector out of range")
}

func TestTRDNewImageInfoSector(t *testing.T) {
	img := NewTRDImage(80, 2)
	info, ok := img.ReadSector(0, 0, 8)
	require.True(t, ok)
	assert.Equal(t, byte(0x16), info[0], "80-track double-sided type")
	assert.Equal(t, byte(0x10), info[4], "TR-DOS id")
}

func TestTRDNewImageGeometryTypes(t *testing.T) {
	img := NewTRDImage(40, 2)
	info, _ := img.ReadSector(0, 0, 8)
	assert.Equal(t, byte(0x17), info[0])

	img = NewTRDImage(80, 1)
	info, _ = img.ReadSector(0, 0, 8)
	assert.Equal(t, byte(0x18), info[0])
}

func TestTRDSectorReadWriteRoundTrip(t *testing.T) {
	img := NewTRDImage(80, 2)
	var buf [256]byte
	for i := range buf {
		buf[i] = byte(i ^ 0x5A)
	}
	require.True(t, img.WriteSector(10, 1, 5, buf))
	got, ok := img.ReadSector(10, 1, 5)
	require.True(t, ok)
	assert.Equal(t, buf, got)
	assert.True(t, img.Modified)
}

func TestTRDWriteSectorRespectsReadOnly(t *testing.T) {
	img := NewTRDImage(80, 2)
	img.ReadOnly = true
	var buf [256]byte
	assert.False(t, img.WriteSector(0, 0, 0, buf))
}

func TestTRDLoadRejectsBadSize(t *testing.T) {
	_, err := LoadTRD(make([]byte, 1234))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestTRDLoadDecodesGeometryFromInfoSector(t *testing.T) {
	src := NewTRDImage(40, 2)
	img, err := LoadTRD(src.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 40, img.Tracks)
	assert.Equal(t, 2, img.Sides)
}

func catalogEntry(name string, ext byte, start, length uint16, sectors, startSector, startTrack byte) TRDFileEntry {
	var e TRDFileEntry
	copy(e.Filename[:], name)
	for i := len(name); i < 8; i++ {
		e.Filename[i] = ' '
	}
	e.Extension = ext
	e.Start = start
	e.Length = length
	e.SectorsUsed = sectors
	e.StartSector = startSector
	e.StartTrack = startTrack
	return e
}

// Encoding the catalog and re-parsing yields the original
// entries.
func TestTRDCatalogRoundTrip(t *testing.T) {
	img := NewTRDImage(80, 2)
	entries := []TRDFileEntry{
		catalogEntry("BOOT", 'B', 0x5D00, 0x0100, 1, 0, 1),
		catalogEntry("GAME", 'C', 0x8000, 0x4000, 64, 1, 1),
		catalogEntry("DATA", 'D', 0x0000, 0x2000, 32, 1, 5),
	}
	require.True(t, img.WriteCatalog(entries))

	reparsed, err := LoadTRD(img.Bytes())
	require.NoError(t, err)
	assert.Equal(t, entries, reparsed.Files)
}

func TestTRDCatalogSkipsDeletedEntries(t *testing.T) {
	img := NewTRDImage(80, 2)
	entries := []TRDFileEntry{
		catalogEntry("KEEP", 'B', 0, 0x100, 1, 0, 1),
		catalogEntry("GONE", 'B', 0, 0x100, 1, 1, 1),
	}
	require.True(t, img.WriteCatalog(entries))

	// Mark the second entry deleted (first byte 0x01).
	buf, _ := img.ReadSector(0, 0, 0)
	buf[16] = 0x01
	img.WriteSector(0, 0, 0, buf)

	require.NoError(t, img.reloadCatalog())
	require.Len(t, img.Files, 1)
	assert.Equal(t, "KEEP    ", string(img.Files[0].Filename[:]))
}

func TestTRDListFilesReturnsCopy(t *testing.T) {
	img := NewTRDImage(80, 2)
	require.True(t, img.WriteCatalog([]TRDFileEntry{
		catalogEntry("ONLY", 'B', 0, 0x100, 1, 0, 1),
	}))
	files := img.ListFiles()
	files[0].Extension = 'X'
	assert.Equal(t, byte('B'), img.Files[0].Extension)
}
