// disk_trd.go - TRD disk-image format: 40/80-track, one- or two-sided,
// 16 sectors/track, 256 bytes/sector. The whole image lives in memory;
// persistence is the caller's concern.
package main

const (
	trdSectorsPerTrack = 16
	trdSectorSize      = 256
	trdBytesPerTrack   = trdSectorsPerTrack * trdSectorSize
	trdMaxFiles        = 128
)

// TRDFileEntry is one 16-byte catalog entry.
type TRDFileEntry struct {
	Filename     [8]byte
	Extension    byte
	Start        uint16
	Length       uint16
	SectorsUsed  byte
	StartSector  byte
	StartTrack   byte
}

// TRDImage is an in-memory TR-DOS disk image.
type TRDImage struct {
	data     []byte
	ReadOnly bool
	Modified bool

	Tracks int
	Sides  int

	Files []TRDFileEntry
}

// NewTRDImage formats a blank disk with the given geometry.
func NewTRDImage(tracks, sides int) *TRDImage {
	img := &TRDImage{
		data:   make([]byte, tracks*sides*trdBytesPerTrack),
		Tracks: tracks,
		Sides:  sides,
	}
	diskType := byte(0x16)
	switch {
	case tracks == 40 && sides == 2:
		diskType = 0x17
	case tracks == 80 && sides == 1:
		diskType = 0x18
	}
	info := 8 * trdSectorSize
	img.data[info] = diskType
	freeSectors := tracks*sides*trdSectorsPerTrack - 16
	img.data[info+2] = byte(freeSectors)
	img.data[info+3] = byte(freeSectors >> 8)
	img.data[info+4] = 0x10 // TR-DOS ID
	return img
}

func trdOffset(tracks, sides, track, head, sector int) (int, bool) {
	if track >= tracks || head >= sides || sector >= trdSectorsPerTrack {
		return 0, false
	}
	offset := track*sides*trdBytesPerTrack + head*trdBytesPerTrack + sector*trdSectorSize
	return offset, true
}

// LoadTRD parses a raw TRD image, taking geometry from the file size
// and the disk-type byte.
func LoadTRD(data []byte) (*TRDImage, error) {
	img := &TRDImage{data: data}
	switch len(data) {
	case 655360:
		img.Tracks, img.Sides = 80, 2
	case 327680:
		img.Tracks, img.Sides = 40, 2
	default:
		return nil, wrapInvalidImage("unrecognized TRD size %d bytes", len(data))
	}

	info, ok := img.ReadSector(0, 0, 8)
	if !ok {
		return nil, wrapInvalidImage("TRD: could not read disk info sector")
	}
	switch info[0] {
	case 0x16:
		img.Tracks, img.Sides = 80, 2
	case 0x17:
		img.Tracks, img.Sides = 40, 2
	case 0x18:
		img.Tracks, img.Sides = 80, 1
	}

	if err := img.reloadCatalog(); err != nil {
		return nil, err
	}
	return img, nil
}

// reloadCatalog re-decodes the 128-entry catalog from sectors 0-7 of
// track 0 side 0. An entry is present iff its first byte is neither 0x00
// (end of catalog) nor 0x01 (deleted).
func (img *TRDImage) reloadCatalog() error {
	img.Files = img.Files[:0]
	for sec := 0; sec < 8 && len(img.Files) < trdMaxFiles; sec++ {
		sectorData, ok := img.ReadSector(0, 0, byte(sec))
		if !ok {
			return wrapInvalidImage("TRD: catalog sector %d unreadable", sec)
		}
		for i := 0; i < 16; i++ {
			e := sectorData[i*16 : i*16+16]
			if e[0] == 0 || e[0] == 1 {
				continue
			}
			var entry TRDFileEntry
			copy(entry.Filename[:], e[0:8])
			entry.Extension = e[8]
			entry.Start = uint16(e[9]) | uint16(e[10])<<8
			entry.Length = uint16(e[11]) | uint16(e[12])<<8
			entry.SectorsUsed = e[13]
			entry.StartSector = e[14]
			entry.StartTrack = e[15]
			img.Files = append(img.Files, entry)
		}
	}
	return nil
}

// ListFiles returns a copy of the decoded catalog for display.
func (img *TRDImage) ListFiles() []TRDFileEntry {
	out := make([]TRDFileEntry, len(img.Files))
	copy(out, img.Files)
	return out
}

// ReadSector copies the given physical sector into a fresh 256-byte
// buffer.
func (img *TRDImage) ReadSector(track, head, sector byte) ([256]byte, bool) {
	var buf [256]byte
	off, ok := trdOffset(img.Tracks, img.Sides, int(track), int(head), int(sector))
	if !ok || off+trdSectorSize > len(img.data) {
		return buf, false
	}
	copy(buf[:], img.data[off:off+trdSectorSize])
	return buf, true
}

// WriteSector writes buf into the given physical sector.
func (img *TRDImage) WriteSector(track, head, sector byte, buf [256]byte) bool {
	if img.ReadOnly {
		return false
	}
	off, ok := trdOffset(img.Tracks, img.Sides, int(track), int(head), int(sector))
	if !ok || off+trdSectorSize > len(img.data) {
		return false
	}
	copy(img.data[off:off+trdSectorSize], buf[:])
	img.Modified = true
	return true
}

// Bytes returns the raw image contents, for snapshotting or saving.
func (img *TRDImage) Bytes() []byte { return img.data }

// WriteCatalog encodes entries into catalog sectors 0-7 of track 0 side 0
// (at most trdMaxFiles entries; the slot after the last entry is zeroed to
// terminate the catalog) and refreshes the in-memory file list.
func (img *TRDImage) WriteCatalog(entries []TRDFileEntry) bool {
	if img.ReadOnly || len(entries) > trdMaxFiles {
		return false
	}
	for sec := 0; sec < 8; sec++ {
		var buf [256]byte
		for i := 0; i < 16; i++ {
			idx := sec*16 + i
			if idx >= len(entries) {
				break
			}
			e := buf[i*16 : i*16+16]
			f := entries[idx]
			copy(e[0:8], f.Filename[:])
			e[8] = f.Extension
			e[9] = byte(f.Start)
			e[10] = byte(f.Start >> 8)
			e[11] = byte(f.Length)
			e[12] = byte(f.Length >> 8)
			e[13] = f.SectorsUsed
			e[14] = f.StartSector
			e[15] = f.StartTrack
		}
		if !img.WriteSector(0, 0, byte(sec), buf) {
			return false
		}
	}
	info, _ := img.ReadSector(0, 0, 8)
	info[1] = byte(len(entries))
	img.WriteSector(0, 0, 8, info)
	img.Files = append(img.Files[:0], entries...)
	return true
}
