// disk_scl.go - SCL archive format, converted to an in-memory TRDImage
// built directly from the descriptor table and packed file payloads.
package main

var sclSignature = [8]byte{'S', 'I', 'N', 'C', 'L', 'A', 'I', 'R'}

// LoadSCL parses an SCL archive and converts it into a fresh 80-track,
// double-sided TRDImage, mounted read-only.
func LoadSCL(data []byte) (*TRDImage, error) {
	if len(data) < 9 || [8]byte(data[0:8]) != sclSignature {
		return nil, wrapInvalidImage("not an SCL file (bad signature)")
	}
	filesCount := int(data[8])
	pos := 9

	type desc struct {
		filename    [8]byte
		extension   byte
		start       uint16
		length      uint16
		sectorsUsed byte
	}
	descriptors := make([]desc, filesCount)
	for i := 0; i < filesCount; i++ {
		if pos+14 > len(data) {
			return nil, wrapInvalidImage("scl: truncated file descriptor %d", i)
		}
		var d desc
		copy(d.filename[:], data[pos:pos+8])
		d.extension = data[pos+8]
		d.start = uint16(data[pos+9]) | uint16(data[pos+10])<<8
		d.length = uint16(data[pos+11]) | uint16(data[pos+12])<<8
		d.sectorsUsed = data[pos+13]
		descriptors[i] = d
		pos += 14
	}

	img := NewTRDImage(80, 2)

	nextTrack, nextSector := 1, 0
	for i, d := range descriptors {
		if i >= trdMaxFiles {
			break
		}
		catalogSector := i / 16
		catalogSlot := i % 16
		buf, _ := img.ReadSector(0, 0, byte(catalogSector))
		e := buf[catalogSlot*16 : catalogSlot*16+16]
		copy(e[0:8], d.filename[:])
		e[8] = d.extension
		e[9] = byte(d.start)
		e[10] = byte(d.start >> 8)
		e[11] = byte(d.length)
		e[12] = byte(d.length >> 8)
		e[13] = d.sectorsUsed
		e[14] = byte(nextSector)
		e[15] = byte(nextTrack)
		img.WriteSector(0, 0, byte(catalogSector), buf)

		nextSector += int(d.sectorsUsed)
		for nextSector >= trdSectorsPerTrack {
			nextSector -= trdSectorsPerTrack
			nextTrack++
		}
	}

	info, _ := img.ReadSector(0, 0, 8)
	info[0] = 0x16
	info[1] = byte(filesCount)
	usedSectors := 0
	for _, d := range descriptors {
		usedSectors += int(d.sectorsUsed)
	}
	free := 80*2*trdSectorsPerTrack - 16 - usedSectors
	if free < 0 {
		free = 0
	}
	info[2] = byte(free)
	info[3] = byte(free >> 8)
	info[4] = 0x10
	copy(info[229:237], []byte("SCLCONV "))
	img.WriteSector(0, 0, 8, info)

	// File payload goes back-to-back from logical track 1 sector 0. A
	// logical track is one side's 16 sectors; logical track L maps to
	// cylinder L/2, side L%2 on this double-sided image, matching the
	// catalog's start-track bytes written above.
	ltrack, sec := 1, 0
	for _, d := range descriptors {
		n := int(d.sectorsUsed) * trdSectorSize
		if pos+n > len(data) {
			return nil, wrapInvalidImage("scl: file data for %s truncated", string(d.filename[:]))
		}
		payload := data[pos : pos+n]
		pos += n
		for s := 0; s < int(d.sectorsUsed); s++ {
			var buf [256]byte
			copy(buf[:], payload[s*trdSectorSize:(s+1)*trdSectorSize])
			img.WriteSector(byte(ltrack/2), byte(ltrack%2), byte(sec), buf)
			sec++
			if sec >= trdSectorsPerTrack {
				sec = 0
				ltrack++
			}
		}
	}

	img.ReadOnly = true
	if err := img.reloadCatalog(); err != nil {
		return nil, err
	}
	return img, nil
}

// SaveSCL repacks a TRDImage's cataloged files into an SCL archive, the
// inverse of LoadSCL.
func SaveSCL(img *TRDImage) []byte {
	out := make([]byte, 0, 9+len(img.Files)*14)
	out = append(out, sclSignature[:]...)
	out = append(out, byte(len(img.Files)))
	for _, f := range img.Files {
		out = append(out, f.Filename[:]...)
		out = append(out, f.Extension)
		out = append(out, byte(f.Start), byte(f.Start>>8))
		out = append(out, byte(f.Length), byte(f.Length>>8))
		out = append(out, f.SectorsUsed)
	}
	for _, f := range img.Files {
		ltrack, sec := int(f.StartTrack), int(f.StartSector)
		for s := 0; s < int(f.SectorsUsed); s++ {
			buf, _ := img.ReadSector(byte(ltrack/2), byte(ltrack%2), byte(sec))
			out = append(out, buf[:]...)
			sec++
			if sec >= trdSectorsPerTrack {
				sec = 0
				ltrack++
			}
		}
	}
	return out
}
