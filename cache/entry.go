package cache

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Entry file layout, little-endian:
//
//	u32  magic "NIRC"
//	u32  entryVersion
//	u32  metadata length
//	...  CBOR metadata (entryMeta)
//	u8   compression tag
//	u32  CRC-32C of the uncompressed payload
//	...  stored payload (to end of file)
const (
	entryMagic   = 0x4352494e // "NIRC"
	entryVersion = 1

	// entryHeaderSize is the fixed prefix before the metadata.
	entryHeaderSize = 12
	// entryTrailerSize is the tag byte plus the CRC word.
	entryTrailerSize = 5
)

// entryMeta describes one stored entry. It travels as deterministic
// CBOR so identical entries are byte-identical on disk.
type entryMeta struct {
	Key     string `cbor:"key"`     // hex echo of the entry key
	Driver  string `cbor:"driver"`  // producing driver id
	Created int64  `cbor:"created"` // unix seconds
	RawSize uint32 `cbor:"size"`    // uncompressed payload length
}

// crcTable is the Castagnoli polynomial, hardware-accelerated on
// current CPUs.
var crcTable = crc32.MakeTable(crc32.Castagnoli)

// encMode encodes metadata with Core Deterministic Encoding
// (RFC 8949 §4.2): sorted map keys, smallest integer encoding. Same
// logical metadata always produces identical bytes.
var encMode cbor.EncMode

// decMode accepts standard CBOR; unknown fields are ignored so older
// readers tolerate newer metadata.
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cache: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("cache: CBOR decoder initialization failed: " + err.Error())
	}
}

// encodeEntry builds the full entry file image for a payload.
func encodeEntry(key Key, driver string, payload []byte, tag CompressionTag) ([]byte, error) {
	stored, usedTag, err := compressPayload(payload, tag)
	if err != nil {
		return nil, fmt.Errorf("compressing cache entry: %w", err)
	}

	meta, err := encMode.Marshal(entryMeta{
		Key:     key.String(),
		Driver:  driver,
		Created: time.Now().Unix(),
		RawSize: uint32(len(payload)),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding cache entry metadata: %w", err)
	}

	entry := make([]byte, 0, entryHeaderSize+len(meta)+entryTrailerSize+len(stored))
	entry = binary.LittleEndian.AppendUint32(entry, entryMagic)
	entry = binary.LittleEndian.AppendUint32(entry, entryVersion)
	entry = binary.LittleEndian.AppendUint32(entry, uint32(len(meta)))
	entry = append(entry, meta...)
	entry = append(entry, byte(usedTag))
	entry = binary.LittleEndian.AppendUint32(entry, crc32.Checksum(payload, crcTable))
	entry = append(entry, stored...)
	return entry, nil
}

// IsEntry reports whether data starts with the entry file magic.
// CLI tooling uses it to tell entry files from raw shader blobs.
func IsEntry(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[0:4]) == entryMagic
}

// ReadEntry parses and verifies a raw entry file image outside any
// Cache, returning the uncompressed payload.
func ReadEntry(data []byte) ([]byte, error) {
	payload, _, err := decodeEntry(data)
	return payload, err
}

// decodeEntry parses and verifies an entry file image, returning the
// uncompressed payload. Every field is checked before any byte is
// returned: magic, version, metadata bounds, compression tag, and
// the payload CRC.
func decodeEntry(data []byte) ([]byte, entryMeta, error) {
	var meta entryMeta
	if len(data) < entryHeaderSize+entryTrailerSize {
		return nil, meta, fmt.Errorf("cache entry is %d bytes, shorter than any valid entry", len(data))
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != entryMagic {
		return nil, meta, fmt.Errorf("cache entry has magic %#x, want %#x", magic, entryMagic)
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != entryVersion {
		return nil, meta, fmt.Errorf("cache entry has version %d, want %d", version, entryVersion)
	}

	metaLen := int(binary.LittleEndian.Uint32(data[8:12]))
	if metaLen < 0 || entryHeaderSize+metaLen+entryTrailerSize > len(data) {
		return nil, meta, fmt.Errorf("cache entry metadata length %d exceeds file size %d", metaLen, len(data))
	}
	if err := decMode.Unmarshal(data[entryHeaderSize:entryHeaderSize+metaLen], &meta); err != nil {
		return nil, meta, fmt.Errorf("decoding cache entry metadata: %w", err)
	}

	rest := data[entryHeaderSize+metaLen:]
	tag := CompressionTag(rest[0])
	wantCRC := binary.LittleEndian.Uint32(rest[1:5])

	payload, err := decompressPayload(rest[5:], tag, int(meta.RawSize))
	if err != nil {
		return nil, meta, err
	}
	if crc := crc32.Checksum(payload, crcTable); crc != wantCRC {
		return nil, meta, fmt.Errorf("cache entry payload CRC %#x does not match stored %#x", crc, wantCRC)
	}
	return payload, meta, nil
}
