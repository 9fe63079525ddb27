package bundle

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/dd0wney/icedope/pkg/bondgraph"
	"github.com/golang/snappy"
)

// Format: [Magic:4][Version:2][Flags:2][PayloadLen:4][Payload:N][Checksum:4]
//
// Payload is snappy-compressed JSON; Checksum is CRC32 (IEEE) of the
// compressed payload. All integers are big-endian.
const (
	Magic   uint32 = 0x49434544 // "ICED"
	Version uint16 = 1

	headerSize  = 12
	trailerSize = 4
)

// payload is the JSON document inside the frame.
type payload struct {
	RunID     string           `json:"run_id"`
	Seed      uint64           `json:"seed"`
	CreatedAt time.Time        `json:"created_at"`
	Kind      string           `json:"kind,omitempty"`
	Cell      [3][3]float64    `json:"cell"`
	Positions [][3]float64     `json:"positions,omitempty"`
	Sites     int              `json:"sites"`
	Anions    []int            `json:"anions"`
	Cations   []int            `json:"cations"`
	Bonds     []bondgraph.Bond `json:"bonds"`
}

// Encode serializes b into a framed, compressed byte slice.
func Encode(b *Bundle) ([]byte, error) {
	doc := payload{
		RunID:     b.RunID,
		Seed:      b.Seed,
		CreatedAt: b.CreatedAt,
		Kind:      b.Kind,
		Cell:      b.Cell,
		Positions: b.Positions,
		Sites:     b.Graph.NumSites(),
		Anions:    b.Anions,
		Cations:   b.Cations,
		Bonds:     b.Graph.Bonds(),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bundle: %w", err)
	}
	compressed := snappy.Encode(nil, data)

	var buf bytes.Buffer
	buf.Grow(headerSize + len(compressed) + trailerSize)
	// Writes to a bytes.Buffer cannot fail
	_ = binary.Write(&buf, binary.BigEndian, Magic)
	_ = binary.Write(&buf, binary.BigEndian, Version)
	_ = binary.Write(&buf, binary.BigEndian, uint16(0))
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(compressed)))
	buf.Write(compressed)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(compressed))
	return buf.Bytes(), nil
}

// Decode parses a framed bundle and rebuilds its graph. The ion lists are
// checked against the rebuilt graph.
func Decode(data []byte) (*Bundle, error) {
	if len(data) < headerSize+trailerSize {
		return nil, fmt.Errorf("%d bytes is shorter than a frame: %w", len(data), ErrBadMagic)
	}
	if magic := binary.BigEndian.Uint32(data[0:4]); magic != Magic {
		return nil, fmt.Errorf("magic %08x: %w", magic, ErrBadMagic)
	}
	if v := binary.BigEndian.Uint16(data[4:6]); v != Version {
		return nil, fmt.Errorf("version %d: %w", v, ErrVersion)
	}
	n := int(binary.BigEndian.Uint32(data[8:12]))
	if len(data) != headerSize+n+trailerSize {
		return nil, fmt.Errorf("payload length %d does not match frame of %d bytes: %w", n, len(data), ErrChecksum)
	}

	compressed := data[headerSize : headerSize+n]
	want := binary.BigEndian.Uint32(data[headerSize+n:])
	if got := crc32.ChecksumIEEE(compressed); got != want {
		return nil, fmt.Errorf("crc %08x, stored %08x: %w", got, want, ErrChecksum)
	}

	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress bundle: %w", err)
	}
	var doc payload
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bundle: %w", err)
	}

	g, err := bondgraph.FromBonds(doc.Sites, doc.Bonds)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild bond graph: %w", err)
	}
	b := &Bundle{
		RunID:     doc.RunID,
		Seed:      doc.Seed,
		CreatedAt: doc.CreatedAt,
		Kind:      doc.Kind,
		Cell:      doc.Cell,
		Positions: doc.Positions,
		Anions:    doc.Anions,
		Cations:   doc.Cations,
		Graph:     g,
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}
