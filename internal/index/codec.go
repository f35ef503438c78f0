package index

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// File layout: 4-byte magic, then version, dimension and vector count
// as little-endian uint32, then count*dimension float32 values in
// position order. Everything round-trips exactly.
const (
	fileMagic   = "EVIX"
	fileVersion = 1
	headerSize  = 16
)

// Save serializes the index to path. The file is written to a
// temporary sibling first and renamed into place, so a crash mid-write
// never leaves a truncated index behind.
func (f *Flat) Save(path string) error {
	blob := make([]byte, headerSize+len(f.vectors)*f.dim*4)
	copy(blob[0:4], fileMagic)
	binary.LittleEndian.PutUint32(blob[4:8], fileVersion)
	binary.LittleEndian.PutUint32(blob[8:12], uint32(f.dim))
	binary.LittleEndian.PutUint32(blob[12:16], uint32(len(f.vectors)))

	off := headerSize
	for _, vec := range f.vectors {
		for _, v := range vec {
			binary.LittleEndian.PutUint32(blob[off:off+4], math.Float32bits(v))
			off += 4
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace index file: %w", err)
	}

	return nil
}

// Load reads an index previously written by Save
func Load(path string) (*Flat, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}

	if len(blob) < headerSize {
		return nil, fmt.Errorf("index file too short: %d bytes", len(blob))
	}
	if string(blob[0:4]) != fileMagic {
		return nil, fmt.Errorf("not an index file: bad magic")
	}
	if v := binary.LittleEndian.Uint32(blob[4:8]); v != fileVersion {
		return nil, fmt.Errorf("unsupported index file version: %d", v)
	}

	dim := int(binary.LittleEndian.Uint32(blob[8:12]))
	count := int(binary.LittleEndian.Uint32(blob[12:16]))
	if dim <= 0 || count <= 0 {
		return nil, fmt.Errorf("invalid index header: dimension %d, count %d", dim, count)
	}
	if want := headerSize + count*dim*4; len(blob) != want {
		return nil, fmt.Errorf("index file size mismatch: expected %d bytes, got %d", want, len(blob))
	}

	vectors := make([][]float32, count)
	off := headerSize
	for i := range vectors {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(blob[off : off+4]))
			off += 4
		}
		vectors[i] = vec
	}

	return &Flat{dim: dim, vectors: vectors}, nil
}
