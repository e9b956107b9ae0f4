// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package storage

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// ErrChecksumMismatch is returned when a decoded artifact does not match
// the checksum recorded next to it.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// storedObject is the binary artifact format.
type storedObject struct {
	Checksum       string
	CompressedData []byte
}

// Encode gob-encodes v, checksums the raw bytes and compresses them.
// It returns the object bytes and the hex SHA-256 of the raw encoding.
func Encode(v any) ([]byte, string, error) {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(v); err != nil {
		return nil, "", fmt.Errorf("encode artifact: %w", err)
	}
	sum := sha256.Sum256(raw.Bytes())
	checksum := hex.EncodeToString(sum[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return nil, "", fmt.Errorf("compress artifact: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize compression: %w", err)
	}

	var out bytes.Buffer
	if err := gob.NewEncoder(&out).Encode(storedObject{Checksum: checksum, CompressedData: compressed.Bytes()}); err != nil {
		return nil, "", fmt.Errorf("write artifact: %w", err)
	}
	return out.Bytes(), checksum, nil
}

// Decode verifies and decodes an object produced by Encode into target.
func Decode(data []byte, target any) error {
	var so storedObject
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&so); err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}
	gzr, err := gzip.NewReader(bytes.NewReader(so.CompressedData))
	if err != nil {
		return fmt.Errorf("decompress artifact: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return fmt.Errorf("read decompressed data: %w", err)
	}
	sum := sha256.Sum256(raw)
	if got := hex.EncodeToString(sum[:]); got != so.Checksum {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, so.Checksum, got)
	}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(target); err != nil {
		return fmt.Errorf("decode artifact: %w", err)
	}
	return nil
}
