// codec.go turns change payloads into the blobs kept in the commits table.
//
// A payload is compressed with zstd and fingerprinted with BLAKE3. The
// checksum covers the compressed bytes, so a corrupted row is caught before
// the decoder ever sees it.
package store

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"lukechampine.com/blake3"
)

// ErrChecksumMismatch is returned when a stored blob no longer matches the
// checksum recorded next to it.
var ErrChecksumMismatch = errors.New("store: payload checksum mismatch")

// checksum returns the hex BLAKE3-256 digest of blob.
func checksum(blob []byte) string {
	sum := blake3.Sum256(blob)
	return hex.EncodeToString(sum[:])
}

// encodePayload compresses payload and returns the blob and its checksum.
func encodePayload(payload []byte) ([]byte, string, error) {
	var compressed bytes.Buffer
	encoder, err := zstd.NewWriter(&compressed)
	if err != nil {
		return nil, "", fmt.Errorf("creating zstd encoder: %w", err)
	}
	if _, err := encoder.Write(payload); err != nil {
		encoder.Close()
		return nil, "", fmt.Errorf("compressing: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, "", fmt.Errorf("closing encoder: %w", err)
	}
	blob := compressed.Bytes()
	return blob, checksum(blob), nil
}

// decodePayload verifies blob against sum and decompresses it.
func decodePayload(blob []byte, sum string) ([]byte, error) {
	if checksum(blob) != sum {
		return nil, ErrChecksumMismatch
	}
	decoder, err := zstd.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer decoder.Close()
	payload, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("decompressing: %w", err)
	}
	return payload, nil
}
