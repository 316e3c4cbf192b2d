package organize

import (
	"crypto/md5" //nolint:gosec // MD5 is reported for integrity listings, not trusted
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Checksums holds hex digests of one file.
type Checksums struct {
	MD5    string `json:"md5"`
	SHA256 string `json:"sha256"`
	SHA512 string `json:"sha512"`
}

// ComputeChecksums hashes path with MD5, SHA256 and SHA512 in one pass.
func ComputeChecksums(path string) (*Checksums, error) {
	//nolint:gosec // G304: path comes from the scanned base directory
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	md5h := md5.New() //nolint:gosec // see import
	sha256h := sha256.New()
	sha512h := sha512.New()

	buf := make([]byte, 64*1024)
	if _, err := io.CopyBuffer(io.MultiWriter(md5h, sha256h, sha512h), f, buf); err != nil {
		return nil, fmt.Errorf("hash %s: %w", path, err)
	}

	return &Checksums{
		MD5:    hex.EncodeToString(md5h.Sum(nil)),
		SHA256: hex.EncodeToString(sha256h.Sum(nil)),
		SHA512: hex.EncodeToString(sha512h.Sum(nil)),
	}, nil
}
