package hash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
)

type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
	SHA512 Algorithm = "sha512"
)

// Digester computes hex-encoded content digests. Equal digests imply
// identical content for the purposes of exact-match detection.
type Digester interface {
	Calculate(data []byte) (string, error)
	CalculateReader(reader io.Reader) (string, error)
	Algorithm() Algorithm
}

type digester struct {
	algorithm Algorithm
}

func NewDigester(algorithm Algorithm) Digester {
	return &digester{
		algorithm: algorithm,
	}
}

func (d *digester) Calculate(data []byte) (string, error) {
	h, err := d.newHash()
	if err != nil {
		return "", err
	}

	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (d *digester) CalculateReader(reader io.Reader) (string, error) {
	h, err := d.newHash()
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(h, reader); err != nil {
		return "", fmt.Errorf("failed to read data: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func (d *digester) Algorithm() Algorithm {
	return d.algorithm
}

func (d *digester) newHash() (hash.Hash, error) {
	switch d.algorithm {
	case MD5:
		return md5.New(), nil
	case SHA1:
		return sha1.New(), nil
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", d.algorithm)
	}
}
