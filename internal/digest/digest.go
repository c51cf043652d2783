// Package digest computes content digests used for document change detection.
package digest

import "github.com/minio/highwayhash"

// hashKey is the fixed HighwayHash key. Digests never leave the process and
// are compared for equality only, so the key is not secret. Must be 32 bytes.
var hashKey = []byte("phpstan-vscode-content-hash-key!")

// Digest is a 64-bit content digest. Two equal digests mean the content is
// considered unchanged since the digest was captured.
type Digest uint64

// Sum computes the digest of the given content.
func Sum(content []byte) Digest {
	return Digest(highwayhash.Sum64(content, hashKey))
}

// SumString computes the digest of the given string content.
func SumString(content string) Digest {
	return Sum([]byte(content))
}
