package utils

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// HashWithDomain computes a domain-separated SHA3-256 hash.
// It prefixes the data with the length of the domain string and the domain string itself.
// Panics if domain is longer than 255 bytes.
func HashWithDomain(domain string, data []byte) []byte {
	domainBytes := []byte(domain)
	if len(domainBytes) > 255 {
		panic("domain string must be at most 255 bytes")
	}
	h := sha3.New256()
	h.Write([]byte{byte(len(domainBytes))})
	h.Write(domainBytes)
	h.Write(data)
	return h.Sum(nil)
}

// EncodeUint64s serialises values as a little-endian count followed by
// each value in 8 little-endian bytes.
func EncodeUint64s(values []uint64) []byte {
	out := make([]byte, 4+8*len(values))
	binary.LittleEndian.PutUint32(out, uint32(len(values)))
	for i, v := range values {
		binary.LittleEndian.PutUint64(out[4+8*i:], v)
	}
	return out
}

// HashUint64s returns the hex SHA3-256 digest of a domain-separated value list.
func HashUint64s(domain string, values []uint64) string {
	return hex.EncodeToString(HashWithDomain(domain, EncodeUint64s(values)))
}
