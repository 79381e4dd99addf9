package project

import (
	"crypto/sha256"
	"encoding/binary"

	"vic/internal/dialect"
	"vic/internal/format"
)

// Digest - фиксированный 256 битный хеш (совместим с source.File.Hash)
type Digest [32]byte

// Combine строит хеш: H( content || part1 || part2 ... ).
// Порядок parts должен быть детерминированным.
func Combine(content Digest, parts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// SettingsDigest hashes everything besides content that affects formatter
// output, so a cached "already formatted" verdict is reused only for
// identical settings.
func SettingsDigest(k dialect.Kind, opt format.Options) Digest {
	var buf [10]byte
	buf[0] = byte(k)
	if opt.InsertSpaces {
		buf[1] = 1
		// tab size only matters with spaces
		binary.LittleEndian.PutUint64(buf[2:], uint64(int64(opt.TabSize))) // #nosec G115 -- bit pattern only
	}
	return sha256.Sum256(buf[:])
}
