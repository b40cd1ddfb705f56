package faq

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// NewID returns "<prefix>-<suffix>". The suffix is 14 Crockford base32
// characters: 10 for the millisecond timestamp and 4 for a 20-bit value
// that is random per millisecond and incremented within it, so IDs made
// by one process sort by creation time.
func NewID(prefix string) string {
	return prefix + "-" + idSuffix(time.Now())
}

var (
	idMu     sync.Mutex
	idLastTS uint64
	idSeq    uint32
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

func idSuffix(now time.Time) string {
	idMu.Lock()
	ts := uint64(now.UnixMilli())
	if ts == idLastTS {
		idSeq++
	} else {
		idLastTS = ts
		var b [4]byte
		rand.Read(b[:])
		// 19 random bits leaves room to increment within the millisecond.
		idSeq = binary.BigEndian.Uint32(b[:]) & 0x7FFFF
	}
	low := idSeq & 0xFFFFF
	idMu.Unlock()

	var out [14]byte
	for i := 9; i >= 0; i-- {
		out[i] = crockford[ts&31]
		ts >>= 5
	}
	for i := 13; i >= 10; i-- {
		out[i] = crockford[low&31]
		low >>= 5
	}
	return string(out[:])
}
