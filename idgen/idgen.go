// Package idgen provides pluggable ID generation for domforge.
//
// Widget nodes take short base-36 ids with a timestamp salt; export records
// take UUIDv7. Both are injected as a Generator so tests can pin them.
package idgen

import (
	"crypto/rand"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NanoID returns a Generator that produces base-36 IDs of the given length.
func NanoID(length int) Generator {
	return func() string {
		buf := make([]byte, length)
		if _, err := rand.Read(buf); err != nil {
			panic("idgen: crypto/rand failed: " + err.Error())
		}
		for i := range buf {
			buf[i] = alphabet[int(buf[i])%len(alphabet)]
		}
		return string(buf)
	}
}

// Salted returns a Generator producing "<base36 millis><random>" ids. The
// timestamp salt keeps ids from different exports apart; the random part
// keeps ids within one export apart.
func Salted(random Generator, now func() time.Time) Generator {
	if now == nil {
		now = time.Now
	}
	return func() string {
		return strconv.FormatInt(now().UnixMilli(), 36) + random()
	}
}

// Widget is the default widget node id strategy.
func Widget() Generator {
	return Salted(NanoID(7), nil)
}

// UUIDv7 returns a Generator that produces RFC 9562 UUID v7 strings.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every ID.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Sequence returns a deterministic Generator ("<prefix>1", "<prefix>2", ...)
// for tests and reproducible exports.
func Sequence(prefix string) Generator {
	var n atomic.Int64
	return func() string {
		return prefix + strconv.FormatInt(n.Add(1), 10)
	}
}

// Default is used for export record ids.
var Default Generator = UUIDv7()

// New produces an ID using the Default generator.
func New() string {
	return Default()
}
