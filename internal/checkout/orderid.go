package checkout

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
)

const defaultOrderPrefix = "GA"

// IDGenerator draws order ids shaped PREFIX-YYYYMMDD-XXXX. The suffix is four
// random uppercase hex characters; ids are not checked for uniqueness.
type IDGenerator struct {
	prefix string
	now    func() time.Time
	random io.Reader
}

func NewIDGenerator(prefix string) *IDGenerator {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultOrderPrefix
	}
	return &IDGenerator{prefix: prefix, now: time.Now, random: rand.Reader}
}

// Next returns a new order id stamped with the current date.
func (g *IDGenerator) Next() (string, error) {
	return g.At(g.now())
}

// At returns a new order id stamped with the date of t.
func (g *IDGenerator) At(t time.Time) (string, error) {
	var buf [2]byte
	if _, err := io.ReadFull(g.random, buf[:]); err != nil {
		return "", fmt.Errorf("order id suffix: %w", err)
	}
	suffix := strings.ToUpper(hex.EncodeToString(buf[:]))
	return fmt.Sprintf("%s-%s-%s", g.prefix, t.Format("20060102"), suffix), nil
}
