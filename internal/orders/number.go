package orders

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// FormatOrderNumber renders "ORD" + YYMMDD + a zero-padded four digit suffix.
func FormatOrderNumber(t time.Time, suffix int) string {
	return fmt.Sprintf("ORD%s%04d", t.Format("060102"), suffix%10000)
}

// RandomOrderNumber draws the suffix uniformly from [0, 9999]. Collisions
// surface as unique-index violations on insert.
func RandomOrderNumber(t time.Time) string {
	return FormatOrderNumber(t, rand.IntN(10000))
}
