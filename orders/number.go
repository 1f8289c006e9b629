package orders

import (
	"math/rand"
	"strings"
	"time"
)

const numberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewOrderNumber generates a display identifier of the form
// ORD-YYYYMMDD-XXXXXX with six characters drawn from [A-Z0-9].
// Uniqueness is not guaranteed by construction; at expected volumes
// the collision probability is negligible and order records are keyed
// by customer, not by number.
func NewOrderNumber(t time.Time) string {
	var b strings.Builder
	b.WriteString("ORD-")
	b.WriteString(t.Format("20060102"))
	b.WriteByte('-')
	for i := 0; i < 6; i++ {
		b.WriteByte(numberAlphabet[rand.Intn(len(numberAlphabet))])
	}
	return b.String()
}
