package reconcile

import (
	"fmt"
	"math"
	"math/rand"
)

// ShortIDForCount maps an order count to a compact human-facing id of the
// form <letter><4 digits>. Counts 0..9999 land in a0000..a9999, the next
// ten thousand in b, and so on, wrapping after z.
func ShortIDForCount(count int64) string {
	letter := byte('a' + (count/10000)%26)
	return fmt.Sprintf("%c%04d", letter, count%10000)
}

// FallbackShortID returns a randomized id under the sentinel prefix "x",
// used when the order count cannot be read. Order creation stays available
// at the cost of identifier density.
func FallbackShortID() string {
	return fmt.Sprintf("x%04d", rand.Intn(10000))
}

// ExpectedTotalMinor computes the charge for a package price in GHS with
// the processing fee applied, in minor units (pesewas), rounded half-up to
// match the gateway's integer representation.
func ExpectedTotalMinor(priceGHS, feeRate float64) int64 {
	return int64(math.Floor(priceGHS*(1+feeRate)*100 + 0.5))
}
