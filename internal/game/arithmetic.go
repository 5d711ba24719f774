package game

import (
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"

	"spellblock/internal/types"
)

func addUint64Checked(a uint64, b uint64, field string) (uint64, error) {
	if a > ^uint64(0)-b {
		return 0, fmt.Errorf("%s overflows uint64", field)
	}
	return a + b, nil
}

func addInt64AndU64Checked(a int64, b uint64, field string) (int64, error) {
	if b > uint64(math.MaxInt64) {
		return 0, fmt.Errorf("%s overflows int64", field)
	}
	bi := int64(b)
	if a > math.MaxInt64-bi {
		return 0, fmt.Errorf("%s overflows int64", field)
	}
	return a + bi, nil
}

// bpsOf is floor(amount * bps / 10000).
func bpsOf(amount sdkmath.Int, bps uint32) sdkmath.Int {
	if amount.IsZero() || bps == 0 {
		return sdkmath.ZeroInt()
	}
	return amount.MulRaw(int64(bps)).QuoRaw(int64(types.MaxBps))
}
