package rewards_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roastery/loyaltybot/loyalty"
	"github.com/roastery/loyaltybot/rewards"
)

// =============================================================================
// REDEMPTION POLICY TESTS
// =============================================================================

func TestRedemptionPolicy_Validate(t *testing.T) {
	p := rewards.DefaultRedemption

	assert.NoError(t, p.Validate(1))
	assert.NoError(t, p.Validate(30))

	for _, amount := range []int64{0, -1, 31, 100} {
		err := p.Validate(amount)
		assert.ErrorIs(t, err, loyalty.ErrAmountOutOfRange, "amount=%d", amount)

		var rangeErr *loyalty.AmountRangeError
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, amount, rangeErr.Amount)
		assert.Equal(t, int64(1), rangeErr.Min)
		assert.Equal(t, int64(30), rangeErr.Max)
	}
}

// =============================================================================
// EARN POLICY TESTS
// =============================================================================

func TestEarnPolicy_PointsForPurchase(t *testing.T) {
	p := rewards.NewEarnPolicy("0.1")

	cases := []struct {
		total string
		want  int64
	}{
		{"100", 10},
		{"125.50", 12}, // 12.55 floors to 12
		{"9.99", 0},
		{"0", 0},
		{"-50", 0}, // negative totals earn nothing
	}

	for _, tc := range cases {
		total := decimal.RequireFromString(tc.total)
		assert.Equal(t, tc.want, p.PointsForPurchase(total), "total=%s", tc.total)
	}
}

func TestEarnPolicy_BadRate_EarnsNothing(t *testing.T) {
	for _, rate := range []string{"", "garbage", "-0.5"} {
		p := rewards.NewEarnPolicy(rate)
		assert.Equal(t, int64(0), p.PointsForPurchase(decimal.NewFromInt(1000)), "rate=%q", rate)
	}
}
