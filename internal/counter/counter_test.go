package counter

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIncrementAddsOnePerCall(t *testing.T) {
	c := New(big.NewInt(41))
	for i := 0; i < 9; i++ {
		c.Increment()
	}
	require.Equal(t, "50", c.String())
}

func TestIncrementReturnsIndependentCopy(t *testing.T) {
	c := New(nil)
	first := c.Increment()
	c.Increment()
	require.Equal(t, int64(1), first.Int64())
	require.Equal(t, "2", c.String())
}

func TestCounterGrowsPastUint64(t *testing.T) {
	start, ok := new(big.Int).SetString("18446744073709551615", 10)
	require.True(t, ok)

	c := New(start)
	got := c.Increment()
	require.Equal(t, "18446744073709551616", got.String())
}

func TestNegativeInitialClampsToZero(t *testing.T) {
	require.Equal(t, "0", New(big.NewInt(-3)).String())
}

func TestParse(t *testing.T) {
	v, err := Parse(" 1180591620717411303427 ")
	require.NoError(t, err)
	want := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 70), big.NewInt(3))
	require.Equal(t, 0, v.Cmp(want))

	for _, bad := range []string{"", "abc", "-1", "1.5"} {
		_, err := Parse(bad)
		require.Error(t, err, bad)
	}
}

func TestFormatNil(t *testing.T) {
	require.Equal(t, "0", Format(nil))
}
