package assert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAssertions(t *testing.T) {
	require.PanicsWithValue(t, "expected tel to be not nil", func() { NotNil(nil, "tel") })
	require.NotPanics(t, func() { NotNil(struct{}{}, "tel") })

	require.PanicsWithValue(t, "expected base url to be non-empty", func() { NotEmptyStr("", "base url") })
	require.NotPanics(t, func() { NotEmptyStr("https://core-pool.com", "base url") })

	require.Panics(t, func() { Positive(time.Duration(0), "delay") })
	require.NotPanics(t, func() { Positive(5*time.Second, "delay") })
}
