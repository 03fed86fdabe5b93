package core_test

import (
	"encoding/base64"
	"math"
	"strconv"
	"testing"

	"trade-ledger/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageToken_RoundTrip(t *testing.T) {
	cases := []struct{ offset, limit int }{
		{0, 1}, {0, 25}, {25, 25}, {100, 500}, {12345, 7},
	}
	for _, c := range cases {
		token := core.EncodePageToken(c.offset, c.limit, true)
		require.NotNil(t, token)
		assert.Equal(t, c.offset+c.limit, core.DecodePageToken(*token))
	}
}

func TestPageToken_EndOfSequence(t *testing.T) {
	assert.Nil(t, core.EncodePageToken(0, 25, false))
	assert.Nil(t, core.EncodePageToken(500, 25, false))
}

func TestPageToken_Encoding(t *testing.T) {
	token := core.EncodePageToken(25, 25, true)
	require.NotNil(t, token)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("50")), *token)
}

func TestDecodePageToken_InvalidYieldsZero(t *testing.T) {
	for _, token := range []string{
		"",
		"   ",
		"not-a-valid-token",
		"%%%",
		base64.StdEncoding.EncodeToString([]byte("abc")),
		base64.StdEncoding.EncodeToString([]byte("-10")),
		base64.StdEncoding.EncodeToString([]byte("1.5")),
	} {
		assert.Equal(t, 0, core.DecodePageToken(token), "token %q", token)
	}
}

func TestDecodePageToken_OutOfRangeYieldsZero(t *testing.T) {
	huge := base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(math.MaxInt - 1)))
	assert.Equal(t, 0, core.DecodePageToken(huge))

	justOver := base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(math.MaxInt32 + 1)))
	assert.Equal(t, 0, core.DecodePageToken(justOver))

	edge := base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(math.MaxInt32)))
	assert.Equal(t, math.MaxInt32, core.DecodePageToken(edge))

	// A capped offset past the end of the data ends paging.
	page := core.NewPage([]int{}, core.DecodePageToken(edge), 500, 10)
	assert.Nil(t, page.NextPageToken)
}

func TestLimitRange_Clamp(t *testing.T) {
	r := core.LimitRange{Default: 25, Min: 1, Max: 500}
	assert.Equal(t, 25, r.Clamp(0))
	assert.Equal(t, 1, r.Clamp(-3))
	assert.Equal(t, 500, r.Clamp(10000))
	assert.Equal(t, 42, r.Clamp(42))

	assert.Equal(t, 100, core.ClientLimits.Clamp(1000))
	assert.Equal(t, 100, core.FinanceLimits.Clamp(0))
	assert.Equal(t, 50, core.SettingsHistoryLimit.Clamp(51))
}

func TestNewPage(t *testing.T) {
	t.Run("more rows remain", func(t *testing.T) {
		page := core.NewPage([]int{1, 2}, 0, 2, 5)
		require.NotNil(t, page.NextPageToken)
		assert.Equal(t, 2, core.DecodePageToken(*page.NextPageToken))
		assert.Equal(t, 5, page.Total)
	})

	t.Run("last page", func(t *testing.T) {
		page := core.NewPage([]int{5}, 4, 2, 5)
		assert.Nil(t, page.NextPageToken)
	})

	t.Run("exact boundary", func(t *testing.T) {
		page := core.NewPage([]int{3, 4}, 2, 2, 4)
		assert.Nil(t, page.NextPageToken)
	})

	t.Run("nil items become empty", func(t *testing.T) {
		page := core.NewPage[int](nil, 0, 25, 0)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
	})
}
