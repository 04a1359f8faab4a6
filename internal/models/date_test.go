package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-12")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-12", d.String())
	assert.True(t, d.Equal(NewDate(2024, time.January, 12)))

	_, err = ParseDate("12/01/2024")
	assert.Error(t, err)
}

func TestParseTargetDate_Today(t *testing.T) {
	now := time.Date(2024, time.March, 5, 23, 59, 0, 0, time.UTC)

	for _, input := range []string{"today", "TODAY", " Today "} {
		d, err := ParseTargetDate(input, now)
		require.NoError(t, err, input)
		assert.Equal(t, "2024-03-05", d.String())
	}
}

func TestDate_ComparesChronologically(t *testing.T) {
	a := NewDate(2023, time.December, 31)
	b := NewDate(2024, time.January, 1)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 0, a.Compare(NewDate(2023, time.December, 31)))
	assert.Equal(t, b, a.AddDays(1))
}

func TestDate_TextRoundTrip(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalText([]byte("2024-02-29")))
	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", string(text))

	require.NoError(t, d.UnmarshalText([]byte("")))
	assert.True(t, d.IsZero())
	assert.Equal(t, "", d.String())
}

func TestParseExchange(t *testing.T) {
	e, ok := ParseExchange(" NASDAQ ")
	assert.True(t, ok)
	assert.Equal(t, ExchangeNASDAQ, e)

	_, ok = ParseExchange("nasdaq")
	assert.False(t, ok)
	_, ok = ParseExchange("LSE")
	assert.False(t, ok)
}
