package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayFirstReadsAmbiguousDatesAsDayMonth(t *testing.T) {
	p := New(DayFirst)

	got, ok := p.Parse("01/02/2024")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestMonthFirstReadsAmbiguousDatesAsMonthDay(t *testing.T) {
	p := New(MonthFirst)

	got, ok := p.Parse("01/02/2024")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), got)
}

func TestNoFallbackAcrossOrders(t *testing.T) {
	// 13 can only be a day, but a month-first parser must not silently
	// retry day-first.
	_, ok := New(MonthFirst).Parse("13/01/2024")
	assert.False(t, ok)

	got, ok := New(DayFirst).Parse("13/01/2024")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.January, 13, 0, 0, 0, 0, time.UTC), got)
}

func TestISOAcceptedUnderEitherOrder(t *testing.T) {
	want := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

	for _, order := range []Order{DayFirst, MonthFirst} {
		got, ok := New(order).Parse("2024-02-01")
		require.True(t, ok, "order %s", order)
		assert.Equal(t, want, got)
	}
}

func TestTimeComponentIsIgnored(t *testing.T) {
	got, ok := New(DayFirst).Parse("2024-02-01 14:33:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestUnparseableValues(t *testing.T) {
	p := New(DayFirst)

	for _, s := range []string{"", "   ", "not-a-date", "32/01/2024", "2024"} {
		_, ok := p.Parse(s)
		assert.False(t, ok, "expected %q to be unparseable", s)
	}
}

func TestParseOrderDefaultsToDayFirst(t *testing.T) {
	assert.Equal(t, DayFirst, ParseOrder(""))
	assert.Equal(t, DayFirst, ParseOrder("nonsense"))
	assert.Equal(t, MonthFirst, ParseOrder("month-first"))
	assert.Equal(t, MonthFirst, ParseOrder(" Month-First "))
}
