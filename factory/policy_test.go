package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readwell/library-engine/engine"
)

func TestParsePolicy_EmptyDocumentKeepsDefaults(t *testing.T) {
	table, err := NewPolicyFactory().ParsePolicy(`{}`)
	require.NoError(t, err)

	def := engine.DefaultPolicyTable()
	assert.Equal(t, def.ItemLimits, table.ItemLimits)
	assert.True(t, table.FineThreshold.Equal(def.FineThreshold))
	assert.Equal(t, def.AdvanceNoticeDays, table.AdvanceNoticeDays)
	assert.Equal(t, def.MembershipTermMonths, table.MembershipTermMonths)
}

func TestParsePolicy_Overrides(t *testing.T) {
	jsonStr := `{
		"item_limits": {"Standard": 8},
		"checkout_periods": {"Book": 28},
		"fine_per_day": "0.50",
		"fine_threshold": "15.00",
		"advance_notice_days": 5,
		"cancellation_cutoff_hours": 48,
		"membership_term_months": 6,
		"holidays": ["2025-12-25", "2026-01-01"]
	}`

	table, err := NewPolicyFactory().ParsePolicy(jsonStr)
	require.NoError(t, err)

	assert.Equal(t, 8, table.ItemLimit(engine.MembershipStandard))
	assert.Equal(t, 28, table.CheckoutPeriod(engine.ItemBook))
	assert.True(t, table.FinePerDay.Equal(engine.Dollars(0.50)))
	assert.True(t, table.FineThreshold.Equal(engine.Dollars(15.00)))
	assert.Equal(t, 5, table.AdvanceNoticeDays)
	assert.Equal(t, 48*time.Hour, table.CancellationCutoff)
	assert.Equal(t, 6, table.MembershipTermMonths)
	require.Len(t, table.Holidays, 2)
	assert.True(t, table.HoursFor(engine.NewDate(2025, time.December, 25)).Closed)
}

func TestParsePolicy_ExplicitLimitsReplaceTheWholeMap(t *testing.T) {
	// A document listing only Standard drops the other defaults; unknown
	// types then fall through to default_item_limit.
	table, err := NewPolicyFactory().ParsePolicy(`{"item_limits": {"Standard": 8}, "default_item_limit": 2}`)
	require.NoError(t, err)

	assert.Equal(t, 8, table.ItemLimit(engine.MembershipStandard))
	assert.Equal(t, 2, table.ItemLimit(engine.MembershipPremium))
}

func TestParsePolicy_OperatingHours(t *testing.T) {
	jsonStr := `{
		"operating_hours": {
			"Monday": {"open": "10:00", "close": "19:00"},
			"Sunday": {"closed": true}
		}
	}`

	table, err := NewPolicyFactory().ParsePolicy(jsonStr)
	require.NoError(t, err)

	mon := table.OperatingHours[time.Monday]
	assert.Equal(t, engine.NewClockTime(10, 0), mon.Open)
	assert.Equal(t, engine.NewClockTime(19, 0), mon.Close)
	assert.True(t, table.OperatingHours[time.Sunday].Closed)

	// Unlisted weekdays keep their default windows
	fri := table.OperatingHours[time.Friday]
	assert.Equal(t, engine.NewClockTime(9, 0), fri.Open)
	assert.Equal(t, engine.NewClockTime(18, 0), fri.Close)
}

func TestParsePolicy_Invalid(t *testing.T) {
	f := NewPolicyFactory()
	cases := []struct {
		name    string
		jsonStr string
	}{
		{"malformed json", `{`},
		{"negative limit", `{"item_limits": {"Standard": -1}}`},
		{"zero period", `{"checkout_periods": {"Book": 0}}`},
		{"bad amount", `{"fine_per_day": "a quarter"}`},
		{"negative amount", `{"fine_cap": "-10"}`},
		{"unknown weekday", `{"operating_hours": {"Funday": {"open": "09:00", "close": "17:00"}}}`},
		{"reversed window", `{"operating_hours": {"Monday": {"open": "17:00", "close": "09:00"}}}`},
		{"bad holiday", `{"holidays": ["12/25/2025"]}`},
		{"zero term", `{"membership_term_months": 0}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ParsePolicy(tc.jsonStr)
			assert.Error(t, err)
		})
	}
}
