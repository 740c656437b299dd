/*
Package factory provides JSON to Go policy conversion.

PURPOSE:
  Converts JSON policy definitions into an engine.PolicyTable. This enables
  policy configuration without code changes - library administrators can
  adjust limits, fines, hours, and fees in JSON, and the factory produces
  the table the validators run against.

WHY JSON?
  - Non-developers can modify policies
  - Easy integration with an admin UI
  - Version control for policy documents
  - Database storage of policy configs

JSON SCHEMA:
  {
    "item_limits": {"Standard": 5, "Premium": 10, "Student": 5, "Child": 3},
    "membership_aliases": {"Adult": "Standard"},
    "checkout_periods": {"Book": 21, "DVD": 7, "Device": 14},
    "default_period_days": 14,
    "fine_per_day": "0.25",
    "fine_cap": "10.00",
    "fine_threshold": "10.00",
    "loss_threshold_days": 30,
    "lost_processing_fee": "5.00",
    "advance_notice_days": 3,
    "operating_hours": {
      "Monday": {"open": "09:00", "close": "20:00"},
      "Sunday": {"open": "13:00", "close": "17:00"}
    },
    "holidays": ["2025-12-25"],
    "late_cancellation_fee": "25.00",
    "cancellation_cutoff_hours": 24,
    "reservation_daily_cap_hours": 3,
    "reservation_horizon_days": 30,
    "membership_term_months": 12
  }

KEY FEATURES:
  - Omitted fields keep the default table's values
  - Monetary amounts are decimal strings, never floats
  - Validates hour windows and date formats

USAGE:
  factory := NewPolicyFactory()
  table, err := factory.ParsePolicy(jsonStr)
  circ := &engine.CirculationEngine{Policy: table}

SEE ALSO:
  - engine/policy.go: PolicyTable definition and defaults
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/readwell/library-engine/engine"
	"github.com/shopspring/decimal"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PolicyJSON is the JSON representation of a policy table. Every field is
// optional; omitted fields fall back to engine.DefaultPolicyTable.
type PolicyJSON struct {
	ItemLimits        map[string]int `json:"item_limits,omitempty"`
	MembershipAliases map[string]string `json:"membership_aliases,omitempty"`
	DefaultItemLimit  *int           `json:"default_item_limit,omitempty"`
	CheckoutPeriods   map[string]int `json:"checkout_periods,omitempty"`
	DefaultPeriodDays *int           `json:"default_period_days,omitempty"`
	FinePerDay        string         `json:"fine_per_day,omitempty"`
	FineCap           string         `json:"fine_cap,omitempty"`
	FineThreshold     string         `json:"fine_threshold,omitempty"`
	LossThresholdDays *int           `json:"loss_threshold_days,omitempty"`
	LostProcessingFee string         `json:"lost_processing_fee,omitempty"`

	AdvanceNoticeDays        *int                  `json:"advance_notice_days,omitempty"`
	OperatingHours           map[string]HoursJSON  `json:"operating_hours,omitempty"`
	Holidays                 []string              `json:"holidays,omitempty"`
	LateCancellationFee      string                `json:"late_cancellation_fee,omitempty"`
	CancellationCutoffHours  *int                  `json:"cancellation_cutoff_hours,omitempty"`
	ReservationDailyCapHours *int                  `json:"reservation_daily_cap_hours,omitempty"`
	ReservationHorizonDays   *int                  `json:"reservation_horizon_days,omitempty"`

	MembershipTermMonths *int `json:"membership_term_months,omitempty"`
}

// HoursJSON is one weekday's operating window. Closed marks the whole day
// unavailable regardless of the window.
type HoursJSON struct {
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed,omitempty"`
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts JSON policy documents to engine.PolicyTable.
type PolicyFactory struct{}

// NewPolicyFactory creates a new policy factory.
func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// ParsePolicy parses a JSON string into a PolicyTable, layering the document
// over the default table.
func (f *PolicyFactory) ParsePolicy(jsonStr string) (engine.PolicyTable, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return engine.PolicyTable{}, fmt.Errorf("failed to parse policy JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts PolicyJSON to a PolicyTable.
func (f *PolicyFactory) FromJSON(pj PolicyJSON) (engine.PolicyTable, error) {
	table := engine.DefaultPolicyTable()

	if pj.ItemLimits != nil {
		table.ItemLimits = make(map[engine.MembershipType]int, len(pj.ItemLimits))
		for k, v := range pj.ItemLimits {
			if v < 0 {
				return engine.PolicyTable{}, fmt.Errorf("item limit for %s is negative", k)
			}
			table.ItemLimits[engine.MembershipType(k)] = v
		}
	}
	if pj.MembershipAliases != nil {
		table.MembershipAliases = make(map[engine.MembershipType]engine.MembershipType, len(pj.MembershipAliases))
		for k, v := range pj.MembershipAliases {
			table.MembershipAliases[engine.MembershipType(k)] = engine.MembershipType(v)
		}
	}
	if pj.DefaultItemLimit != nil {
		table.DefaultItemLimit = *pj.DefaultItemLimit
	}
	if pj.CheckoutPeriods != nil {
		table.CheckoutPeriods = make(map[engine.ItemType]int, len(pj.CheckoutPeriods))
		for k, v := range pj.CheckoutPeriods {
			if v <= 0 {
				return engine.PolicyTable{}, fmt.Errorf("checkout period for %s must be positive", k)
			}
			table.CheckoutPeriods[engine.ItemType(k)] = v
		}
	}
	if pj.DefaultPeriodDays != nil {
		table.DefaultPeriodDays = *pj.DefaultPeriodDays
	}

	var err error
	if table.FinePerDay, err = parseAmount(pj.FinePerDay, table.FinePerDay); err != nil {
		return engine.PolicyTable{}, fmt.Errorf("fine_per_day: %w", err)
	}
	if table.FineCap, err = parseAmount(pj.FineCap, table.FineCap); err != nil {
		return engine.PolicyTable{}, fmt.Errorf("fine_cap: %w", err)
	}
	if table.FineThreshold, err = parseAmount(pj.FineThreshold, table.FineThreshold); err != nil {
		return engine.PolicyTable{}, fmt.Errorf("fine_threshold: %w", err)
	}
	if table.LostProcessingFee, err = parseAmount(pj.LostProcessingFee, table.LostProcessingFee); err != nil {
		return engine.PolicyTable{}, fmt.Errorf("lost_processing_fee: %w", err)
	}
	if table.LateCancellationFee, err = parseAmount(pj.LateCancellationFee, table.LateCancellationFee); err != nil {
		return engine.PolicyTable{}, fmt.Errorf("late_cancellation_fee: %w", err)
	}

	if pj.LossThresholdDays != nil {
		table.LossThresholdDays = *pj.LossThresholdDays
	}
	if pj.AdvanceNoticeDays != nil {
		table.AdvanceNoticeDays = *pj.AdvanceNoticeDays
	}
	if pj.CancellationCutoffHours != nil {
		table.CancellationCutoff = time.Duration(*pj.CancellationCutoffHours) * time.Hour
	}
	if pj.ReservationDailyCapHours != nil {
		table.ReservationDailyCap = time.Duration(*pj.ReservationDailyCapHours) * time.Hour
	}
	if pj.ReservationHorizonDays != nil {
		table.ReservationHorizonDays = *pj.ReservationHorizonDays
	}
	if pj.MembershipTermMonths != nil {
		if *pj.MembershipTermMonths <= 0 {
			return engine.PolicyTable{}, fmt.Errorf("membership_term_months must be positive")
		}
		table.MembershipTermMonths = *pj.MembershipTermMonths
	}

	if pj.OperatingHours != nil {
		hours, err := parseOperatingHours(pj.OperatingHours)
		if err != nil {
			return engine.PolicyTable{}, err
		}
		// Override per weekday; unlisted weekdays keep the default window
		for day, window := range hours {
			table.OperatingHours[day] = window
		}
	}

	if pj.Holidays != nil {
		table.Holidays = make([]engine.Date, 0, len(pj.Holidays))
		for _, s := range pj.Holidays {
			d, err := engine.ParseDate(s)
			if err != nil {
				return engine.PolicyTable{}, fmt.Errorf("holiday %q: %w", s, err)
			}
			table.Holidays = append(table.Holidays, d)
		}
	}

	return table, nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

var weekdayNames = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

func parseOperatingHours(hours map[string]HoursJSON) (map[time.Weekday]engine.HoursWindow, error) {
	result := make(map[time.Weekday]engine.HoursWindow, len(hours))
	for name, hj := range hours {
		day, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		if hj.Closed {
			result[day] = engine.HoursWindow{Closed: true}
			continue
		}
		open, err := engine.ParseClockTime(hj.Open)
		if err != nil {
			return nil, fmt.Errorf("%s open: %w", name, err)
		}
		clos, err := engine.ParseClockTime(hj.Close)
		if err != nil {
			return nil, fmt.Errorf("%s close: %w", name, err)
		}
		if open >= clos {
			return nil, fmt.Errorf("%s: open %s not before close %s", name, open, clos)
		}
		result[day] = engine.HoursWindow{Open: open, Close: clos}
	}
	return result, nil
}

func parseAmount(s string, fallback engine.Money) (engine.Money, error) {
	if s == "" {
		return fallback, nil
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return engine.Money{}, err
	}
	if amount.IsNegative() {
		return engine.Money{}, fmt.Errorf("amount %s is negative", s)
	}
	return amount, nil
}
