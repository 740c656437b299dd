/*
aggregate.go - Derived counts and sums over record collections

PURPOSE:
  Pure aggregation functions shared by the validators. They operate on
  whatever slice the caller supplies: durable records, in-flight approvals
  from the same batch, or both. That is what makes limit and conflict checks
  correct within a single batch as well as across historical runs - the
  caller extends the snapshot, the aggregators just count.
*/
package engine

import "github.com/shopspring/decimal"

// CountActiveLoans returns the number of loans for a member that are still
// out. A loan counts while no return date is set, regardless of its stored
// status: for the checkout limit an unreturned item is outstanding even when
// the status field disagrees.
func CountActiveLoans(loans []Loan, memberID MemberID) int {
	count := 0
	for _, l := range loans {
		if l.MemberID == memberID && l.ReturnDate.IsZero() {
			count++
		}
	}
	return count
}

// SumOutstandingFines totals the member's fines still marked outstanding.
// Paid and waived fines never count against the checkout threshold.
func SumOutstandingFines(fines []Fine, memberID MemberID) Money {
	total := decimal.Zero
	for _, f := range fines {
		if f.MemberID == memberID && f.Status == FineOutstanding {
			total = total.Add(f.Amount)
		}
	}
	return Cents(total)
}

// RoomDateEvents returns the non-canceled events booked for a room on a date,
// the candidate set for conflict detection.
func RoomDateEvents(events []Event, roomID RoomID, date Date) []Event {
	var result []Event
	for _, e := range events {
		if e.RoomID == roomID && e.Date.Equal(date) && e.Status != EventCanceled {
			result = append(result, e)
		}
	}
	return result
}

// MemberDayReservedMinutes totals the minutes a member already holds in
// non-canceled bookings on a date, across all rooms. Feeds the per-member
// daily reservation cap.
func MemberDayReservedMinutes(events []Event, memberID MemberID, date Date) int {
	total := 0
	for _, e := range events {
		if e.Organizer == memberID && e.Date.Equal(date) && e.Status != EventCanceled {
			total += e.EndTime.Minutes(e.StartTime)
		}
	}
	return total
}
