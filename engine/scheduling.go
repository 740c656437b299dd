/*
scheduling.go - Event and room-reservation booking decisions

PURPOSE:
  Decides booking requests by evaluating independent checks and reporting
  the first failure in a fixed order, so multi-violation inputs reproduce
  the same rejection every time:

    0. Organizer, when known, is not suspended                -> InactiveMember
    1. Advance notice (>= 3 whole days; exactly 3 is allowed) -> InsufficientNotice
    2. start < end                                            -> InvalidTimeRange
    3. Within the weekday's operating window; holidays closed -> OutsideOperatingHours
    4. Room exists and attendance <= capacity (== allowed)    -> RoomNotFound / CapacityExceeded
    5. No half-open interval overlap with an existing booking -> RoomConflict

  Room reservations run the same checks plus two of their own:

    6. Member's reserved time that day, including this request, <= 3h -> DurationExceeded
    7. Event date <= 30 days ahead of the booking date                -> BookingTooFarAhead

  Overlap is half-open: newStart < existingEnd && newEnd > existingStart.
  Back-to-back bookings where one ends exactly when the other starts never
  conflict, and conflict is symmetric in the two events.

CANCELLATION:
  Free when decided 24h or more before the event starts. Later cancellations
  are rejected unless the caller supplies an explicit override, in which case
  the late-cancellation fee is assessed and the cancellation proceeds.
*/
package engine

import "time"

// =============================================================================
// REQUESTS
// =============================================================================

// BookingRequest is a candidate event or room reservation. A zero BookingDate
// means the request is being made today as supplied to the validator.
type BookingRequest struct {
	Name               string
	RoomID             RoomID
	Date               Date
	StartTime          ClockTime
	EndTime            ClockTime
	Organizer          MemberID
	ExpectedAttendance int
	BookingDate        Date
}

// CancellationRequest asks to cancel an event. Override acknowledges the
// late-cancellation fee when inside the cutoff.
type CancellationRequest struct {
	EventID  EventID
	Now      time.Time
	Override bool
}

// =============================================================================
// SCHEDULING ENGINE
// =============================================================================

// SchedulingEngine validates bookings and cancellations against an injected
// policy table. It holds no mutable state.
type SchedulingEngine struct {
	Policy PolicyTable
}

// ScheduleEvent decides an event booking request.
func (s *SchedulingEngine) ScheduleEvent(snap *Snapshot, req BookingRequest, today Date) (BookingDecision, error) {
	return s.schedule(snap, req, today, false)
}

// ReserveRoom decides a room-reservation request: the event checks plus the
// per-member daily duration cap and the advance-booking horizon.
func (s *SchedulingEngine) ReserveRoom(snap *Snapshot, req BookingRequest, today Date) (BookingDecision, error) {
	return s.schedule(snap, req, today, true)
}

func (s *SchedulingEngine) schedule(snap *Snapshot, req BookingRequest, today Date, reservation bool) (BookingDecision, error) {
	if req.RoomID == "" {
		return BookingDecision{}, missingField("room_id")
	}
	if req.Date.IsZero() {
		return BookingDecision{}, missingField("date")
	}

	bookingDate := req.BookingDate
	if bookingDate.IsZero() {
		bookingDate = today
	}

	// 0. Suspended organizers cannot book. Unknown organizers are allowed:
	// events may be organized by staff who are not members.
	if req.Organizer != "" {
		if organizer, found := snap.MemberByID(req.Organizer); found && organizer.Status == MemberSuspended {
			return rejectedBooking(reject(ReasonInactiveMember, "organizer %s is suspended", organizer.ID)), nil
		}
	}

	// 1. Advance notice
	notice := DaysBetween(bookingDate, req.Date)
	if notice < s.Policy.AdvanceNoticeDays {
		return rejectedBooking(reject(ReasonInsufficientNotice, "%d days notice, %d required", notice, s.Policy.AdvanceNoticeDays)), nil
	}

	// 2. Time range sanity
	if req.StartTime >= req.EndTime {
		return rejectedBooking(reject(ReasonInvalidTimeRange, "start %s not before end %s", req.StartTime, req.EndTime)), nil
	}

	// 3. Operating hours for the event weekday; closed days reject everything
	window := s.Policy.HoursFor(req.Date)
	if window.Closed {
		return rejectedBooking(reject(ReasonOutsideOperatingHours, "closed on %s", req.Date)), nil
	}
	if req.StartTime < window.Open || req.EndTime > window.Close {
		return rejectedBooking(reject(ReasonOutsideOperatingHours, "%s-%s outside %s-%s", req.StartTime, req.EndTime, window.Open, window.Close)), nil
	}

	// 4. Capacity
	room, ok := snap.RoomByID(req.RoomID)
	if !ok {
		return rejectedBooking(reject(ReasonRoomNotFound, "room %s", req.RoomID)), nil
	}
	if req.ExpectedAttendance > room.Capacity {
		return rejectedBooking(reject(ReasonCapacityExceeded, "attendance %d exceeds capacity %d", req.ExpectedAttendance, room.Capacity)), nil
	}

	// 5. Conflict with existing non-canceled bookings
	for _, existing := range RoomDateEvents(snap.Events, req.RoomID, req.Date) {
		if Overlaps(req.StartTime, req.EndTime, existing.StartTime, existing.EndTime) {
			r := reject(ReasonRoomConflict, "overlaps event %s (%s-%s)", existing.ID, existing.StartTime, existing.EndTime)
			r.ConflictingEventID = existing.ID
			return rejectedBooking(r), nil
		}
	}

	if reservation {
		// 6. Per-member daily duration cap
		capMinutes := int(s.Policy.ReservationDailyCap.Minutes())
		held := MemberDayReservedMinutes(snap.Events, req.Organizer, req.Date)
		requested := req.EndTime.Minutes(req.StartTime)
		if held+requested > capMinutes {
			return rejectedBooking(reject(ReasonDurationExceeded, "%dm held + %dm requested exceeds %dm daily cap", held, requested, capMinutes)), nil
		}

		// 7. Advance-booking horizon
		if notice > s.Policy.ReservationHorizonDays {
			return rejectedBooking(reject(ReasonBookingTooFarAhead, "%d days ahead, %d allowed", notice, s.Policy.ReservationHorizonDays)), nil
		}
	}

	return BookingDecision{
		Approved: true,
		Event: Event{
			Name:               req.Name,
			Date:               req.Date,
			StartTime:          req.StartTime,
			EndTime:            req.EndTime,
			RoomID:             req.RoomID,
			Organizer:          req.Organizer,
			ExpectedAttendance: req.ExpectedAttendance,
			Status:             EventPending,
		},
	}, nil
}

// Cancel decides an event cancellation. The event must exist; cancellation of
// an already-canceled event is a no-op approval with no fee.
func (s *SchedulingEngine) Cancel(snap *Snapshot, req CancellationRequest) (CancellationDecision, error) {
	if req.EventID == "" {
		return CancellationDecision{}, missingField("event_id")
	}
	event, ok := snap.EventByID(req.EventID)
	if !ok {
		return CancellationDecision{}, &UnknownRecordError{Kind: "event", ID: string(req.EventID)}
	}
	if event.Status == EventCanceled {
		return CancellationDecision{Approved: true}, nil
	}

	start := event.Date.At(event.StartTime)
	if start.Sub(req.Now) >= s.Policy.CancellationCutoff {
		return CancellationDecision{Approved: true}, nil
	}
	if !req.Override {
		return CancellationDecision{
			Rejection: reject(ReasonLateCancellation, "within %s of start; override required, $%s fee applies",
				s.Policy.CancellationCutoff, s.Policy.LateCancellationFee.StringFixed(2)),
		}, nil
	}
	return CancellationDecision{Approved: true, LateFee: s.Policy.LateCancellationFee}, nil
}

func rejectedBooking(r *Rejection) BookingDecision {
	return BookingDecision{Rejection: r}
}
