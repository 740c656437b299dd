/*
membership.go - Registration, renewal, and status overrides

PURPOSE:
  Membership lifecycle arithmetic. Registration defaults a new member to
  twelve months of active membership and rejects duplicate email addresses
  (case-insensitive). Renewal extends from whichever is later, the current
  expiry or today:

    not yet expired: newExpiry = currentExpiry + 12 months
    expired:         newExpiry = today + 12 months

  so renewing an unexpired membership twice advances expiry by exactly 24
  months from the original date. Suspension and reactivation are explicit
  overrides independent of date arithmetic; renewal does not clear a
  suspension.
*/
package engine

import "strings"

// =============================================================================
// REQUESTS
// =============================================================================

// RegistrationRequest is a candidate new member. A zero JoinDate means today.
type RegistrationRequest struct {
	Name     string
	Address  string
	Email    string
	Phone    string
	Type     MembershipType
	JoinDate Date
}

// RenewalRequest asks to extend a membership.
type RenewalRequest struct {
	MemberID MemberID
}

// =============================================================================
// MEMBERSHIP SERVICE
// =============================================================================

// MembershipService runs lifecycle operations against an injected policy
// table. It holds no mutable state.
type MembershipService struct {
	Policy PolicyTable
}

// Register decides a registration request. The returned member has no ID;
// the caller assigns one when persisting.
func (m *MembershipService) Register(snap *Snapshot, req RegistrationRequest, today Date) (RegistrationDecision, error) {
	if strings.TrimSpace(req.Name) == "" {
		return RegistrationDecision{}, missingField("name")
	}
	if strings.TrimSpace(req.Email) == "" {
		return RegistrationDecision{}, missingField("email")
	}
	if req.Type == "" {
		return RegistrationDecision{}, missingField("membership_type")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	for _, existing := range snap.Members {
		if strings.ToLower(strings.TrimSpace(existing.Email)) == email {
			return RegistrationDecision{
				Rejection: reject(ReasonDuplicateEmail, "email already registered to member %s", existing.ID),
			}, nil
		}
	}

	joinDate := req.JoinDate
	if joinDate.IsZero() {
		joinDate = today
	}

	return RegistrationDecision{
		Approved: true,
		Member: Member{
			Name:       strings.TrimSpace(req.Name),
			Address:    strings.TrimSpace(req.Address),
			Email:      strings.TrimSpace(req.Email),
			Phone:      strings.TrimSpace(req.Phone),
			Type:       req.Type,
			JoinDate:   joinDate,
			ExpiryDate: joinDate.AddMonths(m.Policy.MembershipTermMonths),
			Status:     MemberActive,
		},
	}, nil
}

// Renew decides a renewal request. Expired memberships extend from today,
// unexpired ones from their current expiry. A suspended member's expiry is
// extended but the suspension stands until explicit reactivation.
func (m *MembershipService) Renew(snap *Snapshot, req RenewalRequest, today Date) (RenewalDecision, error) {
	if req.MemberID == "" {
		return RenewalDecision{}, missingField("member_id")
	}
	member, ok := snap.MemberByID(req.MemberID)
	if !ok {
		return RenewalDecision{
			Rejection: reject(ReasonMemberNotFound, "member %s", req.MemberID),
		}, nil
	}

	newExpiry := member.ExpiryDate.Max(today).AddMonths(m.Policy.MembershipTermMonths)
	newStatus := MemberActive
	if member.Status == MemberSuspended {
		newStatus = MemberSuspended
	}

	return RenewalDecision{
		Approved:  true,
		NewExpiry: newExpiry,
		NewStatus: newStatus,
	}, nil
}

// Suspend returns the member with the suspension override applied.
func (m *MembershipService) Suspend(member Member) Member {
	member.Status = MemberSuspended
	return member
}

// Reactivate clears a suspension; the resulting status follows the expiry
// date again.
func (m *MembershipService) Reactivate(member Member, today Date) Member {
	if member.ExpiryDate.Before(today) {
		member.Status = MemberInactive
	} else {
		member.Status = MemberActive
	}
	return member
}
