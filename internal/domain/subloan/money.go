package subloan

// Terms are the market-wide accounting constants. They come from service
// configuration and never change mid-transaction.
type Terms struct {
	// AccuracyFactor is the rounding granularity for monetary amounts.
	AccuracyFactor uint64
	// DayBoundaryOffset shifts the accrual day boundary off UTC midnight,
	// in seconds.
	DayBoundaryOffset int64
}

// Day maps a unix timestamp to its accrual day index.
func (t Terms) Day(ts int64) int64 {
	shifted := ts - t.DayBoundaryOffset
	if shifted < 0 {
		// floor division for the pre-epoch edge
		return (shifted - 86399) / 86400
	}
	return shifted / 86400
}

// RoundDown floors v to a multiple of the accuracy factor.
func (t Terms) RoundDown(v uint64) uint64 {
	if t.AccuracyFactor <= 1 {
		return v
	}
	return v / t.AccuracyFactor * t.AccuracyFactor
}

// OutstandingBalance is the sum of the four tracked components, each floored
// to the accuracy factor before summing. Rounding is per component, not on
// the aggregate.
func (s *State) OutstandingBalance(t Terms) uint64 {
	return t.RoundDown(s.TrackedPrincipal) +
		t.RoundDown(s.TrackedRemuneratoryInterest) +
		t.RoundDown(s.TrackedMoratoryInterest) +
		t.RoundDown(s.TrackedLateFee)
}

// Repay works a repayment of value through the component waterfall:
// late fee, then moratory interest, then remuneratory interest (each up to
// its rounded tracked amount), then principal for the exact remainder.
// Consumed amounts move from tracked to repaid. Returns the consumed parts.
func (s *State) Repay(t Terms, value uint64) (Parts, error) {
	parts, err := s.consume(t, value)
	if err != nil {
		return Parts{}, err
	}
	s.RepaidLateFee += parts.LateFee
	s.RepaidMoratoryInterest += parts.Moratory
	s.RepaidRemuneratoryInterest += parts.Remuneratory
	s.RepaidPrincipal += parts.Principal
	s.settleIfClear()
	return parts, nil
}

// Discount is the same waterfall as Repay but the consumed amounts move to
// the discount totals and no tokens change hands.
func (s *State) Discount(t Terms, value uint64) (Parts, error) {
	parts, err := s.consume(t, value)
	if err != nil {
		return Parts{}, err
	}
	s.DiscountLateFee += parts.LateFee
	s.DiscountMoratoryInterest += parts.Moratory
	s.DiscountRemuneratoryInterest += parts.Remuneratory
	s.DiscountPrincipal += parts.Principal
	s.settleIfClear()
	return parts, nil
}

func (s *State) consume(t Terms, value uint64) (Parts, error) {
	var p Parts
	rest := value

	p.LateFee = min64(rest, t.RoundDown(s.TrackedLateFee))
	rest -= p.LateFee

	p.Moratory = min64(rest, t.RoundDown(s.TrackedMoratoryInterest))
	rest -= p.Moratory

	p.Remuneratory = min64(rest, t.RoundDown(s.TrackedRemuneratoryInterest))
	rest -= p.Remuneratory

	// principal absorbs the exact remainder, never going negative
	if rest > s.TrackedPrincipal {
		return Parts{}, ErrInsufficientOutstanding
	}
	p.Principal = rest

	s.TrackedLateFee -= p.LateFee
	s.TrackedMoratoryInterest -= p.Moratory
	s.TrackedRemuneratoryInterest -= p.Remuneratory
	s.TrackedPrincipal -= p.Principal
	return p, nil
}

func (s *State) settleIfClear() {
	if s.TrackedParts().Total() == 0 && s.Status == StatusOngoing {
		s.Status = StatusRepaid
	}
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
