package subloan

import "testing"

const day = int64(86400)

// rates as fractions of RateFactor
const (
	onePercent   = RateFactor / 100
	twoPercent   = RateFactor / 50
	fiftyPercent = RateFactor / 2
)

func newAccruingSubLoan(principal uint64, durationDays uint64) *SubLoan {
	return &SubLoan{
		ID: 1,
		Inception: Inception{
			BorrowedAmount: principal,
			StartTimestamp: 0,
		},
		State: State{
			Status:           StatusOngoing,
			Duration:         durationDays,
			TrackedPrincipal: principal,
			TrackedTimestamp: 0,
		},
	}
}

func TestAccrueTo_SameDay_NoInterest(t *testing.T) {
	terms := Terms{AccuracyFactor: 1}
	sl := newAccruingSubLoan(1_000_000, 30)
	sl.RemuneratoryRate = onePercent

	if err := sl.AccrueTo(terms, day-1); err != nil {
		t.Fatalf("AccrueTo: %v", err)
	}
	if sl.TrackedRemuneratoryInterest != 0 {
		t.Fatalf("interest within the same day: %d", sl.TrackedRemuneratoryInterest)
	}
	if sl.TrackedTimestamp != day-1 {
		t.Fatalf("tracked timestamp not advanced: %d", sl.TrackedTimestamp)
	}
}

func TestAccrueTo_CompoundsDaily(t *testing.T) {
	terms := Terms{AccuracyFactor: 1}
	sl := newAccruingSubLoan(1_000_000, 30)
	sl.RemuneratoryRate = onePercent

	if err := sl.AccrueTo(terms, day); err != nil {
		t.Fatalf("AccrueTo day 1: %v", err)
	}
	if sl.TrackedRemuneratoryInterest != 10_000 {
		t.Fatalf("day 1 interest: want 10000, got %d", sl.TrackedRemuneratoryInterest)
	}

	// second day compounds on principal + interest
	if err := sl.AccrueTo(terms, 2*day); err != nil {
		t.Fatalf("AccrueTo day 2: %v", err)
	}
	if sl.TrackedRemuneratoryInterest != 20_100 {
		t.Fatalf("day 2 interest: want 20100, got %d", sl.TrackedRemuneratoryInterest)
	}
	if sl.TrackedPrincipal != 1_000_000 {
		t.Fatalf("principal must not move during accrual: %d", sl.TrackedPrincipal)
	}
}

func TestAccrueTo_MultiDayWindowMatchesStepwise(t *testing.T) {
	terms := Terms{AccuracyFactor: 1}
	oneShot := newAccruingSubLoan(1_000_000, 365)
	oneShot.RemuneratoryRate = onePercent
	stepwise := newAccruingSubLoan(1_000_000, 365)
	stepwise.RemuneratoryRate = onePercent

	if err := oneShot.AccrueTo(terms, 10*day); err != nil {
		t.Fatalf("one-shot: %v", err)
	}
	for i := int64(1); i <= 10; i++ {
		if err := stepwise.AccrueTo(terms, i*day); err != nil {
			t.Fatalf("stepwise day %d: %v", i, err)
		}
	}
	if oneShot.TrackedRemuneratoryInterest != stepwise.TrackedRemuneratoryInterest {
		t.Fatalf("one-shot %d != stepwise %d",
			oneShot.TrackedRemuneratoryInterest, stepwise.TrackedRemuneratoryInterest)
	}
}

func TestAccrueTo_GraceDiscountHalvesRate(t *testing.T) {
	terms := Terms{AccuracyFactor: 1}
	sl := newAccruingSubLoan(1_000_000, 30)
	sl.RemuneratoryRate = onePercent
	sl.GraceDiscountRate = fiftyPercent
	sl.GracePeriodStatus = GraceActive

	if err := sl.AccrueTo(terms, day); err != nil {
		t.Fatalf("AccrueTo: %v", err)
	}
	if sl.TrackedRemuneratoryInterest != 5_000 {
		t.Fatalf("discounted interest: want 5000, got %d", sl.TrackedRemuneratoryInterest)
	}
	if sl.GracePeriodStatus != GraceActive {
		t.Fatalf("grace must stay active before the due day")
	}
}

func TestAccrueTo_GraceEndsAtDueDay(t *testing.T) {
	terms := Terms{AccuracyFactor: 1}
	sl := newAccruingSubLoan(1_000_000, 2)
	sl.RemuneratoryRate = onePercent
	sl.GraceDiscountRate = fiftyPercent
	sl.GracePeriodStatus = GraceActive

	if err := sl.AccrueTo(terms, 2*day); err != nil {
		t.Fatalf("AccrueTo: %v", err)
	}
	if sl.GracePeriodStatus != GraceNone {
		t.Fatalf("grace must end at the due day")
	}

	// the discount does not come back even if more days pass
	if err := sl.AccrueTo(terms, 3*day); err != nil {
		t.Fatalf("AccrueTo past due: %v", err)
	}
	if sl.GracePeriodStatus != GraceNone {
		t.Fatalf("grace must not reactivate")
	}
}

func TestAccrueTo_LateFeeChargedOnce(t *testing.T) {
	terms := Terms{AccuracyFactor: 1}
	sl := newAccruingSubLoan(1_000_000, 2)
	sl.LateFeeRate = twoPercent

	if err := sl.AccrueTo(terms, 3*day); err != nil {
		t.Fatalf("AccrueTo crossing due: %v", err)
	}
	if sl.TrackedLateFee != 20_000 {
		t.Fatalf("late fee: want 20000, got %d", sl.TrackedLateFee)
	}

	if err := sl.AccrueTo(terms, 5*day); err != nil {
		t.Fatalf("AccrueTo past due: %v", err)
	}
	if sl.TrackedLateFee != 20_000 {
		t.Fatalf("late fee charged again: %d", sl.TrackedLateFee)
	}
}

func TestAccrueTo_MoratoryFlatWhenNoRemuneratory(t *testing.T) {
	terms := Terms{AccuracyFactor: 1}
	sl := newAccruingSubLoan(1_000_000, 0)
	sl.MoratoryRate = onePercent

	if err := sl.AccrueTo(terms, 3*day); err != nil {
		t.Fatalf("AccrueTo: %v", err)
	}
	if sl.TrackedMoratoryInterest != 30_000 {
		t.Fatalf("flat moratory: want 30000, got %d", sl.TrackedMoratoryInterest)
	}
	if sl.TrackedRemuneratoryInterest != 0 {
		t.Fatalf("no remuneratory interest expected: %d", sl.TrackedRemuneratoryInterest)
	}
}

func TestAccrueTo_MoratoryTracksCompoundingBase(t *testing.T) {
	terms := Terms{AccuracyFactor: 1}
	sl := newAccruingSubLoan(1_000_000, 0)
	sl.RemuneratoryRate = onePercent
	sl.MoratoryRate = onePercent

	if err := sl.AccrueTo(terms, 2*day); err != nil {
		t.Fatalf("AccrueTo: %v", err)
	}
	// base compounds 1% over 2 days; moratory is the same geometric sum
	if sl.TrackedRemuneratoryInterest != 20_100 {
		t.Fatalf("remuneratory: want 20100, got %d", sl.TrackedRemuneratoryInterest)
	}
	if sl.TrackedMoratoryInterest != 20_100 {
		t.Fatalf("moratory: want 20100, got %d", sl.TrackedMoratoryInterest)
	}
}

func TestAccrueTo_FreezeCapsAccrual(t *testing.T) {
	terms := Terms{AccuracyFactor: 1}
	sl := newAccruingSubLoan(1_000_000, 30)
	sl.RemuneratoryRate = onePercent
	sl.FreezeTimestamp = day

	if err := sl.AccrueTo(terms, 5*day); err != nil {
		t.Fatalf("AccrueTo: %v", err)
	}
	if sl.TrackedRemuneratoryInterest != 10_000 {
		t.Fatalf("frozen sub-loan accrued past its freeze: %d", sl.TrackedRemuneratoryInterest)
	}
	if sl.TrackedTimestamp != day {
		t.Fatalf("tracked timestamp must stop at the freeze: %d", sl.TrackedTimestamp)
	}
}

func TestAccrueTo_TargetBeforeTracked_NoOp(t *testing.T) {
	terms := Terms{AccuracyFactor: 1}
	sl := newAccruingSubLoan(1_000_000, 30)
	sl.RemuneratoryRate = onePercent
	sl.TrackedTimestamp = 5 * day

	if err := sl.AccrueTo(terms, 2*day); err != nil {
		t.Fatalf("AccrueTo: %v", err)
	}
	if sl.TrackedRemuneratoryInterest != 0 {
		t.Fatalf("accrual must not run backwards: %d", sl.TrackedRemuneratoryInterest)
	}
	if sl.TrackedTimestamp != 5*day {
		t.Fatalf("tracked timestamp moved backwards: %d", sl.TrackedTimestamp)
	}
}

func TestDay_BoundaryOffsetShiftsTheBoundary(t *testing.T) {
	terms := Terms{DayBoundaryOffset: 10_800}
	if got := terms.Day(10_799); got != -1 {
		t.Fatalf("before the first boundary: want -1, got %d", got)
	}
	if got := terms.Day(10_800); got != 0 {
		t.Fatalf("at the boundary: want 0, got %d", got)
	}
	if got := terms.Day(10_800 + 86_399); got != 0 {
		t.Fatalf("end of day 0: want 0, got %d", got)
	}
	if got := terms.Day(10_800 + 86_400); got != 1 {
		t.Fatalf("start of day 1: want 1, got %d", got)
	}
}
