package subloan

import "math/big"

// Interest math runs in ray (1e27) fixed point with half-up rounding per
// multiply, so daily compounding keeps 27 significant decimals regardless of
// the rate magnitude.
var (
	ray     = mustBigInt("1000000000000000000000000000")
	halfRay = new(big.Int).Rsh(ray, 1)
	// ray / RateFactor, exact: converts integer rates to ray
	rayPerRate = new(big.Int).Quo(ray, new(big.Int).SetUint64(RateFactor))

	bigRateFactor = new(big.Int).SetUint64(RateFactor)
	maxUint64     = new(big.Int).SetUint64(^uint64(0))
)

func mustBigInt(value string) *big.Int {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		panic("invalid big integer constant")
	}
	return v
}

func rayMul(a, b *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	product.Add(product, halfRay)
	product.Quo(product, ray)
	return product
}

// rayPow raises a ray-scaled base to an integer power by square-and-multiply.
func rayPow(base *big.Int, n uint64) *big.Int {
	result := new(big.Int).Set(ray)
	b := new(big.Int).Set(base)
	for n > 0 {
		if n&1 == 1 {
			result = rayMul(result, b)
		}
		n >>= 1
		if n > 0 {
			b = rayMul(b, b)
		}
	}
	return result
}

func rateToRay(rate uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(rate), rayPerRate)
}

// growBalance compounds balance over n days at the given per-day ray rate.
func growBalance(balance, rateRay *big.Int, n uint64) *big.Int {
	if n == 0 || rateRay.Sign() == 0 || balance.Sign() == 0 {
		return new(big.Int).Set(balance)
	}
	factor := rayPow(new(big.Int).Add(ray, rateRay), n)
	out := new(big.Int).Mul(balance, factor)
	out.Add(out, halfRay)
	out.Quo(out, ray)
	return out
}

// AccrueTo advances the tracked amounts from the tracked timestamp to the
// target timestamp. It is the first step of every operation that mutates
// tracked amounts, invoked with the operation's own timestamp as the target:
// that is how a past-dated operation accrues interest only up to its own
// date, and a later operation then re-accrues from there.
//
// Per whole elapsed day, trackedPrincipal + trackedRemuneratoryInterest
// compounds at the remuneratory rate, discounted while the grace period is
// active. The grace period ends permanently at the due day. Days past the
// due day additionally accrue moratory interest on the compounding balance,
// and the first crossing of the due day charges the late fee once. A frozen
// sub-loan stops accruing at its freeze timestamp. Zero elapsed days is a
// no-op.
func (sl *SubLoan) AccrueTo(t Terms, target int64) error {
	effective := target
	if sl.FreezeTimestamp > 0 && sl.FreezeTimestamp < effective {
		effective = sl.FreezeTimestamp
	}

	d0 := t.Day(sl.TrackedTimestamp)
	d1 := t.Day(effective)
	if d1 <= d0 {
		if effective > sl.TrackedTimestamp {
			sl.TrackedTimestamp = effective
		}
		return nil
	}
	dueDay := t.Day(sl.StartTimestamp) + int64(sl.Duration)

	cutoff := d1
	if dueDay < cutoff {
		cutoff = dueDay
	}
	if cutoff < d0 {
		cutoff = d0
	}
	preDays := uint64(cutoff - d0)
	overdueDays := uint64(d1 - cutoff)

	remRay := rateToRay(sl.RemuneratoryRate)
	preRay := remRay
	if sl.GracePeriodStatus == GraceActive && sl.GraceDiscountRate > 0 {
		// effectiveRate = r * (RateFactor - graceDiscountRate) / RateFactor
		preRay = new(big.Int).Mul(remRay, new(big.Int).SetUint64(RateFactor-sl.GraceDiscountRate))
		preRay.Quo(preRay, bigRateFactor)
	}

	balance0 := new(big.Int).Add(
		new(big.Int).SetUint64(sl.TrackedPrincipal),
		new(big.Int).SetUint64(sl.TrackedRemuneratoryInterest),
	)
	atDue := growBalance(balance0, preRay, preDays)

	var lateFee uint64
	if d0 < dueDay && d1 >= dueDay {
		// charged once, on the accrual window that first crosses the due day
		lateFee = mulRate(sl.TrackedPrincipal, sl.LateFeeRate)
	}
	if d1 >= dueDay {
		sl.GracePeriodStatus = GraceNone
	}

	moratory := big.NewInt(0)
	if overdueDays > 0 && sl.MoratoryRate > 0 {
		morRay := rateToRay(sl.MoratoryRate)
		if remRay.Sign() == 0 {
			// base stays flat: atDue * m * days
			moratory.Mul(atDue, morRay)
			moratory.Mul(moratory, new(big.Int).SetUint64(overdueDays))
			moratory.Quo(moratory, ray)
		} else {
			// geometric sum: atDue * m * ((1+r)^n - 1) / r
			growth := new(big.Int).Sub(rayPow(new(big.Int).Add(ray, remRay), overdueDays), ray)
			moratory.Mul(atDue, growth)
			moratory.Mul(moratory, morRay)
			moratory.Quo(moratory, new(big.Int).Mul(remRay, ray))
		}
	}

	final := growBalance(atDue, remRay, overdueDays)
	delta := new(big.Int).Sub(final, balance0)

	newRem := new(big.Int).Add(new(big.Int).SetUint64(sl.TrackedRemuneratoryInterest), delta)
	newMor := new(big.Int).Add(new(big.Int).SetUint64(sl.TrackedMoratoryInterest), moratory)
	if newRem.Cmp(maxUint64) > 0 || newMor.Cmp(maxUint64) > 0 {
		return ErrAmountOverflow
	}
	if sl.TrackedLateFee > ^uint64(0)-lateFee {
		return ErrAmountOverflow
	}

	sl.TrackedRemuneratoryInterest = newRem.Uint64()
	sl.TrackedMoratoryInterest = newMor.Uint64()
	sl.TrackedLateFee += lateFee
	if effective > sl.TrackedTimestamp {
		sl.TrackedTimestamp = effective
	}
	return nil
}

func mulRate(amount, rate uint64) uint64 {
	out := new(big.Int).Mul(new(big.Int).SetUint64(amount), new(big.Int).SetUint64(rate))
	out.Quo(out, bigRateFactor)
	return out.Uint64()
}
