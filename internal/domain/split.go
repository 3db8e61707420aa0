package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ComputeSplit distributes amount over shares according to method.
//
// The result has one participation per share, in input order, and its
// amounts always sum to amount. Rounding residue from equal and percentage
// splits is added to the first participant holding the smallest share.
// shares is never modified.
func ComputeSplit(method SplitMethod, amount Money, shares []Share) ([]Participation, error) {
	if len(shares) == 0 {
		return nil, ErrMissingParticipants
	}

	switch method {
	case SplitEqual:
		return splitEqual(amount, shares)
	case SplitPercentage:
		return splitPercentage(amount, shares)
	case SplitExact:
		return splitExact(amount, shares)
	default:
		return nil, ErrInvalidSplitMethod
	}
}

func splitEqual(amount Money, shares []Share) ([]Participation, error) {
	n := Money(len(shares))
	share := amount / n
	if share*n == 0 {
		return nil, ErrInvalidEqualSplit
	}

	out := make([]Participation, len(shares))
	for i, s := range shares {
		out[i] = Participation{ParticipantID: s.ParticipantID, Amount: share}
	}
	assignResidue(out, amount)

	return out, nil
}

func splitPercentage(amount Money, shares []Share) ([]Participation, error) {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Value)
	}
	if !total.Equal(hundred) {
		return nil, ErrInvalidPercentageTotal
	}

	base := decimal.NewFromInt(int64(amount))
	out := make([]Participation, len(shares))
	for i, s := range shares {
		// Shift(-2) is an exact division by 100; Div rounds to DivisionPrecision.
		part := base.Mul(s.Value).Shift(-2).Floor()
		out[i] = Participation{ParticipantID: s.ParticipantID, Amount: Money(part.IntPart())}
	}
	assignResidue(out, amount)

	return out, nil
}

func splitExact(amount Money, shares []Share) ([]Participation, error) {
	out := make([]Participation, len(shares))
	var sum Money
	for i, s := range shares {
		m, err := MoneyFromDecimal(s.Value)
		if err != nil {
			return nil, ErrInvalidExactSplitAmount
		}
		out[i] = Participation{ParticipantID: s.ParticipantID, Amount: m}
		sum += m
	}
	if sum != amount {
		return nil, ErrMismatchTotalExactAmount
	}

	return out, nil
}

// assignResidue adds amount minus the current total to the first minimum entry.
func assignResidue(parts []Participation, amount Money) {
	var sum Money
	minIdx := 0
	for i, p := range parts {
		sum += p.Amount
		if p.Amount < parts[minIdx].Amount {
			minIdx = i
		}
	}
	parts[minIdx].Amount += amount - sum
}
