package cases

// Borrower-list mutations all preserve one invariant: the list is non-empty
// and exactly one element has is_primary set. Violating intents (removing
// the last borrower, indexing out of range) are rejected as no-ops rather
// than errors, since they originate from UI actions that should simply be
// disallowed.

// SetPrimaryBorrower marks borrower i primary and clears the flag on every
// other element in the same update, so no intermediate state with zero or
// two primaries is ever observable.
func SetPrimaryBorrower(list []Borrower, i int) []Borrower {
	if i < 0 || i >= len(list) {
		return list
	}
	out := cloneBorrowers(list)
	for idx := range out {
		out[idx].IsPrimary = idx == i
	}
	return out
}

// RemoveBorrower removes borrower i. A case must always retain at least one
// borrower, so removing the last element is refused. If the removed borrower
// was primary, the new first element becomes primary.
func RemoveBorrower(list []Borrower, i int) []Borrower {
	if len(list) <= 1 || i < 0 || i >= len(list) {
		return list
	}
	wasPrimary := list[i].IsPrimary
	out := make([]Borrower, 0, len(list)-1)
	out = append(out, list[:i]...)
	out = append(out, list[i+1:]...)
	if wasPrimary {
		for idx := range out {
			out[idx].IsPrimary = idx == 0
		}
	}
	return out
}

// AddBorrower appends a blank borrower with a fresh id. The newcomer is
// primary only when the list was empty; existing primaries never flip.
func AddBorrower(list []Borrower) []Borrower {
	out := cloneBorrowers(list)
	return append(out, NewBorrower(len(list) == 0))
}

// NormalizeBorrowers repairs a borrower list read from the backend, which is
// not trusted to satisfy the invariant: an empty list gets one fresh primary
// borrower, and a list with no primary (or several) gets exactly one, the
// first flagged element winning.
func NormalizeBorrowers(list []Borrower) []Borrower {
	if len(list) == 0 {
		return []Borrower{NewBorrower(true)}
	}
	out := cloneBorrowers(list)
	primary := -1
	for idx := range out {
		if out[idx].IsPrimary && primary < 0 {
			primary = idx
		}
	}
	if primary < 0 {
		primary = 0
	}
	for idx := range out {
		out[idx].IsPrimary = idx == primary
		if out[idx].BorrowerID == "" {
			out[idx] = withFreshID(out[idx])
		}
	}
	return out
}

func withFreshID(b Borrower) Borrower {
	fresh := NewBorrower(b.IsPrimary)
	fresh.CreditScoreMid = b.CreditScoreMid
	fresh.Citizenship = b.Citizenship
	fresh.Employment = b.Employment
	return fresh
}

func cloneBorrowers(list []Borrower) []Borrower {
	out := make([]Borrower, len(list))
	copy(out, list)
	return out
}
