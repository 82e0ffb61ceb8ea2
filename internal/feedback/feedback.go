// internal/feedback/feedback.go
//
// Feedback simulation: the pattern a guess would receive if target were the
// hidden word.
//
// Two rules are provided:
//   - Compute: the solver's default. A non-exact letter is Present whenever
//     it occurs anywhere in the target. Repeated letters are not capped.
//   - ComputeStandard: the classic two-pass game scoring, where the number
//     of Present marks for a letter is capped by its unmatched occurrences.
//
// Both assume lowercase a–z words of exactly Length letters; callers
// validate (see words.Validate).

package feedback

// Compute returns the pattern guess receives against target under the
// simplified rule.
func Compute(guess, target string) Pattern {
	var p Pattern
	var seen [26]bool
	for i := 0; i < Length; i++ {
		seen[idx(target[i])] = true
	}
	for i := 0; i < Length; i++ {
		switch {
		case guess[i] == target[i]:
			p[i] = Exact
		case seen[idx(guess[i])]:
			p[i] = Present
		default:
			p[i] = Absent
		}
	}
	return p
}

// ComputeStandard implements the two-pass scoring used by the game itself.
//
// Pass 1: mark exact matches and count the remaining target letters.
// Pass 2: for each non-exact guess letter, mark Present while unmatched
// occurrences remain, otherwise Absent.
func ComputeStandard(guess, target string) Pattern {
	var p Pattern
	var counts [26]int

	for i := 0; i < Length; i++ {
		if guess[i] == target[i] {
			p[i] = Exact
		} else {
			counts[idx(target[i])]++
		}
	}

	for i := 0; i < Length; i++ {
		if p[i] == Exact {
			continue
		}
		if j := idx(guess[i]); counts[j] > 0 {
			p[i] = Present
			counts[j]--
		}
	}
	return p
}

// idx maps a lowercase ASCII letter to 0..25.
func idx(c byte) int { return int(c - 'a') }
