package domain

// ValidEquation reports whether the values, 3 to 5 positive integers, can be
// arranged into a true arithmetic identity. Every permutation is tried
// against a fixed pattern list per count: three values accept a+b=c or
// a*b=c; four and five values extend those with one more additive term or a
// grouped (a±b)*c form. Subtraction and division identities need no
// patterns of their own because permutation symmetry covers them.
func ValidEquation(values []int) bool {
	if len(values) < 3 || len(values) > 5 {
		return false
	}
	perm := append([]int(nil), values...)
	return permute(perm, 0, func(v []int) bool {
		switch len(v) {
		case 3:
			return threeTermIdentity(v)
		case 4:
			return fourTermIdentity(v)
		default:
			return fiveTermIdentity(v)
		}
	})
}

// ValidDiscardSet checks the legality of a discard by size: one card of any
// kind, two number cards of equal value, or 3 to 5 number cards forming a
// valid equation.
func ValidDiscardSet(cards []Card) bool {
	switch len(cards) {
	case 1:
		return true
	case 2:
		return cards[0].IsNumber() && cards[1].IsNumber() && cards[0].Value == cards[1].Value
	case 3, 4, 5:
		return ValidNumberEquation(cards)
	}
	return false
}

// ValidNumberEquation reports whether the cards are all number cards whose
// values form a valid equation.
func ValidNumberEquation(cards []Card) bool {
	values := make([]int, 0, len(cards))
	for _, c := range cards {
		if !c.IsNumber() {
			return false
		}
		values = append(values, c.Value)
	}
	return ValidEquation(values)
}

// permute enumerates the permutations of v in place and calls check on each,
// stopping early on the first success.
func permute(v []int, k int, check func([]int) bool) bool {
	if k == len(v) {
		return check(v)
	}
	for i := k; i < len(v); i++ {
		v[k], v[i] = v[i], v[k]
		if permute(v, k+1, check) {
			return true
		}
		v[k], v[i] = v[i], v[k]
	}
	return false
}

func threeTermIdentity(v []int) bool {
	a, b, c := v[0], v[1], v[2]
	return a+b == c || a*b == c
}

func fourTermIdentity(v []int) bool {
	a, b, c, d := v[0], v[1], v[2], v[3]
	return a+b+c == d ||
		a+b == c+d ||
		a*b+c == d ||
		a*b == c+d ||
		(a+b)*c == d ||
		(a-b)*c == d
}

func fiveTermIdentity(v []int) bool {
	a, b, c, d, e := v[0], v[1], v[2], v[3], v[4]
	return a+b+c+d == e ||
		a+b+c == d+e ||
		a*b+c+d == e ||
		a*b+c == d+e ||
		a*b == c+d+e ||
		(a+b)*c+d == e ||
		(a-b)*c+d == e ||
		(a+b)*c == d+e ||
		(a-b)*c == d+e
}
