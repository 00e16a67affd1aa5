package validation

import (
	"math/bits"
	"strings"
)

// Ratio is the normalized indel similarity of a and b in [0, 100]:
// twice the longest common subsequence over the combined length.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra)+len(rb) == 0 {
		return 100
	}
	if len(ra) == 0 {
		return 0
	}
	return score(newMatcher(ra).lcs(rb), len(ra), len(rb))
}

// PartialRatio scores the best alignment of the shorter string against every
// window of the longer one, including windows clipped at either edge.
// Both inputs are compared as given; callers lower-case them beforehand.
func PartialRatio(a, b string) float64 {
	needle, haystack := []rune(a), []rune(b)
	if len(needle) > len(haystack) {
		needle, haystack = haystack, needle
	}
	if len(needle) == 0 {
		if len(haystack) == 0 {
			return 100
		}
		return 0
	}
	if strings.Contains(string(haystack), string(needle)) {
		return 100
	}

	mt := newMatcher(needle)
	m, n := len(needle), len(haystack)
	best := 0.0
	consider := func(window []rune) bool {
		if s := score(mt.lcs(window), m, len(window)); s > best {
			best = s
		}
		return best >= 100
	}

	// windows clipped at the start
	for end := 1; end < m; end++ {
		if mt.has(haystack[end-1]) && consider(haystack[:end]) {
			return best
		}
	}

	// full-length windows; the multiset overlap of window and needle bounds
	// the LCS, so windows that cannot beat best are skipped
	overlap := newOverlap(needle)
	for i := 0; i < m-1; i++ {
		overlap.add(haystack[i])
	}
	for start := 0; start+m <= n; start++ {
		overlap.add(haystack[start+m-1])
		if mt.has(haystack[start+m-1]) && score(overlap.common, m, m) > best {
			if consider(haystack[start : start+m]) {
				return best
			}
		}
		overlap.remove(haystack[start])
	}

	// windows clipped at the end
	for start := n - m + 1; start < n; start++ {
		if mt.has(haystack[start]) && consider(haystack[start:]) {
			return best
		}
	}

	return best
}

func score(common, a, b int) float64 {
	return 200 * float64(common) / float64(a+b)
}

// matcher computes LCS lengths against a fixed needle with the bit-parallel
// algorithm of Hyyrö, one 64-bit word per 64 needle runes.
type matcher struct {
	m      int
	words  int
	last   uint64
	masks  map[rune][]uint64
	vector []uint64
}

func newMatcher(needle []rune) *matcher {
	words := (len(needle) + 63) / 64
	mt := &matcher{
		m:      len(needle),
		words:  words,
		last:   ^uint64(0),
		masks:  make(map[rune][]uint64, len(needle)),
		vector: make([]uint64, words),
	}
	if rem := len(needle) % 64; rem != 0 {
		mt.last = uint64(1)<<rem - 1
	}
	for i, r := range needle {
		mask, ok := mt.masks[r]
		if !ok {
			mask = make([]uint64, words)
			mt.masks[r] = mask
		}
		mask[i/64] |= 1 << (i % 64)
	}
	return mt
}

func (mt *matcher) has(r rune) bool {
	_, ok := mt.masks[r]
	return ok
}

// lcs returns the length of the longest common subsequence of the needle and s.
func (mt *matcher) lcs(s []rune) int {
	v := mt.vector
	for k := range v {
		v[k] = ^uint64(0)
	}

	for _, r := range s {
		mask, ok := mt.masks[r]
		if !ok {
			continue
		}
		var carry uint64
		for k := range v {
			u := v[k] & mask[k]
			var sum uint64
			sum, carry = bits.Add64(v[k], u, carry)
			v[k] = sum | (v[k] &^ u)
		}
	}

	zeros := 0
	for k := 0; k < mt.words-1; k++ {
		zeros += 64 - bits.OnesCount64(v[k])
	}
	lastBits := mt.m - 64*(mt.words-1)
	zeros += lastBits - bits.OnesCount64(v[mt.words-1]&mt.last)
	return zeros
}

// overlap tracks the multiset intersection of the needle and a sliding window.
type overlap struct {
	need   map[rune]int
	have   map[rune]int
	common int
}

func newOverlap(needle []rune) *overlap {
	o := &overlap{need: map[rune]int{}, have: map[rune]int{}}
	for _, r := range needle {
		o.need[r]++
	}
	return o
}

func (o *overlap) add(r rune) {
	if o.have[r] < o.need[r] {
		o.common++
	}
	o.have[r]++
}

func (o *overlap) remove(r rune) {
	o.have[r]--
	if o.have[r] < o.need[r] {
		o.common--
	}
}
