package addressscanner

import (
	"github.com/cloudflare/ahocorasick"
)

// anchorPrefilter finds, in one pass over a region, which patterns can
// possibly match. Every pattern contributes its longest exact byte run as a
// keyword; a pattern whose keyword is absent cannot match anywhere.
type anchorPrefilter struct {
	matcher       *ahocorasick.Matcher
	anchors       [][]byte       // keyword at each index
	anchorIndex   map[string]int // keyword -> index
	patternAnchor []int          // pattern -> keyword index, -1 if none
}

func newAnchorPrefilter(patterns []*Pattern) *anchorPrefilter {
	pf := &anchorPrefilter{
		anchorIndex:   make(map[string]int),
		patternAnchor: make([]int, len(patterns)),
	}

	for i, p := range patterns {
		anchor, _ := p.anchor()
		if anchor == nil {
			pf.patternAnchor[i] = -1
			continue
		}

		idx, seen := pf.anchorIndex[string(anchor)]
		if !seen {
			idx = len(pf.anchors)
			pf.anchors = append(pf.anchors, anchor)
			pf.anchorIndex[string(anchor)] = idx
		}
		pf.patternAnchor[i] = idx
	}

	if len(pf.anchors) > 0 {
		pf.matcher = ahocorasick.NewMatcher(pf.anchors)
	}

	return pf
}

// candidates reports, per pattern, whether it may match in data. Patterns
// without an anchor are always candidates.
func (pf *anchorPrefilter) candidates(data []byte) []bool {
	present := make([]bool, len(pf.anchors))
	if pf.matcher != nil {
		for _, hit := range pf.matcher.MatchThreadSafe(data) {
			present[hit] = true
		}
	}

	out := make([]bool, len(pf.patternAnchor))
	for i, idx := range pf.patternAnchor {
		out[i] = idx < 0 || present[idx]
	}
	return out
}
