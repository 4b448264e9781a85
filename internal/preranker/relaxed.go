package preranker

// relaxedBuffer holds relaxed matches back until the final cycle.
type relaxedBuffer struct {
	held []Candidate
}

// split moves relaxed candidates out of cands on intermediate cycles. On the
// final cycle it appends everything held back and empties the buffer.
func (b *relaxedBuffer) split(cands []Candidate, final bool) []Candidate {
	if final {
		cands = append(cands, b.held...)
		b.held = nil
		return cands
	}
	kept := cands[:0]
	for _, c := range cands {
		if c.Info.Relaxed {
			b.held = append(b.held, c)
			continue
		}
		kept = append(kept, c)
	}
	clear(cands[len(kept):])
	return kept
}

func (b *relaxedBuffer) len() int { return len(b.held) }

func (b *relaxedBuffer) reset() {
	b.held = nil
}
