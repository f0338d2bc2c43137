package parsing

// ParsingData is the per parse table of rule activations.  It holds
// one activation depth per rule id of the domain, so mutually
// recursive grammars can index any rule.  It's created by each call
// to Parse and never shared.
type ParsingData struct {
	depth    []int
	total    int
	maxDepth int
}

func newParsingData(ruleCount, maxDepth int) *ParsingData {
	return &ParsingData{depth: make([]int, ruleCount), maxDepth: maxDepth}
}

func (d *ParsingData) enter(r *Rule) error {
	if d.maxDepth > 0 && d.total >= d.maxDepth {
		return ErrMaxDepth
	}
	d.depth[r.id]++
	d.total++
	return nil
}

func (d *ParsingData) leave(r *Rule) {
	d.depth[r.id]--
	d.total--
}

// Depth returns how many activations of the rule `id` are open
func (d *ParsingData) Depth(id int) int {
	if id < 0 || id >= len(d.depth) {
		return 0
	}
	return d.depth[id]
}

// Total returns how many rule activations are open
func (d *ParsingData) Total() int { return d.total }

// Balanced tells if every activation that was entered was also left
func (d *ParsingData) Balanced() bool {
	if d.total != 0 {
		return false
	}
	for _, n := range d.depth {
		if n != 0 {
			return false
		}
	}
	return true
}
