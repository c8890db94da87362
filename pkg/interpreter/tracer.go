package interpreter

import (
	"cmp"
	"slices"
)

// Tracer observes the dispatch loop. MergePoint runs before every dispatch
// with the (ip, bytecode) pair about to execute; LoopEntry runs right after a
// tail call entered its callee. Implementations must not change the frame.
type Tracer interface {
	MergePoint(f *Frame)
	LoopEntry(f *Frame)
}

type site struct {
	code Code
	ip   int
}

// HotSpot is one profiled instruction.
type HotSpot struct {
	Code  Code
	IP    int
	Op    Opcode
	Count int
}

// Profiler is a Tracer that counts executions per instruction and tail-call
// loop entries per code object, and keeps the stack high-water mark.
type Profiler struct {
	hits      map[site]int
	loops     map[Code]int
	highWater int
}

// NewProfiler returns an empty profiler.
func NewProfiler() *Profiler {
	return &Profiler{
		hits:  make(map[site]int),
		loops: make(map[Code]int),
	}
}

func (p *Profiler) MergePoint(f *Frame) {
	p.hits[site{f.code, f.ip}]++
	if f.sp > p.highWater {
		p.highWater = f.sp
	}
}

func (p *Profiler) LoopEntry(f *Frame) {
	p.loops[f.code]++
	if f.sp > p.highWater {
		p.highWater = f.sp
	}
}

// HighWater returns the deepest stack pointer observed.
func (p *Profiler) HighWater() int { return p.highWater }

// LoopEntries returns how many tail calls entered code.
func (p *Profiler) LoopEntries(code Code) int { return p.loops[code] }

// Hot returns the n most executed instructions, busiest first. n <= 0
// returns all of them.
func (p *Profiler) Hot(n int) []HotSpot {
	spots := make([]HotSpot, 0, len(p.hits))
	for s, count := range p.hits {
		op := Opcode(-1)
		if bc := s.code.Bytecode(); s.ip >= 0 && s.ip < len(bc) {
			op = Opcode(bc[s.ip])
		}
		spots = append(spots, HotSpot{Code: s.code, IP: s.ip, Op: op, Count: count})
	}

	slices.SortFunc(spots, func(a, b HotSpot) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Code.String(), b.Code.String()); c != 0 {
			return c
		}
		return cmp.Compare(a.IP, b.IP)
	})

	if n > 0 && len(spots) > n {
		spots = spots[:n]
	}
	return spots
}
