package bitsieve

// Reporter receives the output of a sieve cycle.
//
// Calls are synchronous and happen on the goroutine running the cycle: every
// prime in strictly increasing order, then exactly one summary. A Reporter
// that blocks stalls the engine.
type Reporter interface {
	// OnPrime is called once per discovered prime.
	OnPrime(value uint32)

	// OnSummary is called once after the scan with the number of primes below bound.
	OnSummary(count, bound uint32)
}

// CycleStarter is an optional interface for Reporters that want to be told a
// cycle is about to start, before the first OnPrime call.
type CycleStarter interface {
	OnCycleStart(bound uint32)
}

// ReporterFuncs adapts plain functions to the Reporter interface.
// Nil fields are ignored.
type ReporterFuncs struct {
	Prime   func(value uint32)
	Summary func(count, bound uint32)
}

// OnPrime implements Reporter.
func (f ReporterFuncs) OnPrime(value uint32) {
	if f.Prime != nil {
		f.Prime(value)
	}
}

// OnSummary implements Reporter.
func (f ReporterFuncs) OnSummary(count, bound uint32) {
	if f.Summary != nil {
		f.Summary(count, bound)
	}
}

// Discard is a Reporter that ignores everything.
var Discard Reporter = ReporterFuncs{}

type multiReporter []Reporter

// MultiReporter returns a Reporter that forwards every call to each of rs in order.
// Nil reporters are skipped.
func MultiReporter(rs ...Reporter) Reporter {
	out := make(multiReporter, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (m multiReporter) OnCycleStart(bound uint32) {
	for _, r := range m {
		if cs, ok := r.(CycleStarter); ok {
			cs.OnCycleStart(bound)
		}
	}
}

func (m multiReporter) OnPrime(value uint32) {
	for _, r := range m {
		r.OnPrime(value)
	}
}

func (m multiReporter) OnSummary(count, bound uint32) {
	for _, r := range m {
		r.OnSummary(count, bound)
	}
}
