package ranker

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/netrank/netrank/ranker/trace"
)

// Names of the cascade steps, as reported in DecisionRecord.DecidedBy and in
// the decided_by metric label.
const (
	StepNone             = "none"   // no candidate satisfies the request
	StepFilter           = "filter" // exactly one candidate satisfies the request
	StepSingle           = "single" // the cascade was handed a single candidate
	StepInvincible       = "invincible"
	StepVPN              = "vpn"
	StepUserSelected     = "user-selected"
	StepValidated        = "validated"
	StepNotExiting       = "not-exiting"
	StepTransportPrimary = "transport-primary"
	StepNotDestroyed     = "not-destroyed"
	StepIncumbent        = "incumbent"
	StepFirst            = "first"
)

// transportStepNames holds "transport:<name>" for each transport, built once so
// the cascade never formats strings on the hot path.
var transportStepNames = func() [numTransports]string {
	var names [numTransports]string
	for t := Transport(0); t < numTransports; t++ {
		names[t] = "transport:" + t.String()
	}
	return names
}()

// StepTransport returns the step name used when transport t settles a decision.
func StepTransport(t Transport) string {
	return transportStepNames[t]
}

// arbiter runs the policy cascade over one candidate list. Candidates are
// tracked by their position in input, so no step ever compares two candidate
// values. The four working areas are carved out of a single allocation and
// reused by every step.
type arbiter[T Scoreable] struct {
	conf       *Configuration
	input      []T
	candidates []int
	accepted   []int
	rejected   []int
	scratch    []int
	rec        *trace.DecisionRecord
}

func newArbiter[T Scoreable](conf *Configuration, input []T, rec *trace.DecisionRecord) *arbiter[T] {
	n := len(input)
	buf := make([]int, 4*n)
	a := &arbiter[T]{
		conf:       conf,
		input:      input,
		candidates: buf[0:n:n],
		accepted:   buf[n : n : 2*n],
		rejected:   buf[2*n : 2*n : 3*n],
		scratch:    buf[3*n : 3*n : 4*n],
		rec:        rec,
	}
	for i := range a.candidates {
		a.candidates[i] = i
	}
	return a
}

// bestByPolicy returns the position of the best of candidates and the step
// that chose it. incumbent is a position in candidates, or -1 for none.
// Panics on an empty list: asking for the best of nothing is a caller bug.
func bestByPolicy[T Scoreable](conf *Configuration, candidates []T, incumbent int, rec *trace.DecisionRecord) (int, string) {
	if len(candidates) == 0 {
		panic("bestByPolicy: empty candidates")
	}
	if len(candidates) == 1 {
		return 0, StepSingle
	}
	return newArbiter(conf, candidates, rec).run(incumbent)
}

func (a *arbiter[T]) run(incumbent int) (int, string) {
	if w, ok := a.narrow(StepInvincible, withPolicy[T](PolicyInvincible)); ok {
		return w, StepInvincible
	}
	if w, ok := a.narrow(StepVPN, withPolicy[T](PolicyIsVPN)); ok {
		return w, StepVPN
	}
	// A network the user picked and said to use even unvalidated beats one
	// that lacks either.
	if w, ok := a.narrow(StepUserSelected, func(c T) bool {
		s := c.Score()
		return s.HasPolicy(PolicyEverUserSelected) && s.HasPolicy(PolicyAcceptUnvalidated)
	}); ok {
		return w, StepUserSelected
	}

	// The bad Wi-Fi adjustment must see the raw result of the validation partition.
	a.partition(a.candidates, func(c T) bool {
		s := c.Score()
		return s.HasPolicy(PolicyIsValidated) || s.HasPolicy(PolicyAcceptUnvalidated)
	})
	a.yieldToBadWiFi()
	if w, ok := a.settle(StepValidated); ok {
		return w, StepValidated
	}

	if w, ok := a.narrow(StepNotExiting, withoutPolicy[T](PolicyExiting)); ok {
		return w, StepNotExiting
	}
	if w, ok := a.keepTransportPrimaries(); ok {
		return w, StepTransportPrimary
	}
	if w, step, ok := a.preferTransports(); ok {
		return w, step
	}
	// Between equivalent networks, one pending replacement loses so that its
	// replacement wins as soon as it connects.
	if w, ok := a.narrow(StepNotDestroyed, withoutPolicy[T](PolicyDestroyed)); ok {
		return w, StepNotDestroyed
	}

	if incumbent >= 0 && slices.Contains(a.candidates, incumbent) {
		return incumbent, StepIncumbent
	}
	return a.candidates[0], StepFirst
}

// matching lifts a candidate predicate to positions in input.
func (a *arbiter[T]) matching(f func(T) bool) func(int) bool {
	return func(i int) bool { return f(a.input[i]) }
}

// partition splits src into the accepted and rejected working areas.
// src must not alias either of them.
func (a *arbiter[T]) partition(src []int, keep func(T) bool) {
	a.accepted = a.accepted[:0]
	a.rejected = a.rejected[:0]
	for _, i := range src {
		if keep(a.input[i]) {
			a.accepted = append(a.accepted, i)
		} else {
			a.rejected = append(a.rejected, i)
		}
	}
}

// narrow keeps only the candidates matching keep when that discriminates.
// It reports a winner when exactly one candidate matches.
func (a *arbiter[T]) narrow(step string, keep func(T) bool) (int, bool) {
	a.partition(a.candidates, keep)
	return a.settle(step)
}

// settle applies the current partition: a single accepted candidate wins, a
// split keeps the accepted side, and no match leaves the candidates untouched.
func (a *arbiter[T]) settle(step string) (int, bool) {
	a.record(step)
	if len(a.accepted) == 1 {
		return a.accepted[0], true
	}
	if len(a.accepted) > 0 && len(a.rejected) > 0 {
		a.candidates = append(a.candidates[:0], a.accepted...)
	}
	return -1, false
}

// isPreferredBadWiFi reports whether c is an unvalidated Wi-Fi that networks
// with PolicyYieldToBadWiFi should lose to.
func (a *arbiter[T]) isPreferredBadWiFi(c T) bool {
	score := c.Score()
	caps := c.Capabilities()

	if !caps.HasTransport(TransportWiFi) {
		return false
	}
	if score.HasPolicy(PolicyIsValidated) || score.HasPolicy(PolicyAvoidedWhenUnvalidated) {
		return false
	}
	if a.conf.ActivelyPreferBadWiFi {
		// Still evaluating: not yet known to be usable.
		if !score.HasPolicy(PolicyEverEvaluated) {
			return false
		}
		// A captive portal only counts if the user logged in once and it later closed.
		if !caps.HasCapability(CapabilityCaptivePortal) {
			return true
		}
		return score.HasPolicy(PolicyEverValidated)
	}
	return score.HasPolicy(PolicyEverValidated)
}

// yieldToBadWiFi adjusts the validation partition in place. It only ever
// removes candidates from accepted or restores preferred bad Wi-Fis into it.
func (a *arbiter[T]) yieldToBadWiFi() {
	yields := withPolicy[T](PolicyYieldToBadWiFi)
	if !slices.ContainsFunc(a.accepted, a.matching(yields)) {
		return
	}
	if !slices.ContainsFunc(a.rejected, a.matching(a.isPreferredBadWiFi)) {
		return
	}

	n := len(a.accepted)
	a.scratch = append(append(a.scratch[:0], a.accepted...), a.rejected...)
	if allMatch(a.accepted, a.matching(yields)) {
		// Every validated network yields: compete the bad Wi-Fis against them in
		// the following steps rather than handing them the win outright.
		yielders, formerRejects := a.scratch[:n], a.scratch[n:]
		a.partition(formerRejects, a.isPreferredBadWiFi)
		a.accepted = append(a.accepted, yielders...)
		return
	}
	// Some validated networks don't yield: they beat both yielders and bad Wi-Fi.
	a.partition(a.scratch[:n], func(c T) bool { return !yields(c) })
}

// keepTransportPrimaries drops every non-primary network that shares its
// transport signature with a primary one. Networks on transports without any
// primary are kept.
func (a *arbiter[T]) keepTransportPrimaries() (int, bool) {
	a.partition(a.candidates, withPolicy[T](PolicyTransportPrimary))
	if len(a.accepted) == 0 {
		a.record(StepTransportPrimary)
		return -1, false
	}
	for _, p := range a.accepted {
		primary := a.input[p].Capabilities()
		a.rejected = slices.DeleteFunc(a.rejected, func(i int) bool {
			return primary.SameTransports(a.input[i].Capabilities())
		})
	}
	// What remains in rejected has no primary for its transports.
	a.accepted = append(a.accepted, a.rejected...)
	a.rejected = a.rejected[:0]
	if a.rec != nil {
		// Record the dominated networks as the losers of this step.
		for _, i := range a.candidates {
			if !slices.Contains(a.accepted, i) {
				a.rejected = append(a.rejected, i)
			}
		}
		a.record(StepTransportPrimary)
	}
	a.candidates = append(a.candidates[:0], a.accepted...)
	if len(a.candidates) == 1 {
		return a.candidates[0], true
	}
	return -1, false
}

// preferTransports keeps the candidates on the best transport of
// preferredTransportOrder that separates them, and stops there.
func (a *arbiter[T]) preferTransports() (int, string, bool) {
	for _, t := range preferredTransportOrder {
		step := StepTransport(t)
		a.partition(a.candidates, func(c T) bool { return c.Capabilities().HasTransport(t) })
		if len(a.accepted) == 0 || len(a.rejected) == 0 {
			continue
		}
		if w, ok := a.settle(step); ok {
			return w, step, true
		}
		return -1, "", false
	}
	return -1, "", false
}

// record appends the current partition to the decision record, if any.
func (a *arbiter[T]) record(step string) {
	if a.rec == nil {
		return
	}
	a.rec.AddStep(step, a.labels(a.accepted), a.labels(a.rejected))
}

func (a *arbiter[T]) labels(positions []int) []string {
	out := make([]string, len(positions))
	for j, i := range positions {
		out[j] = labelOf(a.input[i], i)
	}
	return out
}

// labelOf names c for decision records: its Identifier when it has one, its
// input position otherwise. pos is -1 when c is not part of a candidate list.
func labelOf[T Scoreable](c T, pos int) string {
	if id, ok := any(c).(Identified); ok {
		return id.Identifier()
	}
	if pos >= 0 {
		return fmt.Sprintf("candidate[%d]", pos)
	}
	return "unnamed"
}

// positionOf returns the position of target in candidates, or -1. Values that
// cannot be compared with == never match, so a value Scoreable holding a
// slice or map is simply not found rather than panicking.
func positionOf(candidates []Scoreable, target Scoreable) int {
	if target == nil {
		return -1
	}
	tv := reflect.ValueOf(target)
	if !tv.Comparable() {
		return -1
	}
	for i, c := range candidates {
		if c == nil || reflect.TypeOf(c) != tv.Type() || !reflect.ValueOf(c).Comparable() {
			continue
		}
		if c == target {
			return i
		}
	}
	return -1
}

func withPolicy[T Scoreable](p Policy) func(T) bool {
	return func(c T) bool { return c.Score().HasPolicy(p) }
}

func withoutPolicy[T Scoreable](p Policy) func(T) bool {
	return func(c T) bool { return !c.Score().HasPolicy(p) }
}

func allMatch[T any](s []T, f func(T) bool) bool {
	for _, v := range s {
		if !f(v) {
			return false
		}
	}
	return true
}
