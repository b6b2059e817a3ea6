package ranker

import (
	"slices"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/netrank/netrank/ranker/trace"
)

// Ranker finds the best network for a request among connected networks, and
// tells network providers whether their offers could beat the current best.
//
// A Ranker is safe for concurrent use. Its only state is the Configuration,
// which SetConfiguration may replace at any time; every call reads it exactly
// once, so a call never observes a mix of two configurations.
type Ranker struct {
	conf    atomic.Pointer[Configuration]
	metrics *Metrics
}

// Option configures a Ranker at construction.
type Option func(*Ranker)

// WithMetrics makes the Ranker report its decisions to m.
func WithMetrics(m *Metrics) Option {
	return func(r *Ranker) { r.metrics = m }
}

// NewRanker creates a Ranker using conf.
func NewRanker(conf Configuration, opts ...Option) *Ranker {
	r := &Ranker{}
	r.SetConfiguration(conf)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetConfiguration replaces the configuration. It takes effect on the next call.
func (r *Ranker) SetConfiguration(conf Configuration) {
	r.conf.Store(&conf)
}

// Configuration returns the configuration currently in force.
func (r *Ranker) Configuration() Configuration {
	return *r.conf.Load()
}

// BestNetwork returns the best of networks for req, or nil when none of them
// satisfies req. incumbent is the network currently serving req, or nil; it
// wins ties that every policy leaves unresolved.
func (r *Ranker) BestNetwork(req Request, networks []*Network, incumbent *Network) *Network {
	winner, _ := r.bestNetwork(req, networks, incumbent, nil)
	return winner
}

// Explain is BestNetwork plus a record of how every cascade step partitioned
// the candidates.
func (r *Ranker) Explain(req Request, networks []*Network, incumbent *Network) (*Network, *trace.DecisionRecord) {
	rec := &trace.DecisionRecord{
		RequestID:  req.ID,
		Candidates: networkIDs(networks),
	}
	if incumbent != nil {
		rec.Incumbent = incumbent.ID
	}
	winner, _ := r.bestNetwork(req, networks, incumbent, rec)
	return winner, rec
}

func (r *Ranker) bestNetwork(req Request, networks []*Network, incumbent *Network, rec *trace.DecisionRecord) (*Network, string) {
	conf := r.conf.Load()

	satisfying := FilterSatisfying(req, networks)
	var winner *Network
	var decidedBy string
	switch len(satisfying) {
	case 0:
		decidedBy = StepNone
	case 1:
		winner, decidedBy = satisfying[0], StepFilter
	default:
		var w int
		w, decidedBy = bestByPolicy(conf, satisfying, slices.Index(satisfying, incumbent), rec)
		winner = satisfying[w]
	}

	if rec != nil {
		rec.Satisfying = networkIDs(satisfying)
		rec.DecidedBy = decidedBy
		rec.ActivelyPreferBadWiFi = conf.ActivelyPreferBadWiFi
		if winner != nil {
			rec.Winner = winner.ID
		}
	}
	r.metrics.observeDecision(decidedBy, len(networks))
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		if winner == nil {
			logrus.Debugf("request %s: no network among %d satisfies it", req.ID, len(networks))
		} else {
			logrus.Debugf("request %s: best network %s of %d (decided by %s)", req.ID, winner.ID, len(networks), decidedBy)
		}
	}
	return winner, decidedBy
}

// BestByPolicy runs the policy cascade alone, without filtering. candidates
// must be non-empty; a single candidate is returned unchanged. incumbent may
// be nil and need not be among candidates. An incumbent whose dynamic type
// is not comparable with == is never recognised among candidates.
func (r *Ranker) BestByPolicy(candidates []Scoreable, incumbent Scoreable) Scoreable {
	w, _ := bestByPolicy(r.conf.Load(), candidates, positionOf(candidates, incumbent), nil)
	return candidates[w]
}

// MightBeat reports whether contestant stands a chance to beat champion for
// req. champion is the current best network for req, or nil if there is none;
// contestant must not be nil.
// Providers use this to avoid bringing up networks that would lose anyway.
func (r *Ranker) MightBeat(req Request, champion *Network, contestant Scoreable) bool {
	return r.mightBeat(req, champion, contestant, nil)
}

// ExplainOffer is MightBeat plus a record of the evaluation.
func (r *Ranker) ExplainOffer(req Request, champion *Network, contestant Scoreable) (bool, *trace.OfferRecord) {
	rec := &trace.OfferRecord{
		RequestID: req.ID,
		Offer:     labelOf(contestant, -1),
	}
	if champion != nil {
		rec.Champion = champion.ID
	}
	return r.mightBeat(req, champion, contestant, rec), rec
}

func (r *Ranker) mightBeat(req Request, champion *Network, contestant Scoreable, rec *trace.OfferRecord) bool {
	conf := r.conf.Load()

	var beats bool
	var reason string
	switch {
	case !req.CanBeSatisfiedBy(contestant.Capabilities()):
		// Can't even satisfy the request, so it can't beat anything, not even no network.
		reason = "offer cannot satisfy request"
	case champion == nil:
		// Some network always beats no network.
		beats, reason = true, "no champion"
	default:
		var dec *trace.DecisionRecord
		if rec != nil {
			dec = &trace.DecisionRecord{
				RequestID:             req.ID,
				Candidates:            []string{champion.ID, rec.Offer},
				Incumbent:             champion.ID,
				ActivelyPreferBadWiFi: conf.ActivelyPreferBadWiFi,
			}
			rec.Decision = dec
		}
		// The champion sits at position 0 and is the incumbent.
		pair := []Scoreable{champion, contestant}
		w, decidedBy := bestByPolicy(conf, pair, 0, dec)
		beats = w == 1
		if beats {
			reason = "offer wins by " + decidedBy
		} else {
			reason = "champion wins by " + decidedBy
		}
		if dec != nil {
			dec.DecidedBy = decidedBy
			dec.Winner = labelOf(pair[w], w)
		}
	}

	if rec != nil {
		rec.MightBeat = beats
		rec.Reason = reason
	}
	r.metrics.observeOffer(beats)
	return beats
}

func networkIDs(networks []*Network) []string {
	ids := make([]string, len(networks))
	for i, n := range networks {
		ids[i] = n.ID
	}
	return ids
}
