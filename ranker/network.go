package ranker

// Scoreable is anything the policy cascade can rank: live networks as well as
// offers for networks that do not exist yet.
type Scoreable interface {
	Score() Score
	Capabilities() Capabilities
}

// Identified is implemented by Scoreables that carry a stable identifier.
// Explain uses it to label candidates in decision records.
type Identified interface {
	Identifier() string
}

// Network is a connected network as seen by the ranker: an identifier plus
// snapshots of its capabilities and score.
type Network struct {
	ID        string
	Caps      Capabilities
	FullScore Score
}

func (n *Network) Score() Score               { return n.FullScore }
func (n *Network) Capabilities() Capabilities { return n.Caps }
func (n *Network) Identifier() string         { return n.ID }

// Satisfies reports whether n can serve req.
func (n *Network) Satisfies(req Request) bool {
	return req.CanBeSatisfiedBy(n.Caps)
}

// Offer describes a network a provider could bring up. It is only ever ranked
// as a MightBeat contestant.
type Offer struct {
	Provider  string
	Caps      Capabilities
	FullScore Score
}

func (o *Offer) Score() Score               { return o.FullScore }
func (o *Offer) Capabilities() Capabilities { return o.Caps }
func (o *Offer) Identifier() string         { return "offer:" + o.Provider }

// Request is the demand descriptor: what a caller needs from a network.
type Request struct {
	ID string
	// Transports restricts the acceptable media. Empty means any transport;
	// otherwise a network must run over at least one of them.
	Transports TransportSet
	// Required capabilities must all be present.
	Required CapabilitySet
	// Forbidden capabilities must all be absent.
	Forbidden CapabilitySet
}

// CanBeSatisfiedBy reports whether a network with caps structurally meets r.
func (r Request) CanBeSatisfiedBy(caps Capabilities) bool {
	if !caps.Caps.Contains(r.Required) {
		return false
	}
	if caps.Caps.Intersects(r.Forbidden) {
		return false
	}
	if !r.Transports.Empty() && !caps.Transports.Intersects(r.Transports) {
		return false
	}
	return true
}

// FilterSatisfying returns the candidates that can satisfy req, in input order.
// No match yields an empty slice, never an error.
func FilterSatisfying[T Scoreable](req Request, candidates []T) []T {
	out := make([]T, 0, len(candidates))
	for _, c := range candidates {
		if req.CanBeSatisfiedBy(c.Capabilities()) {
			out = append(out, c)
		}
	}
	return out
}
