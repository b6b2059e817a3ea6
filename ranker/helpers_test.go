package ranker

var internetRequest = Request{ID: "default", Required: NewCapabilitySet(CapabilityInternet)}

func newNetwork(id string, transports TransportSet, policies ...Policy) *Network {
	return &Network{
		ID:        id,
		Caps:      Capabilities{Transports: transports, Caps: NewCapabilitySet(CapabilityInternet)},
		FullScore: NewScore(50, policies...),
	}
}

func wifi(id string, policies ...Policy) *Network {
	return newNetwork(id, NewTransportSet(TransportWiFi), policies...)
}

func cell(id string, policies ...Policy) *Network {
	return newNetwork(id, NewTransportSet(TransportCellular), policies...)
}

func ethernet(id string, policies ...Policy) *Network {
	return newNetwork(id, NewTransportSet(TransportEthernet), policies...)
}

func withCaps(n *Network, caps ...Capability) *Network {
	for _, c := range caps {
		n.Caps.Caps = n.Caps.Caps.With(c)
	}
	return n
}

func legacyRanker() *Ranker {
	return NewRanker(Configuration{ActivelyPreferBadWiFi: false})
}

func activeRanker() *Ranker {
	return NewRanker(Configuration{ActivelyPreferBadWiFi: true})
}

func winnerID(n *Network) string {
	if n == nil {
		return "<nil>"
	}
	return n.ID
}

// taggedNet is a value-receiver Scoreable whose slice field makes it
// incomparable with ==.
type taggedNet struct {
	tags  []string
	score Score
	caps  Capabilities
}

func (n taggedNet) Score() Score               { return n.score }
func (n taggedNet) Capabilities() Capabilities { return n.caps }

func newTaggedNet(transport Transport, policies ...Policy) taggedNet {
	return taggedNet{
		tags:  []string{transport.String()},
		score: NewScore(50, policies...),
		caps:  Capabilities{Transports: NewTransportSet(transport), Caps: NewCapabilitySet(CapabilityInternet)},
	}
}

// plainNet is a value-receiver Scoreable made only of comparable fields.
type plainNet struct {
	score Score
	caps  Capabilities
}

func (n plainNet) Score() Score               { return n.score }
func (n plainNet) Capabilities() Capabilities { return n.caps }
