package ranker

import (
	"fmt"
	"math/bits"
	"strings"
)

// Capability is a property a network declares and a Request may require or forbid.
type Capability uint8

const (
	CapabilityInternet Capability = iota
	CapabilityNotMetered
	CapabilityNotRestricted
	CapabilityTrusted
	CapabilityNotVPN
	CapabilityValidated
	CapabilityCaptivePortal
	CapabilityNotRoaming
	CapabilityForeground
	CapabilityNotCongested
	CapabilityNotSuspended
	CapabilityMMS
	CapabilityIMS
	CapabilityEnterprise
	CapabilityLocalNetwork

	numCapabilities
)

var capabilityNames = [numCapabilities]string{
	CapabilityInternet:      "internet",
	CapabilityNotMetered:    "not-metered",
	CapabilityNotRestricted: "not-restricted",
	CapabilityTrusted:       "trusted",
	CapabilityNotVPN:        "not-vpn",
	CapabilityValidated:     "validated",
	CapabilityCaptivePortal: "captive-portal",
	CapabilityNotRoaming:    "not-roaming",
	CapabilityForeground:    "foreground",
	CapabilityNotCongested:  "not-congested",
	CapabilityNotSuspended:  "not-suspended",
	CapabilityMMS:           "mms",
	CapabilityIMS:           "ims",
	CapabilityEnterprise:    "enterprise",
	CapabilityLocalNetwork:  "local-network",
}

func (c Capability) String() string {
	if c >= numCapabilities {
		return fmt.Sprintf("capability(%d)", uint8(c))
	}
	return capabilityNames[c]
}

// ParseCapability maps a name produced by String back to its Capability.
func ParseCapability(name string) (Capability, error) {
	for i, n := range capabilityNames {
		if n == strings.ToLower(name) {
			return Capability(i), nil
		}
	}
	return 0, fmt.Errorf("unknown capability %q", name)
}

// CapabilitySet is a set of capabilities. The zero value is empty.
type CapabilitySet uint32

// NewCapabilitySet returns a set holding cs.
func NewCapabilitySet(cs ...Capability) CapabilitySet {
	var s CapabilitySet
	for _, c := range cs {
		s = s.With(c)
	}
	return s
}

func (s CapabilitySet) With(c Capability) CapabilitySet {
	if c >= numCapabilities {
		panic(fmt.Sprintf("CapabilitySet.With: invalid capability %d", uint8(c)))
	}
	return s | 1<<c
}

func (s CapabilitySet) Without(c Capability) CapabilitySet {
	return s &^ (1 << c)
}

func (s CapabilitySet) Has(c Capability) bool {
	return c < numCapabilities && s&(1<<c) != 0
}

// Contains reports whether every capability of other is also in s.
func (s CapabilitySet) Contains(other CapabilitySet) bool {
	return s&other == other
}

// Intersects reports whether s and other share at least one capability.
func (s CapabilitySet) Intersects(other CapabilitySet) bool { return s&other != 0 }

func (s CapabilitySet) Len() int { return bits.OnesCount32(uint32(s)) }

func (s CapabilitySet) String() string {
	names := make([]string, 0, s.Len())
	for c := Capability(0); c < numCapabilities; c++ {
		if s.Has(c) {
			names = append(names, c.String())
		}
	}
	return strings.Join(names, "|")
}

// Capabilities is the immutable snapshot of what a network offers.
// The ranker never modifies it.
type Capabilities struct {
	Transports TransportSet
	Caps       CapabilitySet
}

// HasTransport reports whether the network runs over t.
func (c Capabilities) HasTransport(t Transport) bool { return c.Transports.Has(t) }

// HasCapability reports whether the network declares capability want.
func (c Capabilities) HasCapability(want Capability) bool { return c.Caps.Has(want) }

// SameTransports reports whether c and other have identical transport signatures.
func (c Capabilities) SameTransports(other Capabilities) bool {
	return c.Transports == other.Transports
}
