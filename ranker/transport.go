package ranker

import (
	"fmt"
	"math/bits"
	"strings"
)

// Transport is the physical or virtual medium a network runs over.
// The set of transports is closed; add new values before numTransports.
type Transport uint8

const (
	TransportCellular Transport = iota
	TransportWiFi
	TransportBluetooth
	TransportEthernet
	TransportVPN
	TransportWiFiAware
	TransportLoWPAN
	TransportUSB
	TransportThread
	TransportSatellite

	numTransports
)

var transportNames = [numTransports]string{
	TransportCellular:  "cellular",
	TransportWiFi:      "wifi",
	TransportBluetooth: "bluetooth",
	TransportEthernet:  "ethernet",
	TransportVPN:       "vpn",
	TransportWiFiAware: "wifi-aware",
	TransportLoWPAN:    "lowpan",
	TransportUSB:       "usb",
	TransportThread:    "thread",
	TransportSatellite: "satellite",
}

// String returns the lowercase name used in configuration and scenario files.
func (t Transport) String() string {
	if t >= numTransports {
		return fmt.Sprintf("transport(%d)", uint8(t))
	}
	return transportNames[t]
}

// ParseTransport maps a name produced by String back to its Transport.
func ParseTransport(name string) (Transport, error) {
	for i, n := range transportNames {
		if n == strings.ToLower(name) {
			return Transport(i), nil
		}
	}
	return 0, fmt.Errorf("unknown transport %q", name)
}

// AllTransports returns every Transport in enumeration order.
func AllTransports() []Transport {
	out := make([]Transport, 0, numTransports)
	for t := Transport(0); t < numTransports; t++ {
		out = append(out, t)
	}
	return out
}

// preferredTransportOrder is consulted once every policy has failed to separate
// the candidates. Earlier entries win.
var preferredTransportOrder = [...]Transport{
	TransportEthernet,
	TransportWiFi,
	TransportBluetooth,
	TransportCellular,
}

// TransportSet is a set of transports. The zero value is empty.
type TransportSet uint32

// NewTransportSet returns a set holding ts.
func NewTransportSet(ts ...Transport) TransportSet {
	var s TransportSet
	for _, t := range ts {
		s = s.With(t)
	}
	return s
}

// With returns s plus t.
func (s TransportSet) With(t Transport) TransportSet {
	if t >= numTransports {
		panic(fmt.Sprintf("TransportSet.With: invalid transport %d", uint8(t)))
	}
	return s | 1<<t
}

// Has reports whether t is in s.
func (s TransportSet) Has(t Transport) bool {
	return t < numTransports && s&(1<<t) != 0
}

// Empty reports whether s holds no transport.
func (s TransportSet) Empty() bool { return s == 0 }

// Len returns the number of transports in s.
func (s TransportSet) Len() int { return bits.OnesCount32(uint32(s)) }

// Intersects reports whether s and other share at least one transport.
func (s TransportSet) Intersects(other TransportSet) bool { return s&other != 0 }

// Types returns the transports in s in enumeration order. Two sets with the same
// Types have the same transport signature.
func (s TransportSet) Types() []Transport {
	out := make([]Transport, 0, s.Len())
	for t := Transport(0); t < numTransports; t++ {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// String renders s as "wifi|vpn" in enumeration order.
func (s TransportSet) String() string {
	types := s.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, "|")
}
