package ranker

import (
	"fmt"
	"strings"
)

// Policy is one boolean fact attached to a network's Score by the subsystem
// that owns the network. The ranker interprets policies but never computes them.
type Policy uint8

const (
	// PolicyInvincible networks are always chosen when present.
	PolicyInvincible Policy = iota
	// PolicyIsVPN networks are preferred over non-VPN networks.
	PolicyIsVPN
	// PolicyEverUserSelected is set once the user explicitly picked the network. Sticky.
	PolicyEverUserSelected
	// PolicyAcceptUnvalidated means the network is acceptable without validation. Sticky.
	PolicyAcceptUnvalidated
	// PolicyIsValidated means the network currently passes validation.
	PolicyIsValidated
	// PolicyEverValidated is set once the network has validated. Sticky.
	PolicyEverValidated
	// PolicyEverEvaluated is set once validation has been attempted. Sticky.
	PolicyEverEvaluated
	// PolicyYieldToBadWiFi networks lose to a preferred bad Wi-Fi.
	PolicyYieldToBadWiFi
	// PolicyAvoidedWhenUnvalidated means the user asked to avoid the network while
	// it is unvalidated. Such a Wi-Fi is never a preferred bad Wi-Fi.
	PolicyAvoidedWhenUnvalidated
	// PolicyTransportPrimary marks the primary network of its transport, e.g. the
	// default data subscription among several cellular networks.
	PolicyTransportPrimary
	// PolicyExiting networks are lingering before teardown.
	PolicyExiting
	// PolicyDestroyed networks are pending replacement. Sticky.
	PolicyDestroyed

	numPolicies
)

var policyNames = [numPolicies]string{
	PolicyInvincible:             "invincible",
	PolicyIsVPN:                  "is-vpn",
	PolicyEverUserSelected:       "ever-user-selected",
	PolicyAcceptUnvalidated:      "accept-unvalidated",
	PolicyIsValidated:            "is-validated",
	PolicyEverValidated:          "ever-validated",
	PolicyEverEvaluated:          "ever-evaluated",
	PolicyYieldToBadWiFi:         "yield-to-bad-wifi",
	PolicyAvoidedWhenUnvalidated: "avoided-when-unvalidated",
	PolicyTransportPrimary:       "transport-primary",
	PolicyExiting:                "exiting",
	PolicyDestroyed:              "destroyed",
}

// stickyPolicies can only go from false to true during a network's lifetime.
const stickyPolicies = policyBits(1<<PolicyEverUserSelected |
	1<<PolicyAcceptUnvalidated |
	1<<PolicyEverValidated |
	1<<PolicyEverEvaluated |
	1<<PolicyDestroyed)

func (p Policy) String() string {
	if p >= numPolicies {
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
	return policyNames[p]
}

// IsSticky reports whether p can never be cleared once set.
func (p Policy) IsSticky() bool {
	return p < numPolicies && stickyPolicies&(1<<p) != 0
}

// ParsePolicy maps a name produced by String back to its Policy.
func ParsePolicy(name string) (Policy, error) {
	for i, n := range policyNames {
		if n == strings.ToLower(name) {
			return Policy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown policy %q", name)
}

type policyBits uint32

// LegacyIntMax is the ceiling of legacy integer scores. VPNs historically
// send LegacyIntMax+1 to beat everything else.
const LegacyIntMax = 100

// unvalidatedPenalty is subtracted from the legacy int of unvalidated non-VPN networks.
const unvalidatedPenalty = 40

// Score carries the policies of one network plus its legacy integer score.
// Score is a value; its methods return modified copies.
type Score struct {
	policies  policyBits
	legacyInt int
}

// NewScore returns a Score with the given legacy int and policies.
func NewScore(legacyInt int, policies ...Policy) Score {
	s := Score{legacyInt: legacyInt}
	for _, p := range policies {
		s = s.WithPolicy(p)
	}
	return s
}

// HasPolicy reports whether p is set.
func (s Score) HasPolicy(p Policy) bool {
	return p < numPolicies && s.policies&(1<<p) != 0
}

// WithPolicy returns s with p set.
func (s Score) WithPolicy(p Policy) Score {
	if p >= numPolicies {
		panic(fmt.Sprintf("Score.WithPolicy: invalid policy %d", uint8(p)))
	}
	s.policies |= 1 << p
	return s
}

// WithoutPolicy returns s with p cleared. Clearing a sticky policy is a caller
// bug and panics, even when the policy is not currently set.
func (s Score) WithoutPolicy(p Policy) Score {
	if p.IsSticky() {
		panic(fmt.Sprintf("Score.WithoutPolicy: %s is sticky and cannot be cleared", p))
	}
	s.policies &^= 1 << p
	return s
}

// Merge returns next with every sticky policy of s carried over. Owners use it
// when recomputing a score so that sticky facts are never lost.
func (s Score) Merge(next Score) Score {
	next.policies |= s.policies & stickyPolicies
	return next
}

// Policies lists the set policies in enumeration order.
func (s Score) Policies() []Policy {
	var out []Policy
	for p := Policy(0); p < numPolicies; p++ {
		if s.HasPolicy(p) {
			out = append(out, p)
		}
	}
	return out
}

// LegacyInt returns the backward-compatible integer score used by callers that
// predate policy ranking.
func (s Score) LegacyInt() int {
	return s.legacyScore(false)
}

// LegacyIntAsValidated returns the legacy int as if the network had validated.
func (s Score) LegacyIntAsValidated() int {
	return s.legacyScore(true)
}

func (s Score) legacyScore(pretendValidated bool) int {
	// A network the user picked keeps the top score so it is not torn down
	// before the user can prefer it.
	if s.HasPolicy(PolicyEverUserSelected) &&
		(s.HasPolicy(PolicyAcceptUnvalidated) || pretendValidated) {
		return LegacyIntMax
	}
	score := s.legacyInt
	if !s.HasPolicy(PolicyIsValidated) && !pretendValidated && !s.HasPolicy(PolicyIsVPN) {
		score -= unvalidatedPenalty
	}
	return max(score, 0)
}

func (s Score) String() string {
	ps := s.Policies()
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.String()
	}
	return fmt.Sprintf("Score(%d, [%s])", s.legacyInt, strings.Join(names, ","))
}
