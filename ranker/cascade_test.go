package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netrank/netrank/ranker/trace"
)

func TestCascade_StepOrder(t *testing.T) {
	tests := []struct {
		name      string
		networks  []*Network
		expected  string
		decidedBy string
	}{
		{
			name:      "vpn beats validated ethernet",
			networks:  []*Network{ethernet("eth", PolicyIsValidated), newNetwork("vpn", NewTransportSet(TransportVPN), PolicyIsVPN)},
			expected:  "vpn",
			decidedBy: StepVPN,
		},
		{
			name: "user-selected accept-unvalidated beats validated",
			networks: []*Network{
				ethernet("eth", PolicyIsValidated),
				wifi("chosen", PolicyEverUserSelected, PolicyAcceptUnvalidated),
			},
			expected:  "chosen",
			decidedBy: StepUserSelected,
		},
		{
			name: "user-selected alone is not enough",
			networks: []*Network{
				wifi("chosen", PolicyEverUserSelected),
				cell("cell", PolicyIsValidated),
			},
			expected:  "cell",
			decidedBy: StepValidated,
		},
		{
			name:      "accept-unvalidated counts as validated",
			networks:  []*Network{wifi("wifi"), cell("cell", PolicyAcceptUnvalidated)},
			expected:  "cell",
			decidedBy: StepValidated,
		},
		{
			name:      "non-exiting beats exiting ethernet",
			networks:  []*Network{ethernet("eth", PolicyIsValidated, PolicyExiting), cell("cell", PolicyIsValidated)},
			expected:  "cell",
			decidedBy: StepNotExiting,
		},
		{
			name: "primary cellular beats secondary cellular",
			networks: []*Network{
				cell("secondary", PolicyIsValidated),
				cell("primary", PolicyIsValidated, PolicyTransportPrimary),
			},
			expected:  "primary",
			decidedBy: StepTransportPrimary,
		},
		{
			name:      "ethernet beats wifi",
			networks:  []*Network{wifi("wifi", PolicyIsValidated), ethernet("eth", PolicyIsValidated)},
			expected:  "eth",
			decidedBy: StepTransport(TransportEthernet),
		},
		{
			name: "bluetooth beats cellular",
			networks: []*Network{
				cell("cell", PolicyIsValidated),
				newNetwork("bt", NewTransportSet(TransportBluetooth), PolicyIsValidated),
			},
			expected:  "bt",
			decidedBy: StepTransport(TransportBluetooth),
		},
		{
			name:      "live network beats destroyed one",
			networks:  []*Network{cell("old", PolicyIsValidated, PolicyDestroyed), cell("new", PolicyIsValidated)},
			expected:  "new",
			decidedBy: StepNotDestroyed,
		},
		{
			name:      "transport outranks destroyed",
			networks:  []*Network{wifi("wifi", PolicyIsValidated, PolicyDestroyed), cell("cell", PolicyIsValidated)},
			expected:  "wifi",
			decidedBy: StepTransport(TransportWiFi),
		},
		{
			name: "unlisted transports fall through to position",
			networks: []*Network{
				newNetwork("usb", NewTransportSet(TransportUSB), PolicyIsValidated),
				newNetwork("thread", NewTransportSet(TransportThread), PolicyIsValidated),
			},
			expected:  "usb",
			decidedBy: StepFirst,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			winner, rec := legacyRanker().Explain(internetRequest, tt.networks, nil)
			assert.Equal(t, tt.expected, winnerID(winner))
			assert.Equal(t, tt.decidedBy, rec.DecidedBy)
		})
	}
}

func TestCascade_SeveralVPNs_ContinueToLaterSteps(t *testing.T) {
	// GIVEN two VPNs and a non-VPN; one VPN is exiting
	networks := []*Network{
		newNetwork("vpn-exiting", NewTransportSet(TransportVPN), PolicyIsVPN, PolicyIsValidated, PolicyExiting),
		newNetwork("vpn", NewTransportSet(TransportVPN), PolicyIsVPN, PolicyIsValidated),
		ethernet("eth", PolicyIsValidated),
	}

	// WHEN ranked
	winner, rec := legacyRanker().Explain(internetRequest, networks, nil)

	// THEN the VPN step narrows and the exiting step decides
	assert.Equal(t, "vpn", winnerID(winner))
	assert.Equal(t, StepNotExiting, rec.DecidedBy)
	require.GreaterOrEqual(t, len(rec.Steps), 2)
	assert.Equal(t, StepVPN, rec.Steps[1].Step)
	assert.Equal(t, trace.OutcomeNarrowed, rec.Steps[1].Outcome)
	assert.Equal(t, []string{"eth"}, rec.Steps[1].Rejected)
}

func TestYieldToBadWiFi_SomeYielders_NonYieldersWin(t *testing.T) {
	// GIVEN a preferred bad wifi, a yielding cellular and a non-yielding cellular
	networks := []*Network{
		wifi("wifi", PolicyEverValidated),
		cell("yielder", PolicyIsValidated, PolicyYieldToBadWiFi),
		cell("steady", PolicyIsValidated),
	}

	// WHEN ranked
	winner, rec := legacyRanker().Explain(internetRequest, networks, nil)

	// THEN the non-yielding validated network beats both
	assert.Equal(t, "steady", winnerID(winner))
	assert.Equal(t, StepValidated, rec.DecidedBy)
}

func TestYieldToBadWiFi_AllYield_BadWiFiComparedByLaterSteps(t *testing.T) {
	// GIVEN a preferred bad wifi that is exiting and a yielding cellular
	networks := []*Network{
		wifi("wifi", PolicyEverValidated, PolicyExiting),
		cell("cell", PolicyIsValidated, PolicyYieldToBadWiFi),
	}

	// WHEN ranked
	winner, rec := legacyRanker().Explain(internetRequest, networks, nil)

	// THEN the bad wifi is readmitted but loses the exiting step
	assert.Equal(t, "cell", winnerID(winner))
	assert.Equal(t, StepNotExiting, rec.DecidedBy)
	validated := findStep(t, rec, StepValidated)
	assert.ElementsMatch(t, []string{"wifi", "cell"}, validated.Accepted)
	assert.Equal(t, trace.OutcomeUnanimous, validated.Outcome)
}

func TestYieldToBadWiFi_OnlyPreferredBadWiFiReadmitted(t *testing.T) {
	// GIVEN a preferred bad wifi, a non-preferred bad wifi and a yielding cellular
	networks := []*Network{
		wifi("unpreferred"),
		wifi("preferred", PolicyEverValidated),
		cell("cell", PolicyIsValidated, PolicyYieldToBadWiFi),
	}

	// WHEN explained
	winner, rec := legacyRanker().Explain(internetRequest, networks, nil)

	// THEN the non-preferred wifi stays rejected at the validation step
	validated := findStep(t, rec, StepValidated)
	assert.Equal(t, []string{"preferred", "cell"}, validated.Accepted)
	assert.Equal(t, []string{"unpreferred"}, validated.Rejected)
	assert.Equal(t, "preferred", winnerID(winner))
}

func TestPreferredBadWiFi_Rules(t *testing.T) {
	tests := []struct {
		name     string
		active   bool
		wifi     *Network
		wifiWins bool
	}{
		{"legacy: ever-validated", false, wifi("wifi", PolicyEverValidated), true},
		{"legacy: evaluated only", false, wifi("wifi", PolicyEverEvaluated), false},
		{"active: evaluated non-portal", true, wifi("wifi", PolicyEverEvaluated), true},
		{"active: still evaluating", true, wifi("wifi"), false},
		{"active: ever-validated but never evaluated", true, wifi("wifi", PolicyEverValidated), false},
		{"active: unresolved captive portal", true, withCaps(wifi("wifi", PolicyEverEvaluated), CapabilityCaptivePortal), false},
		{"active: portal that once validated", true, withCaps(wifi("wifi", PolicyEverEvaluated, PolicyEverValidated), CapabilityCaptivePortal), true},
		{"legacy: avoided when unvalidated", false, wifi("wifi", PolicyEverValidated, PolicyAvoidedWhenUnvalidated), false},
		{"active: avoided when unvalidated", true, wifi("wifi", PolicyEverEvaluated, PolicyAvoidedWhenUnvalidated), false},
		{"not wifi", true, newNetwork("wifi", NewTransportSet(TransportBluetooth), PolicyEverEvaluated, PolicyEverValidated), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			networks := []*Network{tt.wifi, cell("cell", PolicyIsValidated, PolicyYieldToBadWiFi)}
			r := NewRanker(Configuration{ActivelyPreferBadWiFi: tt.active})
			winner := r.BestNetwork(internetRequest, networks, nil)
			assert.Equal(t, tt.wifiWins, winnerID(winner) == "wifi", "winner was %s", winnerID(winner))
		})
	}
}

func TestTransportPrimary_OnlyDominatesSameSignature(t *testing.T) {
	// GIVEN a primary and a secondary cellular plus a wifi without any primary
	networks := []*Network{
		cell("secondary", PolicyIsValidated),
		cell("primary", PolicyIsValidated, PolicyTransportPrimary),
		wifi("wifi", PolicyIsValidated),
	}

	// WHEN explained
	winner, rec := legacyRanker().Explain(internetRequest, networks, nil)

	// THEN only the secondary cellular is dropped and wifi then wins on transport
	step := findStep(t, rec, StepTransportPrimary)
	assert.Equal(t, []string{"primary", "wifi"}, step.Accepted)
	assert.Equal(t, []string{"secondary"}, step.Rejected)
	assert.Equal(t, "wifi", winnerID(winner))
	assert.Equal(t, StepTransport(TransportWiFi), rec.DecidedBy)
}

func TestTransportPrimary_DifferentSignatureIsKept(t *testing.T) {
	// GIVEN a cellular primary and a network running over cellular and wifi at once
	networks := []*Network{
		cell("primary", PolicyIsValidated, PolicyTransportPrimary),
		newNetwork("multi", NewTransportSet(TransportCellular, TransportWiFi), PolicyIsValidated),
	}

	// WHEN ranked
	winner := legacyRanker().BestNetwork(internetRequest, networks, nil)

	// THEN the multi-transport network survives the primary step and wins on wifi
	assert.Equal(t, "multi", winnerID(winner))
}

func TestTransportPrimary_TwoPrimariesDifferentTransports(t *testing.T) {
	networks := []*Network{
		cell("cell-secondary", PolicyIsValidated),
		cell("cell-primary", PolicyIsValidated, PolicyTransportPrimary),
		wifi("wifi-secondary", PolicyIsValidated),
		wifi("wifi-primary", PolicyIsValidated, PolicyTransportPrimary),
	}
	winner, rec := legacyRanker().Explain(internetRequest, networks, nil)
	assert.Equal(t, "wifi-primary", winnerID(winner))
	step := findStep(t, rec, StepTransportPrimary)
	assert.ElementsMatch(t, []string{"cell-secondary", "wifi-secondary"}, step.Rejected)
}

func TestExplain_LabelsUnidentifiedCandidatesByPosition(t *testing.T) {
	// GIVEN scoreables without identifiers
	a := &anonymous{score: NewScore(0), caps: Capabilities{Transports: NewTransportSet(TransportCellular)}}
	b := &anonymous{score: NewScore(0, PolicyIsValidated), caps: Capabilities{Transports: NewTransportSet(TransportCellular)}}
	rec := &trace.DecisionRecord{}

	// WHEN the cascade runs with a record
	winner, step := bestByPolicy(&Configuration{}, []Scoreable{a, b}, -1, rec)

	// THEN they are labelled by their input position
	assert.Equal(t, 1, winner)
	assert.Equal(t, StepValidated, step)
	validated := findStep(t, rec, StepValidated)
	assert.Equal(t, []string{"candidate[1]"}, validated.Accepted)
	assert.Equal(t, []string{"candidate[0]"}, validated.Rejected)
}

type anonymous struct {
	score Score
	caps  Capabilities
}

func (a *anonymous) Score() Score               { return a.score }
func (a *anonymous) Capabilities() Capabilities { return a.caps }

func findStep(t *testing.T, rec *trace.DecisionRecord, step string) trace.StepRecord {
	t.Helper()
	for _, s := range rec.Steps {
		if s.Step == step {
			return s
		}
	}
	t.Fatalf("step %q not recorded; steps: %+v", step, rec.Steps)
	return trace.StepRecord{}
}
