package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netrank/netrank/ranker"
)

func TestWriteDecision_PrintsWinner(t *testing.T) {
	// GIVEN the home scenario
	s, err := ParseScenario([]byte(homeScenario))
	require.NoError(t, err)
	var buf bytes.Buffer

	// WHEN it is ranked without explanation
	rec := writeDecision(&buf, s, ranker.NewRanker(ranker.Configuration{}), false)

	// THEN one summary line names the winner and the deciding step
	assert.Equal(t, "wifi0", rec.Winner)
	assert.Equal(t, "request default: winner=wifi0 decided-by="+rec.DecidedBy+"\n", buf.String())
}

func TestWriteDecision_Explain_PrintsSteps(t *testing.T) {
	s, err := ParseScenario([]byte(homeScenario))
	require.NoError(t, err)
	var buf bytes.Buffer

	rec := writeDecision(&buf, s, ranker.NewRanker(ranker.Configuration{}), true)

	out := buf.String()
	assert.Contains(t, out, "satisfying: [wifi0 cell0]")
	require.NotEmpty(t, rec.Steps)
	for _, st := range rec.Steps {
		assert.Contains(t, out, st.Step)
	}
}

func TestWriteDecision_NoSatisfier_PrintsNone(t *testing.T) {
	// GIVEN a request nobody can satisfy
	s, err := ParseScenario([]byte(`
request:
  required: [mms]
candidates:
  - id: wifi0
    transports: [wifi]
    capabilities: [internet]
`))
	require.NoError(t, err)
	var buf bytes.Buffer

	// WHEN ranked
	writeDecision(&buf, s, ranker.NewRanker(ranker.Configuration{}), false)

	// THEN no winner is reported
	assert.Equal(t, "request default: winner=none decided-by=none\n", buf.String())
}
