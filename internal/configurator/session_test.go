package configurator

import (
	"testing"

	"github.com/stretchr/testify/require"

	qerr "github.com/sensorline/levelquote/internal/errors"
	"github.com/sensorline/levelquote/internal/money"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	sess, err := StartConfiguration(levelSwitchSnapshot())
	require.NoError(t, err)
	return sess
}

func TestStartConfigurationSeedsDefaults(t *testing.T) {
	sess := newSession(t)

	require.Equal(t, StateActive, sess.State())
	require.Equal(t, map[string]string{
		"Voltage":         "120",
		"Material":        "S",
		"Probe Length":    "10",
		"Connection Type": "NPT",
		"Insulator":       "D",
	}, sess.Selected())
	require.True(t, sess.Price().Equal(money.FromFloat(680)))
	require.Empty(t, sess.MissingRequired())
}

func TestSelectOptionRecomputesPrice(t *testing.T) {
	sess := newSession(t)

	require.NoError(t, sess.SelectOption("Material", "H"))
	require.True(t, sess.Price().Equal(money.FromFloat(790)))

	require.NoError(t, sess.SelectOption("Probe Length", "24"))
	require.True(t, sess.Price().Equal(money.FromFloat(1010)))
}

func TestSelectOptionIsIdempotent(t *testing.T) {
	sess := newSession(t)

	require.NoError(t, sess.SelectOption("Housing", "XP"))
	price := sess.Price()
	model := sess.ModelNumber()

	require.NoError(t, sess.SelectOption("Housing", "XP"))
	require.True(t, sess.Price().Equal(price), "re-selecting must not double-apply the adder")
	require.Equal(t, model, sess.ModelNumber())
}

func TestSelectOptionRejectsInvalidChoiceUnchanged(t *testing.T) {
	sess := newSession(t)
	require.NoError(t, sess.SelectOption("Material", "T"))

	before := sess.Selected()
	price := sess.Price()

	err := sess.SelectOption("Probe Length", "72")
	require.Error(t, err)
	require.True(t, qerr.IsType(err, qerr.TypeInvalidChoice))
	require.Equal(t, before, sess.Selected(), "rejected selection must leave state unchanged")
	require.True(t, sess.Price().Equal(price))
}

func TestSelectOptionRejectsUnknownOption(t *testing.T) {
	sess := newSession(t)

	err := sess.SelectOption("Paint Color", "RED")
	require.True(t, qerr.IsType(err, qerr.TypeNotFound))
}

func TestSelectOptionRejectsGatedOption(t *testing.T) {
	sess := newSession(t)

	err := sess.SelectOption("Flange Rating", "150")
	require.True(t, qerr.IsType(err, qerr.TypeInvalidChoice))
}

func TestOverwriteCascadesDependentClear(t *testing.T) {
	sess := newSession(t)

	require.NoError(t, sess.SelectOption("Connection Type", "FLG"))
	require.NoError(t, sess.SelectOption("Flange Rating", "150"))
	require.True(t, sess.Price().Equal(money.FromFloat(835)), "680 + 60 flange + 95 rating")

	// Going back to NPT invalidates the flange rating; it is cleared, not
	// left dangling and not an error.
	require.NoError(t, sess.SelectOption("Connection Type", "NPT"))
	selected := sess.Selected()
	require.NotContains(t, selected, "Flange Rating")
	require.True(t, sess.Price().Equal(money.FromFloat(680)))
}

func TestSelectOptionRejectsPeerRuleConflict(t *testing.T) {
	sess := newSession(t)
	require.NoError(t, sess.SelectOption("Material", "T"))

	// Ceramic conflicts with the PTFE sleeve. A conflict between two
	// explicit selections is rejected, never silently resolved.
	err := sess.SelectOption("Insulator", "C")
	require.True(t, qerr.IsType(err, qerr.TypeInvalidChoice))
	require.Equal(t, "T", sess.Selected()["Material"])
	require.Equal(t, "D", sess.Selected()["Insulator"])
}

func TestClearOptionRestoresPriceExactly(t *testing.T) {
	sess := newSession(t)
	before := sess.Price()

	require.NoError(t, sess.SelectOption("Housing", "XP"))
	require.True(t, sess.Price().Equal(money.FromFloat(905)))

	require.NoError(t, sess.ClearOption("Housing"))
	require.True(t, sess.Price().Equal(before))

	// Clearing an unselected option is a no-op.
	require.NoError(t, sess.ClearOption("Housing"))
	require.True(t, sess.Price().Equal(before))
}

func TestFinalizeRequiresAllRequiredOptions(t *testing.T) {
	sess := newSession(t)
	require.NoError(t, sess.ClearOption("Material"))

	_, err := sess.Finalize()
	require.True(t, qerr.IsType(err, qerr.TypeIncompleteConfiguration))
	require.Equal(t, []string{"Material"}, sess.MissingRequired())
	require.Equal(t, StateActive, sess.State())
}

func TestFinalizeFreezesSession(t *testing.T) {
	sess := newSession(t)
	require.NoError(t, sess.SelectOption("Material", "H"))
	require.NoError(t, sess.SelectOption("Probe Length", "24"))
	require.NoError(t, sess.SelectOption("Housing", "XP"))

	finalized, err := sess.Finalize()
	require.NoError(t, err)
	require.Equal(t, StateFinalized, sess.State())
	require.Equal(t, "LS700-120-H-24-XP", finalized.ModelNumber)
	require.True(t, finalized.Price.Equal(money.FromFloat(1235)))
	require.Equal(t, sess.Selected(), finalized.SelectedOptions)

	err = sess.SelectOption("Voltage", "240")
	require.True(t, qerr.IsType(err, qerr.TypeAlreadyFinalized))

	err = sess.ClearOption("Voltage")
	require.True(t, qerr.IsType(err, qerr.TypeAlreadyFinalized))

	_, err = sess.Finalize()
	require.True(t, qerr.IsType(err, qerr.TypeAlreadyFinalized))
}

func TestSessionsShareNoState(t *testing.T) {
	first := newSession(t)
	second := newSession(t)

	require.NoError(t, first.SelectOption("Material", "H"))
	require.Equal(t, "S", second.Selected()["Material"])
	require.NotEqual(t, first.ID(), second.ID())
}
