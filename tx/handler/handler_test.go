package handler

import (
	"context"
	"testing"

	"github.com/calehh/agro-gov/state"
	"github.com/calehh/agro-gov/tx"
	"github.com/calehh/agro-gov/types"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T) (*state.State, []byte) {
	t.Helper()
	db, err := state.NewMemStateDB(cmtlog.NewNopLogger())
	require.NoError(t, err)
	st := db.NewState()
	st.SetHeight(1)
	require.NoError(t, st.SetRules(types.DefaultAppState("").Rules))
	pub := ed25519.GenPrivKey().PubKey().Bytes()
	return st, pub
}

func TestProcessWritesOnSuccess(t *testing.T) {
	st, pub := newTestState(t)
	h := NewTxHandlers(cmtlog.NewNopLogger())[tx.AgroTxTypeStake]

	btx := &tx.AgroTx{Type: tx.AgroTxTypeStake, PubKey: pub, Tx: &tx.StakeTx{Amount: 5}}
	res, err := h.Process(context.Background(), st, btx)
	require.NoError(t, err)
	require.Zero(t, res.Code, res.Log)
	require.Len(t, res.Events, 1)
	assert.Equal(t, types.EventStakeType, res.Events[0].Type)

	stake, err := st.GetStake(state.AddressOf(pub))
	require.NoError(t, err)
	require.NotNil(t, stake)
	assert.EqualValues(t, 5, stake.StakedAmount)
}

func TestCheckDiscardsWrites(t *testing.T) {
	st, pub := newTestState(t)
	h := NewTxHandlers(cmtlog.NewNopLogger())[tx.AgroTxTypeStake]

	res, err := h.Check(context.Background(), st, &tx.AgroTx{Type: tx.AgroTxTypeStake, PubKey: pub, Tx: &tx.StakeTx{Amount: 5}})
	require.NoError(t, err)
	assert.Zero(t, res.Code)

	stake, err := st.GetStake(state.AddressOf(pub))
	require.NoError(t, err)
	assert.Nil(t, stake)
}

func TestProcessFailure(t *testing.T) {
	st, pub := newTestState(t)
	handlers := NewTxHandlers(cmtlog.NewNopLogger())

	res, err := handlers[tx.AgroTxTypeVote].Process(context.Background(), st, &tx.AgroTx{
		Type: tx.AgroTxTypeVote, PubKey: pub, Tx: &tx.VoteTx{Proposal: 3, Support: true},
	})
	require.NoError(t, err)
	assert.Equal(t, CodespaceGov, res.Codespace)
	assert.EqualValues(t, 106, res.Code)
	assert.Empty(t, res.Events)

	res, err = handlers[tx.AgroTxTypeVote].Process(context.Background(), st, &tx.AgroTx{
		Type: tx.AgroTxTypeVote, PubKey: pub, Tx: &tx.StakeTx{Amount: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, CodespaceTx, res.Codespace)
	assert.EqualValues(t, 2, res.Code)
}

func TestHandlersCoverAllTypes(t *testing.T) {
	handlers := NewTxHandlers(cmtlog.NewNopLogger())
	for tp := tx.AgroTxTypeStake; tp <= tx.AgroTxTypeReportUsage; tp++ {
		assert.Contains(t, handlers, tp, tp.String())
	}
	assert.NotContains(t, handlers, tx.AgroTxTypeUnknown)
}
