package tx

import (
	"encoding/json"
	"testing"

	"github.com/calehh/agro-gov/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalAgroTx(t *testing.T) {
	payloads := []any{
		&StakeTx{Amount: 10},
		&UnstakeTx{Amount: 5},
		&ProposeRuleTx{Description: "lower the ceilings", MaxPrimaryLimit: 1, MaxSecondaryLimit: 2, ReviewPeriod: 3},
		&VoteTx{Proposal: 4, Support: true},
		&ExecuteProposalTx{Proposal: 4},
		&CancelProposalTx{Proposal: 4},
		&AddAdminTx{Account: "ABCD"},
		&SetVotingParamsTx{VotingDelay: 1, VotingPeriod: 2, ProposalThreshold: 3, QuorumPercent: 4},
		&CheckComplianceTx{FarmID: 1, Start: 0, End: 100},
		&SetScoreThresholdTx{Threshold: 70},
		&SetViolationPenaltyTx{Penalty: 10},
		&SetFarmWeightsTx{FarmID: 1, PrimaryWeight: 2, SecondaryWeight: 3},
		&ArchiveScoreTx{FarmID: 1, Period: 0, Version: "v1"},
		&ReportUsageTx{FarmID: 1, Category: types.UsageSecondary, Amount: 9, Timestamp: 42},
	}
	for _, payload := range payloads {
		tp := PayloadType(payload)
		t.Run(tp.String(), func(t *testing.T) {
			require.NotEqual(t, AgroTxTypeUnknown, tp)
			btx := &AgroTx{
				Version: AgroTxVersion1,
				Type:    tp,
				Nonce:   3,
				PubKey:  []byte{1, 2, 3},
				Tx:      payload,
				Sig:     [][]byte{{9}},
			}
			dat, err := MarshalAgroTx(btx)
			require.NoError(t, err)

			got, err := UnmarshalAgroTx(dat)
			require.NoError(t, err)
			assert.Equal(t, btx, got)
		})
	}
}

func TestUnmarshalAgroTxErrors(t *testing.T) {
	_, err := UnmarshalAgroTx([]byte(`{"type":99}`))
	require.ErrorIs(t, err, ErrUnsupportedTxType)

	_, err = UnmarshalAgroTx([]byte(`not json`))
	require.ErrorIs(t, err, ErrUnsupportedTxType)

	_, err = UnmarshalAgroTx([]byte(`{"version":2,"type":1,"tx":{"amount":1}}`))
	require.ErrorIs(t, err, ErrUnsupportedTxVersion)
}

func TestSigDataBindsChainID(t *testing.T) {
	btx := &AgroTx{Version: AgroTxVersion1, Type: AgroTxTypeStake, Tx: &StakeTx{Amount: 1}, Sig: [][]byte{{7}}}

	a, err := btx.SigData([]byte("chain-a"))
	require.NoError(t, err)
	b, err := btx.SigData([]byte("chain-b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Equal(t, [][]byte{{7}}, btx.Sig, "SigData must not touch the signatures")

	var env struct {
		Sig [][]byte `json:"sig"`
	}
	require.NoError(t, json.Unmarshal(a, &env))
	assert.Equal(t, [][]byte{[]byte("chain-a")}, env.Sig)
}

func TestPayloadTypeUnknown(t *testing.T) {
	assert.Equal(t, AgroTxTypeUnknown, PayloadType(StakeTx{}))
	assert.Equal(t, AgroTxTypeUnknown, PayloadType(nil))
}
