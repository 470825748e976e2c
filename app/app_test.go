package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/calehh/agro-gov/config"
	"github.com/calehh/agro-gov/crypto"
	"github.com/calehh/agro-gov/state"
	"github.com/calehh/agro-gov/tx"
	"github.com/calehh/agro-gov/tx/handler"
	"github.com/calehh/agro-gov/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChainID = "agro-test"

type testChain struct {
	t      *testing.T
	app    *AgroApp
	height int64
}

func newTestChain(t *testing.T, owner string) *testChain {
	t.Helper()
	db, err := state.NewMemStateDB(cmtlog.NewNopLogger())
	require.NoError(t, err)
	app := NewAgroAppWithDB(config.DefaultAppConfig(t.TempDir()), db, prometheus.NewRegistry(), cmtlog.NewNopLogger())

	appState := types.DefaultAppState(owner)
	appState.VotingParams.VotingDelay = 1
	appState.VotingParams.VotingPeriod = 2
	dat, err := json.Marshal(appState)
	require.NoError(t, err)
	res, err := app.InitChain(context.Background(), &abcitypes.RequestInitChain{
		ChainId:       testChainID,
		AppStateBytes: dat,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.AppHash)
	return &testChain{t: t, app: app}
}

func (c *testChain) signed(pv *crypto.PV, nonce uint64, payload any) []byte {
	c.t.Helper()
	btx, err := pv.SignTx(testChainID, nonce, payload)
	require.NoError(c.t, err)
	dat, err := tx.MarshalAgroTx(btx)
	require.NoError(c.t, err)
	return dat
}

// block finalizes and commits one block holding txs.
func (c *testChain) block(txs ...[]byte) []*abcitypes.ExecTxResult {
	c.t.Helper()
	c.height++
	ctx := context.Background()
	res, err := c.app.FinalizeBlock(ctx, &abcitypes.RequestFinalizeBlock{Height: c.height, Txs: txs})
	require.NoError(c.t, err)
	_, err = c.app.Commit(ctx, &abcitypes.RequestCommit{})
	require.NoError(c.t, err)

	info, err := c.app.Info(ctx, &abcitypes.RequestInfo{})
	require.NoError(c.t, err)
	require.Equal(c.t, c.height, info.LastBlockHeight)
	require.Equal(c.t, res.AppHash, info.LastBlockAppHash)
	return res.TxResults
}

func (c *testChain) query(path string, req QueryRequest, out any) *abcitypes.ResponseQuery {
	c.t.Helper()
	dat, err := json.Marshal(req)
	require.NoError(c.t, err)
	res, err := c.app.Query(context.Background(), &abcitypes.RequestQuery{Path: path, Data: dat})
	require.NoError(c.t, err)
	if res.Code == 0 && out != nil {
		require.NoError(c.t, json.Unmarshal(res.Value, out))
	}
	return res
}

func requireOK(t *testing.T, res *abcitypes.ExecTxResult) {
	t.Helper()
	require.Zero(t, res.Code, res.Log)
}

func TestGovernanceAndCompliance(t *testing.T) {
	owner, user := crypto.GenPV(), crypto.GenPV()
	c := newTestChain(t, owner.Address())

	var admins []string
	c.query("/admins", QueryRequest{}, &admins)
	assert.Equal(t, []string{owner.Address()}, admins)

	// height 1: stake and propose, voting opens at 2 and ends at 4
	res := c.block(
		c.signed(owner, 0, &tx.StakeTx{Amount: 100}),
		c.signed(owner, 1, &tx.ProposeRuleTx{Description: "tighten usage ceilings", MaxPrimaryLimit: 10, MaxSecondaryLimit: 50, ReviewPeriod: 30}),
	)
	requireOK(t, res[0])
	requireOK(t, res[1])
	require.Len(t, res[1].Events, 1)
	proposal := types.DecodeEventProposal(res[1].Events[0])
	require.NotNil(t, proposal)
	assert.EqualValues(t, 2, proposal.StartBlock)
	assert.EqualValues(t, 4, proposal.EndBlock)

	// height 2: the user holds no stake, its vote fails but uses up nonce 0
	res = c.block(
		c.signed(owner, 2, &tx.VoteTx{Proposal: proposal.ProposalID, Support: true}),
		c.signed(user, 0, &tx.VoteTx{Proposal: proposal.ProposalID, Support: true}),
	)
	requireOK(t, res[0])
	assert.Equal(t, handler.CodespaceGov, res[1].Codespace)
	assert.EqualValues(t, 102, res[1].Code)

	// height 3: replaying nonce 0 is rejected, nonce 1 goes through
	res = c.block(
		c.signed(user, 0, &tx.StakeTx{Amount: 10}),
		c.signed(user, 1, &tx.StakeTx{Amount: 10}),
	)
	assert.Equal(t, handler.CodespaceTx, res[0].Codespace)
	assert.EqualValues(t, 5, res[0].Code)
	requireOK(t, res[1])

	var ps ProposalStateRecord
	c.query("/proposal_state", QueryRequest{Proposal: proposal.ProposalID}, &ps)
	assert.Equal(t, types.ProposalStateActive.String(), ps.State)

	// height 4: voting ended, anyone may execute
	res = c.block(c.signed(user, 2, &tx.ExecuteProposalTx{Proposal: proposal.ProposalID}))
	requireOK(t, res[0])

	var rules types.RuleSet
	c.query("/rules", QueryRequest{}, &rules)
	assert.Equal(t, types.RuleSet{MaxPrimaryLimit: 10, MaxSecondaryLimit: 50, ReviewPeriod: 30}, rules)
	c.query("/proposal_state", QueryRequest{Proposal: proposal.ProposalID}, &ps)
	assert.Equal(t, types.ProposalStateExecuted.String(), ps.State)

	// height 5: the owner reports usage and the user scores period 0
	res = c.block(
		c.signed(owner, 3, &tx.ReportUsageTx{FarmID: 1, Category: types.UsagePrimary, Amount: 50, Timestamp: 10}),
		c.signed(owner, 4, &tx.ReportUsageTx{FarmID: 1, Category: types.UsageSecondary, Amount: 100, Timestamp: 11}),
		c.signed(user, 3, &tx.CheckComplianceTx{FarmID: 1, Start: 0, End: 100}),
		c.signed(user, 4, &tx.CheckComplianceTx{FarmID: 1, Start: 0, End: 100}),
	)
	requireOK(t, res[0])
	requireOK(t, res[1])
	requireOK(t, res[2])
	ev := types.DecodeEventCompliance(res[2].Events[0])
	require.NotNil(t, ev)
	assert.EqualValues(t, 60, ev.Score)
	assert.False(t, ev.Compliant)
	assert.Equal(t, handler.CodespaceCompliance, res[3].Codespace)
	assert.EqualValues(t, 205, res[3].Code)

	var score types.ComplianceScore
	c.query("/scores", QueryRequest{FarmID: 1, Period: 0}, &score)
	assert.EqualValues(t, 60, score.Score)
	assert.EqualValues(t, 5, score.ComputedAt)

	var logs []types.UsageLog
	c.query("/logs", QueryRequest{FarmID: 1, Start: 0, End: 100}, &logs)
	assert.Len(t, logs, 2)

	var acnt state.Account
	c.query("/accounts", QueryRequest{Account: user.Address()}, &acnt)
	assert.EqualValues(t, 5, acnt.Nonce)

	// height 6: the user is no owner, reporting is refused
	res = c.block(c.signed(user, 5, &tx.ReportUsageTx{FarmID: 1, Category: types.UsagePrimary, Amount: 1, Timestamp: 12}))
	assert.Equal(t, handler.CodespaceCompliance, res[0].Codespace)
	assert.EqualValues(t, 214, res[0].Code)
}

func TestFailedTxLeavesNoWrites(t *testing.T) {
	owner := crypto.GenPV()
	c := newTestChain(t, owner.Address())

	res := c.block(c.signed(owner, 0, &tx.ProposeRuleTx{Description: "too short", MaxPrimaryLimit: 1, MaxSecondaryLimit: 1, ReviewPeriod: 1}))
	assert.EqualValues(t, 105, res[0].Code)

	q := c.query("/proposals", QueryRequest{Proposal: 0}, nil)
	assert.Equal(t, handler.CodespaceGov, q.Codespace)
	assert.EqualValues(t, 106, q.Code)
}

func TestCheckTx(t *testing.T) {
	owner, user := crypto.GenPV(), crypto.GenPV()
	c := newTestChain(t, owner.Address())
	ctx := context.Background()

	res, err := c.app.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: c.signed(owner, 0, &tx.StakeTx{Amount: 10})})
	require.NoError(t, err)
	assert.Zero(t, res.Code, res.Log)

	res, err = c.app.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: c.signed(owner, 3, &tx.StakeTx{Amount: 10})})
	require.NoError(t, err)
	assert.Zero(t, res.Code, "mempool accepts nonces ahead of the account")

	res, err = c.app.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: c.signed(user, 0, &tx.AddAdminTx{Account: user.Address()})})
	require.NoError(t, err)
	assert.Equal(t, handler.CodespaceGov, res.Codespace)
	assert.EqualValues(t, 111, res.Code)

	btx, err := user.SignTx("another-chain", 0, &tx.StakeTx{Amount: 1})
	require.NoError(t, err)
	dat, err := tx.MarshalAgroTx(btx)
	require.NoError(t, err)
	res, err = c.app.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: dat})
	require.NoError(t, err)
	assert.Equal(t, handler.CodespaceTx, res.Codespace)
	assert.EqualValues(t, 6, res.Code)

	res, err = c.app.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: []byte("garbage")})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Code)
}

func TestCheckTxAtNextHeight(t *testing.T) {
	owner := crypto.GenPV()
	c := newTestChain(t, owner.Address())
	ctx := context.Background()
	check := func(dat []byte) *abcitypes.ResponseCheckTx {
		t.Helper()
		res, err := c.app.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: dat})
		require.NoError(t, err)
		return res
	}

	// height 1: stake locked until 3, voting runs from 2 to 4
	res := c.block(
		c.signed(owner, 0, &tx.StakeTx{Amount: 100}),
		c.signed(owner, 1, &tx.ProposeRuleTx{Description: "tighten usage ceilings", MaxPrimaryLimit: 10, MaxSecondaryLimit: 50, ReviewPeriod: 30}),
	)
	requireOK(t, res[0])
	requireOK(t, res[1])

	vote := c.signed(owner, 2, &tx.VoteTx{Proposal: 0, Support: true})
	r := check(vote)
	assert.Zero(t, r.Code, "a vote for the block that opens voting is accepted: %s", r.Log)
	requireOK(t, c.block(vote)[0])

	r = check(c.signed(owner, 3, &tx.UnstakeTx{Amount: 100}))
	assert.Zero(t, r.Code, "an unstake for the block the lock ends in is accepted: %s", r.Log)

	c.block()
	execute := c.signed(owner, 3, &tx.ExecuteProposalTx{Proposal: 0})
	r = check(execute)
	assert.Zero(t, r.Code, "an execute for the block voting ends in is accepted: %s", r.Log)
	requireOK(t, c.block(execute)[0])

	info, err := c.app.Info(ctx, &abcitypes.RequestInfo{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, info.LastBlockHeight, "CheckTx leaves the committed height alone")
}

func TestQueryServesCommittedState(t *testing.T) {
	owner := crypto.GenPV()
	c := newTestChain(t, owner.Address())
	ctx := context.Background()

	res, err := c.app.FinalizeBlock(ctx, &abcitypes.RequestFinalizeBlock{
		Height: 1,
		Txs:    [][]byte{c.signed(owner, 0, &tx.StakeTx{Amount: 1000})},
	})
	require.NoError(t, err)
	requireOK(t, res.TxResults[0])

	q := c.query("/stakes", QueryRequest{Account: owner.Address()}, nil)
	assert.Equal(t, CodeQueryNotFound, q.Code, "finalized but uncommitted writes are not served")
	assert.Zero(t, q.Height)

	_, err = c.app.Commit(ctx, &abcitypes.RequestCommit{})
	require.NoError(t, err)
	var stake types.Stake
	q = c.query("/stakes", QueryRequest{Account: owner.Address()}, &stake)
	require.Zero(t, q.Code, q.Log)
	assert.EqualValues(t, 1, q.Height)
	assert.EqualValues(t, 1000, stake.StakedAmount)
}

func TestProposalHandling(t *testing.T) {
	owner, user := crypto.GenPV(), crypto.GenPV()
	c := newTestChain(t, owner.Address())
	ctx := context.Background()

	txs := [][]byte{
		c.signed(owner, 0, &tx.StakeTx{Amount: 1}),
		c.signed(owner, 2, &tx.StakeTx{Amount: 1}),
		c.signed(user, 0, &tx.StakeTx{Amount: 1}),
		c.signed(owner, 1, &tx.StakeTx{Amount: 1}),
	}
	prep, err := c.app.PrepareProposal(ctx, &abcitypes.RequestPrepareProposal{Txs: txs, MaxTxBytes: 1 << 20})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{txs[0], txs[2], txs[3]}, prep.Txs)

	proc, err := c.app.ProcessProposal(ctx, &abcitypes.RequestProcessProposal{Txs: prep.Txs})
	require.NoError(t, err)
	assert.Equal(t, abcitypes.ResponseProcessProposal_ACCEPT, proc.Status)

	proc, err = c.app.ProcessProposal(ctx, &abcitypes.RequestProcessProposal{Txs: txs})
	require.NoError(t, err)
	assert.Equal(t, abcitypes.ResponseProcessProposal_REJECT, proc.Status)

	prep, err = c.app.PrepareProposal(ctx, &abcitypes.RequestPrepareProposal{Txs: txs, MaxTxBytes: int64(len(txs[0]))})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{txs[0]}, prep.Txs)
}

func TestQueryErrors(t *testing.T) {
	owner := crypto.GenPV()
	c := newTestChain(t, owner.Address())

	res, err := c.app.Query(context.Background(), &abcitypes.RequestQuery{Path: "/nope"})
	require.NoError(t, err)
	assert.Equal(t, CodeQueryNotFound, res.Code)

	res, err = c.app.Query(context.Background(), &abcitypes.RequestQuery{Path: "/scores", Data: []byte("{")})
	require.NoError(t, err)
	assert.Equal(t, CodeQueryInvalid, res.Code)

	assert.Equal(t, CodeQueryNotFound, c.query("/scores", QueryRequest{FarmID: 1}, nil).Code)
	assert.Equal(t, CodeQueryInvalid, c.query("/accounts", QueryRequest{}, nil).Code)
	assert.Equal(t, CodeQueryNotFound, c.query("/accounts", QueryRequest{Account: owner.Address()}, nil).Code)

	var params ParamsRecord
	c.query("/params", QueryRequest{}, &params)
	assert.EqualValues(t, 2, params.Voting.VotingPeriod)
	assert.Equal(t, types.DefaultComplianceParams(), params.Compliance)
}

func TestGenesisOwnerFromValidator(t *testing.T) {
	pv := crypto.GenPV()
	appState, err := genesisAppState(&abcitypes.RequestInitChain{
		ChainId:    testChainID,
		Validators: []abcitypes.ValidatorUpdate{abcitypes.Ed25519ValidatorUpdate(pv.PublicKey(), 10)},
	})
	require.NoError(t, err)
	assert.Equal(t, pv.Address(), appState.Owner)

	_, err = genesisAppState(&abcitypes.RequestInitChain{ChainId: testChainID})
	require.ErrorIs(t, err, ErrNoGenesisOwner)
}
