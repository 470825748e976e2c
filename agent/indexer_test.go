package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/calehh/agro-gov/types"
	abci "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChain struct {
	blocks map[int64]*coretypes.ResultBlockResults
	latest int64
}

func (f *fakeChain) Status(ctx context.Context) (*coretypes.ResultStatus, error) {
	return &coretypes.ResultStatus{SyncInfo: coretypes.SyncInfo{LatestBlockHeight: f.latest}}, nil
}

func (f *fakeChain) BlockResults(ctx context.Context, height *int64) (*coretypes.ResultBlockResults, error) {
	if res, ok := f.blocks[*height]; ok {
		return res, nil
	}
	return &coretypes.ResultBlockResults{Height: *height}, nil
}

func (f *fakeChain) add(height int64, txs ...*abci.ExecTxResult) {
	f.blocks[height] = &coretypes.ResultBlockResults{Height: height, TxsResults: txs}
	if height > f.latest {
		f.latest = height
	}
}

func okTx(events ...abci.Event) *abci.ExecTxResult {
	return &abci.ExecTxResult{Events: events}
}

func newTestIndexer(t *testing.T, chain *fakeChain) (*gorm.DB, *ChainIndexer) {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "indexer.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	c, err := NewChainIndexerWithDB(cmtlog.NewNopLogger(), db, chain, time.Second)
	require.NoError(t, err)
	return db, c
}

func seedChain() *fakeChain {
	chain := &fakeChain{blocks: make(map[int64]*coretypes.ResultBlockResults)}
	rules := types.RuleSet{MaxPrimaryLimit: 10, MaxSecondaryLimit: 50, ReviewPeriod: 30}
	chain.add(1,
		okTx(types.EncodeEventStake(&types.EventStake{Account: "A", Amount: 100, Total: 100, LockedUntil: 101})),
		okTx(types.EncodeEventStake(&types.EventStake{Account: "B", Amount: 40, Total: 40, LockedUntil: 101})),
		okTx(types.EncodeEventProposal(&types.EventProposal{
			ProposalID: 0, Proposer: "A", Description: "tighten usage ceilings",
			RuleChange: rules, StartBlock: 2, EndBlock: 4,
		})),
	)
	chain.add(2,
		okTx(types.EncodeEventVote(&types.EventVote{ProposalID: 0, Voter: "A", Support: true, Weight: 100})),
		okTx(types.EncodeEventVote(&types.EventVote{ProposalID: 0, Voter: "B", Support: false, Weight: 40})),
		&abci.ExecTxResult{Code: 102, Codespace: "gov", Events: []abci.Event{
			types.EncodeEventVote(&types.EventVote{ProposalID: 0, Voter: "C", Support: true, Weight: 1}),
		}},
	)
	chain.add(4,
		okTx(types.EncodeEventExecuteProposal(&types.EventSettleProposal{ProposalID: 0, Caller: "C", Rules: rules})),
		okTx(types.EncodeEventUnStake(&types.EventUnStake{Account: "B", Amount: 40, Remaining: 0})),
		okTx(types.EncodeEventUnStake(&types.EventUnStake{Account: "A", Amount: 30, Remaining: 70, LockedUntil: 104})),
		okTx(types.EncodeEventCompliance(&types.EventCompliance{FarmID: 1, Period: 0, Score: 60, Violations: 2, TotalApplied: 150})),
	)
	chain.add(5,
		okTx(types.EncodeEventArchiveScore(&types.EventArchiveScore{FarmID: 1, Period: 0, Version: "v1"})),
		okTx(types.EncodeEventCompliance(&types.EventCompliance{FarmID: 1, Period: 0, Score: 100, Compliant: true, TotalApplied: 150})),
	)
	return chain
}

func TestIndexerSync(t *testing.T) {
	chain := seedChain()
	db, c := newTestIndexer(t, chain)
	require.EqualValues(t, 1, c.Height)

	require.NoError(t, c.Sync(context.Background()))
	assert.EqualValues(t, 6, c.Height)

	proposal, err := c.getProposalById(0)
	require.NoError(t, err)
	assert.Equal(t, "A", proposal.Proposer)
	assert.EqualValues(t, 100, proposal.YesVotes)
	assert.EqualValues(t, 40, proposal.NoVotes)
	assert.EqualValues(t, types.ProposalStateExecuted, proposal.Status)
	assert.EqualValues(t, 4, proposal.SettleHeight)

	votes, err := c.getVotesByProposal(0, 0, 10)
	require.NoError(t, err)
	require.Len(t, votes, 2, "votes of failed txs are not indexed")

	stakes, total, err := c.getStakes(0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, stakes, 1)
	assert.Equal(t, "A", stakes[0].Account)
	assert.EqualValues(t, 70, stakes[0].Staked)
	assert.EqualValues(t, 104, stakes[0].LockedUntil, "partial unstake re-locks the rest")

	scores, total, err := c.getScoresByFarm(1, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, scores, 2)
	assert.Equal(t, "", scores[0].Version)
	assert.EqualValues(t, 100, scores[0].Score)
	assert.Equal(t, "v1", scores[1].Version)
	assert.EqualValues(t, 60, scores[1].Score)

	// a restarted indexer resumes after the last indexed block
	again, err := NewChainIndexerWithDB(cmtlog.NewNopLogger(), db, chain, time.Second)
	require.NoError(t, err)
	assert.EqualValues(t, 6, again.Height)
}

func TestIndexerRollsBackBadBlock(t *testing.T) {
	chain := &fakeChain{blocks: make(map[int64]*coretypes.ResultBlockResults)}
	chain.add(1,
		okTx(types.EncodeEventStake(&types.EventStake{Account: "A", Amount: 1, Total: 1})),
		okTx(abci.Event{Type: types.EventVoteType, Attributes: []abci.EventAttribute{{Key: "weight", Value: "x"}}}),
	)
	_, c := newTestIndexer(t, chain)

	require.Error(t, c.Sync(context.Background()))
	assert.EqualValues(t, 1, c.Height)
	_, total, err := c.getStakes(0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	dat, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(dat))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestService(t *testing.T) {
	_, c := newTestIndexer(t, seedChain())
	require.NoError(t, c.Sync(context.Background()))
	h := NewService("127.0.0.1:0", c).Handler()

	w := post(t, h, "/getProposals", map[string]any{"proposalId": 0})
	require.Equal(t, http.StatusOK, w.Code)
	var proposals GetProposalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &proposals))
	require.Len(t, proposals.Proposals, 1)
	assert.Len(t, proposals.Proposals[0].Votes, 2)

	w = post(t, h, "/getProposals", map[string]any{"proposalId": 7})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = post(t, h, "/getProposals", map[string]any{"proposer": "A"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &proposals))
	assert.EqualValues(t, 1, proposals.Total)

	w = post(t, h, "/getVotes", map[string]any{"voter": "B"})
	require.Equal(t, http.StatusOK, w.Code)
	var votes GetVotesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &votes))
	require.Len(t, votes.Votes, 1)
	assert.False(t, votes.Votes[0].Support)

	w = post(t, h, "/getVotes", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(t, h, "/getScores", map[string]any{"farmId": 1, "pageSize": 1})
	require.Equal(t, http.StatusOK, w.Code)
	var scores GetScoresResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &scores))
	assert.EqualValues(t, 2, scores.Total)
	assert.Len(t, scores.Scores, 1)

	w = post(t, h, "/getScores", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(t, h, "/getStakes", map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)
	var stakes GetStakesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stakes))
	assert.EqualValues(t, 1, stakes.Total)
}
