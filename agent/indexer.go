package agent

import (
	"context"
	"errors"
	"time"

	"github.com/calehh/agro-gov/types"
	abci "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	comethttp "github.com/cometbft/cometbft/rpc/client/http"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

// BlockSource is the part of the CometBFT RPC client the indexer polls.
type BlockSource interface {
	Status(ctx context.Context) (*coretypes.ResultStatus, error)
	BlockResults(ctx context.Context, height *int64) (*coretypes.ResultBlockResults, error)
}

// ChainIndexer replays the events of committed blocks into sqlite so the
// service can answer list queries the ABCI query paths cannot.
type ChainIndexer struct {
	logger        cmtlog.Logger
	Url           string
	Height        int64
	interval      time.Duration
	db            *gorm.DB
	cli           BlockSource
	eventHandlers map[string]eventHandler
}

func OpenDB(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Proposal{}, &ProposalVote{}, &Stake{}, &Score{}, &Height{}).Error; err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func NewChainIndexer(logger cmtlog.Logger, dbPath string, chainUrl string, interval time.Duration) (*ChainIndexer, error) {
	logger.Info("NewChainIndexer", "dbPath", dbPath, "url", chainUrl)
	cli, err := comethttp.New(chainUrl, "/websocket")
	if err != nil {
		return nil, err
	}
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, err
	}
	c, err := NewChainIndexerWithDB(logger, db, cli, interval)
	if err != nil {
		return nil, err
	}
	c.Url = chainUrl
	return c, nil
}

func NewChainIndexerWithDB(logger cmtlog.Logger, db *gorm.DB, cli BlockSource, interval time.Duration) (*ChainIndexer, error) {
	h := Height{Id: 1}
	if err := db.First(&h).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	c := &ChainIndexer{
		logger:   logger.With("module", "indexer"),
		Height:   int64(h.Height + 1),
		interval: interval,
		db:       db,
		cli:      cli,
	}
	c.eventHandlers = map[string]eventHandler{
		types.EventProposalType:        c.handleEventProposal,
		types.EventVoteType:            c.handleEventVote,
		types.EventExecuteProposalType: c.handleEventExecuteProposal,
		types.EventCancelProposalType:  c.handleEventCancelProposal,
		types.EventStakeType:           c.handleEventStake,
		types.EventUnStakeType:         c.handleEventUnStake,
		types.EventComplianceType:      c.handleEventCompliance,
		types.EventArchiveScoreType:    c.handleEventArchiveScore,
	}
	return c, nil
}

func (c *ChainIndexer) Close() error {
	return c.db.Close()
}

type eventHandler func(tx *gorm.DB, event abci.Event, height int64) error

func (c *ChainIndexer) handleEvent(tx *gorm.DB, event abci.Event, height int64) error {
	if h, ok := c.eventHandlers[event.Type]; ok {
		return h(tx, event, height)
	}
	return nil
}

var errDecodeEvent = errors.New("decode event fail")

func (c *ChainIndexer) handleEventProposal(tx *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventProposal(event)
	if ev == nil {
		return errDecodeEvent
	}
	proposal := Proposal{
		ProposalID:        ev.ProposalID,
		Proposer:          ev.Proposer,
		Description:       ev.Description,
		MaxPrimaryLimit:   ev.RuleChange.MaxPrimaryLimit,
		MaxSecondaryLimit: ev.RuleChange.MaxSecondaryLimit,
		ReviewPeriod:      ev.RuleChange.ReviewPeriod,
		StartBlock:        ev.StartBlock,
		EndBlock:          ev.EndBlock,
		Status:            uint64(types.ProposalStatePending),
		NewHeight:         uint64(height),
	}
	return tx.Create(&proposal).Error
}

func (c *ChainIndexer) handleEventVote(tx *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventVote(event)
	if ev == nil {
		return errDecodeEvent
	}
	vote := ProposalVote{
		Proposal: ev.ProposalID,
		Voter:    ev.Voter,
		Support:  ev.Support,
		Weight:   ev.Weight,
		Height:   uint64(height),
	}
	if err := tx.Create(&vote).Error; err != nil {
		return err
	}
	column := "no_votes"
	if ev.Support {
		column = "yes_votes"
	}
	return tx.Model(&Proposal{}).Where("proposal_id = ?", ev.ProposalID).
		UpdateColumn(column, gorm.Expr(column+" + ?", ev.Weight)).Error
}

func (c *ChainIndexer) settleProposal(tx *gorm.DB, event abci.Event, height int64, status types.ProposalState) error {
	ev := types.DecodeEventSettleProposal(event)
	if ev == nil {
		return errDecodeEvent
	}
	var proposal Proposal
	if err := tx.Where("proposal_id = ?", ev.ProposalID).First(&proposal).Error; err != nil {
		return err
	}
	proposal.Status = uint64(status)
	proposal.SettleHeight = uint64(height)
	return tx.Save(&proposal).Error
}

func (c *ChainIndexer) handleEventExecuteProposal(tx *gorm.DB, event abci.Event, height int64) error {
	return c.settleProposal(tx, event, height, types.ProposalStateExecuted)
}

func (c *ChainIndexer) handleEventCancelProposal(tx *gorm.DB, event abci.Event, height int64) error {
	return c.settleProposal(tx, event, height, types.ProposalStateCanceled)
}

func (c *ChainIndexer) handleEventStake(tx *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventStake(event)
	if ev == nil {
		return errDecodeEvent
	}
	return tx.Save(&Stake{
		Account:     ev.Account,
		Staked:      ev.Total,
		LockedUntil: ev.LockedUntil,
		Height:      uint64(height),
	}).Error
}

func (c *ChainIndexer) handleEventUnStake(tx *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventUnStake(event)
	if ev == nil {
		return errDecodeEvent
	}
	if ev.Remaining == 0 {
		return tx.Where("account = ?", ev.Account).Delete(&Stake{}).Error
	}
	return tx.Model(&Stake{}).Where("account = ?", ev.Account).
		Updates(map[string]interface{}{
			"staked":       ev.Remaining,
			"locked_until": ev.LockedUntil,
			"height":       uint64(height),
		}).Error
}

func (c *ChainIndexer) handleEventCompliance(tx *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventCompliance(event)
	if ev == nil {
		return errDecodeEvent
	}
	return tx.Create(&Score{
		FarmID:       ev.FarmID,
		Period:       ev.Period,
		Compliant:    ev.Compliant,
		Score:        ev.Score,
		Violations:   ev.Violations,
		TotalApplied: ev.TotalApplied,
		Height:       uint64(height),
	}).Error
}

// handleEventArchiveScore tags the current score row of the period with the
// archive version.
func (c *ChainIndexer) handleEventArchiveScore(tx *gorm.DB, event abci.Event, height int64) error {
	ev := types.DecodeEventArchiveScore(event)
	if ev == nil {
		return errDecodeEvent
	}
	return tx.Model(&Score{}).
		Where("farm_id = ? AND period = ? AND version = ?", ev.FarmID, ev.Period, "").
		UpdateColumn("version", ev.Version).Error
}

// indexBlock applies the events of all successful txs of a block and the new
// height in one sqlite transaction.
func (c *ChainIndexer) indexBlock(res *coretypes.ResultBlockResults) (err error) {
	tx := c.db.Begin()
	if err = tx.Error; err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	for _, txRes := range res.TxsResults {
		if txRes.Code != abci.CodeTypeOK {
			continue
		}
		for _, event := range txRes.Events {
			if err = c.handleEvent(tx, event, res.Height); err != nil {
				c.logger.Error("handle event fail", "type", event.Type, "height", res.Height, "err", err)
				return err
			}
		}
	}
	if err = tx.Save(&Height{Id: 1, Height: uint64(res.Height)}).Error; err != nil {
		return err
	}
	return tx.Commit().Error
}

func (c *ChainIndexer) reconnect() {
	if c.Url == "" {
		return
	}
	cli, ok := c.cli.(*comethttp.HTTP)
	if ok && cli.IsRunning() {
		return
	}
	if ok {
		_ = cli.Stop()
	}
	ncli, err := comethttp.New(c.Url, "/websocket")
	if err != nil {
		c.logger.Error("reconnect fail", "err", err)
		return
	}
	c.cli = ncli
}

// Sync indexes every block up to the latest committed height.
func (c *ChainIndexer) Sync(ctx context.Context) error {
	status, err := c.cli.Status(ctx)
	if err != nil {
		c.reconnect()
		return err
	}
	for status.SyncInfo.LatestBlockHeight >= c.Height {
		if err = ctx.Err(); err != nil {
			return err
		}
		height := c.Height
		res, err := c.cli.BlockResults(ctx, &height)
		if err != nil {
			c.reconnect()
			return err
		}
		if err = c.indexBlock(res); err != nil {
			return err
		}
		c.Height++
	}
	return nil
}

func (c *ChainIndexer) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Sync(ctx); err != nil {
				c.logger.Error("indexer sync fail", "height", c.Height, "err", err)
			}
		}
	}
}

func (c *ChainIndexer) getProposals(page int, pageSize int) ([]Proposal, uint64, error) {
	var proposals []Proposal
	err := c.db.Order("proposal_id desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Proposal{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (c *ChainIndexer) getProposalById(proposalId uint64) (Proposal, error) {
	var proposal Proposal
	err := c.db.Where("proposal_id = ?", proposalId).First(&proposal).Error
	if err != nil {
		return Proposal{}, err
	}
	return proposal, nil
}

func (c *ChainIndexer) getProposalsByProposer(proposer string, page int, pageSize int) ([]Proposal, uint64, error) {
	var proposals []Proposal
	err := c.db.Where("proposer = ?", proposer).Order("proposal_id desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Proposal{}).Where("proposer = ?", proposer).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (c *ChainIndexer) getVotesByProposal(proposal uint64, page int, pageSize int) ([]ProposalVote, error) {
	var votes []ProposalVote
	err := c.db.Where("proposal = ?", proposal).Order("id asc").Offset(page * pageSize).Limit(pageSize).Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

func (c *ChainIndexer) getVotesByVoter(voter string, page int, pageSize int) ([]ProposalVote, error) {
	var votes []ProposalVote
	err := c.db.Where("voter = ?", voter).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

func (c *ChainIndexer) getStakes(page int, pageSize int) ([]Stake, uint64, error) {
	var stakes []Stake
	err := c.db.Order("staked desc").Offset(page * pageSize).Limit(pageSize).Find(&stakes).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Stake{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return stakes, total, nil
}

func (c *ChainIndexer) getScoresByFarm(farmID uint64, page int, pageSize int) ([]Score, uint64, error) {
	var scores []Score
	err := c.db.Where("farm_id = ?", farmID).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&scores).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Score{}).Where("farm_id = ?", farmID).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return scores, total, nil
}
