package agent

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 1000
)

type Service struct {
	engine  *gin.Engine
	indexer *ChainIndexer
	server  *http.Server
}

func NewService(listenAddr string, indexer *ChainIndexer) *Service {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	s := &Service{
		engine:  r,
		indexer: indexer,
		server:  &http.Server{Addr: listenAddr, Handler: r},
	}
	s.engine.POST("/getProposals", s.handleGetProposals)
	s.engine.POST("/getVotes", s.handleGetVotes)
	s.engine.POST("/getStakes", s.handleGetStakes)
	s.engine.POST("/getScores", s.handleGetScores)
	return s
}

func (s *Service) Handler() http.Handler {
	return s.engine
}

func (s *Service) Start() error {
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type PageReq struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

func (p PageReq) normalize() (int, int) {
	page, size := p.Page, p.PageSize
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

type ProposalInfo struct {
	Proposal Proposal       `json:"proposal"`
	Votes    []ProposalVote `json:"votes"`
}

type GetProposalsReq struct {
	PageReq
	ProposalId *uint64 `json:"proposalId"`
	Proposer   string  `json:"proposer"`
}

type GetProposalResponse struct {
	Proposals []ProposalInfo `json:"proposals"`
	Total     uint64         `json:"total"`
}

func (s *Service) handleGetProposals(c *gin.Context) {
	var response GetProposalResponse
	response.Proposals = make([]ProposalInfo, 0)
	var requestData GetProposalsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if requestData.ProposalId != nil {
		proposalInfo, err := s.getProposalInfoById(*requestData.ProposalId)
		if gorm.IsRecordNotFoundError(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Proposals = append(response.Proposals, proposalInfo)
		response.Total = 1
		c.JSON(http.StatusOK, response)
		return
	}

	page, size := requestData.normalize()
	var (
		proposals []Proposal
		total     uint64
		err       error
	)
	if requestData.Proposer != "" {
		proposals, total, err = s.indexer.getProposalsByProposer(requestData.Proposer, page, size)
	} else {
		proposals, total, err = s.indexer.getProposals(page, size)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response.Total = total
	for _, proposal := range proposals {
		votes, err := s.indexer.getVotesByProposal(proposal.ProposalID, 0, maxPageSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Proposals = append(response.Proposals, ProposalInfo{Proposal: proposal, Votes: votes})
	}
	c.JSON(http.StatusOK, response)
}

func (s *Service) getProposalInfoById(proposalId uint64) (ProposalInfo, error) {
	proposal, err := s.indexer.getProposalById(proposalId)
	if err != nil {
		return ProposalInfo{}, err
	}
	votes, err := s.indexer.getVotesByProposal(proposalId, 0, maxPageSize)
	if err != nil {
		return ProposalInfo{}, err
	}
	return ProposalInfo{Proposal: proposal, Votes: votes}, nil
}

type GetVotesReq struct {
	PageReq
	ProposalId *uint64 `json:"proposalId"`
	Voter      string  `json:"voter"`
}

type GetVotesResponse struct {
	Votes []ProposalVote `json:"votes"`
}

func (s *Service) handleGetVotes(c *gin.Context) {
	var requestData GetVotesReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, size := requestData.normalize()
	var (
		votes []ProposalVote
		err   error
	)
	switch {
	case requestData.ProposalId != nil:
		votes, err = s.indexer.getVotesByProposal(*requestData.ProposalId, page, size)
	case requestData.Voter != "":
		votes, err = s.indexer.getVotesByVoter(requestData.Voter, page, size)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "proposalId or voter is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if votes == nil {
		votes = make([]ProposalVote, 0)
	}
	c.JSON(http.StatusOK, GetVotesResponse{Votes: votes})
}

type GetStakesResponse struct {
	Stakes []Stake `json:"stakes"`
	Total  uint64  `json:"total"`
}

func (s *Service) handleGetStakes(c *gin.Context) {
	var requestData PageReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, size := requestData.normalize()
	stakes, total, err := s.indexer.getStakes(page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if stakes == nil {
		stakes = make([]Stake, 0)
	}
	c.JSON(http.StatusOK, GetStakesResponse{Stakes: stakes, Total: total})
}

type GetScoresReq struct {
	PageReq
	FarmID uint64 `json:"farmId"`
}

type GetScoresResponse struct {
	Scores []Score `json:"scores"`
	Total  uint64  `json:"total"`
}

func (s *Service) handleGetScores(c *gin.Context) {
	var requestData GetScoresReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.FarmID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "farmId is required"})
		return
	}
	page, size := requestData.normalize()
	scores, total, err := s.indexer.getScoresByFarm(requestData.FarmID, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if scores == nil {
		scores = make([]Score, 0)
	}
	c.JSON(http.StatusOK, GetScoresResponse{Scores: scores, Total: total})
}
