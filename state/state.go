package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"
)

var (
	KeyState            = "s"
	KeyOwner            = "o"
	KeyAdmins           = "adm"
	KeyRules            = "r"
	KeyCachedRules      = "rc"
	KeyVotingParams     = "gp"
	KeyComplianceParams = "cp"
	KeyAccountBody      = "a%s"
	KeyStake            = "stake%s"
	KeyProposalIndex    = "pi"
	KeyProposalBody     = "p%v"
	KeyProposerCount    = "pc%s"
	KeyVote             = "v%v/%s"
	KeyScore            = "cs%v/%v"
	KeyHistoricalScore  = "ch%v/%v/%s"
	KeyFarmWeights      = "fw%v"
	KeyUsageIndex       = "ui%v"
	KeyUsageBuckets     = "ub%v"
	KeyUsageBucketCount = "uc%v/%v"
	KeyUsageBody        = "u%v/%v/%v"
)

var (
	ErrTxNonceInvalid = errors.New("nonce invalid")
	ErrTxSigInvalid   = errors.New("signature invalid")
	ErrTxPubKeyEmpty  = errors.New("public key empty")
)

type StateHeader struct {
	ChainId  string `json:"chain_id"`
	Height   uint64 `json:"height"`
	RootHash []byte `json:"root_hash"`
	Hash     []byte `json:"hash"`
}

func (h *StateHeader) clone() *StateHeader {
	n := *h
	n.RootHash = common.CopyBytes(h.RootHash)
	n.Hash = common.CopyBytes(h.Hash)
	return &n
}

type entry struct {
	value   []byte
	deleted bool
}

// treeReader is the read side shared by the working tree and the saved
// versions of it.
type treeReader interface {
	Get(key []byte) ([]byte, error)
}

// emptyTree stands in for the committed tree before the first version is saved.
type emptyTree struct{}

func (emptyTree) Get([]byte) ([]byte, error) { return nil, nil }

// State is a write-buffered view over the iavl tree. A block state buffers all
// writes of a block until Update; a branch buffers the writes of a single tx
// on top of its parent until Write merges them down. A state with a snapshot
// reads a saved version instead of the working tree.
type State struct {
	logger cmtlog.Logger
	db     *iavl.MutableTree
	dbVer  int64
	snap   treeReader

	header *StateHeader
	parent *State
	dirty  map[string]entry
}

func newState(db *iavl.MutableTree, logger cmtlog.Logger) *State {
	return &State{
		logger: logger,
		db:     db,
		header: new(StateHeader),
		dirty:  make(map[string]entry),
	}
}

func (s *State) nextState() *State {
	n := &State{
		logger: s.logger,
		db:     s.db,
		dbVer:  s.dbVer,
		dirty:  make(map[string]entry),
	}
	n.header = s.header.clone()
	if s.header.Hash != nil {
		n.header.Height = s.header.Height + 1
	}
	return n
}

// Branch returns a child state whose writes stay invisible to s until Write.
func (s *State) Branch() *State {
	return &State{
		logger: s.logger,
		db:     s.db,
		dbVer:  s.dbVer,
		snap:   s.snap,
		header: s.header,
		parent: s,
		dirty:  make(map[string]entry),
	}
}

// readOnly returns a state over snap with its own copy of the header, so the
// caller may move its clock without touching s.
func (s *State) readOnly(snap treeReader) *State {
	return &State{
		logger: s.logger,
		db:     s.db,
		dbVer:  s.dbVer,
		snap:   snap,
		header: s.header.clone(),
		dirty:  make(map[string]entry),
	}
}

// Write merges the buffered writes of a branch into its parent.
func (s *State) Write() {
	if s.parent == nil {
		return
	}
	for k, e := range s.dirty {
		s.parent.dirty[k] = e
	}
	s.dirty = make(map[string]entry)
}

func (s *State) load() (err error) {
	val, err := s.get(KeyState)
	if err != nil {
		return err
	}
	if val == nil {
		return nil
	}
	err = json.Unmarshal(val, s.header)
	if err != nil {
		return
	}
	h := s.db.Hash()
	if h != nil {
		s.calcHash(h, true)
	}
	return
}

func (s *State) calcHash(rootHash []byte, update bool) (h common.Hash) {
	h = crypto.Keccak256Hash(rootHash)
	if update {
		s.header.RootHash = common.CopyBytes(rootHash)
		s.header.Hash = common.CopyBytes(h[:])
	}
	return
}

func (s *State) get(key string) ([]byte, error) {
	for cur := s; cur != nil; cur = cur.parent {
		if e, ok := cur.dirty[key]; ok {
			if e.deleted {
				return nil, nil
			}
			return e.value, nil
		}
	}
	var tree treeReader = s.db
	if s.snap != nil {
		tree = s.snap
	}
	val, err := tree.Get([]byte(key))
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return val, nil
}

func (s *State) set(key string, val []byte) {
	s.dirty[key] = entry{value: val}
}

func (s *State) remove(key string) {
	s.dirty[key] = entry{deleted: true}
}

func (s *State) has(key string) (bool, error) {
	val, err := s.get(key)
	return val != nil, err
}

func (s *State) getJSON(key string, v any) (found bool, err error) {
	val, err := s.get(key)
	if err != nil || val == nil {
		return false, err
	}
	if err = json.Unmarshal(val, v); err != nil {
		return false, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

func (s *State) setJSON(key string, v any) error {
	val, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.set(key, val)
	return nil
}

// InsertIfAbsent stores v under key only when nothing is stored there yet.
// The existence check and the write happen in the same tx branch, so two
// inserts of the same key can never both succeed.
func (s *State) InsertIfAbsent(key string, v any) (inserted bool, err error) {
	exist, err := s.has(key)
	if err != nil || exist {
		return false, err
	}
	if err = s.setJSON(key, v); err != nil {
		return false, err
	}
	return true, nil
}

func (s *State) getCounter(key string) (n uint64, err error) {
	val, err := s.get(key)
	if err != nil || val == nil {
		return 0, err
	}
	err = rlp.DecodeBytes(val, &n)
	return
}

func (s *State) setCounter(key string, n uint64) error {
	val, err := rlp.EncodeToBytes(n)
	if err != nil {
		return err
	}
	s.set(key, val)
	return nil
}

// Update flushes the buffered block writes into the working tree and returns
// the resulting app hash. On failure the working tree is rolled back.
func (s *State) Update() (h common.Hash, err error) {
	var hash []byte
	defer func() {
		if hash == nil {
			s.db.Rollback()
		}
	}()
	val, err := json.Marshal(s.header)
	if err != nil {
		return
	}
	s.set(KeyState, val)

	keys := make([]string, 0, len(s.dirty))
	for k := range s.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e := s.dirty[k]
		if e.deleted {
			_, _, err = s.db.Remove([]byte(k))
		} else {
			_, err = s.db.Set([]byte(k), e.value)
		}
		if err != nil {
			return
		}
	}
	hash = s.db.WorkingHash()
	h = s.calcHash(hash, false)
	s.dirty = make(map[string]entry)
	return
}

func (s *State) save() (h common.Hash, err error) {
	hash, ver, err := s.db.SaveVersion()
	if err != nil {
		return h, err
	}
	s.dbVer = ver
	h = s.calcHash(hash, true)
	return
}

func (s *State) Header() *StateHeader {
	return s.header
}

// Height is the logical clock every time-gated rule is evaluated against.
func (s *State) Height() uint64 {
	return s.header.Height
}

func (s *State) SetHeight(height uint64) {
	s.header.Height = height
}

func (s *State) Hash() (h common.Hash) {
	if s.header.Hash != nil {
		copy(h[:], s.header.Hash)
	}
	return
}

func (s *State) SetChainId(chainId string) {
	s.header.ChainId = chainId
}

func (s *State) ChainId() string {
	return s.header.ChainId
}
