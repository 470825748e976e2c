package state

import (
	"sync"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	dbm "github.com/cosmos/iavl/db"
	"github.com/ethereum/go-ethereum/common"
)

const treeCacheSize = 128

type StateDB struct {
	mtx sync.RWMutex

	dir    string
	logger cmtlog.Logger
	db     *iavl.MutableTree

	state *State
	// committed is the last saved version, served to View.
	committed treeReader
}

func NewStateDB(dir string, logger cmtlog.Logger) (db *StateDB, err error) {
	ldb, err := dbm.NewDB("agro", "goleveldb", dir)
	if err != nil {
		return nil, err
	}
	db, err = newStateDB(ldb, logger)
	if err != nil {
		return nil, err
	}
	db.dir = dir
	return db, nil
}

// NewMemStateDB keeps the tree in memory; used by tests and tooling.
func NewMemStateDB(logger cmtlog.Logger) (*StateDB, error) {
	return newStateDB(dbm.NewMemDB(), logger)
}

func newStateDB(ldb dbm.DB, logger cmtlog.Logger) (db *StateDB, err error) {
	logger = logger.With("module", "agrodb")
	tdb := iavl.NewMutableTree(ldb, treeCacheSize, true, Cometbft2CosmosLogger(logger))
	version, err := tdb.Load()
	if err != nil {
		return nil, err
	}
	logger.Info("load db success", "version", version)
	st := newState(tdb, logger)
	st.dbVer = version
	err = st.load()
	if err != nil {
		logger.Error("from agrodb load fail", "err", err)
		return nil, err
	}
	db = &StateDB{
		logger: logger,
		db:     tdb,
		state:  st,
	}
	if err = db.snapshot(version); err != nil {
		return nil, err
	}
	return
}

func (db *StateDB) snapshot(version int64) error {
	if version == 0 {
		db.committed = emptyTree{}
		return nil
	}
	tree, err := db.db.GetImmutable(version)
	if err != nil {
		return err
	}
	db.committed = tree
	return nil
}

func (db *StateDB) Close() (err error) {
	err = db.db.Close()
	return
}

func (db *StateDB) Header() (header *StateHeader) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	header = db.state.Header().clone()
	return
}

// State returns the last committed state. Callers must not write to it;
// use Branch for speculative execution.
func (db *StateDB) State() *State {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.state
}

func (db *StateDB) NewState() (st *State) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	st = db.state.nextState()
	return
}

func (db *StateDB) SetState(st *State) (hash common.Hash, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	hash, err = st.save()
	if err != nil {
		return
	}
	if err = db.snapshot(st.dbVer); err != nil {
		return
	}
	db.state = st
	return
}

// View runs fn against a throwaway state over the last saved version while
// holding the read lock. Block writes flushed to the working tree but not yet
// committed stay invisible. The returned height is the committed one even if
// fn moves the clock of its state.
func (db *StateDB) View(fn func(st *State) error) (height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	height = db.state.header.Height
	err = fn(db.state.readOnly(db.committed))
	return
}

// Flush writes the buffered block state into the working tree under the write
// lock and returns the app hash the block will commit to.
func (db *StateDB) Flush(st *State) (hash common.Hash, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	return st.Update()
}
