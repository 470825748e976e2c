package state

import (
	"fmt"

	"github.com/cometbft/cometbft/crypto/ed25519"
)

// Account tracks the replay nonce of a tx signer. Accounts are created on the
// first tx a key sends.
type Account struct {
	Address string `json:"address"`
	PubKey  []byte `json:"pubKey"`
	Nonce   uint64 `json:"nonce"`
}

func AddressOf(pubKey []byte) string {
	return ed25519.PubKey(pubKey).Address().String()
}

func (a *Account) Clone() *Account {
	n := *a
	n.PubKey = make([]byte, len(a.PubKey))
	copy(n.PubKey, a.PubKey)
	return &n
}

func (a *Account) Verify(msg []byte, sigs [][]byte) (succ bool) {
	if len(sigs) != 1 || len(a.PubKey) != ed25519.PubKeySize {
		return false
	}
	pk := ed25519.PubKey(a.PubKey)
	return pk.VerifySignature(msg, sigs[0])
}

func (s *State) GetAccount(addr string) (acnt *Account, err error) {
	acnt = new(Account)
	found, err := s.getJSON(fmt.Sprintf(KeyAccountBody, addr), acnt)
	if err != nil || !found {
		return nil, err
	}
	return acnt, nil
}

// LoadAccount returns the stored account of pubKey or a fresh one with nonce 0.
func (s *State) LoadAccount(pubKey []byte) (acnt *Account, err error) {
	if len(pubKey) == 0 {
		return nil, ErrTxPubKeyEmpty
	}
	addr := AddressOf(pubKey)
	acnt, err = s.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if acnt == nil {
		acnt = &Account{Address: addr, PubKey: pubKey}
	}
	return acnt, nil
}

func (s *State) IncNonce(acnt *Account) error {
	n := acnt.Clone()
	n.Nonce += 1
	return s.setJSON(fmt.Sprintf(KeyAccountBody, n.Address), n)
}
