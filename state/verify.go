package state

import (
	"github.com/calehh/agro-gov/tx"
)

// Verify checks the signature and nonce of btx against the signer account.
// With allowNonceGap a nonce ahead of the account is accepted, so a client
// can queue several txs in the mempool.
func (s *State) Verify(btx *tx.AgroTx, allowNonceGap bool) (acnt *Account, err error) {
	acnt, err = s.LoadAccount(btx.PubKey)
	if err != nil {
		return nil, err
	}
	if allowNonceGap {
		if btx.Nonce < acnt.Nonce {
			return nil, ErrTxNonceInvalid
		}
	} else if btx.Nonce != acnt.Nonce {
		return nil, ErrTxNonceInvalid
	}
	msg, err := btx.SigData([]byte(s.ChainId()))
	if err != nil {
		return nil, err
	}
	if !acnt.Verify(msg, btx.Sig) {
		return nil, ErrTxSigInvalid
	}
	return acnt, nil
}
