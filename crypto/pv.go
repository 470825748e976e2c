package crypto

import (
	"fmt"
	"os"

	"github.com/calehh/agro-gov/tx"
	"github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtjson "github.com/cometbft/cometbft/libs/json"
	"github.com/cometbft/cometbft/privval"
)

// PV signs transactions with the ed25519 key of a node's priv_validator_key.json.
type PV struct {
	privateKey crypto.PrivKey
	publicKey  crypto.PubKey
}

func NewPV(privKey crypto.PrivKey) *PV {
	return &PV{
		privateKey: privKey,
		publicKey:  privKey.PubKey(),
	}
}

func GenPV() *PV {
	return NewPV(ed25519.GenPrivKey())
}

func LoadFilePV(keyFilePath string) (*PV, error) {
	keyJSONBytes, err := os.ReadFile(keyFilePath)
	if err != nil {
		return nil, err
	}
	pvKey := privval.FilePVKey{}
	err = cmtjson.Unmarshal(keyJSONBytes, &pvKey)
	if err != nil {
		return nil, fmt.Errorf("error reading PrivValidator key from %v: %w", keyFilePath, err)
	}
	return &PV{
		privateKey: pvKey.PrivKey,
		publicKey:  pvKey.PubKey,
	}, nil
}

func (k *PV) PublicKey() []byte {
	return k.publicKey.Bytes()
}

func (k *PV) Address() string {
	return k.publicKey.Address().String()
}

func (k *PV) Sign(data []byte) ([]byte, error) {
	return k.privateKey.Sign(data)
}

// SignTx fills the envelope around payload and signs it for chainID.
func (k *PV) SignTx(chainID string, nonce uint64, payload any) (*tx.AgroTx, error) {
	btx := &tx.AgroTx{
		Version: tx.AgroTxVersion1,
		Type:    tx.PayloadType(payload),
		Nonce:   nonce,
		PubKey:  k.PublicKey(),
		Tx:      payload,
	}
	if btx.Type == tx.AgroTxTypeUnknown {
		return nil, tx.ErrUnsupportedTxType
	}
	msg, err := btx.SigData([]byte(chainID))
	if err != nil {
		return nil, err
	}
	sig, err := k.Sign(msg)
	if err != nil {
		return nil, err
	}
	btx.Sig = [][]byte{sig}
	return btx, nil
}
