package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/calehh/agro-gov/app"
	"github.com/calehh/agro-gov/crypto"
	"github.com/calehh/agro-gov/state"
	"github.com/calehh/agro-gov/tx"
	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"
)

const (
	DefaultPrivValKeyName = "priv_validator_key.json"

	flagURL    = "url"
	flagKey    = "key"
	flagNonce  = "nonce"
	flagNoSend = "nosend"
)

var errQueryNotFound = errors.New("not found")

func urlFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP(flagURL, "u", "http://127.0.0.1:26657", "node rpc url")
}

func newClient(cmd *cobra.Command) (*http.HTTP, error) {
	url, _ := cmd.Flags().GetString(flagURL)
	return http.New(url, "/websocket")
}

func keyPath(cmd *cobra.Command) string {
	key, _ := cmd.Flags().GetString(flagKey)
	if key == "" {
		key = filepath.Join(homeDir(cmd), "config", DefaultPrivValKeyName)
	}
	return key
}

func abciQuery(ctx context.Context, cli *http.HTTP, path string, req *app.QueryRequest, out any) error {
	dat, err := json.Marshal(req)
	if err != nil {
		return err
	}
	res, err := cli.ABCIQuery(ctx, path, dat)
	if err != nil {
		return err
	}
	if res.Response.Code == app.CodeQueryNotFound {
		return errQueryNotFound
	}
	if res.Response.Code != 0 {
		return fmt.Errorf("query %s failed: code %d %s %s", path, res.Response.Code, res.Response.Codespace, res.Response.Log)
	}
	return json.Unmarshal(res.Response.Value, out)
}

// accountNonce returns the next nonce of address, 0 for an unknown account.
func accountNonce(ctx context.Context, cli *http.HTTP, address string) (uint64, error) {
	var act state.Account
	err := abciQuery(ctx, cli, "/accounts", &app.QueryRequest{Account: address}, &act)
	if errors.Is(err, errQueryNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return act.Nonce, nil
}

// sendTx signs payload with the configured key and broadcasts it.
func sendTx(cmd *cobra.Command, payload any) error {
	cli, err := newClient(cmd)
	if err != nil {
		return fmt.Errorf("new client err: %w", err)
	}
	pv, err := crypto.LoadFilePV(keyPath(cmd))
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	gres, err := cli.Genesis(ctx)
	if err != nil {
		return fmt.Errorf("get chain genesis err: %w", err)
	}
	nonce, _ := cmd.Flags().GetUint64(flagNonce)
	if !cmd.Flags().Changed(flagNonce) {
		nonce, err = accountNonce(ctx, cli, pv.Address())
		if err != nil {
			return err
		}
	}
	btx, err := pv.SignTx(gres.Genesis.ChainID, nonce, payload)
	if err != nil {
		return fmt.Errorf("sign tx err: %w", err)
	}
	dat, err := tx.MarshalAgroTx(btx)
	if err != nil {
		return err
	}
	if noSend, _ := cmd.Flags().GetBool(flagNoSend); noSend {
		fmt.Println(string(dat))
		return nil
	}
	res, err := cli.BroadcastTxSync(ctx, dat)
	if err != nil {
		return fmt.Errorf("broadcast tx err: %w", err)
	}
	return printJSON(res)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
