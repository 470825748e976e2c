package main

import (
	"encoding/hex"
	"fmt"

	"github.com/calehh/agro-gov/crypto"
	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Show the public key and address of a key file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pv, err := crypto.LoadFilePV(keyPath(cmd))
		if err != nil {
			return err
		}
		fmt.Println("pubkey:", hex.EncodeToString(pv.PublicKey()))
		fmt.Println("address:", pv.Address())
		return nil
	},
}

func init() {
	keysCmd.Flags().StringP(flagKey, "k", "", "private key file (default <home>/config/priv_validator_key.json)")
}
