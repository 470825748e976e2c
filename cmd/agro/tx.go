package main

import (
	"strconv"

	"github.com/calehh/agro-gov/tx"
	"github.com/calehh/agro-gov/types"
	"github.com/spf13/cobra"
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Sign and broadcast transactions",
}

func init() {
	urlFlag(txCmd)
	txCmd.PersistentFlags().StringP(flagKey, "k", "", "private key file (default <home>/config/priv_validator_key.json)")
	txCmd.PersistentFlags().Uint64P(flagNonce, "n", 0, "account nonce, queried from the node when unset")
	txCmd.PersistentFlags().Bool(flagNoSend, false, "print the signed transaction instead of sending it")

	txCmd.AddCommand(
		txCommand("stake [amount]", "Lock stake to gain voting weight", 1, func(args []string) (any, error) {
			amount, err := strconv.ParseUint(args[0], 10, 64)
			return &tx.StakeTx{Amount: amount}, err
		}),
		txCommand("unstake [amount]", "Withdraw unlocked stake", 1, func(args []string) (any, error) {
			amount, err := strconv.ParseUint(args[0], 10, 64)
			return &tx.UnstakeTx{Amount: amount}, err
		}),
		txCommand("propose [description] [max-primary] [max-secondary] [review-period]", "Propose a new rule set", 4, func(args []string) (any, error) {
			vals, err := parseUints(args[1:])
			if err != nil {
				return nil, err
			}
			return &tx.ProposeRuleTx{
				Description:       args[0],
				MaxPrimaryLimit:   vals[0],
				MaxSecondaryLimit: vals[1],
				ReviewPeriod:      vals[2],
			}, nil
		}),
		txCommand("vote [proposal] [yes|no]", "Vote on a proposal", 2, func(args []string) (any, error) {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return nil, err
			}
			support, err := parseSupport(args[1])
			return &tx.VoteTx{Proposal: id, Support: support}, err
		}),
		txCommand("execute [proposal]", "Execute a succeeded proposal", 1, func(args []string) (any, error) {
			id, err := strconv.ParseUint(args[0], 10, 64)
			return &tx.ExecuteProposalTx{Proposal: id}, err
		}),
		txCommand("cancel [proposal]", "Cancel your own proposal before voting ends", 1, func(args []string) (any, error) {
			id, err := strconv.ParseUint(args[0], 10, 64)
			return &tx.CancelProposalTx{Proposal: id}, err
		}),
		txCommand("add-admin [address]", "Add a governance admin (admin)", 1, func(args []string) (any, error) {
			return &tx.AddAdminTx{Account: args[0]}, nil
		}),
		txCommand("voting-params [delay] [period] [threshold] [quorum]", "Set voting parameters (admin)", 4, func(args []string) (any, error) {
			vals, err := parseUints(args)
			if err != nil {
				return nil, err
			}
			return &tx.SetVotingParamsTx{
				VotingDelay:       vals[0],
				VotingPeriod:      vals[1],
				ProposalThreshold: vals[2],
				QuorumPercent:     vals[3],
			}, nil
		}),
		txCommand("check [farm] [start] [end]", "Compute the compliance score of a farm", 3, func(args []string) (any, error) {
			farm, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return nil, err
			}
			start, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return nil, err
			}
			end, err := strconv.ParseInt(args[2], 10, 64)
			return &tx.CheckComplianceTx{FarmID: farm, Start: start, End: end}, err
		}),
		txCommand("score-threshold [value]", "Set the compliance score threshold (owner)", 1, func(args []string) (any, error) {
			v, err := strconv.ParseUint(args[0], 10, 64)
			return &tx.SetScoreThresholdTx{Threshold: v}, err
		}),
		txCommand("violation-penalty [value]", "Set the per violation penalty (owner)", 1, func(args []string) (any, error) {
			v, err := strconv.ParseUint(args[0], 10, 64)
			return &tx.SetViolationPenaltyTx{Penalty: v}, err
		}),
		txCommand("farm-weights [farm] [primary] [secondary]", "Set farm weights (owner)", 3, func(args []string) (any, error) {
			vals, err := parseUints(args)
			if err != nil {
				return nil, err
			}
			return &tx.SetFarmWeightsTx{FarmID: vals[0], PrimaryWeight: vals[1], SecondaryWeight: vals[2]}, nil
		}),
		txCommand("archive [farm] [period] [version]", "Archive the current score of a period", 3, func(args []string) (any, error) {
			vals, err := parseUints(args[:2])
			if err != nil {
				return nil, err
			}
			return &tx.ArchiveScoreTx{FarmID: vals[0], Period: vals[1], Version: args[2]}, nil
		}),
		txCommand("report-usage [farm] [primary|secondary] [amount] [timestamp]", "Report a usage entry (owner)", 4, func(args []string) (any, error) {
			farm, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return nil, err
			}
			category, err := types.ParseUsageCategory(args[1])
			if err != nil {
				return nil, err
			}
			amount, err := strconv.ParseUint(args[2], 10, 64)
			if err != nil {
				return nil, err
			}
			ts, err := strconv.ParseInt(args[3], 10, 64)
			return &tx.ReportUsageTx{FarmID: farm, Category: category, Amount: amount, Timestamp: ts}, err
		}),
	)
}

func txCommand(use, short string, nargs int, build func(args []string) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := build(args)
			if err != nil {
				return err
			}
			return sendTx(cmd, payload)
		},
	}
}

func parseUints(args []string) ([]uint64, error) {
	vals := make([]uint64, len(args))
	for i, a := range args {
		v, err := strconv.ParseUint(a, 10, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func parseSupport(s string) (bool, error) {
	switch s {
	case "yes", "y", "true":
		return true, nil
	case "no", "n", "false":
		return false, nil
	}
	return strconv.ParseBool(s)
}
