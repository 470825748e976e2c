package main

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/calehh/agro-gov/app"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:     "query",
	Aliases: []string{"q"},
	Short:   "Query the committed state",
}

func init() {
	urlFlag(queryCmd)
	queryCmd.AddCommand(
		queryCommand("rules", "Active rule set", "/rules", 0, nil),
		queryCommand("params", "Voting and compliance parameters", "/params", 0, nil),
		queryCommand("admins", "Governance admins", "/admins", 0, nil),
		queryCommand("account [address]", "Signer account and nonce", "/accounts", 1, func(args []string, req *app.QueryRequest) error {
			req.Account = args[0]
			return nil
		}),
		queryCommand("stake [address]", "Stake of an account", "/stakes", 1, func(args []string, req *app.QueryRequest) error {
			req.Account = args[0]
			return nil
		}),
		queryCommand("proposal [id]", "Proposal record", "/proposals", 1, func(args []string, req *app.QueryRequest) (err error) {
			req.Proposal, err = strconv.ParseUint(args[0], 10, 64)
			return
		}),
		queryCommand("proposal-state [id]", "Proposal lifecycle state", "/proposal_state", 1, func(args []string, req *app.QueryRequest) (err error) {
			req.Proposal, err = strconv.ParseUint(args[0], 10, 64)
			return
		}),
		queryCommand("vote [id] [address]", "Vote of an account on a proposal", "/votes", 2, func(args []string, req *app.QueryRequest) (err error) {
			req.Proposal, err = strconv.ParseUint(args[0], 10, 64)
			req.Account = args[1]
			return
		}),
		queryCommand("score [farm] [period]", "Current compliance score", "/scores", 2, func(args []string, req *app.QueryRequest) error {
			vals, err := parseUints(args)
			if err != nil {
				return err
			}
			req.FarmID, req.Period = vals[0], vals[1]
			return nil
		}),
		queryCommand("history [farm] [period...]", "Compliance history over periods", "/history", -1, func(args []string, req *app.QueryRequest) error {
			vals, err := parseUints(args)
			if err != nil {
				return err
			}
			req.FarmID, req.Periods = vals[0], vals[1:]
			return nil
		}),
		queryCommand("archive [farm] [period] [version]", "Archived compliance score", "/archive", 3, func(args []string, req *app.QueryRequest) error {
			vals, err := parseUints(args[:2])
			if err != nil {
				return err
			}
			req.FarmID, req.Period, req.Version = vals[0], vals[1], args[2]
			return nil
		}),
		queryCommand("weights [farm]", "Farm weights", "/weights", 1, func(args []string, req *app.QueryRequest) (err error) {
			req.FarmID, err = strconv.ParseUint(args[0], 10, 64)
			return
		}),
		queryCommand("logs [farm] [start] [end]", "Usage entries of a farm in a time range", "/logs", 3, func(args []string, req *app.QueryRequest) (err error) {
			if req.FarmID, err = strconv.ParseUint(args[0], 10, 64); err != nil {
				return
			}
			if req.Start, err = strconv.ParseInt(args[1], 10, 64); err != nil {
				return
			}
			req.End, err = strconv.ParseInt(args[2], 10, 64)
			return
		}),
	)
}

// queryCommand builds a query subcommand. nargs < 0 means at least one arg.
func queryCommand(use, short, path string, nargs int, fill func(args []string, req *app.QueryRequest) error) *cobra.Command {
	argsCheck := cobra.ExactArgs(nargs)
	if nargs < 0 {
		argsCheck = cobra.MinimumNArgs(1)
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  argsCheck,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := new(app.QueryRequest)
			if fill != nil {
				if err := fill(args, req); err != nil {
					return err
				}
			}
			cli, err := newClient(cmd)
			if err != nil {
				return err
			}
			var out json.RawMessage
			if err = abciQuery(context.Background(), cli, path, req, &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}
