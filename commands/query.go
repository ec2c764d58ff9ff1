package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/volreg/volreg/app"
	"github.com/volreg/volreg/coin"
	"github.com/volreg/volreg/x/market"
)

// queryCmd builds a read only command.
func (c *cli) queryCmd(use, short string, args cobra.PositionalArgs, run func(cmd *cobra.Command, e *app.Engine, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(func(e *app.Engine) error {
				return run(cmd, e, args)
			})
		},
	}
}

func printItems(w io.Writer, items []*market.MarketItem) {
	for _, it := range items {
		fmt.Fprintf(w, "item %d\ttoken %d\tprice %s\tsold %t\tseller %s\towner %s\n",
			it.ID, it.TokenID, coin.FormatEther(*it.Price), it.Sold,
			it.GetSeller().Bech32(), it.GetOwner().Bech32())
	}
}

func (c *cli) listingsCmd() *cobra.Command {
	return c.queryCmd("listings", "Print all active listings", cobra.NoArgs,
		func(cmd *cobra.Command, e *app.Engine, args []string) error {
			items, err := e.FetchActiveListings()
			if err != nil {
				return err
			}
			printItems(cmd.OutOrStdout(), items)
			return nil
		})
}

func (c *cli) ownedCmd() *cobra.Command {
	return c.queryCmd("owned <account>", "Print the market items owned by an account", cobra.ExactArgs(1),
		func(cmd *cobra.Command, e *app.Engine, args []string) error {
			owner, err := c.account(args[0])
			if err != nil {
				return err
			}
			items, err := e.FetchItemsOwnedBy(owner)
			if err != nil {
				return err
			}
			printItems(cmd.OutOrStdout(), items)
			return nil
		})
}

func (c *cli) tokenCmd() *cobra.Command {
	return c.queryCmd("token <token-id>", "Print the owner, URI and visibility of a token", cobra.ExactArgs(1),
		func(cmd *cobra.Command, e *app.Engine, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			owner, err := e.OwnerOf(id)
			if err != nil {
				return err
			}
			uri, err := e.TokenURI(id)
			if err != nil {
				return err
			}
			public, err := e.IsPublic(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token %d\towner %s\turi %s\tpublic %t\n", id, owner.Bech32(), uri, public)
			return nil
		})
}

func (c *cli) balanceCmd() *cobra.Command {
	return c.queryCmd("balance <account>", "Print the wallet balance of an account", cobra.ExactArgs(1),
		func(cmd *cobra.Command, e *app.Engine, args []string) error {
			addr, err := c.account(args[0])
			if err != nil {
				return err
			}
			balance, err := e.Balance(addr)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), balance)
			return nil
		})
}
