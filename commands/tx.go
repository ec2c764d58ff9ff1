package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/app"
	"github.com/volreg/volreg/coin"
	"github.com/volreg/volreg/errors"
)

const (
	flagFrom    = "from"
	flagPayment = "payment"
	flagGenesis = "genesis"
)

func parseID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInput, "invalid id %q", raw)
	}
	return id, nil
}

func parseCoin(raw string) (coin.Coin, error) {
	c, err := coin.ParseHumanFormat(raw)
	if err != nil {
		return coin.Coin{}, errors.Wrapf(err, "amount %q", raw)
	}
	return c, nil
}

// txCmd builds a command executed on behalf of the --from account.
func (c *cli) txCmd(use, short string, args cobra.PositionalArgs, run func(cmd *cobra.Command, e *app.Engine, caller volreg.Address, args []string) error) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := c.account(from)
			if err != nil {
				return err
			}
			return c.withEngine(func(e *app.Engine) error {
				return run(cmd, e, caller, args)
			})
		},
	}
	cmd.Flags().StringVar(&from, flagFrom, "", "key name or address of the caller")
	return cmd
}

func (c *cli) initCmd() *cobra.Command {
	var genesisPath string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the genesis state into a fresh store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := c.opts.Genesis
			if genesisPath != "" {
				var err error
				if gen, err = app.LoadGenesis(genesisPath); err != nil {
					return err
				}
			}
			if gen == nil {
				return errors.ErrInput.New("no genesis given, use --genesis or a genesis section in the config file")
			}
			return c.withEngine(func(e *app.Engine) error {
				if err := e.InitGenesis(*gen); err != nil {
					return err
				}
				last := e.LastCommit()
				fmt.Fprintf(cmd.OutOrStdout(), "initialized version %d hash %X\n", last.Version, last.Hash)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&genesisPath, flagGenesis, "", "YAML genesis file")
	return cmd
}

func (c *cli) mintCmd() *cobra.Command {
	var (
		public  bool
		payment coin.Coin
	)
	cmd := c.txCmd("mint <uri-fragment>", "Mint a new token", cobra.ExactArgs(1),
		func(cmd *cobra.Command, e *app.Engine, caller volreg.Address, args []string) error {
			id, err := e.Mint(caller, args[0], public, payment)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "minted token %d\n", id)
			return nil
		})
	cmd.Flags().BoolVar(&public, "public", false, "mint a public token, paying the mint price")
	cmd.Flags().Var(&payment, flagPayment, `payment, for example "1 ETH"`)
	return cmd
}

func (c *cli) setPriceCmd() *cobra.Command {
	return c.txCmd("set-price <amount>", "Change the mint price of public tokens", cobra.ExactArgs(1),
		func(cmd *cobra.Command, e *app.Engine, caller volreg.Address, args []string) error {
			price, err := parseCoin(args[0])
			if err != nil {
				return err
			}
			return e.SetPrice(caller, price)
		})
}

func (c *cli) setVisibilityCmd() *cobra.Command {
	var payment coin.Coin
	cmd := c.txCmd("set-visibility <token-id> <public>", "Change the visibility of an owned token", cobra.ExactArgs(2),
		func(cmd *cobra.Command, e *app.Engine, caller volreg.Address, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			public, err := strconv.ParseBool(args[1])
			if err != nil {
				return errors.Wrapf(errors.ErrInput, "invalid visibility %q", args[1])
			}
			return e.SetVisibility(caller, id, public, payment)
		})
	cmd.Flags().Var(&payment, flagPayment, "optional payment forwarded to the admin")
	return cmd
}

func (c *cli) transferCmd() *cobra.Command {
	return c.txCmd("transfer <to> <token-id>", "Transfer an owned token", cobra.ExactArgs(2),
		func(cmd *cobra.Command, e *app.Engine, caller volreg.Address, args []string) error {
			to, err := c.account(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return e.TransferToken(caller, to, id)
		})
}

func (c *cli) issueCmd() *cobra.Command {
	return c.txCmd("issue <to> <amount>", "Issue coins into a wallet (admin only)", cobra.ExactArgs(2),
		func(cmd *cobra.Command, e *app.Engine, caller volreg.Address, args []string) error {
			to, err := c.account(args[0])
			if err != nil {
				return err
			}
			amount, err := parseCoin(args[1])
			if err != nil {
				return err
			}
			return e.Issue(caller, to, amount)
		})
}

func (c *cli) listCmd() *cobra.Command {
	var fee coin.Coin
	cmd := c.txCmd("list <token-id> <price>", "List an owned token for sale", cobra.ExactArgs(2),
		func(cmd *cobra.Command, e *app.Engine, caller volreg.Address, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			price, err := parseCoin(args[1])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("fee") {
				if fee, err = e.ListingPrice(); err != nil {
					return err
				}
			}
			itemID, err := e.CreateListing(caller, e.RegistryRef(), id, price, fee)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "listed item %d\n", itemID)
			return nil
		})
	cmd.Flags().Var(&fee, "fee", "listing fee (default: the current listing price)")
	return cmd
}

func (c *cli) buyCmd() *cobra.Command {
	return c.txCmd("buy <token-id> <payment>", "Buy a listed token", cobra.ExactArgs(2),
		func(cmd *cobra.Command, e *app.Engine, caller volreg.Address, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			payment, err := parseCoin(args[1])
			if err != nil {
				return err
			}
			itemID, err := e.ExecuteSale(caller, e.RegistryRef(), id, payment)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bought item %d\n", itemID)
			return nil
		})
}

func (c *cli) setListingPriceCmd() *cobra.Command {
	return c.txCmd("set-listing-price <amount>", "Change the listing fee", cobra.ExactArgs(1),
		func(cmd *cobra.Command, e *app.Engine, caller volreg.Address, args []string) error {
			price, err := parseCoin(args[0])
			if err != nil {
				return err
			}
			return e.SetListingPrice(caller, price)
		})
}
