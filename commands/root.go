package commands

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/app"
	"github.com/volreg/volreg/errors"
	"github.com/volreg/volreg/store/iavl"
)

const (
	flagHome      = "home"
	flagConfig    = "config"
	flagLogLevel  = "log-level"
	flagDBBackend = "db-backend"

	envPrefix = "VOLREG"
	dbName    = "volreg"
)

// cli holds the state shared by all commands of one invocation.
type cli struct {
	v      *viper.Viper
	opts   Options
	logger log.Logger
}

// Execute runs the volreg command line with the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd returns the root of the volreg command tree.
func NewRootCmd() *cobra.Command {
	c := &cli{v: viper.New(), logger: volreg.DefaultLogger}

	root := &cobra.Command{
		Use:               "volreg",
		Short:             "Digital collectible registry and marketplace",
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	fl := root.PersistentFlags()
	fl.String(flagHome, defaultHome(), "directory holding keys and state")
	fl.String(flagConfig, "", "YAML configuration file")
	fl.String(flagLogLevel, "info", "log level: debug, info, error or none")
	fl.String(flagDBBackend, BackendLevelDB, "state backend: goleveldb or memdb")
	for _, name := range []string{flagHome, flagLogLevel, flagDBBackend} {
		if err := c.v.BindPFlag(name, fl.Lookup(name)); err != nil {
			panic(err)
		}
	}
	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	root.AddCommand(
		c.initCmd(),
		c.keysCmd(),
		c.mintCmd(),
		c.setPriceCmd(),
		c.setVisibilityCmd(),
		c.transferCmd(),
		c.issueCmd(),
		c.listCmd(),
		c.buyCmd(),
		c.setListingPriceCmd(),
		c.listingsCmd(),
		c.ownedCmd(),
		c.tokenCmd(),
		c.balanceCmd(),
	)
	return root
}

func defaultHome() string {
	return filepath.Join(os.ExpandEnv("$HOME"), ".volreg")
}

// setup merges the configuration file, environment and flags and builds
// the logger.
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	if path, _ := cmd.Flags().GetString(flagConfig); path != "" {
		opts, err := LoadOptions(path)
		if err != nil {
			return err
		}
		defaults := map[string]string{
			flagHome:      opts.Home,
			flagLogLevel:  opts.LogLevel,
			flagDBBackend: opts.DBBackend,
		}
		for key, val := range defaults {
			if val != "" {
				c.v.SetDefault(key, val)
			}
		}
		c.opts.Genesis = opts.Genesis
	}
	c.opts.Home = c.v.GetString(flagHome)
	c.opts.LogLevel = c.v.GetString(flagLogLevel)
	c.opts.DBBackend = c.v.GetString(flagDBBackend)
	if err := c.opts.Validate(); err != nil {
		return err
	}

	level, err := log.AllowLevel(c.opts.LogLevel)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	c.logger = log.NewFilter(log.NewTMLogger(log.NewSyncWriter(cmd.ErrOrStderr())), level)
	return nil
}

// openStore opens the commit store configured for this invocation.
func (c *cli) openStore() (*iavl.CommitStore, error) {
	if c.opts.DBBackend == BackendMemDB {
		return iavl.NewMemCommitStore(), nil
	}
	dir := filepath.Join(c.opts.Home, "data")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "create %s: %s", dir, err)
	}
	return iavl.NewCommitStore(dir, dbName)
}

// withEngine runs fn with an engine over the configured store and closes
// the store afterwards.
func (c *cli) withEngine(fn func(*app.Engine) error) error {
	db, err := c.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	e, err := app.NewEngine(app.Config{Store: db, Logger: c.logger})
	if err != nil {
		return err
	}
	return fn(e)
}
