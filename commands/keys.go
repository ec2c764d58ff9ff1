package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/crypto"
	"github.com/volreg/volreg/errors"
)

func (c *cli) keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage account keys",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "new <name>",
		Short: "Generate a new ed25519 key and print its address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := c.newKey(args[0])
			if err != nil {
				return err
			}
			printAddress(cmd, args[0], key.PublicKey().Address())
			return nil
		},
	}, &cobra.Command{
		Use:   "show <name>",
		Short: "Print the address of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := c.loadKey(args[0])
			if err != nil {
				return err
			}
			printAddress(cmd, args[0], key.PublicKey().Address())
			return nil
		},
	})
	return cmd
}

func printAddress(cmd *cobra.Command, name string, addr volreg.Address) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", name, addr.Bech32(), addr)
}

func (c *cli) keyPath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\:`) {
		return "", errors.ErrInput.Newf("invalid key name %q", name)
	}
	return filepath.Join(c.opts.Home, "keys", name+".key"), nil
}

// newKey creates a key file. Existing keys are never overwritten.
func (c *cli) newKey(name string) (*crypto.PrivateKey, error) {
	path, err := c.keyPath(name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil, errors.Wrapf(errors.ErrDuplicate, "key file %q already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "create key dir: %s", err)
	}
	key := crypto.GenPrivKeyEd25519()
	if err := os.WriteFile(path, []byte(key.String()), 0o600); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "write key: %s", err)
	}
	return key, nil
}

func (c *cli) loadKey(name string) (*crypto.PrivateKey, error) {
	path, err := c.keyPath(name)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "key %q", name)
		}
		return nil, errors.Wrapf(errors.ErrInput, "read key: %s", err)
	}
	return crypto.ParsePrivateKey(strings.TrimSpace(string(raw)))
}

// account resolves a key name or an address.
func (c *cli) account(ref string) (volreg.Address, error) {
	if ref == "" {
		return nil, errors.ErrInput.New("account required")
	}
	switch key, err := c.loadKey(ref); {
	case err == nil:
		return key.PublicKey().Address(), nil
	case !errors.ErrNotFound.Is(err) && !errors.ErrInput.Is(err):
		return nil, err
	}
	addr, err := volreg.ParseAddress(ref)
	if err != nil {
		return nil, errors.Wrapf(err, "account %q", ref)
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	return addr, nil
}
