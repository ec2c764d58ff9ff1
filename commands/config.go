package commands

import (
	"os"

	"github.com/volreg/volreg/app"
	"github.com/volreg/volreg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// BackendLevelDB persists the state in the home directory.
	BackendLevelDB = "goleveldb"
	// BackendMemDB keeps the state in memory only.
	BackendMemDB = "memdb"
)

// Options is the content of a configuration file. Values can be
// overwritten by flags and VOLREG_ prefixed environment variables.
type Options struct {
	Home      string       `yaml:"home"`
	DBBackend string       `yaml:"db_backend"`
	LogLevel  string       `yaml:"log_level"`
	Genesis   *app.Genesis `yaml:"genesis"`
}

// LoadOptions reads a YAML configuration file. Environment variables
// referenced as $VAR or ${VAR} are expanded before parsing.
func LoadOptions(path string) (*Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "read config: %s", err)
	}
	var opts Options
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &opts); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "parse config: %s", err)
	}
	return &opts, nil
}

// Validate checks the values that cannot be defaulted.
func (o *Options) Validate() error {
	var errs error
	switch o.DBBackend {
	case BackendLevelDB, BackendMemDB:
	default:
		errs = errors.AppendField(errs, "DBBackend", errors.ErrInput.Newf("unknown backend %q", o.DBBackend))
	}
	if o.Home == "" {
		errs = errors.AppendField(errs, "Home", errors.ErrInput.New("required"))
	}
	return errs
}
