package volreg

import "github.com/tendermint/tendermint/libs/log"

// DefaultLogger is used by all components that were not given a logger.
var DefaultLogger = log.NewNopLogger()
