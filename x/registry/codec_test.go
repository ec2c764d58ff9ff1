package registry

import (
	"testing"

	"github.com/volreg/volreg/volregtest"
)

func TestCodecSchema(t *testing.T) {
	volregtest.AssertProtoSchema(t, "codec.proto", &Token{}, &Configuration{})
}
