package orm

import (
	"reflect"

	"github.com/gogo/protobuf/proto"
	"github.com/volreg/volreg/errors"
)

// Model is implemented by any entity that can be stored using ModelBucket.
// Models are serialized as protobuf messages.
type Model interface {
	proto.Message
	// Validate returns error if the model is not in a valid
	// state to save to the db (eg. field missing, out of range, ...)
	Validate() error
}

// ModelSlicePtr represents a pointer to a slice of models. Think of it as
// *[]Model. Because of Go type system, using []Model type would not work for
// us. Instead we use a placeholder type and the validation is done during the
// runtime.
type ModelSlicePtr interface{}

// newModel returns a fresh instance of the same type as the prototype.
func newModel(prototype Model) Model {
	return reflect.New(reflect.TypeOf(prototype).Elem()).Interface().(Model)
}

// load decodes the raw value into dest.
func load(raw []byte, dest Model) error {
	if err := proto.Unmarshal(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "unmarshal %T: %s", dest, err)
	}
	return nil
}

// appendModel appends a copy of the model to the slice behind dest.
func appendModel(dest ModelSlicePtr, m Model) error {
	ptr := reflect.ValueOf(dest)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Slice {
		return errors.Wrapf(errors.ErrType, "%T is not a pointer to a slice", dest)
	}
	slice := ptr.Elem()
	val := reflect.ValueOf(m)
	switch elem := slice.Type().Elem(); {
	case val.Type().AssignableTo(elem):
		slice.Set(reflect.Append(slice, val))
	case val.Elem().Type().AssignableTo(elem):
		slice.Set(reflect.Append(slice, val.Elem()))
	default:
		return errors.Wrapf(errors.ErrType, "%T cannot be appended to %T", m, dest)
	}
	return nil
}
