package volregtest

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/emicklei/proto"
)

// schemaField is a single message field, either declared in a .proto file
// or described by a protobuf struct tag.
type schemaField struct {
	Number   int
	Wire     string
	Repeated bool
}

// AssertProtoSchema fails the test unless every model is declared as a
// message of the given .proto file with the same field names, numbers,
// wire types and cardinality as its protobuf struct tags.
func AssertProtoSchema(t testing.TB, protoFile string, models ...interface{}) {
	t.Helper()

	messages := parseProtoFile(t, protoFile)
	for _, m := range models {
		typ := reflect.TypeOf(m)
		for typ.Kind() == reflect.Ptr {
			typ = typ.Elem()
		}
		declared, ok := messages[typ.Name()]
		if !ok {
			t.Fatalf("%s: no message %s", protoFile, typ.Name())
		}
		tagged := structFields(t, typ)
		for name, want := range declared {
			got, ok := tagged[name]
			if !ok {
				t.Fatalf("%s.%s: field %s has no struct tag", protoFile, typ.Name(), name)
			}
			if got != want {
				t.Fatalf("%s.%s: field %s is %+v in the schema and %+v in the struct", protoFile, typ.Name(), name, want, got)
			}
		}
		for name := range tagged {
			if _, ok := declared[name]; !ok {
				t.Fatalf("%s.%s: field %s is not declared", protoFile, typ.Name(), name)
			}
		}
	}
}

func parseProtoFile(t testing.TB, path string) map[string]map[string]schemaField {
	t.Helper()

	fd, err := os.Open(path)
	if err != nil {
		t.Fatalf("open schema: %s", err)
	}
	defer fd.Close()

	def, err := proto.NewParser(fd).Parse()
	if err != nil {
		t.Fatalf("parse %s: %s", path, err)
	}

	messages := make(map[string]map[string]schemaField)
	proto.Walk(def, proto.WithMessage(func(m *proto.Message) {
		fields := make(map[string]schemaField)
		for _, el := range m.Elements {
			f, ok := el.(*proto.NormalField)
			if !ok {
				continue
			}
			fields[f.Name] = schemaField{
				Number:   f.Sequence,
				Wire:     wireType(f.Type),
				Repeated: f.Repeated,
			}
		}
		messages[m.Name] = fields
	}))
	return messages
}

// structFields reads the protobuf struct tags of a generated style model,
// for example `protobuf:"bytes,2,opt,name=token_ref,json=tokenRef,proto3"`.
func structFields(t testing.TB, typ reflect.Type) map[string]schemaField {
	t.Helper()

	fields := make(map[string]schemaField)
	for i := 0; i < typ.NumField(); i++ {
		tag, ok := typ.Field(i).Tag.Lookup("protobuf")
		if !ok {
			continue
		}
		parts := strings.Split(tag, ",")
		if len(parts) < 4 || !strings.HasPrefix(parts[3], "name=") {
			t.Fatalf("%s.%s: malformed protobuf tag %q", typ.Name(), typ.Field(i).Name, tag)
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			t.Fatalf("%s.%s: field number: %s", typ.Name(), typ.Field(i).Name, err)
		}
		fields[strings.TrimPrefix(parts[3], "name=")] = schemaField{
			Number:   n,
			Wire:     parts[0],
			Repeated: parts[2] == "rep",
		}
	}
	return fields
}

// wireType returns the struct tag wire type of a proto scalar or message.
func wireType(protoType string) string {
	switch protoType {
	case "int32", "int64", "uint32", "uint64", "sint32", "sint64", "bool", "enum":
		return "varint"
	case "fixed64", "sfixed64", "double":
		return "fixed64"
	case "fixed32", "sfixed32", "float":
		return "fixed32"
	default:
		return "bytes"
	}
}
