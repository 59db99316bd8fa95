package binmsg

import (
	"github.com/strandlabs/binmsg/translate"
)

// Re-exports so most callers only import the root package.
type (
	Registry      = translate.Registry
	Definition    = translate.Definition
	Field         = translate.Field
	Command       = translate.Command
	CommandType   = translate.CommandType
	CommandBuffer = translate.CommandBuffer
	MessageWriter = translate.MessageWriter
)

const (
	ReadFixedSizeData   = translate.ReadFixedSizeData
	ReadString          = translate.ReadString
	ReadDynamicSizeData = translate.ReadDynamicSizeData
	ConstantArray       = translate.ConstantArray
	DynamicArray        = translate.DynamicArray
)

// DynamicLength marks an array field whose element count is read from each
// message rather than fixed by the schema.
const DynamicLength int32 = -1

func NewRegistry() *Registry {
	return translate.NewRegistry()
}

func NewMessageWriter() *MessageWriter {
	return translate.NewMessageWriter()
}

// FieldSpec declares one field of a record definition.
type FieldSpec struct {
	Type string
	Name string

	// Constant fields carry no bytes in message data and are skipped at
	// registration.
	Constant bool

	IsArray   bool
	ArraySize int32
}

// Scalar declares a plain field of the named type.
func Scalar(fieldType, name string) FieldSpec {
	return FieldSpec{Type: fieldType, Name: name, ArraySize: DynamicLength}
}

// Array declares a dynamic-length array field.
func Array(fieldType, name string) FieldSpec {
	return FieldSpec{Type: fieldType, Name: name, IsArray: true, ArraySize: DynamicLength}
}

// FixedArray declares a constant-length array field of length elements.
func FixedArray(fieldType, name string, length int32) FieldSpec {
	return FieldSpec{Type: fieldType, Name: name, IsArray: true, ArraySize: length}
}

func createDefinition(reg *Registry, name string, fields []FieldSpec) *Definition {
	def := reg.Create(name)
	for _, f := range fields {
		if f.Constant {
			continue
		}
		def.AddField(f.Type, f.Name, f.IsArray, f.ArraySize)
	}
	return def
}

// RegisterDefinition creates one definition and finalizes the registry. Other
// definitions the new one depends on must already be registered.
func RegisterDefinition(reg *Registry, name string, fields []FieldSpec) (*Definition, error) {
	def := createDefinition(reg, name, fields)
	if err := reg.FinalizeAll(); err != nil {
		return nil, err
	}
	return def, nil
}

// RegisterDefinitions creates a set of possibly mutually-referential
// definitions, then finalizes the registry once. Registration order does not
// matter.
func RegisterDefinitions(reg *Registry, types map[string][]FieldSpec) error {
	for name, fields := range types {
		createDefinition(reg, name, fields)
	}
	return reg.FinalizeAll()
}
