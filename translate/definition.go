package translate

import (
	"go.uber.org/zap"

	"github.com/strandlabs/binmsg/errors"
)

// offsetPairSize is the in-record footprint of every string, array, and
// dynamic blob slot: a (count uint32, offset uint32) pair.
const offsetPairSize = 8

// Field is one named, typed slot within a record definition.
type Field struct {
	// Type is the declared type name, resolved against the registry during
	// finalization.
	Type string
	Name string

	def *Definition

	IsArray bool

	// ArraySize >= 0 marks a constant-length array; -1 marks a dynamic one.
	ArraySize int32
}

// Definition returns the resolved type definition, or nil before
// finalization.
func (f *Field) Definition() *Definition {
	return f.def
}

// Footprint is the fixed number of bytes the field occupies in its parent
// record. Arrays always occupy the offset-pair slot regardless of element
// size; their element layout lives in the side arena.
func (f *Field) Footprint() int {
	if f.IsArray {
		return offsetPairSize
	}
	return f.def.size
}

func (f *Field) finalize(reg *Registry) error {
	if f.def == nil {
		f.def = reg.Get(f.Type)
	}
	if f.def == nil {
		Logger().Warn("cannot find definition", zap.String("type", f.Type), zap.String("field", f.Name))
		return errors.NotFound(errors.PhaseFinalize, []string{f.Name}, f.Type)
	}

	if f.def.finalizing {
		if f.IsArray {
			// The array slot is a fixed 8 bytes, so a cycle through an array
			// field does not affect the enclosing size computation.
			return nil
		}
		return errors.New(errors.PhaseFinalize, errors.KindCycle).
			Path(f.Name).
			TypeName(f.Type).
			Detail("definition contains itself by value").
			Build()
	}

	return f.def.Finalize(reg)
}

// Definition is a named schema: a fixed-size primitive, a string-like blob,
// or a record composed of ordered fields.
//
// Definitions are assumed to be incomplete while registration is in progress,
// since they can reference each other in any order. Only once all of them are
// registered can sizes be computed and commands recorded; that is what
// Finalize does, and a definition is usable only after it succeeds.
type Definition struct {
	name         string
	size         int
	fields       []Field
	commands     CommandBuffer
	isString     bool
	valid        bool
	constantSize bool

	// finalizing and recording flag in-progress traversals so that true
	// cycles fail instead of looping or mis-sizing.
	finalizing bool
	recording  bool
}

func newDefinition(name string, size int, isString bool) *Definition {
	return &Definition{
		name:         name,
		size:         size,
		isString:     isString,
		valid:        true,
		constantSize: !isString,
	}
}

func (d *Definition) Name() string {
	return d.name
}

// Size is the in-record footprint in bytes. Meaningful for records only after
// successful finalization.
func (d *Definition) Size() int {
	return d.size
}

func (d *Definition) HasFields() bool {
	return len(d.fields) > 0
}

func (d *Definition) Fields() []Field {
	return d.fields
}

// IsString reports whether the definition is a blob-valued leaf (string or
// JSON payload).
func (d *Definition) IsString() bool {
	return d.isString
}

// IsValid reports whether the definition has been finalized since the last
// field addition.
func (d *Definition) IsValid() bool {
	return d.valid
}

// HasConstantSize reports whether the definition and all transitive children
// contain no string, no array, and no non-constant-size record.
func (d *Definition) HasConstantSize() bool {
	return d.constantSize
}

// Commands returns the compiled command buffer. Meaningful only while the
// definition is valid.
func (d *Definition) Commands() CommandBuffer {
	return d.commands
}

// AddField appends a field and marks the definition invalid. Finalize must be
// called again before the definition can be used.
func (d *Definition) AddField(fieldType, name string, isArray bool, arraySize int32) {
	d.fields = append(d.fields, Field{
		Type:      fieldType,
		Name:      name,
		IsArray:   isArray,
		ArraySize: arraySize,
	})
	d.valid = false
}

// Finalize resolves field types against the registry, computes the record
// size, and compiles the command buffer. It is idempotent: a valid definition
// returns immediately, which also lets shared definitions be finalized once
// no matter how many records reference them.
func (d *Definition) Finalize(reg *Registry) error {
	if d.valid {
		return nil
	}

	d.finalizing = true
	defer func() { d.finalizing = false }()

	d.valid = true
	if len(d.fields) > 0 {
		// Only records recompute their size. Primitives and blobs have no
		// fields and carry the size given at construction.
		d.size = 0
		for i := range d.fields {
			f := &d.fields[i]
			if err := f.finalize(reg); err != nil {
				d.valid = false
				Logger().Warn("failed to finalize field",
					zap.String("field", f.Name),
					zap.String("type", f.Type),
					zap.Error(err))
				return err
			}
			d.size += f.Footprint()

			if f.IsArray || f.def.isString || !f.def.constantSize {
				// Variability propagates from children to parent.
				d.constantSize = false
			}
		}
	}

	// Recording may revisit shared definitions; that work is redundant but
	// harmless since it is a pure function of the finalized tree.
	cmds, err := recordDefinitionCommands(d)
	if err != nil {
		d.valid = false
		return err
	}
	d.commands = optimizeCommands(cmds)

	return nil
}

// FlattenCommands returns the pre-order traversal of compiled command type
// tags, children after parent. Consumers use it to assert compiled shapes.
func (d *Definition) FlattenCommands() []int {
	return flattenCommandTypes([]int{}, d.commands)
}
