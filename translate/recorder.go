package translate

import (
	"github.com/strandlabs/binmsg/errors"
)

// Command recording lowers a finalized definition tree into a flat program.
// All functions here are pure over the tree; they run at the tail of
// Finalize, after sizes and variability flags are settled.

func recordDefinitionCommands(def *Definition) (CommandBuffer, error) {
	if def.HasFields() {
		return recordComplexDefinitionCommands(def)
	}
	if def.isString {
		return recordStringDefinitionCommands(def), nil
	}
	if def.size > 0 {
		return recordNonStringDefinitionCommands(def, 1), nil
	}

	// Zero-size definition with no fields: nothing to read.
	return nil, nil
}

func recordComplexDefinitionCommands(def *Definition) (CommandBuffer, error) {
	if def.recording {
		// Reached only through an array-valued field cycle, which finalizes
		// to a legal size but has no finite command program.
		return nil, errors.New(errors.PhaseFinalize, errors.KindCycle).
			TypeName(def.name).
			Detail("array element type recursively contains itself").
			Build()
	}
	def.recording = true
	defer func() { def.recording = false }()

	var ret CommandBuffer
	for i := range def.fields {
		f := &def.fields[i]

		var cmds CommandBuffer
		var err error
		if f.IsArray {
			cmds, err = recordArrayDefinitionCommands(f.def, f.ArraySize)
		} else {
			cmds, err = recordDefinitionCommands(f.def)
		}
		if err != nil {
			return nil, err
		}

		for j := range cmds {
			cmds[j].Label = f.Name + "(" + cmds[j].Label + ")"
		}
		ret = append(ret, cmds...)
	}

	return ret, nil
}

func recordArrayDefinitionCommands(def *Definition, arraySize int32) (CommandBuffer, error) {
	if arraySize >= 0 {
		// Constant length: unroll all elements into subcommands. Beyond
		// saving the per-element dispatch, unrolling lets the optimizer merge
		// fixed reads across element boundaries.
		cmd := Command{
			Type:   ConstantArray,
			Label:  def.name,
			Size:   def.size,
			Length: uint32(arraySize),
		}

		switch {
		case def.isString:
			for i := int32(0); i < arraySize; i++ {
				cmd.Subcommands = append(cmd.Subcommands, recordStringDefinitionCommands(def)...)
			}
		case def.constantSize:
			// The whole run collapses into one read.
			cmd.Subcommands = append(cmd.Subcommands, recordNonStringDefinitionCommands(def, int(arraySize))...)
		default:
			for i := int32(0); i < arraySize; i++ {
				sub, err := recordDefinitionCommands(def)
				if err != nil {
					return nil, err
				}
				cmd.Subcommands = append(cmd.Subcommands, sub...)
			}
		}

		return CommandBuffer{cmd}, nil
	}

	if def.constantSize {
		// Dynamic array of constant-size elements: one bulk copy at dispatch
		// time, once the element count is known.
		return CommandBuffer{{
			Type:  ReadDynamicSizeData,
			Label: def.name,
			Size:  def.size,
		}}, nil
	}

	// Dynamic array of variable-size elements: store the program for a single
	// element and iterate it at dispatch time.
	cmd := Command{
		Type:  DynamicArray,
		Label: def.name,
		Size:  def.size,
	}

	switch {
	case def.isString:
		cmd.Subcommands = recordStringDefinitionCommands(def)
	case def.constantSize:
		cmd.Subcommands = recordNonStringDefinitionCommands(def, 1)
	default:
		sub, err := recordDefinitionCommands(def)
		if err != nil {
			return nil, err
		}
		cmd.Subcommands = sub
	}

	return CommandBuffer{cmd}, nil
}

func recordStringDefinitionCommands(def *Definition) CommandBuffer {
	return CommandBuffer{{
		Type:  ReadString,
		Label: def.name,
	}}
}

func recordNonStringDefinitionCommands(def *Definition, count int) CommandBuffer {
	return CommandBuffer{{
		Type:  ReadFixedSizeData,
		Label: def.name,
		Size:  count * def.size,
	}}
}
