package translate

// CommandType discriminates the compiled read commands. The numeric values
// are part of the consumer contract (FlattenCommands) and must not change.
type CommandType int

const (
	// ReadFixedSizeData copies Size bytes from the source buffer to the
	// destination window without transformation.
	ReadFixedSizeData CommandType = iota

	// ReadString reads a uint32 count from the source, allocates that many
	// bytes in the string arena, copies the body, and writes the (count,
	// offset) pair into the destination window.
	ReadString

	// ReadDynamicSizeData reads a uint32 count from the source, allocates
	// count*Size bytes in the data arena, bulk-copies the payload, and writes
	// the (count, offset) pair. Used for dynamic arrays of constant-size
	// elements.
	ReadDynamicSizeData

	// ConstantArray allocates Length*Size bytes in the data arena, writes the
	// (Length, offset) pair, and runs Subcommands once against the new
	// window. Subcommands hold the unrolled element reads, which lets the
	// optimizer merge across element boundaries.
	ConstantArray

	// DynamicArray reads a uint32 length from the source, allocates
	// length*Size bytes in the data arena, writes the (length, offset) pair,
	// and runs Subcommands once per element.
	DynamicArray
)

var commandTypeNames = [...]string{
	ReadFixedSizeData:   "read_fixed_size_data",
	ReadString:          "read_string",
	ReadDynamicSizeData: "read_dynamic_size_data",
	ConstantArray:       "constant_array",
	DynamicArray:        "dynamic_array",
}

func (t CommandType) String() string {
	if int(t) < len(commandTypeNames) {
		return commandTypeNames[t]
	}
	return "unknown"
}

// Command is one node of a compiled translation program.
type Command struct {
	// Label is a diagnostic name. Field wrapping produces "field(type)";
	// merged fixed reads join labels with "+". Nothing depends on its text.
	Label string

	// Subcommands hold element programs for array commands: all unrolled
	// elements for ConstantArray, a single element for DynamicArray.
	Subcommands CommandBuffer

	Type CommandType

	// Size is the byte count for fixed reads, or the element size for
	// array-shaped commands.
	Size int

	// Length is the element count of a ConstantArray, known at compile time.
	Length uint32
}

// CommandBuffer is an ordered list of commands, possibly nested.
type CommandBuffer []Command

// optimizeCommands walks a command list left to right, coalescing adjacent
// fixed-size reads into a single copy. Array subcommand lists are optimized
// recursively. The pass is idempotent.
func optimizeCommands(input CommandBuffer) CommandBuffer {
	ret := make(CommandBuffer, 0, len(input))

	for _, cmd := range input {
		switch cmd.Type {
		case ReadFixedSizeData:
			if n := len(ret); n > 0 && ret[n-1].Type == ReadFixedSizeData {
				ret[n-1].Label += "+" + cmd.Label
				ret[n-1].Size += cmd.Size
				continue
			}
			ret = append(ret, cmd)

		case ConstantArray, DynamicArray:
			cmd.Subcommands = optimizeCommands(cmd.Subcommands)
			ret = append(ret, cmd)

		default:
			ret = append(ret, cmd)
		}
	}

	return ret
}

func flattenCommandTypes(out []int, cmds CommandBuffer) []int {
	for i := range cmds {
		out = append(out, int(cmds[i].Type))
		out = flattenCommandTypes(out, cmds[i].Subcommands)
	}
	return out
}
