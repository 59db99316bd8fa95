// Package translate compiles record schemas into flat read programs and
// executes them against raw input messages.
//
// # Overview
//
// Callers register definitions (named schemas) in any order, finalize the
// registry once, then stream input messages through a MessageWriter:
//
//	┌────────────┐   FinalizeAll    ┌──────────────┐   Write    ┌───────────────┐
//	│ Definition │ ───────────────► │ CommandBuffer│ ─────────► │ data + strings│
//	│  registry  │  sizes+commands  │  (compiled)  │  dispatch  │    arenas     │
//	└────────────┘                  └──────────────┘            └───────────────┘
//
// # In-record layout
//
// Every field occupies a fixed footprint inside its record window:
//
//	Field shape                  Footprint
//	─────────────────────────────────────────
//	primitive                    its size
//	nested record                sum of fields
//	string / json                8 (count, offset into strings)
//	array (any element, any      8 (count, offset into data)
//	  length mode)
//
// Built-in leaf types: bool, uint8, int8 (1 byte); uint16, int16 (2);
// uint32, int32, float32 (4); uint64, int64, float64, time, duration (8);
// string, json (8-byte offset pair, bodies in the string arena).
//
// # Compilation
//
// Finalization resolves type references, propagates size and variability
// across the definition graph, and lowers each record into five command
// kinds: fixed-size copies, string reads, dynamic fixed-size reads, and
// constant/dynamic arrays with nested element programs. Constant arrays are
// unrolled, and a peephole pass merges adjacent fixed reads: a record of
// scalars collapses into a single copy, and so does the element run of a
// constant scalar array. The array itself stays a separate command, since
// its elements live in a side allocation.
//
// # Execution
//
// Write allocates a record-sized window in the data arena and dispatches the
// compiled program against a positional reader over the input. Side
// allocations for variable-length children append to the arenas, and their
// (count, offset) pairs are written back into the parent window. Offsets are
// stable for the writer's lifetime; they index the arena, not the current
// backing array.
//
// # Input encoding
//
// Host byte order throughout. A message is the concatenation of its field
// encodings in declared order: primitives as raw bytes, strings as a uint32
// count plus body, constant arrays as back-to-back elements, dynamic arrays
// as a uint32 length plus elements.
//
// # Concurrency
//
// Registries, definitions, and writers are single-threaded. A finalized
// definition is immutable and may be shared across writers; each writer owns
// its arenas exclusively.
package translate
