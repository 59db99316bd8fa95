// Package arena implements the append-only byte buffers backing message
// translation: arenas that only grow, write windows carved from them, and a
// positional reader over input messages.
//
// Offsets into an arena are stable for its lifetime. Direct byte slices are
// not: growing the arena may reallocate the backing array, which is why
// windows store (arena, next, end) and resolve memory on every write.
package arena
