package translate

import (
	"go.uber.org/zap"

	"github.com/strandlabs/binmsg/errors"
	"github.com/strandlabs/binmsg/translate/internal/arena"
)

// reserveFactor over-reserves arena capacity relative to the raw input size.
// Translated messages carry extra offset pairs and side allocations, so the
// output is larger than the input; 4x keeps growth rare in practice. It is a
// heuristic, not a limit: exceeding the reservation just grows the arena.
const reserveFactor = 4

// MessageWriter translates input messages into two parallel arenas: data for
// fixed-layout record bytes and strings for blob bodies. Records are indexed
// by the byte offsets Write returns; variable-length fields are reachable
// from their record slots via inline (count, offset) pairs.
//
// A writer owns its arenas exclusively and is not safe for concurrent use.
// Independent writers translate independent batches in parallel.
type MessageWriter struct {
	data    *arena.Arena
	strings *arena.Arena
}

func NewMessageWriter() *MessageWriter {
	return &MessageWriter{
		data:    arena.New(),
		strings: arena.New(),
	}
}

// Release returns the arena buffers to the shared pool. The writer and any
// borrowed arena contents are invalid afterwards.
func (w *MessageWriter) Release() {
	w.data.Release()
	w.strings.Release()
}

// DataBytes borrows the data arena contents: every translated record at its
// returned offset, followed by its side allocations. Valid until the next
// Write or Release.
func (w *MessageWriter) DataBytes() []byte {
	return w.data.Bytes()
}

// StringBytes borrows the string arena contents: the concatenated string
// bodies referenced by offset pairs in the data arena. Valid until the next
// Write or Release.
func (w *MessageWriter) StringBytes() []byte {
	return w.strings.Bytes()
}

// Reserve sizes the arenas ahead of a batch of messageCount messages
// totalling totalBytes of input. Reservation is advisory: arenas still grow
// on demand, and growth never invalidates previously returned offsets.
func (w *MessageWriter) Reserve(def *Definition, messageCount, totalBytes int) error {
	if def == nil || !def.IsValid() {
		return errors.InvalidDefinition(errors.PhaseReserve, definitionName(def))
	}

	// Record windows have a known constant size; side allocations are bounded
	// by the heuristic factor.
	messageSize := messageCount * def.Size()
	payloadSize := reserveFactor * totalBytes

	w.data.Reserve(messageSize + payloadSize)
	w.strings.Reserve(payloadSize)
	return nil
}

// Write translates one input message and returns the byte offset of its
// record window within the data arena, or -1 with an error. On failure the
// arenas may retain bytes appended before the failure point; callers discard
// the offset and either continue with fresh messages or Release the writer.
func (w *MessageWriter) Write(def *Definition, input []byte) (int32, error) {
	if def == nil || !def.IsValid() {
		return -1, errors.InvalidDefinition(errors.PhaseWrite, definitionName(def))
	}

	offset := w.data.Len()
	src := arena.NewReader(input)
	dst := w.data.Allocate(def.Size())

	if err := w.dispatchCommands(def.Commands(), src, &dst); err != nil {
		Logger().Warn("failed dispatching commands",
			zap.String("type", def.Name()),
			zap.Error(err))
		return -1, err
	}

	return int32(offset), nil
}

// WriteBatch reserves capacity for the whole batch, then translates each
// message in order. The returned offsets parallel the input slice.
func (w *MessageWriter) WriteBatch(def *Definition, messages [][]byte) ([]int32, error) {
	totalBytes := 0
	for _, m := range messages {
		totalBytes += len(m)
	}
	if err := w.Reserve(def, len(messages), totalBytes); err != nil {
		return nil, err
	}

	offsets := make([]int32, 0, len(messages))
	for _, m := range messages {
		offset, err := w.Write(def, m)
		if err != nil {
			return nil, err
		}
		offsets = append(offsets, offset)
	}
	return offsets, nil
}

// dispatchCommands executes a compiled program against (src, dst). Commands
// run in compiled order, and side allocations happen in dispatch order; the
// offsets written into parent records make that ordering observable, so it
// must not change.
func (w *MessageWriter) dispatchCommands(cmds CommandBuffer, src *arena.Reader, dst *arena.Window) error {
	for i := range cmds {
		cmd := &cmds[i]

		switch cmd.Type {
		case ReadFixedSizeData:
			if err := src.Read(cmd.Size, dst); err != nil {
				Logger().Warn("failed fixed-size read",
					zap.String("label", cmd.Label),
					zap.Int("size", cmd.Size),
					zap.Error(err))
				return err
			}

		case ReadString:
			if err := w.readDynamicData(src, dst, w.strings, cmd.Label, 1); err != nil {
				return err
			}

		case ReadDynamicSizeData:
			if err := w.readDynamicData(src, dst, w.data, cmd.Label, cmd.Size); err != nil {
				return err
			}

		case ConstantArray:
			child := w.data.Allocate(int(cmd.Length) * cmd.Size)
			if err := dst.WriteOffsetPair(cmd.Length, uint32(child.Pos())); err != nil {
				return err
			}
			if cmd.Length > 0 {
				if err := w.dispatchCommands(cmd.Subcommands, src, &child); err != nil {
					return err
				}
			}

		case DynamicArray:
			var length uint32
			if err := src.ReadLength(&length); err != nil {
				Logger().Warn("cannot read array length", zap.String("label", cmd.Label))
				return err
			}
			child := w.data.Allocate(int(length) * cmd.Size)
			if err := dst.WriteOffsetPair(length, uint32(child.Pos())); err != nil {
				return err
			}
			for n := uint32(0); n < length; n++ {
				if err := w.dispatchCommands(cmd.Subcommands, src, &child); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// readDynamicData handles the count-prefixed payloads shared by string and
// dynamic fixed-size reads: read the count, carve count*size bytes out of the
// target arena, link it from dst, and bulk-copy the body.
func (w *MessageWriter) readDynamicData(src *arena.Reader, dst *arena.Window, target *arena.Arena, label string, size int) error {
	var length uint32
	if err := src.ReadLength(&length); err != nil {
		Logger().Warn("cannot read length", zap.String("label", label))
		return err
	}

	// The payload is copied verbatim from the input, so a count that claims
	// more bytes than remain can be rejected before allocating for it.
	total := int(length) * size
	if total > src.Remaining() {
		return errors.ShortInput(errors.PhaseWrite, []string{label}, total, src.Remaining())
	}

	payload := target.Allocate(total)
	if err := dst.WriteOffsetPair(length, uint32(payload.Pos())); err != nil {
		return err
	}
	if length > 0 {
		if err := src.Read(total, &payload); err != nil {
			Logger().Warn("failed to read dynamic data",
				zap.String("label", label),
				zap.Int("size", size),
				zap.Uint32("length", length))
			return err
		}
	}

	return nil
}

func definitionName(def *Definition) string {
	if def == nil {
		return ""
	}
	return def.name
}
