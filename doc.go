// Package binmsg translates schema-described binary messages into a compact,
// randomly-addressable in-memory form.
//
// Record schemas ("definitions") are compiled into flat programs of low-level
// read commands; executing a program against an input byte buffer fills two
// parallel append-only arenas, one for fixed-layout record data and one for
// string bodies. Consumers index records by the byte offsets returned per
// message and follow inline (count, offset) pairs to reach variable-length
// fields.
//
// # Architecture Overview
//
// The library is organized into a few packages with distinct responsibilities:
//
//	binmsg/              Root package: registration and translation facade
//	├── translate/       Core: definitions, command compilation, message writer
//	├── schema/          JSON schema-set documents → registry registrations
//	├── errors/          Structured error types for debugging
//	└── cmd/translate/   CLI and interactive arena inspector
//
// # Quick Start
//
// Register a schema and translate a message:
//
//	reg := binmsg.NewRegistry()
//	def, err := binmsg.RegisterDefinition(reg, "msgs/Point", []binmsg.FieldSpec{
//	    binmsg.Scalar("float64", "x"),
//	    binmsg.Scalar("float64", "y"),
//	    binmsg.Scalar("string", "label"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	w := binmsg.NewMessageWriter()
//	defer w.Release()
//
//	offset, err := w.Write(def, input)
//	record := w.DataBytes()[offset : int(offset)+def.Size()]
//
// Mutually-referential schemas register in any order through the two-phase
// API: create definitions, add fields, then finalize the registry once.
//
//	reg := binmsg.NewRegistry()
//	pose := reg.Create("msgs/Pose")
//	pose.AddField("geometry/Point", "position", false, -1)
//	point := reg.Create("geometry/Point")
//	point.AddField("float64", "x", false, -1)
//	point.AddField("float64", "y", false, -1)
//	if err := reg.FinalizeAll(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Output Layout
//
// The data arena holds each translated record at its returned offset. Every
// string, array, and dynamic blob slot inside a record is exactly 8 bytes:
// a uint32 count followed by a uint32 offset in host byte order. The offset
// indexes the arena hosting the payload - the data arena for array elements
// and dynamic fixed-size data, the string arena for string and JSON bodies.
//
// Arenas only append, so offsets stay valid for the writer's lifetime even
// as the backing buffers grow.
//
// # Thread Safety
//
// Registries and writers are NOT safe for concurrent use. A finalized
// definition is immutable and may be shared; run one writer per goroutine
// for parallel batch translation.
package binmsg
