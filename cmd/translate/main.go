package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/strandlabs/binmsg/schema"
	"github.com/strandlabs/binmsg/translate"
)

func main() {
	var (
		schemaFile  = flag.String("schema", "", "Path to JSON schema document")
		typeName    = flag.String("type", "", "Definition to translate with")
		inputFile   = flag.String("input", "", "Binary message file to translate")
		outPrefix   = flag.String("out", "", "Write <out>.data and <out>.strings instead of dumping")
		list        = flag.Bool("list", false, "List definitions and compiled commands, then exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	if *schemaFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: translate -schema <defs.json> -type <name> -input <msg.bin> [-out prefix]")
		fmt.Fprintln(os.Stderr, "       translate -schema <defs.json> -list")
		fmt.Fprintln(os.Stderr, "       translate -schema <defs.json> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		translate.SetLogger(logger)
	}

	reg, err := loadRegistry(*schemaFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(reg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *list {
		listDefinitions(reg)
		return
	}

	if err := run(reg, *typeName, *inputFile, *outPrefix); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadRegistry(schemaFile string) (*translate.Registry, error) {
	doc, err := os.ReadFile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	reg := translate.NewRegistry()
	if err := schema.Register(reg, doc); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return reg, nil
}

func listDefinitions(reg *translate.Registry) {
	for _, name := range reg.Names() {
		def := reg.Get(name)
		if !def.HasFields() {
			continue
		}
		fmt.Printf("%s (%d bytes)\n", name, def.Size())
		printCommands(def.Commands(), "  ")
	}
}

func printCommands(cmds translate.CommandBuffer, indent string) {
	for _, c := range cmds {
		switch c.Type {
		case translate.ReadFixedSizeData:
			fmt.Printf("%s%s size=%d  %s\n", indent, c.Type, c.Size, c.Label)
		case translate.ConstantArray:
			fmt.Printf("%s%s size=%d length=%d  %s\n", indent, c.Type, c.Size, c.Length, c.Label)
		case translate.ReadDynamicSizeData, translate.DynamicArray:
			fmt.Printf("%s%s size=%d  %s\n", indent, c.Type, c.Size, c.Label)
		default:
			fmt.Printf("%s%s  %s\n", indent, c.Type, c.Label)
		}
		printCommands(c.Subcommands, indent+"  ")
	}
}

func run(reg *translate.Registry, typeName, inputFile, outPrefix string) error {
	if typeName == "" || inputFile == "" {
		return fmt.Errorf("both -type and -input are required")
	}

	def := reg.Get(typeName)
	if def == nil {
		return fmt.Errorf("no definition found with type %q", typeName)
	}

	input, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	w := translate.NewMessageWriter()
	defer w.Release()

	if err := w.Reserve(def, 1, len(input)); err != nil {
		return err
	}
	offset, err := w.Write(def, input)
	if err != nil {
		return err
	}

	fmt.Printf("Type: %s (%d bytes per record)\n", typeName, def.Size())
	fmt.Printf("Record offset: %d\n", offset)
	fmt.Printf("Data arena: %d bytes, string arena: %d bytes\n", len(w.DataBytes()), len(w.StringBytes()))

	if outPrefix != "" {
		if err := os.WriteFile(outPrefix+".data", w.DataBytes(), 0o644); err != nil {
			return err
		}
		if err := os.WriteFile(outPrefix+".strings", w.StringBytes(), 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s.data and %s.strings\n", outPrefix, outPrefix)
		return nil
	}

	fmt.Printf("\nData arena:\n%s", hex.Dump(w.DataBytes()))
	if len(w.StringBytes()) > 0 {
		fmt.Printf("\nString arena:\n%s", hex.Dump(w.StringBytes()))
		fmt.Printf("\nStrings: %q\n", string(w.StringBytes()))
	}
	return nil
}
