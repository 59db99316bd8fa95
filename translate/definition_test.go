package translate

import (
	"errors"
	"testing"

	binmsgerrors "github.com/strandlabs/binmsg/errors"
)

func mustFinalize(t *testing.T, reg *Registry) {
	t.Helper()
	if err := reg.FinalizeAll(); err != nil {
		t.Fatal(err)
	}
}

func TestRecordSize_SumOfFootprints(t *testing.T) {
	tests := []struct {
		name   string
		build  func(reg *Registry)
		root   string
		size   int
	}{
		{
			name: "two scalars",
			build: func(reg *Registry) {
				d := reg.Create("P")
				d.AddField("int32", "a", false, -1)
				d.AddField("int32", "b", false, -1)
			},
			root: "P",
			size: 8,
		},
		{
			name: "string occupies offset pair",
			build: func(reg *Registry) {
				d := reg.Create("S")
				d.AddField("string", "name", false, -1)
			},
			root: "S",
			size: 8,
		},
		{
			name: "array occupies offset pair regardless of element",
			build: func(reg *Registry) {
				d := reg.Create("A")
				d.AddField("float64", "big", true, 100)
				d.AddField("uint8", "small", true, -1)
			},
			root: "A",
			size: 16,
		},
		{
			name: "nested record inlines",
			build: func(reg *Registry) {
				inner := reg.Create("Inner")
				inner.AddField("int32", "c", false, -1)
				inner.AddField("int32", "d", false, -1)
				outer := reg.Create("N")
				outer.AddField("int32", "a", false, -1)
				outer.AddField("Inner", "b", false, -1)
			},
			root: "N",
			size: 12,
		},
		{
			name: "mixed",
			build: func(reg *Registry) {
				d := reg.Create("M")
				d.AddField("bool", "flag", false, -1)
				d.AddField("time", "stamp", false, -1)
				d.AddField("string", "frame", false, -1)
				d.AddField("int16", "samples", true, 8)
			},
			root: "M",
			size: 25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			tt.build(reg)
			mustFinalize(t, reg)

			def := reg.Get(tt.root)
			if def.Size() != tt.size {
				t.Errorf("Size = %d, want %d", def.Size(), tt.size)
			}

			sum := 0
			for i := range def.Fields() {
				sum += def.Fields()[i].Footprint()
			}
			if sum != def.Size() {
				t.Errorf("Size %d != sum of footprints %d", def.Size(), sum)
			}
		})
	}
}

func TestAddField_Invalidates(t *testing.T) {
	reg := NewRegistry()
	def := reg.Create("msgs/T")
	def.AddField("int32", "a", false, -1)
	mustFinalize(t, reg)

	if !def.IsValid() {
		t.Fatal("finalized definition should be valid")
	}

	def.AddField("int32", "b", false, -1)
	if def.IsValid() {
		t.Fatal("AddField must invalidate the definition")
	}

	mustFinalize(t, reg)
	if !def.IsValid() || def.Size() != 8 {
		t.Fatalf("refinalized: valid=%v size=%d", def.IsValid(), def.Size())
	}
}

func TestHasConstantSize_Propagation(t *testing.T) {
	reg := NewRegistry()

	scalars := reg.Create("Scalars")
	scalars.AddField("int32", "a", false, -1)
	scalars.AddField("float64", "b", false, -1)

	withString := reg.Create("WithString")
	withString.AddField("string", "s", false, -1)

	withArray := reg.Create("WithArray")
	withArray.AddField("int32", "xs", true, 4)

	nested := reg.Create("Nested")
	nested.AddField("WithString", "child", false, -1)

	deep := reg.Create("Deep")
	deep.AddField("Nested", "child", false, -1)

	mustFinalize(t, reg)

	if !scalars.HasConstantSize() {
		t.Error("scalar record should have constant size")
	}
	for _, name := range []string{"WithString", "WithArray", "Nested", "Deep"} {
		if reg.Get(name).HasConstantSize() {
			t.Errorf("%s should not have constant size", name)
		}
	}
}

func TestFinalize_SharedDefinition(t *testing.T) {
	// A definition referenced from several records finalizes once and is
	// shared by pointer.
	reg := NewRegistry()
	point := reg.Create("Point")
	point.AddField("float64", "x", false, -1)

	a := reg.Create("A")
	a.AddField("Point", "p", false, -1)
	b := reg.Create("B")
	b.AddField("Point", "p", false, -1)

	mustFinalize(t, reg)

	fa := a.Fields()
	fb := b.Fields()
	if fa[0].Definition() != point || fb[0].Definition() != point {
		t.Fatal("fields must back-reference the registry's definition")
	}
}

func TestFinalize_ValueCycle(t *testing.T) {
	reg := NewRegistry()
	node := reg.Create("Node")
	node.AddField("Node", "next", false, -1)

	err := reg.FinalizeAll()
	if err == nil {
		t.Fatal("value cycle must fail finalization")
	}
	if !errors.Is(err, binmsgerrors.New(binmsgerrors.PhaseFinalize, binmsgerrors.KindCycle).Build()) {
		t.Fatalf("want cycle error, got %v", err)
	}
	if node.IsValid() {
		t.Error("cyclic definition must stay invalid")
	}
}

func TestFinalize_MutualValueCycle(t *testing.T) {
	reg := NewRegistry()
	a := reg.Create("A")
	a.AddField("B", "b", false, -1)
	b := reg.Create("B")
	b.AddField("A", "a", false, -1)

	err := reg.FinalizeAll()
	if err == nil {
		t.Fatal("mutual value cycle must fail finalization")
	}
	if !errors.Is(err, binmsgerrors.New(binmsgerrors.PhaseFinalize, binmsgerrors.KindCycle).Build()) {
		t.Fatalf("want cycle error, got %v", err)
	}
}

func TestFinalize_SelfArrayCycle(t *testing.T) {
	// The 8-byte array slot makes the size computation legal, but the element
	// program would be infinite; compilation rejects it.
	reg := NewRegistry()
	tree := reg.Create("Tree")
	tree.AddField("int32", "value", false, -1)
	tree.AddField("Tree", "children", true, -1)

	err := reg.FinalizeAll()
	if err == nil {
		t.Fatal("self-referential array element must fail compilation")
	}
	if !errors.Is(err, binmsgerrors.New(binmsgerrors.PhaseFinalize, binmsgerrors.KindCycle).Build()) {
		t.Fatalf("want cycle error, got %v", err)
	}
}

func TestFinalize_DiamondIsNotACycle(t *testing.T) {
	reg := NewRegistry()
	leaf := reg.Create("Leaf")
	leaf.AddField("int32", "v", false, -1)
	left := reg.Create("Left")
	left.AddField("Leaf", "l", false, -1)
	right := reg.Create("Right")
	right.AddField("Leaf", "l", false, -1)
	top := reg.Create("Top")
	top.AddField("Left", "a", false, -1)
	top.AddField("Right", "b", false, -1)

	mustFinalize(t, reg)
	if top.Size() != 8 {
		t.Fatalf("Top.Size = %d, want 8", top.Size())
	}
}
