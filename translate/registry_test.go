package translate

import (
	"errors"
	"reflect"
	"testing"

	binmsgerrors "github.com/strandlabs/binmsg/errors"
)

func TestPrimitiveSizes(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		isString bool
	}{
		{"bool", 1, false},
		{"uint8", 1, false},
		{"int8", 1, false},
		{"uint16", 2, false},
		{"int16", 2, false},
		{"uint32", 4, false},
		{"int32", 4, false},
		{"uint64", 8, false},
		{"int64", 8, false},
		{"float32", 4, false},
		{"float64", 8, false},
		{"time", 8, false},
		{"duration", 8, false},
		{"string", 8, true},
		{"json", 8, true},
	}

	reg := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := reg.Get(tt.name)
			if def == nil {
				t.Fatalf("primitive %q not seeded", tt.name)
			}
			if def.Size() != tt.size {
				t.Errorf("Size = %d, want %d", def.Size(), tt.size)
			}
			if def.IsString() != tt.isString {
				t.Errorf("IsString = %v, want %v", def.IsString(), tt.isString)
			}
			if def.HasConstantSize() != !tt.isString {
				t.Errorf("HasConstantSize = %v, want %v", def.HasConstantSize(), !tt.isString)
			}
			if !def.IsValid() {
				t.Error("primitives must be valid without finalization")
			}
		})
	}
}

func TestRegistry_Get_Missing(t *testing.T) {
	reg := NewRegistry()
	if def := reg.Get("no/Such"); def != nil {
		t.Fatalf("Get of unregistered type = %v, want nil", def)
	}
}

func TestRegistry_Create_Overwrite(t *testing.T) {
	reg := NewRegistry()
	seeded := reg.Len()

	first := reg.Create("msgs/Test")
	first.AddField("int32", "a", false, -1)

	second := reg.Create("msgs/Test")
	if second == first {
		t.Fatal("Create must return a fresh definition")
	}
	if reg.Get("msgs/Test") != second {
		t.Fatal("overwritten entry should resolve to the new definition")
	}
	if second.HasFields() {
		t.Fatal("new definition must start empty")
	}
	if reg.Len() != seeded+1 {
		t.Fatalf("Len = %d, want %d", reg.Len(), seeded+1)
	}
}

func TestFinalizeAll_UnknownType(t *testing.T) {
	reg := NewRegistry()
	bad := reg.Create("msgs/X")
	bad.AddField("NoSuchType", "y", false, -1)

	good := reg.Create("msgs/Ok")
	good.AddField("int32", "v", false, -1)

	err := reg.FinalizeAll()
	if err == nil {
		t.Fatal("expected failure for unresolved type")
	}
	var e *binmsgerrors.Error
	if !errors.As(err, &e) || e.TypeName != "msgs/X" {
		t.Fatalf("error should name the failing definition, got %v", err)
	}
	if !errors.Is(err, binmsgerrors.New(binmsgerrors.PhaseFinalize, binmsgerrors.KindNotFound).Build()) {
		t.Fatalf("cause should be a not_found error, got %v", err)
	}
	if bad.IsValid() {
		t.Error("failing definition must stay invalid")
	}

	// The rest of the registry stays independently usable.
	if err := good.Finalize(reg); err != nil {
		t.Fatalf("independent definition should finalize: %v", err)
	}
	if !good.IsValid() || good.Size() != 4 {
		t.Errorf("good: valid=%v size=%d", good.IsValid(), good.Size())
	}
}

func TestFinalizeAll_Idempotent(t *testing.T) {
	reg := NewRegistry()
	point := reg.Create("geometry/Point")
	point.AddField("float64", "x", false, -1)
	point.AddField("float64", "y", false, -1)
	cloud := reg.Create("msgs/Cloud")
	cloud.AddField("geometry/Point", "points", true, -1)
	cloud.AddField("string", "frame", false, -1)

	if err := reg.FinalizeAll(); err != nil {
		t.Fatal(err)
	}
	sizes := []int{point.Size(), cloud.Size()}
	flat := [][]int{point.FlattenCommands(), cloud.FlattenCommands()}

	if err := reg.FinalizeAll(); err != nil {
		t.Fatal(err)
	}
	if point.Size() != sizes[0] || cloud.Size() != sizes[1] {
		t.Errorf("sizes changed: %d/%d vs %v", point.Size(), cloud.Size(), sizes)
	}
	if !reflect.DeepEqual(point.FlattenCommands(), flat[0]) ||
		!reflect.DeepEqual(cloud.FlattenCommands(), flat[1]) {
		t.Error("flattened commands changed across FinalizeAll calls")
	}
}

func TestRegistry_Isolation(t *testing.T) {
	reg1 := NewRegistry()
	reg2 := NewRegistry()

	d1 := reg1.Create("msgs/type1")
	d1.AddField("bool", "value", false, -1)
	d2 := reg2.Create("msgs/type2")
	d2.AddField("bool", "value", false, -1)

	if err := reg1.FinalizeAll(); err != nil {
		t.Fatal(err)
	}
	if err := reg2.FinalizeAll(); err != nil {
		t.Fatal(err)
	}

	if reg1.Get("msgs/type2") != nil || reg2.Get("msgs/type1") != nil {
		t.Error("registries must not share state")
	}
}

func TestRegistry_Names_InsertionOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Create("b/B")
	reg.Create("a/A")
	reg.Create("b/B") // overwrite keeps the slot

	names := reg.Names()
	n := len(names)
	if n < 2 || names[n-2] != "b/B" || names[n-1] != "a/A" {
		t.Fatalf("tail of Names = %v, want [... b/B a/A]", names[max(0, n-2):])
	}
}
