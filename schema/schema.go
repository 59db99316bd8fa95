// Package schema loads definition sets from JSON documents into a registry.
//
// A schema document lists record definitions by name:
//
//	{
//	  "definitions": [
//	    {
//	      "name": "msgs/PointCloud",
//	      "fields": [
//	        {"type": "uint32", "name": "seq"},
//	        {"type": "string", "name": "frame"},
//	        {"type": "msgs/Point", "name": "points", "array": true},
//	        {"type": "uint8", "name": "pad", "array": true, "length": 4},
//	        {"type": "string", "name": "VERSION", "constant": true}
//	      ]
//	    }
//	  ]
//	}
//
// Array fields default to dynamic length; a non-negative "length" makes the
// array constant-sized. Constant fields carry no message bytes and are
// skipped. Field order in the document is the wire order of the message.
package schema

import (
	"strconv"

	"github.com/valyala/fastjson"

	"github.com/strandlabs/binmsg/errors"
	"github.com/strandlabs/binmsg/translate"
)

// FieldSpec is one parsed field declaration.
type FieldSpec struct {
	Type     string
	Name     string
	Constant bool
	Array    bool
	Length   int32
}

// DefinitionSpec is one parsed definition declaration.
type DefinitionSpec struct {
	Name   string
	Fields []FieldSpec
}

// Set is a parsed schema document.
type Set struct {
	Definitions []DefinitionSpec
}

// Parse decodes a schema document without touching any registry.
func Parse(doc []byte) (*Set, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(doc)
	if err != nil {
		return nil, errors.New(errors.PhaseSchema, errors.KindInvalidSchema).
			Detail("malformed document").
			Cause(err).
			Build()
	}

	defs := v.GetArray("definitions")
	if defs == nil {
		return nil, errors.New(errors.PhaseSchema, errors.KindInvalidSchema).
			Detail(`missing "definitions" array`).
			Build()
	}

	set := &Set{Definitions: make([]DefinitionSpec, 0, len(defs))}
	for i, d := range defs {
		spec, err := parseDefinition(d)
		if err != nil {
			if e, ok := err.(*errors.Error); ok && len(e.Path) == 0 {
				e.Path = []string{"definitions", strconv.Itoa(i)}
			}
			return nil, err
		}
		set.Definitions = append(set.Definitions, spec)
	}
	return set, nil
}

func parseDefinition(v *fastjson.Value) (DefinitionSpec, error) {
	name := v.GetStringBytes("name")
	if len(name) == 0 {
		return DefinitionSpec{}, errors.New(errors.PhaseSchema, errors.KindInvalidSchema).
			Detail("definition has no name").
			Build()
	}

	spec := DefinitionSpec{Name: string(name)}
	for i, f := range v.GetArray("fields") {
		field, err := parseField(f)
		if err != nil {
			if e, ok := err.(*errors.Error); ok {
				e.Path = []string{spec.Name, "fields", strconv.Itoa(i)}
			}
			return DefinitionSpec{}, err
		}
		spec.Fields = append(spec.Fields, field)
	}
	return spec, nil
}

func parseField(v *fastjson.Value) (FieldSpec, error) {
	fieldType := v.GetStringBytes("type")
	name := v.GetStringBytes("name")
	if len(fieldType) == 0 || len(name) == 0 {
		return FieldSpec{}, errors.New(errors.PhaseSchema, errors.KindInvalidSchema).
			Detail(`field needs both "type" and "name"`).
			Build()
	}

	field := FieldSpec{
		Type:     string(fieldType),
		Name:     string(name),
		Constant: v.GetBool("constant"),
		Array:    v.GetBool("array"),
		Length:   -1,
	}

	if length := v.Get("length"); length != nil {
		n, err := length.Int()
		if err != nil {
			return FieldSpec{}, errors.New(errors.PhaseSchema, errors.KindInvalidSchema).
				Detail(`"length" is not an integer`).
				Cause(err).
				Build()
		}
		field.Length = int32(n)
	}

	return field, nil
}

// Apply creates every definition of the set in reg. It does not finalize, so
// multiple documents can be layered before a single FinalizeAll.
func (s *Set) Apply(reg *translate.Registry) {
	for _, d := range s.Definitions {
		def := reg.Create(d.Name)
		for _, f := range d.Fields {
			if f.Constant {
				continue
			}
			def.AddField(f.Type, f.Name, f.Array, f.Length)
		}
	}
}

// Register parses a schema document, applies it to reg, and finalizes the
// registry.
func Register(reg *translate.Registry, doc []byte) error {
	set, err := Parse(doc)
	if err != nil {
		return err
	}
	set.Apply(reg)
	return reg.FinalizeAll()
}
