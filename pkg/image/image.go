// Package image stores code objects as a canonical CBOR bytecode image.
//
// Code objects and vars are written once each and referenced by index, so
// shared functions, self references and var aliasing survive a round trip.
package image

import (
	"errors"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"loki/pkg/interpreter"
)

const (
	Magic   = "LOKI"
	Version = 1
)

var ErrFormat = errors.New("image: bad format")

const (
	kindFunction uint8 = iota + 1
	kindClosure
)

const (
	tagInt uint8 = iota + 1
	tagNil
	tagTrue
	tagFalse
	tagCode
	tagVar
)

type file struct {
	Magic   string       `cbor:"1,keyasint"`
	Version int          `cbor:"2,keyasint"`
	Entry   int          `cbor:"3,keyasint"`
	Code    []codeRecord `cbor:"4,keyasint"`
	Vars    []varRecord  `cbor:"5,keyasint,omitempty"`
}

type codeRecord struct {
	Kind   uint8         `cbor:"1,keyasint"`
	Name   string        `cbor:"2,keyasint,omitempty"`
	Code   []int         `cbor:"3,keyasint,omitempty"`
	Consts []valueRecord `cbor:"4,keyasint,omitempty"` // captured values for closures
	Wraps  int           `cbor:"5,keyasint,omitempty"`
}

type valueRecord struct {
	Tag uint8 `cbor:"1,keyasint"`
	Int int64 `cbor:"2,keyasint,omitempty"`
	Ref int   `cbor:"3,keyasint,omitempty"`
}

type varRecord struct {
	Name string      `cbor:"1,keyasint"`
	Root valueRecord `cbor:"2,keyasint"`
}

// Image is a decoded bytecode image.
type Image struct {
	Entry interpreter.Code
	Vars  []*interpreter.Var
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes entry and everything reachable from it.
func Marshal(entry interpreter.Code) ([]byte, error) {
	e := &encoder{
		codeIdx: make(map[interpreter.Code]int),
		varIdx:  make(map[*interpreter.Var]int),
	}
	idx, err := e.code(entry)
	if err != nil {
		return nil, err
	}

	return cborEncMode.Marshal(&file{
		Magic:   Magic,
		Version: Version,
		Entry:   idx,
		Code:    e.codes,
		Vars:    e.vars,
	})
}

// Unmarshal deserializes an image.
func Unmarshal(data []byte) (*Image, error) {
	var f file
	if err := cbor.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if f.Magic != Magic {
		return nil, fmt.Errorf("%w: magic %q", ErrFormat, f.Magic)
	}
	if f.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrFormat, f.Version)
	}

	return newDecoder(&f).decode()
}

// WriteFile marshals entry to path.
func WriteFile(path string, entry interpreter.Code) error {
	data, err := Marshal(entry)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile unmarshals the image at path.
func ReadFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

type encoder struct {
	codes   []codeRecord
	codeIdx map[interpreter.Code]int
	vars    []varRecord
	varIdx  map[*interpreter.Var]int
}

func (e *encoder) code(c interpreter.Code) (int, error) {
	if idx, ok := e.codeIdx[c]; ok {
		return idx, nil
	}

	// reserve the slot first so self references resolve
	idx := len(e.codes)
	e.codeIdx[c] = idx
	e.codes = append(e.codes, codeRecord{})

	var rec codeRecord
	switch c := c.(type) {
	case *interpreter.Function:
		consts, err := e.values(c.Consts)
		if err != nil {
			return 0, err
		}
		rec = codeRecord{Kind: kindFunction, Name: c.Name, Code: c.Code, Consts: consts}

	case *interpreter.Closure:
		wraps, err := e.code(c.Code())
		if err != nil {
			return 0, err
		}
		captured := make([]interpreter.Value, c.Len())
		for i := range captured {
			captured[i] = c.ClosedOver(i)
		}
		consts, err := e.values(captured)
		if err != nil {
			return 0, err
		}
		rec = codeRecord{Kind: kindClosure, Wraps: wraps, Consts: consts}

	default:
		return 0, fmt.Errorf("image: cannot encode code object %T", c)
	}

	e.codes[idx] = rec
	return idx, nil
}

func (e *encoder) variable(v *interpreter.Var) (int, error) {
	if idx, ok := e.varIdx[v]; ok {
		return idx, nil
	}

	idx := len(e.vars)
	e.varIdx[v] = idx
	e.vars = append(e.vars, varRecord{Name: v.Name})

	root, err := e.value(v.Deref())
	if err != nil {
		return 0, err
	}
	e.vars[idx].Root = root
	return idx, nil
}

func (e *encoder) values(vs []interpreter.Value) ([]valueRecord, error) {
	out := make([]valueRecord, len(vs))
	for i, v := range vs {
		rec, err := e.value(v)
		if err != nil {
			return nil, err
		}
		out[i] = rec
	}
	return out, nil
}

func (e *encoder) value(v interpreter.Value) (valueRecord, error) {
	switch v := v.(type) {
	case interpreter.Integer:
		return valueRecord{Tag: tagInt, Int: int64(v)}, nil
	case *interpreter.NilValue:
		return valueRecord{Tag: tagNil}, nil
	case *interpreter.Boolean:
		if v.Bool() {
			return valueRecord{Tag: tagTrue}, nil
		}
		return valueRecord{Tag: tagFalse}, nil
	case *interpreter.Var:
		idx, err := e.variable(v)
		return valueRecord{Tag: tagVar, Ref: idx}, err
	case interpreter.Code:
		idx, err := e.code(v)
		return valueRecord{Tag: tagCode, Ref: idx}, err
	default:
		return valueRecord{}, fmt.Errorf("image: cannot encode value %T", v)
	}
}

type decoder struct {
	f     *file
	codes []interpreter.Code
	vars  []*interpreter.Var
	busy  []bool // closures under construction
}

func newDecoder(f *file) *decoder {
	return &decoder{
		f:     f,
		codes: make([]interpreter.Code, len(f.Code)),
		vars:  make([]*interpreter.Var, len(f.Vars)),
		busy:  make([]bool, len(f.Code)),
	}
}

func (d *decoder) decode() (*Image, error) {
	// Functions and vars first: they can be referenced before their
	// contents are known. Closures need their parts up front.
	for i, rec := range d.f.Code {
		switch rec.Kind {
		case kindFunction:
			d.codes[i] = interpreter.NewFunction(rec.Name, rec.Code)
		case kindClosure:
		default:
			return nil, fmt.Errorf("%w: code %d has kind %d", ErrFormat, i, rec.Kind)
		}
	}
	for i, rec := range d.f.Vars {
		d.vars[i] = interpreter.NewVar(rec.Name, nil)
	}

	for i := range d.f.Code {
		if _, err := d.code(i); err != nil {
			return nil, err
		}
	}

	for i, rec := range d.f.Code {
		if rec.Kind != kindFunction {
			continue
		}
		consts, err := d.values(rec.Consts)
		if err != nil {
			return nil, err
		}
		d.codes[i].(*interpreter.Function).Consts = consts
	}
	for i, rec := range d.f.Vars {
		root, err := d.value(rec.Root)
		if err != nil {
			return nil, err
		}
		d.vars[i].SetRoot(root)
	}

	entry, err := d.code(d.f.Entry)
	if err != nil {
		return nil, err
	}
	return &Image{Entry: entry, Vars: d.vars}, nil
}

func (d *decoder) code(idx int) (interpreter.Code, error) {
	if idx < 0 || idx >= len(d.codes) {
		return nil, fmt.Errorf("%w: code reference %d out of range", ErrFormat, idx)
	}
	if c := d.codes[idx]; c != nil {
		return c, nil
	}
	if d.busy[idx] {
		return nil, fmt.Errorf("%w: closure %d captures itself", ErrFormat, idx)
	}
	d.busy[idx] = true

	rec := d.f.Code[idx]
	wraps, err := d.code(rec.Wraps)
	if err != nil {
		return nil, err
	}
	captured, err := d.values(rec.Consts)
	if err != nil {
		return nil, err
	}

	c := interpreter.NewClosure(wraps, captured)
	d.codes[idx] = c
	return c, nil
}

func (d *decoder) values(recs []valueRecord) ([]interpreter.Value, error) {
	out := make([]interpreter.Value, len(recs))
	for i, rec := range recs {
		v, err := d.value(rec)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (d *decoder) value(rec valueRecord) (interpreter.Value, error) {
	switch rec.Tag {
	case tagInt:
		return interpreter.Integer(rec.Int), nil
	case tagNil:
		return interpreter.Nil, nil
	case tagTrue:
		return interpreter.True, nil
	case tagFalse:
		return interpreter.False, nil
	case tagCode:
		return d.code(rec.Ref)
	case tagVar:
		if rec.Ref < 0 || rec.Ref >= len(d.vars) {
			return nil, fmt.Errorf("%w: var reference %d out of range", ErrFormat, rec.Ref)
		}
		return d.vars[rec.Ref], nil
	default:
		return nil, fmt.Errorf("%w: unknown value tag %d", ErrFormat, rec.Tag)
	}
}
