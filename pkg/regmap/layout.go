package regmap

import "fmt"

// Field is one member of an emitted aggregate: either a register or
// synthesised padding.
type Field struct {
	Name   string
	Offset uint64
	Size   uint64

	// Padding marks a synthesised gap filler.
	Padding bool

	// Register and Access are set for register fields.
	Register string
	Access   Access
}

// End returns the offset just past the field.
func (f Field) End() uint64 { return f.Offset + f.Size }

// Layout is an explicit, ordered struct layout. Offsets are decided here,
// never by the target compiler's packing rules.
type Layout struct {
	TypeName Identifier
	Fields   []Field

	size uint64
	pads int
}

// NewLayout returns an empty layout for the named aggregate type.
func NewLayout(typeName Identifier) *Layout {
	return &Layout{TypeName: typeName}
}

// Size returns the total size in bytes.
func (l *Layout) Size() uint64 { return l.size }

// DeclareField appends a field at byte offset. A gap since the previous
// field is filled with padding. A field starting before the end of the
// previous one fails with ErrNonSequentialLayout and leaves l unchanged.
func (l *Layout) DeclareField(name string, offset, size uint64) error {
	return l.declare(Field{Name: name, Offset: offset, Size: size})
}

func (l *Layout) declare(f Field) error {
	if f.Offset < l.size {
		return fmt.Errorf("%w: %s at 0x%02X starts before end of previous field at 0x%02X",
			ErrNonSequentialLayout, f.Name, f.Offset, l.size)
	}
	if gap := f.Offset - l.size; gap > 0 {
		l.Fields = append(l.Fields, Field{
			Name:    fmt.Sprintf("_reserved%d", l.pads),
			Offset:  l.size,
			Size:    gap,
			Padding: true,
		})
		l.pads++
	}
	l.Fields = append(l.Fields, f)
	l.size = f.End()
	return nil
}

// RegisterFields returns the non-padding fields in declaration order.
func (l *Layout) RegisterFields() []Field {
	out := make([]Field, 0, len(l.Fields))
	for _, f := range l.Fields {
		if !f.Padding {
			out = append(out, f)
		}
	}
	return out
}

// PaddingBytes returns the total size of padding fields.
func (l *Layout) PaddingBytes() uint64 {
	var n uint64
	for _, f := range l.Fields {
		if f.Padding {
			n += f.Size
		}
	}
	return n
}
