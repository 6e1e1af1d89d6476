package bindings

import (
	"fmt"

	"github.com/findr-go/findr/internal/errdefs"
)

// Tag names one argument or return contract of the native calling
// convention. Tags are plain values; the registry maps each one to a fixed
// Contract.
type Tag uint8

const (
	Void Tag = iota
	Byte
	Int
	ULong
	SizeT
	CharP
	VectorF
	MatrixF
	VectorG
	MatrixG
	VectorUC
	MatrixUC
	ConstVectorF
	ConstMatrixF
	ConstVectorG
	ConstMatrixG
	ConstVectorUC
	ConstMatrixUC

	numTags
)

var tagNames = [numTags]string{
	Void:          "void",
	Byte:          "byte",
	Int:           "int",
	ULong:         "unsigned long",
	SizeT:         "size_t",
	CharP:         "char*",
	VectorF:       "VECTORF*",
	MatrixF:       "MATRIXF*",
	VectorG:       "VECTORG*",
	MatrixG:       "MATRIXG*",
	VectorUC:      "VECTORUC*",
	MatrixUC:      "MATRIXUC*",
	ConstVectorF:  "const VECTORF*",
	ConstMatrixF:  "const MATRIXF*",
	ConstVectorG:  "const VECTORG*",
	ConstMatrixG:  "const MATRIXG*",
	ConstVectorUC: "const VECTORUC*",
	ConstMatrixUC: "const MATRIXUC*",
}

func (t Tag) String() string {
	if t.Valid() {
		return tagNames[t]
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

// Valid reports whether t is a known tag.
func (t Tag) Valid() bool { return t < numTags }

// ParseTag resolves a tag from its C-style name, e.g. "const MATRIXF*".
func ParseTag(name string) (Tag, error) {
	for i, n := range tagNames {
		if n == name {
			return Tag(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown type tag %q", errdefs.ErrConfig, name)
}

// Tags lists every known tag in declaration order.
func Tags() []Tag {
	out := make([]Tag, 0, numTags)
	for t := Tag(0); t < numTags; t++ {
		out = append(out, t)
	}
	return out
}
