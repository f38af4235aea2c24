package models

import (
	"github.com/cockroachdb/errors"
)

// FieldKind is the type of a dynamic field. The raw tokens stored in the
// field-config tables are inherited from the legacy (Spanish) schema and
// are part of the external interface: they must not be renamed.
type FieldKind int

const (
	UnknownFieldKind FieldKind = iota - 1
	FieldKindBool
	FieldKindDate
	FieldKindInt
	FieldKindText
	FieldKindNotes
	FieldKindRadio
	FieldKindSelect
)

func (k FieldKind) String() string {
	switch k {
	case FieldKindBool:
		return "bool"
	case FieldKindDate:
		return "fecha"
	case FieldKindInt:
		return "entero"
	case FieldKindText:
		return "texto"
	case FieldKindNotes:
		return "notes"
	case FieldKindRadio:
		return "radio"
	case FieldKindSelect:
		return "select"
	}
	return "unknown"
}

// FieldKindFrom maps a raw kind token to its FieldKind. An unrecognized token
// is an error: a field whose kind we do not know cannot be cast or rendered
// downstream, so letting it through would only move the failure further from
// its cause.
func FieldKindFrom(s string) (FieldKind, error) {
	switch s {
	case "bool":
		return FieldKindBool, nil
	case "fecha":
		return FieldKindDate, nil
	case "entero":
		return FieldKindInt, nil
	case "texto":
		return FieldKindText, nil
	case "notes":
		return FieldKindNotes, nil
	case "radio":
		return FieldKindRadio, nil
	case "select":
		return FieldKindSelect, nil
	}
	return UnknownFieldKind, errors.Wrapf(ErrUnknownFieldKind, "token %q", s)
}
