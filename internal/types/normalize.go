package types

import (
	"fmt"
	"strings"
)

// NormalizeTypeName produces a canonical string representation of a type for
// deterministic registry keys and dictionary names. Always "Tuple<T1,T2>",
// never "Pair", for consistency across all parameterized forms.
func NormalizeTypeName(t Type) string {
	if t == nil {
		return "<unknown>"
	}
	t = unfoldAlias(t)

	switch typ := t.(type) {
	case *Cst:
		if len(typ.Name) > 0 {
			return strings.ToUpper(typ.Name[:1]) + typ.Name[1:]
		}
		return typ.Name

	case *Var:
		return fmt.Sprintf("_%s", typ.Name)

	case *App:
		if elem, ok := isListApp(typ); ok {
			return fmt.Sprintf("List<%s>", NormalizeTypeName(elem))
		}
		return fmt.Sprintf("%s<%s>", NormalizeTypeName(typ.Func), NormalizeTypeName(typ.Arg))

	case *TTuple:
		elems := make([]string, len(typ.Elements))
		for i, e := range typ.Elements {
			elems[i] = NormalizeTypeName(e)
		}
		return fmt.Sprintf("Tuple<%s>", strings.Join(elems, ","))

	case *TRecord:
		return normalizeRow(typ.Row, "Record")

	case *TSchema:
		return normalizeRow(typ.Row, "Schema")

	case *TFunc:
		params := make([]string, len(typ.Params))
		for i, p := range typ.Params {
			params[i] = NormalizeTypeName(p)
		}
		ret := NormalizeTypeName(typ.Return)
		head := fmt.Sprintf("()->%s", ret)
		if len(params) > 0 {
			head = fmt.Sprintf("%s->%s", strings.Join(params, ","), ret)
		}
		if !EffIsPure(typ.EffectRow) {
			head = fmt.Sprintf("%s!%s", head, NormalizeTypeName(typ.EffectRow))
		}
		return fmt.Sprintf("Func<%s>", head)

	case *TEnum:
		if len(typ.Args) == 0 {
			return typ.Sym
		}
		args := make([]string, len(typ.Args))
		for i, a := range typ.Args {
			args[i] = NormalizeTypeName(a)
		}
		return fmt.Sprintf("%s<%s>", typ.Sym, strings.Join(args, ","))

	case *TNative:
		return fmt.Sprintf("Native<%s>", typ.Class)

	case *Row:
		label := "Record"
		if typ.K.Equals(SchemaRow) {
			label = "Schema"
		}
		return normalizeRow(typ, label)

	case EffPureT:
		return "Pure"
	case EffImpureT:
		return "Impure"
	case EffAtom:
		return typ.Name
	case EffUnion, EffIntersection, EffComplement:
		return t.String()

	default:
		return t.String()
	}
}

func isListApp(a *App) (Type, bool) {
	head, ok := a.Func.(*Cst)
	if !ok || head.Name != "List" {
		return nil, false
	}
	return a.Arg, true
}

func normalizeRow(r *Row, label string) string {
	if r == nil {
		return fmt.Sprintf("%s<>", label)
	}
	names := r.SortedLabels()
	fields := make([]string, len(names))
	for i, name := range names {
		fields[i] = fmt.Sprintf("%s:%s", name, NormalizeTypeName(r.Labels[name]))
	}
	result := fmt.Sprintf("%s<%s>", label, strings.Join(fields, ","))
	if r.Tail != nil {
		result += fmt.Sprintf("|%s", NormalizeTypeName(r.Tail))
	}
	return result
}

// MakeDictionaryKey creates a deterministic registry key for a dictionary:
// <namespace>::<ClassName>::<TypeNF>[::<method>], e.g. "prelude::Num::Int64::add".
func MakeDictionaryKey(namespace, className string, typ Type, method string) string {
	typeNF := NormalizeTypeName(typ)
	if method == "" {
		return fmt.Sprintf("%s::%s::%s", namespace, className, typeNF)
	}
	return fmt.Sprintf("%s::%s::%s::%s", namespace, className, typeNF, method)
}

// CanonKey is an alias for MakeDictionaryKey kept as the single named entry
// point call sites elsewhere in the checker reach for.
func CanonKey(namespace, className string, typ Type, method string) string {
	return MakeDictionaryKey(namespace, className, typ, method)
}

// ParseDictionaryKey extracts components from a dictionary key produced by
// MakeDictionaryKey.
func ParseDictionaryKey(key string) (namespace, className, typeNF, method string, err error) {
	parts := strings.Split(key, "::")
	if len(parts) < 3 || len(parts) > 4 {
		return "", "", "", "", fmt.Errorf("invalid dictionary key format: %s (expected namespace::class::type[::method])", key)
	}
	namespace, className, typeNF = parts[0], parts[1], parts[2]
	if len(parts) == 4 {
		method = parts[3]
	}
	return namespace, className, typeNF, method, nil
}

// IsGroundType reports whether t contains no type variables, the condition
// dictionary elaboration (spec §12.2 style compile-time sentinel) requires
// before it can pick a concrete instance.
func IsGroundType(t Type) bool {
	switch typ := t.(type) {
	case *Cst, EffPureT, EffImpureT, EffAtom, *TNative:
		return true
	case *Var:
		return false
	case *App:
		return IsGroundType(typ.Func) && IsGroundType(typ.Arg)
	case *Alias:
		return IsGroundType(typ.Expansion)
	case *TTuple:
		for _, e := range typ.Elements {
			if !IsGroundType(e) {
				return false
			}
		}
		return true
	case *TRecord:
		return isGroundRow(typ.Row)
	case *TSchema:
		return isGroundRow(typ.Row)
	case *Row:
		return isGroundRow(typ)
	case *TFunc:
		for _, p := range typ.Params {
			if !IsGroundType(p) {
				return false
			}
		}
		return IsGroundType(typ.Return) && (typ.EffectRow == nil || IsGroundType(typ.EffectRow))
	case *TEnum:
		for _, a := range typ.Args {
			if !IsGroundType(a) {
				return false
			}
		}
		return true
	case EffUnion:
		return IsGroundType(typ.Left) && IsGroundType(typ.Right)
	case EffIntersection:
		return IsGroundType(typ.Left) && IsGroundType(typ.Right)
	case EffComplement:
		return IsGroundType(typ.Term)
	default:
		return false
	}
}

func isGroundRow(r *Row) bool {
	if r == nil {
		return true
	}
	if r.Tail != nil {
		return false
	}
	for _, ty := range r.Labels {
		if !IsGroundType(ty) {
			return false
		}
	}
	return true
}
