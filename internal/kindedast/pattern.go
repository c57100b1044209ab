package kindedast

import "fmt"

// VarPattern binds a value to a fresh name.
type VarPattern struct {
	PatternBase
	Name string
}

func (p *VarPattern) patternNode()   {}
func (p *VarPattern) String() string { return p.Name }

// LitPattern matches a literal constant.
type LitPattern struct {
	PatternBase
	Kind  LitKind
	Value interface{}
}

func (p *LitPattern) patternNode()   {}
func (p *LitPattern) String() string { return fmt.Sprintf("%v", p.Value) }

// TagPattern matches a user-declared enum constructor, instantiating the
// enum's scheme and unifying each argument's pattern against the payload
// (spec §4.5 "Tag instantiates the enum's scheme and unifies the payload").
type TagPattern struct {
	PatternBase
	EnumSym string
	Tag     string
	Args    []Pattern
}

func (p *TagPattern) patternNode() {}
func (p *TagPattern) String() string {
	return fmt.Sprintf("%s.%s(%v)", p.EnumSym, p.Tag, p.Args)
}

// TuplePattern matches a tuple componentwise.
type TuplePattern struct {
	PatternBase
	Elements []Pattern
}

func (p *TuplePattern) patternNode()   {}
func (p *TuplePattern) String() string { return fmt.Sprintf("(%v)", p.Elements) }

// RecordPattern matches a (possibly partial) record by field.
type RecordPattern struct {
	PatternBase
	Fields map[string]Pattern
	Open   bool // true if unmatched fields are permitted (open row)
}

func (p *RecordPattern) patternNode()   {}
func (p *RecordPattern) String() string { return fmt.Sprintf("{%v}", p.Fields) }

// ListPattern matches a sequence, with an optional tail binding (`...rest`).
type ListPattern struct {
	PatternBase
	Elements []Pattern
	Tail     *VarPattern
}

func (p *ListPattern) patternNode()   {}
func (p *ListPattern) String() string { return fmt.Sprintf("[%v]", p.Elements) }

// WildcardPattern matches anything and binds nothing.
type WildcardPattern struct {
	PatternBase
}

func (p *WildcardPattern) patternNode()   {}
func (p *WildcardPattern) String() string { return "_" }
