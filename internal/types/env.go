package types

import "fmt"

// TypeEnv is a persistent, linked environment mapping names to type schemes
// (spec §3.1). Persistent rather than mutable-in-place because the
// concurrent per-definition checker (spec §5) shares a single top-level
// environment snapshot across worker goroutines; Extend/ExtendScheme never
// mutate the receiver.
type TypeEnv struct {
	bindings map[string]*Scheme
	parent   *TypeEnv
}

// NewTypeEnv returns an empty environment.
func NewTypeEnv() *TypeEnv {
	return &TypeEnv{bindings: map[string]*Scheme{}}
}

func mustEffSet(names ...string) Type {
	t, err := EffSet(names...)
	if err != nil {
		panic(err) // names here are always from knownEffects; a typo is a programmer error
	}
	return t
}

// NewTypeEnvWithBuiltins returns an environment pre-populated with the
// primitive effectful operations every program can call without an import
// (spec §6 "External Interfaces" assumes these are always in scope).
func NewTypeEnvWithBuiltins() *TypeEnv {
	env := NewTypeEnv()

	alpha := func() *Var { return NewVar(Star) }

	a := alpha()
	env.bindBuiltin("print", &Scheme{
		Vars: []*Var{a},
		Type: &TFunc{Params: []Type{a}, EffectRow: mustEffSet("IO"), Return: TUnit},
	})

	env.bindBuiltin("readFile", &Scheme{
		Type: &TFunc{Params: []Type{TString}, EffectRow: mustEffSet("FS"), Return: TString},
	})

	env.bindBuiltin("writeFile", &Scheme{
		Type: &TFunc{Params: []Type{TString, TString}, EffectRow: mustEffSet("FS"), Return: TUnit},
	})

	env.bindBuiltin("httpGet", &Scheme{
		Type: &TFunc{Params: []Type{TString}, EffectRow: mustEffSet("Net"), Return: TString},
	})

	env.bindBuiltin("random", &Scheme{
		Type: &TFunc{Params: []Type{TUnit}, EffectRow: mustEffSet("Rand"), Return: TFloat},
	})

	b := alpha()
	env.bindBuiltin("trace", &Scheme{
		Vars: []*Var{b},
		Type: &TFunc{Params: []Type{TString, b}, EffectRow: mustEffSet("Trace"), Return: b},
	})

	return env
}

// Extend returns a new environment binding name to the monomorphic type typ.
func (env *TypeEnv) Extend(name string, typ Type) *TypeEnv {
	return env.ExtendScheme(name, &Scheme{Type: typ})
}

// ExtendScheme returns a new environment binding name to scheme.
func (env *TypeEnv) ExtendScheme(name string, scheme *Scheme) *TypeEnv {
	return &TypeEnv{
		bindings: map[string]*Scheme{name: scheme},
		parent:   env,
	}
}

// Lookup finds name's scheme, searching outward through parent scopes.
func (env *TypeEnv) Lookup(name string) (*Scheme, error) {
	if env == nil {
		return nil, fmt.Errorf("unbound variable: %s", name)
	}
	if s, ok := env.bindings[name]; ok {
		return s, nil
	}
	return env.parent.Lookup(name)
}

func (env *TypeEnv) bindBuiltin(name string, scheme *Scheme) {
	env.bindings[name] = scheme
}

// FreeVars returns every flexible variable free anywhere in the
// environment — i.e. not closed over by any binding's own Scheme.Vars. Used
// by Generalize to decide which variables a new let-binding may quantify
// over.
func (env *TypeEnv) FreeVars() []*Var {
	seen := map[VarID]*Var{}
	var order []*Var
	for e := env; e != nil; e = e.parent {
		for _, scheme := range e.bindings {
			bound := map[VarID]bool{}
			for _, v := range scheme.Vars {
				bound[v.ID] = true
			}
			for _, v := range FreeVars(scheme.Type) {
				if !bound[v.ID] {
					if _, ok := seen[v.ID]; !ok {
						seen[v.ID] = v
						order = append(order, v)
					}
				}
			}
		}
	}
	return order
}
