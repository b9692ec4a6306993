package fixtures

// A state is a named attribute bundle a factory defines once and callers
// layer on by name. States merge after the base declarations, in selection
// order, so a later state wins key-by-key over an earlier one.

// DefineState names an attribute bundle that State can apply later.
// Redefining a name replaces the bundle, mirroring later-wins merge
// semantics.
func (f *Factory[T]) DefineState(name string, decl Declaration) *Factory[T] {
	copied := f.clone()
	if _, exists := copied.states[name]; !exists {
		copied.stateOrder = append(copied.stateOrder, name)
	}
	copied.states[name] = decl
	return copied
}

// State selects named states to layer on top of the base declarations, in
// the order given. Unknown names surface as UnknownStateError at Create.
func (f *Factory[T]) State(names ...string) *Factory[T] {
	copied := f.clone()
	copied.applied = append(copied.applied, names...)
	return copied
}

// States lists the defined state names in definition order.
func (f *Factory[T]) States() []string {
	return append([]string(nil), f.stateOrder...)
}

// effectiveDeclarations expands applied states on top of the base
// declarations.
func (f *Factory[T]) effectiveDeclarations() ([]labeledDeclaration, error) {
	if len(f.applied) == 0 {
		return f.decls, nil
	}
	decls := append([]labeledDeclaration(nil), f.decls...)
	for _, name := range f.applied {
		decl, ok := f.states[name]
		if !ok {
			return nil, UnknownStateError{Kind: f.Kind(), Name: name}
		}
		decls = append(decls, labeledDeclaration{decl: decl, source: "state:" + name})
	}
	return decls, nil
}
