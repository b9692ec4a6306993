// Package reflectutil hosts the reflection helpers shared by the fixtures
// core and the in-memory store: key normalization, deep cloning, struct
// snapshots, and normalized field/setter access.
package reflectutil

import (
	"fmt"
	"reflect"
)

// Clone returns a deep copy of v. Pointers, maps, slices, arrays, and structs
// are copied recursively; unexported struct fields are left at their zero
// value since they cannot be set reflectively.
func Clone(v any) any {
	if v == nil {
		return nil
	}
	cloned := cloneValue(reflect.ValueOf(v))
	if !cloned.IsValid() {
		return nil
	}
	return cloned.Interface()
}

func cloneValue(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.New(v.Type().Elem())
		clone.Elem().Set(cloneValue(v.Elem()))
		return clone
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		elem := cloneValue(v.Elem())
		if !elem.IsValid() {
			return reflect.Zero(v.Type())
		}
		return elem.Convert(v.Type())
	case reflect.Struct:
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			field := clone.Field(i)
			if !field.CanSet() {
				continue
			}
			field.Set(cloneValue(v.Field(i)))
		}
		return clone
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return clone
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	case reflect.Array:
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	default:
		return reflect.ValueOf(v.Interface())
	}
}

// Snapshot flattens the exported fields of a struct (or struct pointer) into
// a map keyed by normalized field names. Map inputs are copied with their
// keys normalized. Other values produce an empty map.
func Snapshot(v any) map[string]any {
	out := map[string]any{}
	if v == nil {
		return out
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return out
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			out[NormalizeKey(field.Name)] = rv.Field(i).Interface()
		}
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			key, ok := iter.Key().Interface().(string)
			if !ok {
				continue
			}
			out[NormalizeKey(key)] = iter.Value().Interface()
		}
	}
	return out
}

// FieldByKey locates the exported struct field whose normalized name matches
// key. The object must be a pointer to a struct for the returned value to be
// settable.
func FieldByKey(object any, key string) (reflect.Value, bool) {
	rv := reflect.ValueOf(object)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	want := NormalizeKey(key)
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if NormalizeKey(field.Name) == want {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// SetterByKey locates a conventional setter method ("Set" + field name, one
// argument, at most one error result) whose normalized suffix matches key.
func SetterByKey(object any, key string) (reflect.Value, bool) {
	rv := reflect.ValueOf(object)
	if !rv.IsValid() {
		return reflect.Value{}, false
	}
	want := NormalizeKey(key)
	t := rv.Type()
	for i := 0; i < t.NumMethod(); i++ {
		method := t.Method(i)
		name := method.Name
		if len(name) <= 3 || name[:3] != "Set" {
			continue
		}
		if NormalizeKey(name[3:]) != want {
			continue
		}
		// Receiver counts as the first input.
		if method.Type.NumIn() != 2 || method.Type.NumOut() > 1 {
			continue
		}
		return rv.Method(i), true
	}
	return reflect.Value{}, false
}

// Assign sets dst to value, converting assignable kinds (e.g. untyped ints
// into sized integers) where reflection allows it.
func Assign(dst reflect.Value, value any) error {
	if !dst.CanSet() {
		return fmt.Errorf("reflectutil: value of type %s is not settable", dst.Type())
	}
	if value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(dst.Type()) {
		dst.Set(rv)
		return nil
	}
	if rv.Type().ConvertibleTo(dst.Type()) && convertSafe(rv.Kind(), dst.Kind()) {
		dst.Set(rv.Convert(dst.Type()))
		return nil
	}
	// *X into X.
	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Type().Elem().AssignableTo(dst.Type()) {
		dst.Set(rv.Elem())
		return nil
	}
	// X into *X.
	if dst.Kind() == reflect.Pointer && rv.Type().AssignableTo(dst.Type().Elem()) {
		boxed := reflect.New(dst.Type().Elem())
		boxed.Elem().Set(rv)
		dst.Set(boxed)
		return nil
	}
	// Element-wise slice conversion, e.g. []any into []*Post.
	if dst.Kind() == reflect.Slice && rv.Kind() == reflect.Slice {
		out := reflect.MakeSlice(dst.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if err := Assign(out.Index(i), rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil
	}
	return fmt.Errorf("reflectutil: cannot assign %s to %s", rv.Type(), dst.Type())
}

// convertSafe limits conversions to same-family numeric and string kinds so
// we never silently stringify integers or similar surprises.
func convertSafe(from, to reflect.Kind) bool {
	numeric := func(k reflect.Kind) bool {
		return k >= reflect.Int && k <= reflect.Float64
	}
	if numeric(from) && numeric(to) {
		return true
	}
	return from == reflect.String && to == reflect.String
}

// CallSetter invokes a setter located via SetterByKey, mapping through the
// same assignability rules as Assign.
func CallSetter(setter reflect.Value, value any) error {
	argType := setter.Type().In(0)
	arg := reflect.New(argType).Elem()
	if err := Assign(arg, value); err != nil {
		return err
	}
	results := setter.Call([]reflect.Value{arg})
	if len(results) == 1 {
		if err, ok := results[0].Interface().(error); ok && err != nil {
			return err
		}
	}
	return nil
}
