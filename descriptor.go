package fixtures

import (
	"fmt"
	"reflect"

	"github.com/goliatone/go-fixtures/internal/reflectutil"
)

// Param declares one named constructor parameter. Go reflection carries no
// parameter names, so a constructor-backed descriptor declares them up front
// via P and PDefault.
type Param struct {
	Name       string
	Default    any
	HasDefault bool
}

// P declares a required constructor parameter.
func P(name string) Param {
	return Param{Name: name}
}

// PDefault declares an optional constructor parameter with a default used
// when no matching attribute is resolved.
func PDefault(name string, def any) Param {
	return Param{Name: name, Default: def, HasDefault: true}
}

// Descriptor is the capability surface the instantiator works against. The
// default implementations reflect over a target struct; a custom Descriptor
// is the seam for targets that cannot be built that way.
type Descriptor interface {
	// TypeName identifies the target type; it doubles as the store kind.
	TypeName() string
	// Parameters lists declared constructor parameters in call order.
	Parameters() []Param
	// New invokes the constructor with one argument per parameter.
	New(args []any) (any, error)
	// Zero returns a pointer to a zero-value instance.
	Zero() any
	// TrySetter invokes the conventional setter for key; ok is false when the
	// target has none.
	TrySetter(object any, key string, value any) (bool, error)
	// TryField writes the field matching key directly; ok is false when the
	// target has no such field.
	TryField(object any, key string, value any) (bool, error)
	// HasField reports whether the target has a field matching key.
	HasField(object any, key string) bool
	// FieldValue reads the field matching key directly.
	FieldValue(object any, key string) (any, bool)
}

type structDescriptor[T any] struct {
	params []Param
	ctor   reflect.Value
}

// Describe builds a Descriptor for a plain struct target: no constructor,
// every attribute consumed through setters or direct field writes.
func Describe[T any]() Descriptor {
	return &structDescriptor[T]{}
}

// DescribeConstructor builds a Descriptor around a constructor function. The
// function must accept one input per declared param and return T or *T, with
// an optional trailing error.
func DescribeConstructor[T any](ctor any, params ...Param) (Descriptor, error) {
	fn := reflect.ValueOf(ctor)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("fixtures: constructor for %s must be a func, got %T", typeNameOf[T](), ctor)
	}
	ft := fn.Type()
	if ft.NumIn() != len(params) {
		return nil, fmt.Errorf("fixtures: constructor for %s takes %d arguments but %d parameters were declared", typeNameOf[T](), ft.NumIn(), len(params))
	}
	if ft.NumOut() < 1 || ft.NumOut() > 2 {
		return nil, fmt.Errorf("fixtures: constructor for %s must return the instance and an optional error", typeNameOf[T]())
	}
	want := reflect.TypeFor[T]()
	out := ft.Out(0)
	if out != want && !(out.Kind() == reflect.Pointer && out.Elem() == want) {
		return nil, fmt.Errorf("fixtures: constructor for %s returns %s", typeNameOf[T](), out)
	}
	return &structDescriptor[T]{params: params, ctor: fn}, nil
}

// MustDescribeConstructor is DescribeConstructor that panics on declaration
// mistakes; intended for package-level factory variables.
func MustDescribeConstructor[T any](ctor any, params ...Param) Descriptor {
	d, err := DescribeConstructor[T](ctor, params...)
	if err != nil {
		panic(err)
	}
	return d
}

func typeNameOf[T any]() string {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

func (d *structDescriptor[T]) TypeName() string { return typeNameOf[T]() }

func (d *structDescriptor[T]) Parameters() []Param {
	out := make([]Param, len(d.params))
	copy(out, d.params)
	return out
}

func (d *structDescriptor[T]) New(args []any) (any, error) {
	if !d.ctor.IsValid() {
		if len(args) != 0 {
			return nil, fmt.Errorf("fixtures: %s has no constructor", d.TypeName())
		}
		return d.Zero(), nil
	}
	ft := d.ctor.Type()
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		value := reflect.New(ft.In(i)).Elem()
		if err := reflectutil.Assign(value, arg); err != nil {
			return nil, fmt.Errorf("fixtures: %s constructor argument %q: %w", d.TypeName(), d.params[i].Name, err)
		}
		in[i] = value
	}
	results := d.ctor.Call(in)
	if len(results) == 2 {
		if err, ok := results[1].Interface().(error); ok && err != nil {
			return nil, err
		}
	}
	instance := results[0]
	if instance.Kind() == reflect.Pointer {
		return instance.Interface(), nil
	}
	boxed := reflect.New(instance.Type())
	boxed.Elem().Set(instance)
	return boxed.Interface(), nil
}

func (d *structDescriptor[T]) Zero() any {
	return new(T)
}

func (d *structDescriptor[T]) TrySetter(object any, key string, value any) (bool, error) {
	setter, ok := reflectutil.SetterByKey(object, key)
	if !ok {
		return false, nil
	}
	if err := reflectutil.CallSetter(setter, value); err != nil {
		return true, fmt.Errorf("fixtures: %s setter for %q: %w", d.TypeName(), key, err)
	}
	return true, nil
}

func (d *structDescriptor[T]) TryField(object any, key string, value any) (bool, error) {
	field, ok := reflectutil.FieldByKey(object, key)
	if !ok {
		return false, nil
	}
	if err := reflectutil.Assign(field, value); err != nil {
		return true, fmt.Errorf("fixtures: %s field %q: %w", d.TypeName(), key, err)
	}
	return true, nil
}

func (d *structDescriptor[T]) HasField(object any, key string) bool {
	_, ok := reflectutil.FieldByKey(object, key)
	return ok
}

func (d *structDescriptor[T]) FieldValue(object any, key string) (any, bool) {
	field, ok := reflectutil.FieldByKey(object, key)
	if !ok {
		return nil, false
	}
	return field.Interface(), true
}
