package reflectutil

import (
	"reflect"
	"testing"
)

type widget struct {
	Name   string
	Count  int
	Labels []string
	Spec   map[string]any
	next   *widget
}

func (w *widget) SetName(name string) { w.Name = name }
func (w *widget) SetCount(n int)      { w.Count = n }

func TestCloneIsolation(t *testing.T) {
	original := &widget{
		Name:   "a",
		Labels: []string{"x", "y"},
		Spec:   map[string]any{"k": "v"},
	}
	cloned, ok := Clone(original).(*widget)
	if !ok {
		t.Fatalf("clone changed type: %T", Clone(original))
	}
	cloned.Name = "b"
	cloned.Labels[0] = "z"
	cloned.Spec["k"] = "w"

	if original.Name != "a" {
		t.Fatalf("clone shared the struct: %q", original.Name)
	}
	if original.Labels[0] != "x" {
		t.Fatalf("clone shared the slice: %v", original.Labels)
	}
	if original.Spec["k"] != "v" {
		t.Fatalf("clone shared the map: %v", original.Spec)
	}
}

func TestSnapshotNormalizesFieldNames(t *testing.T) {
	snap := Snapshot(&widget{Name: "a", Count: 2})
	if snap["name"] != "a" {
		t.Fatalf("snapshot name = %v", snap["name"])
	}
	if snap["count"] != 2 {
		t.Fatalf("snapshot count = %v", snap["count"])
	}
	if _, ok := snap["next"]; ok {
		t.Fatal("snapshot leaked unexported field")
	}
}

func TestFieldByKeySpellings(t *testing.T) {
	w := &widget{}
	for _, spelling := range []string{"name", "Name", "NAME"} {
		field, ok := FieldByKey(w, spelling)
		if !ok {
			t.Fatalf("no field for %q", spelling)
		}
		if field.Kind() != reflect.String {
			t.Fatalf("field for %q has kind %s", spelling, field.Kind())
		}
	}
	if _, ok := FieldByKey(w, "missing"); ok {
		t.Fatal("found a field that does not exist")
	}
}

func TestSetterByKey(t *testing.T) {
	w := &widget{}
	setter, ok := SetterByKey(w, "count")
	if !ok {
		t.Fatal("no setter for count")
	}
	if err := CallSetter(setter, 7); err != nil {
		t.Fatalf("call setter: %v", err)
	}
	if w.Count != 7 {
		t.Fatalf("setter wrote %d", w.Count)
	}
	if _, ok := SetterByKey(w, "labels"); ok {
		t.Fatal("found a setter that does not exist")
	}
}

func TestAssignConversions(t *testing.T) {
	var n int64
	if err := Assign(reflect.ValueOf(&n).Elem(), 5); err != nil {
		t.Fatalf("assign int to int64: %v", err)
	}
	if n != 5 {
		t.Fatalf("n = %d", n)
	}

	var labels []string
	if err := Assign(reflect.ValueOf(&labels).Elem(), []any{"a", "b"}); err != nil {
		t.Fatalf("assign []any to []string: %v", err)
	}
	if len(labels) != 2 || labels[1] != "b" {
		t.Fatalf("labels = %v", labels)
	}

	var ptr *widget
	if err := Assign(reflect.ValueOf(&ptr).Elem(), widget{Name: "boxed"}); err != nil {
		t.Fatalf("assign value to pointer: %v", err)
	}
	if ptr == nil || ptr.Name != "boxed" {
		t.Fatalf("ptr = %+v", ptr)
	}

	var s string
	if err := Assign(reflect.ValueOf(&s).Elem(), 12); err == nil {
		t.Fatal("expected error assigning int to string")
	}
}
