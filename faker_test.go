package fixtures

import "testing"

func TestSeededFakerDeterminism(t *testing.T) {
	a := NewSeededFaker(42)
	b := NewSeededFaker(42)
	for i := 0; i < 5; i++ {
		if a.Name() != b.Name() {
			t.Fatalf("seeded fakers diverged at call %d", i)
		}
	}
}

func TestFakerRegisterFunctions(t *testing.T) {
	registry := NewFunctionRegistry()
	NewSeededFaker(7).RegisterFunctions(registry)

	for _, name := range []string{"name", "email", "sentence", "word", "uuid", "digits", "username", "company", "first_name", "last_name"} {
		if _, err := registry.Call(name); err != nil {
			t.Fatalf("call %s: %v", name, err)
		}
	}

	result, err := registry.Call("number", 3, 3)
	if err != nil {
		t.Fatalf("number: %v", err)
	}
	if result != 3 {
		t.Fatalf("number(3, 3) = %v", result)
	}
	if _, err := registry.Call("number", 1); err == nil {
		t.Fatal("number should require two arguments")
	}

	sentence, err := registry.Call("sentence", 3)
	if err != nil {
		t.Fatalf("sentence: %v", err)
	}
	if s, _ := sentence.(string); s == "" {
		t.Fatalf("sentence(3) = %v", sentence)
	}

	digits, err := registry.Call("digits", 6)
	if err != nil {
		t.Fatalf("digits: %v", err)
	}
	if s, _ := digits.(string); len(s) != 6 {
		t.Fatalf("digits(6) = %v", digits)
	}
}

func TestFakerRegistrationDoesNotOverrideCallerFunctions(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("name", func(...any) (any, error) {
		return "fixed", nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	NewFaker().RegisterFunctions(registry)

	result, err := registry.Call("name")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if result != "fixed" {
		t.Fatalf("faker overrode a caller function: %v", result)
	}
}

func TestFakerSwapRebindsHelperRegistrations(t *testing.T) {
	registry := NewFunctionRegistry()
	NewSeededFaker(1).RegisterFunctions(registry)
	NewSeededFaker(42).RegisterFunctions(registry)

	got, err := registry.Call("name")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if want := NewSeededFaker(42).Name(); got != want {
		t.Fatalf("helpers still bound to the old faker: got %q, want %q", got, want)
	}

	// A caller registration still beats the helper, even after the fact.
	if err := registry.Register("name", func(...any) (any, error) {
		return "fixed", nil
	}); err != nil {
		t.Fatalf("register over helper: %v", err)
	}
	result, err := registry.Call("name")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if result != "fixed" {
		t.Fatalf("caller registration did not replace the helper: %v", result)
	}
	NewSeededFaker(7).RegisterFunctions(registry)
	if result, _ = registry.Call("name"); result != "fixed" {
		t.Fatalf("faker re-registration clobbered a caller function: %v", result)
	}
}

func TestArgToInt(t *testing.T) {
	cases := []struct {
		in   any
		want int
		ok   bool
	}{
		{5, 5, true},
		{int64(6), 6, true},
		{7.0, 7, true},
		{"8", 0, false},
	}
	for _, tc := range cases {
		got, err := argToInt(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("argToInt(%v) = %d, %v", tc.in, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("argToInt(%v) should fail", tc.in)
		}
	}
}
