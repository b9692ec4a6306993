package hydrate

import (
	"strings"
	"testing"
)

type article struct {
	Title string `json:"title"`
	Views int    `json:"views"`
}

func TestDecodeAppliesHooks(t *testing.T) {
	decoder := NewDecoder[article](
		WithPreHook[article](func(ctx Context, payload map[string]any) (map[string]any, error) {
			payload["title"] = strings.ToUpper(payload["title"].(string))
			return payload, nil
		}),
		WithPostHook[article](func(ctx Context, out *article) error {
			out.Views++
			return nil
		}),
	)

	out, err := decoder.Decode(Context{Kind: "article"}, map[string]any{
		"title": "hello",
		"views": 2,
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Title != "HELLO" {
		t.Fatalf("pre-hook not applied: %q", out.Title)
	}
	if out.Views != 3 {
		t.Fatalf("post-hook not applied: %d", out.Views)
	}
}

func TestDecodeDoesNotMutateCallerPayload(t *testing.T) {
	payload := map[string]any{"title": "hello"}
	decoder := NewDecoder[article](
		WithPreHook[article](func(ctx Context, p map[string]any) (map[string]any, error) {
			p["title"] = "mutated"
			return p, nil
		}),
	)
	if _, err := decoder.Decode(Context{Kind: "article"}, payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["title"] != "hello" {
		t.Fatalf("caller payload mutated: %v", payload)
	}
}

func TestDecodeStrictRejectsUnknownFields(t *testing.T) {
	decoder := NewDecoder[article](WithDisallowUnknownFields[article]())
	_, err := decoder.Decode(Context{Kind: "article"}, map[string]any{
		"title":   "hello",
		"unknown": true,
	})
	if err == nil {
		t.Fatal("expected unknown-field error")
	}
}

func TestDecodeNilPayload(t *testing.T) {
	decoder := NewDecoder[article]()
	if _, err := decoder.Decode(Context{Kind: "article"}, nil); err == nil {
		t.Fatal("expected error for nil payload")
	}
}
