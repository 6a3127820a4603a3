package bot

import (
	"context"
	"testing"
)

func noopHandler(ctx context.Context, req *Request) (*View, error) {
	return NewView(), nil
}

func TestMuxLookupIsCaseInsensitive(t *testing.T) {
	m := NewMux()
	m.Handle("/Tickets", noopHandler)

	for _, path := range []string{"/tickets", "/TICKETS", "/tickets/", " /tickets "} {
		if m.Lookup(path) == nil {
			t.Fatalf("Lookup(%q) = nil, want handler", path)
		}
	}
}

func TestMuxLookupFallsBackToNotFound(t *testing.T) {
	m := NewMux()
	if m.Lookup("/missing") != nil {
		t.Fatal("Lookup() != nil with no handlers registered")
	}

	m.NotFound(noopHandler)
	if m.Lookup("/missing") == nil {
		t.Fatal("Lookup() = nil, want not-found handler")
	}
	if m.Lookup("") == nil {
		t.Fatal("Lookup(\"\") = nil, want not-found handler")
	}
}

func TestSplitRoute(t *testing.T) {
	path, query := splitRoute("/tickets/submit?id=7&tag=a&tag=b")
	if path != "/tickets/submit" {
		t.Fatalf("splitRoute() path = %q, want %q", path, "/tickets/submit")
	}
	if got := query.Get("id"); got != "7" {
		t.Fatalf("query.Get(id) = %q, want %q", got, "7")
	}
	if got := query["tag"]; len(got) != 2 {
		t.Fatalf("query[tag] = %v, want two values", got)
	}
}

func TestSplitRouteMalformedQuery(t *testing.T) {
	path, query := splitRoute("/tickets?%zz")
	if path != "/tickets" {
		t.Fatalf("splitRoute() path = %q, want %q", path, "/tickets")
	}
	if len(query) != 0 {
		t.Fatalf("splitRoute() query = %v, want empty", query)
	}
}
