package validator

import "testing"

func TestMessageResolverPrecedence(t *testing.T) {
	t.Parallel()

	field := &Snapshot{Name: "email", Display: "Email"}
	rule := ParsedRule{Name: "required"}

	r := messageResolver{defaults: DefaultMessages()}
	if got := r.resolve(field, rule); got != "The Email field is required." {
		t.Fatalf("unexpected default message: %q", got)
	}

	r.overrides = map[string]string{"required": "%s please"}
	if got := r.resolve(field, rule); got != "Email please" {
		t.Fatalf("unexpected rule override: %q", got)
	}

	r.overrides[MessageKey("email", "required")] = "We need your %s"
	if got := r.resolve(field, rule); got != "We need your Email" {
		t.Fatalf("unexpected field override: %q", got)
	}

	if got := r.resolve(field, ParsedRule{Name: "unknown"}); got != "An error has occurred with the Email field." {
		t.Fatalf("unexpected fallback message: %q", got)
	}
}

func TestMessageResolverParam(t *testing.T) {
	t.Parallel()

	model := fieldModel{entries: map[string]*fieldEntry{
		"password": {name: "password", display: "Password"},
	}}
	r := messageResolver{defaults: DefaultMessages(), displayOf: model.displayOf}
	field := &Snapshot{Name: "confirm", Display: "Confirmation"}

	got := r.resolve(field, ParsedRule{Name: "matches", Param: "password"})
	if got != "The Confirmation field does not match the Password field." {
		t.Fatalf("unexpected matches message: %q", got)
	}

	got = r.resolve(field, ParsedRule{Name: "min_length", Param: "8"})
	if got != "The Confirmation field must be at least 8 characters in length." {
		t.Fatalf("unexpected min_length message: %q", got)
	}
}

func TestDefaultMessagesIsCopy(t *testing.T) {
	t.Parallel()

	m := DefaultMessages()
	m["required"] = "changed"
	if DefaultMessages()["required"] == "changed" {
		t.Fatalf("default messages must not be aliased")
	}
}
