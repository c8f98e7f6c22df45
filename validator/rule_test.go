package validator

import "testing"

func TestParseRule(t *testing.T) {
	t.Parallel()

	cases := []struct {
		token string
		want  ParsedRule
	}{
		{"required", ParsedRule{Name: "required"}},
		{"min_length[5]", ParsedRule{Name: "min_length", Param: "5"}},
		{"is_file_type[gif,png]", ParsedRule{Name: "is_file_type", Param: "gif,png"}},
		{"!callback_check", ParsedRule{Name: "callback_check", Negated: true}},
		{"!callback_check[x]", ParsedRule{Name: "callback_check", Param: "x", Negated: true}},
		{"matches[a[b]]", ParsedRule{Name: "matches", Param: "a[b]"}},
		{" required", ParsedRule{Name: " required"}},
		{"[5]", ParsedRule{Name: "[5]"}},
		{"", ParsedRule{}},
	}

	for _, tc := range cases {
		got := ParseRule(tc.token)
		if got != tc.want {
			t.Fatalf("ParseRule(%q) = %+v, want %+v", tc.token, got, tc.want)
		}
	}
}

func TestParsedRuleCallback(t *testing.T) {
	t.Parallel()

	rule := ParseRule("callback_username_check[3]")
	if !rule.IsCallback() {
		t.Fatalf("expected callback rule")
	}
	if rule.CallbackName() != "username_check" {
		t.Fatalf("unexpected callback name: %q", rule.CallbackName())
	}
	if !rule.HasParam() || rule.Param != "3" {
		t.Fatalf("unexpected param: %q", rule.Param)
	}
	if ParseRule("required").IsCallback() {
		t.Fatalf("required is not a callback rule")
	}
}

func TestSplitRules(t *testing.T) {
	t.Parallel()

	got := SplitRules("required|min_length[2]||alpha")
	want := []string{"required", "min_length[2]", "", "alpha"}
	if len(got) != len(want) {
		t.Fatalf("unexpected tokens: %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHasRequiredIsSubstringMatch(t *testing.T) {
	t.Parallel()

	if !hasRequired("alpha|required") {
		t.Fatalf("expected required to be detected")
	}
	if !hasRequired("callback_not_required") {
		t.Fatalf("expected substring match inside a callback name")
	}
	if hasRequired("alpha|min_length[2]") {
		t.Fatalf("unexpected required detection")
	}
}
