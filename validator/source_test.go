package validator

import (
	"net/url"
	"testing"
	"time"
)

func TestValuesLookup(t *testing.T) {
	t.Parallel()

	src := Values{
		Form: url.Values{
			"email":  {"", "user@example.com"},
			"colors": {"red"},
		},
		Kinds: map[string]InputKind{
			"colors": KindCheckbox,
			"terms":  KindCheckbox,
		},
	}

	el, ok := src.Lookup("email")
	if !ok || el.Value != "user@example.com" || el.Kind != KindText {
		t.Fatalf("unexpected email element: %+v", el)
	}

	el, ok = src.Lookup("colors")
	if !ok || !el.Checked || el.Value != "red" {
		t.Fatalf("submitted checkbox must be checked: %+v", el)
	}

	el, ok = src.Lookup("terms")
	if !ok || el.Checked {
		t.Fatalf("declared but absent checkbox must resolve unchecked: %+v", el)
	}

	if _, ok := src.Lookup("missing"); ok {
		t.Fatalf("undeclared absent field must not resolve")
	}
}

func TestSourceFunc(t *testing.T) {
	t.Parallel()

	src := SourceFunc(func(name string) (*Element, bool) {
		if name == "a" {
			return &Element{Value: "1"}, true
		}
		return nil, false
	})
	e := New(src, []FieldConfig{{Name: "a", Rules: "numeric"}, {Name: "b", Rules: "required"}}, nil)
	if !e.ValidateForm() {
		t.Fatalf("expected pass: %v", e.Errors())
	}
}

type address struct {
	City string `form:"city"`
	Zip  *int   `form:"zip"`
}

type signupForm struct {
	Email    string    `form:"email,email"`
	Terms    bool      `form:"terms"`
	Age      int       `form:"age"`
	Ratio    float64   `form:"ratio"`
	Tags     []string  `form:"tags"`
	Birthday time.Time `form:"birthday"`
	Avatar   string    `form:"avatar,file"`
	Address  address   `form:"address"`
	Billing  *address  `form:"billing"`
	Ignored  string    `form:"-"`
	Untagged string
	secret   string
}

func TestStructSource(t *testing.T) {
	t.Parallel()

	form := &signupForm{
		Email:    "user@example.com",
		Terms:    true,
		Age:      30,
		Ratio:    0.5,
		Tags:     []string{"a", "b"},
		Birthday: time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		Avatar:   "me.png",
		Address:  address{City: "Paris"},
		Ignored:  "x",
		Untagged: "u",
		secret:   "s",
	}
	src := NewStructSource(form)

	cases := map[string]Element{
		"email":        {Value: "user@example.com", Kind: KindEmail},
		"terms":        {Value: "on", Checked: true, Kind: KindCheckbox},
		"age":          {Value: "30", Kind: KindText},
		"ratio":        {Value: "0.5", Kind: KindText},
		"tags":         {Value: "a,b", Kind: KindText},
		"birthday":     {Value: "1990-05-17", Kind: KindText},
		"avatar":       {Value: "me.png", Kind: KindFile},
		"address.city": {Value: "Paris", Kind: KindText},
		"address.zip":  {Kind: KindText},
		"Untagged":     {Value: "u", Kind: KindText},
	}
	for name, want := range cases {
		el, ok := src.Lookup(name)
		if !ok {
			t.Fatalf("field %q not found", name)
		}
		if *el != want {
			t.Fatalf("field %q = %+v, want %+v", name, *el, want)
		}
	}

	for _, name := range []string{"Ignored", "secret", "billing.city"} {
		if _, ok := src.Lookup(name); ok {
			t.Fatalf("field %q must not resolve", name)
		}
	}
}

func TestStructSourceWithEngine(t *testing.T) {
	t.Parallel()

	form := signupForm{Email: "bad", Avatar: "me.exe"}
	e := New(NewStructSource(form), []FieldConfig{
		{Name: "email", Rules: "required|valid_email"},
		{Name: "terms", Rules: "required"},
		{Name: "avatar", Rules: "is_file_type[png,jpg]"},
	}, nil)

	if e.ValidateForm() {
		t.Fatalf("expected failure")
	}
	if got := len(e.Errors()); got != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", got, e.Errors())
	}
}

func TestNewStructSourceNil(t *testing.T) {
	t.Parallel()

	var form *signupForm
	if _, ok := NewStructSource(form).Lookup("email"); ok {
		t.Fatalf("nil struct must not resolve fields")
	}
	if _, ok := NewStructSource(nil).Lookup("email"); ok {
		t.Fatalf("nil value must not resolve fields")
	}
}

type categoryNode struct {
	Name   string        `form:"name"`
	Parent *categoryNode `form:"parent"`
}

func TestStructSourcePointerCycle(t *testing.T) {
	t.Parallel()

	root := &categoryNode{Name: "root"}
	child := &categoryNode{Name: "child", Parent: root}
	root.Parent = root

	src := NewStructSource(child)
	tests := map[string]string{
		"name":        "child",
		"parent.name": "root",
	}
	for name, want := range tests {
		el, ok := src.Lookup(name)
		if !ok || el.Value != want {
			t.Fatalf("%s: expected %q, got %+v", name, want, el)
		}
	}
	if _, ok := src.Lookup("parent.parent.name"); ok {
		t.Fatalf("cycle must stop at the first repeated pointer")
	}

	shared := &categoryNode{Name: "shared"}
	type pair struct {
		Left  *categoryNode `form:"left"`
		Right *categoryNode `form:"right"`
	}
	src = NewStructSource(&pair{Left: shared, Right: shared})
	for _, name := range []string{"left.name", "right.name"} {
		if el, ok := src.Lookup(name); !ok || el.Value != "shared" {
			t.Fatalf("%s: shared pointer on sibling paths must resolve, got %+v", name, el)
		}
	}
}
