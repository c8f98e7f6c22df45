package errors

import (
	errorspkg "errors"
	"fmt"
	"testing"
)

func resetHTTPOverrides() {
	httpStatusMu.Lock()
	defer httpStatusMu.Unlock()
	httpStatusOverrides = make(map[ErrorCode]int)
	httpStatusResolverFn = nil
}

func TestBizErrorIsAndUnwrap(t *testing.T) {
	cause := errorspkg.New("root")
	err := Wrap(ErrCodeNotFound, "missing", cause)

	if !Is(err, ErrNotFound) {
		t.Fatalf("expected Is to match ErrNotFound")
	}
	if !errorspkg.Is(err, cause) {
		t.Fatalf("expected errors.Is to match cause")
	}
}

func TestDomainCodes(t *testing.T) {
	resetHTTPOverrides()
	defer resetHTTPOverrides()

	err := fmt.Errorf("lookup: %w", Wrapf(ErrCodeFormNotFound, nil, "form %q not found", "signup"))
	if !IsFormNotFound(err) {
		t.Fatalf("expected wrapped form-not-found error")
	}
	if !Is(err, ErrFormNotFound) {
		t.Fatalf("expected Is to match ErrFormNotFound")
	}

	cases := map[ErrorCode]int{
		ErrCodeFormNotFound:     404,
		ErrCodeValidationFailed: 422,
		ErrCodeTooManyRequests:  429,
		ErrCodeRuleSetInvalid:   500,
		ErrorCode(9999):         500,
	}
	for code, want := range cases {
		if got := HTTPStatus(New(code, "x")); got != want {
			t.Fatalf("HTTPStatus(%d) = %d, want %d", code, got, want)
		}
	}
	if got := HTTPStatus(errorspkg.New("plain")); got != 500 {
		t.Fatalf("non-business errors must map to 500, got %d", got)
	}
}

func TestToHTTPResponse(t *testing.T) {
	resetHTTPOverrides()
	defer resetHTTPOverrides()

	statusCode, body := ToHTTPResponse(nil)
	if statusCode != 200 {
		t.Fatalf("unexpected status for nil error: %d", statusCode)
	}
	if body["code"].(int) != 0 {
		t.Fatalf("unexpected code for nil error: %v", body["code"])
	}

	RegisterHTTPStatus(ErrCodeNotFound, 410)
	statusCode, _ = ToHTTPResponse(New(ErrCodeNotFound, "gone"))
	if statusCode != 410 {
		t.Fatalf("expected override status, got: %d", statusCode)
	}

	resetHTTPOverrides()
	SetHTTPStatusResolver(func(code ErrorCode) (int, bool) {
		if code == ErrCodePermissionDenied {
			return 451, true
		}
		return 0, false
	})
	statusCode, _ = ToHTTPResponse(New(ErrCodePermissionDenied, "deny"))
	if statusCode != 451 {
		t.Fatalf("expected resolver status, got: %d", statusCode)
	}

	statusCode, body = ToHTTPResponse(errorspkg.New("boom"))
	if statusCode != 500 || body["msg"] != "internal server error" {
		t.Fatalf("unexpected response for plain error: %d %v", statusCode, body)
	}
}
