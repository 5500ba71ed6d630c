package tableschema_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	ts "github.com/reoring/tableschema"
)

func TestIssues_KindSentinels(t *testing.T) {
	iss := ts.Issues{
		{Kind: ts.KindCast, Code: ts.CodeTooSmall, Path: "/2", Message: "value is too small"},
		{Kind: ts.KindPrimaryKey, Code: ts.CodeUnknownField, Path: "/primaryKey/0", Message: "No such field as: id."},
	}
	var err error = iss
	if !errors.Is(err, ts.ErrCast) || !errors.Is(err, ts.ErrPrimaryKey) {
		t.Fatalf("expected both sentinels to match: %v", err)
	}
	if errors.Is(err, ts.ErrParse) {
		t.Fatalf("unexpected parse match")
	}
	if !iss.HasKind(ts.KindCast) || iss.HasKind(ts.KindInference) {
		t.Fatalf("HasKind mismatch")
	}

	wrapped := fmt.Errorf("loading: %w", err)
	got, ok := ts.AsIssues(wrapped)
	if !ok || len(got) != 2 || got[1].Path != "/primaryKey/0" {
		t.Fatalf("AsIssues failed: %v %v", got, ok)
	}
	if _, ok := ts.AsIssues(errors.New("plain")); ok {
		t.Fatalf("plain errors carry no issues")
	}
}

func TestIssues_ErrorSummary(t *testing.T) {
	var iss ts.Issues
	for i := 0; i < 5; i++ {
		iss = ts.AppendIssues(iss, ts.Issue{Code: ts.CodeRequired, Path: fmt.Sprintf("/%d", i)})
	}
	msg := iss.Error()
	if !strings.HasPrefix(msg, "required at /0; required at /1; required at /2") {
		t.Fatalf("unexpected summary: %s", msg)
	}
	if !strings.HasSuffix(msg, "(total 5)") {
		t.Fatalf("expected total count: %s", msg)
	}
}

func TestIssues_CauseIsReachable(t *testing.T) {
	f, err := ts.NewField("n", ts.TypeInteger)
	if err != nil {
		t.Fatal(err)
	}
	_, err = f.Cast("abc")
	iss, ok := ts.AsIssues(err)
	if !ok || iss[0].Code != ts.CodeInvalidType || iss[0].Cause == nil {
		t.Fatalf("expected invalid_type with a cause, got %v", err)
	}
	if !errors.Is(err, iss[0].Cause) {
		t.Fatalf("cause should be reachable through Unwrap")
	}
	if iss[0].Kind.String() != "cast error" {
		t.Fatalf("unexpected kind name %q", iss[0].Kind.String())
	}
}
