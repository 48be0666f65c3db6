package code

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeAsError(t *testing.T) {
	var err error = ErrorDocumentNotFound

	var codeErr *Code
	if !errors.As(err, &codeErr) {
		t.Fatal("expected errors.As to match *Code")
	}
	if codeErr.Code() != 30000 {
		t.Errorf("Expected code 30000, got %d", codeErr.Code())
	}
	if codeErr.Status() {
		t.Error("Expected error status false")
	}

	// 包装后仍可解包
	wrapped := fmt.Errorf("handler: %w", err)
	if !errors.As(wrapped, &codeErr) {
		t.Fatal("expected errors.As to unwrap *Code")
	}
}

func TestWithDetails(t *testing.T) {
	c := ErrorInvalidParams.Clone().WithDetails("field a", "field b")

	if !c.HaveDetails() {
		t.Fatal("expected details present")
	}
	if len(c.Details()) != 2 {
		t.Errorf("Expected 2 details, got %d", len(c.Details()))
	}

	// Clone 不携带原对象的附加信息
	clone := c.Clone()
	if clone.HaveDetails() || clone.HaveData() {
		t.Error("expected clone without details and data")
	}
	if clone.Code() != c.Code() {
		t.Error("expected clone to keep the code")
	}
}

func TestLangFallback(t *testing.T) {
	defer SetGlobalDefaultLang("en")

	SetGlobalDefaultLang("zh_cn")
	if ErrorDocumentNotFound.Msg() != "文档不存在" {
		t.Errorf("Expected Chinese message, got %s", ErrorDocumentNotFound.Msg())
	}

	SetGlobalDefaultLang("en")
	if ErrorDocumentNotFound.Msg() != "Document not found" {
		t.Errorf("Expected English message, got %s", ErrorDocumentNotFound.Msg())
	}
}
