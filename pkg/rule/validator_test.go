package rule_test

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/yeisme/taskvault/pkg/rule"
)

// limitStruct 用于测试结构体校验.
type limitStruct struct {
	Owner    string `rule:"required"`
	MaxBytes int64  `rule:"gt=0"`
}

// TestEngine 测试 Engine 函数返回非 nil 实例.
func TestEngine(t *testing.T) {
	if rule.Engine() == nil {
		t.Error("Engine() returned nil")
	}
}

// TestValidateStruct 测试 ValidateStruct 对有效和无效结构体的验证.
func TestValidateStruct(t *testing.T) {
	err := rule.ValidateStruct(limitStruct{Owner: "alice", MaxBytes: 1024})
	if err != nil {
		t.Errorf("Expected no error for valid struct, got %v", err)
	}

	// 缺少 Owner
	err = rule.ValidateStruct(limitStruct{Owner: "", MaxBytes: 1024})
	if err == nil {
		t.Error("Expected error for missing owner, got nil")
	}

	// MaxBytes 非正
	err = rule.ValidateStruct(limitStruct{Owner: "alice", MaxBytes: 0})
	if err == nil {
		t.Error("Expected error for non-positive max bytes, got nil")
	}
}

// TestErrors 测试 Errors 解析验证错误为字典.
func TestErrors(t *testing.T) {
	err := rule.ValidateStruct(limitStruct{Owner: "", MaxBytes: 0})
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}

	m := rule.Errors(err)
	if len(m) != 2 {
		t.Errorf("Expected 2 field errors, got %d: %v", len(m), m)
	}

	if _, ok := m["Owner"]; !ok {
		t.Error("Expected Owner in error map")
	}
}

// TestValidateVar 测试 ValidateVar 对变量的验证.
func TestValidateVar(t *testing.T) {
	if err := rule.ValidateVar(85, "gte=1,lte=100"); err != nil {
		t.Errorf("Expected no error for valid quality, got %v", err)
	}

	if err := rule.ValidateVar(120, "gte=1,lte=100"); err == nil {
		t.Error("Expected error for out-of-range quality, got nil")
	}
}

// TestRegisterValidation 测试注册自定义验证.
func TestRegisterValidation(t *testing.T) {
	// 注册自定义验证：检查扩展名不含点
	err := rule.RegisterValidation("bare_ext", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		for _, r := range str {
			if r == '.' {
				return false
			}
		}

		return true
	})
	if err != nil {
		t.Fatalf("Failed to register validation: %v", err)
	}

	if err := rule.ValidateVar("png", "bare_ext"); err != nil {
		t.Errorf("Expected no error for bare extension, got %v", err)
	}

	if err := rule.ValidateVar(".png", "bare_ext"); err == nil {
		t.Error("Expected error for dotted extension, got nil")
	}
}
