// Package rule 提供结构体和字段验证功能的封装，基于 go-playground/validator 实现.
//
// 除内置规则外，额外注册了业务规则:
//
//	category  取值为已知文件分类（document/image/media/other 及其别名）
//	size      可被 usage.ParseSize 解析的大小字符串，如 "2 GB"
//	user      required,email 的别名，用于校验用户标识
package rule

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yeisme/spacedash/pkg/usage"
)

var (
	inst *validator.Validate
	once sync.Once
)

// initValidator 尝试复用 gin 的 validator 引擎；若不可用则新建，随后注册业务规则.
func initValidator() {
	inst = nil
	if engine := binding.Validator.Engine(); engine != nil {
		if v, ok := engine.(*validator.Validate); ok {
			inst = v
		}
	}

	if inst == nil {
		inst = validator.New()
	}

	inst.SetTagName("rule")
	_ = inst.RegisterValidation("category", validateCategory)
	_ = inst.RegisterValidation("size", validateSize)
	inst.RegisterAlias("user", "required,email")
}

func validateCategory(fl validator.FieldLevel) bool {
	_, ok := usage.ParseCategory(fl.Field().String())
	return ok
}

func validateSize(fl validator.FieldLevel) bool {
	n, err := usage.ParseSize(fl.Field().String())
	return err == nil && n >= 0
}

// lazyInit 初始化全局 validator（幂等）.
func lazyInit() {
	once.Do(initValidator)
}

// Engine 返回全局 *validator.Validate，若未初始化则先初始化.
func Engine() *validator.Validate {
	lazyInit()

	return inst
}

// RegisterValidation 代理 RegisterValidation，确保已初始化.
func RegisterValidation(tag string, fn validator.Func, opts ...bool) error {
	lazyInit()

	return inst.RegisterValidation(tag, fn, opts...)
}

// ValidationErrors 是格式化后的验证错误字典，键为字段名，值为可读错误信息.
type ValidationErrors map[string]string

// Errors 将 validator 返回的错误展开为 ValidationErrors，非校验错误返回 nil.
func Errors(err error) ValidationErrors {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return nil
	}

	out := make(ValidationErrors, len(ves))
	for _, fe := range ves {
		if fe.Param() != "" {
			out[fe.Field()] = fmt.Sprintf("failed on %s=%s", fe.Tag(), fe.Param())
			continue
		}

		out[fe.Field()] = "failed on " + fe.Tag()
	}

	return out
}

// ValidateStruct 对结构体执行完整校验，返回原始 error（可用 Errors 解析）.
func ValidateStruct(s any) error {
	lazyInit()

	return inst.Struct(s)
}

// ValidateVar 按规则对单个变量校验，例如: ValidateVar("abc", "required,email").
func ValidateVar(field any, tag string) error {
	lazyInit()

	return inst.Var(field, tag)
}

// ValidateUser 校验用户标识.
func ValidateUser(user string) error {
	return ValidateVar(user, "user")
}

// RegisterAlias 包装 RegisterAlias，便于注册别名规则.
func RegisterAlias(alias, rules string) {
	lazyInit()

	inst.RegisterAlias(alias, rules)
}
