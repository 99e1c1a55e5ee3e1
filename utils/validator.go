package utils

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"equipx_go/models"
)

var (
	validate = validator.New()
	// 自定义验证错误缓存
	validationErrorsCache   = make(map[string]string)
	validationErrorsCacheMu sync.RWMutex
)

// 初始化验证器
func init() {
	// 注册自定义验证规则
	validate.RegisterValidation("notblank", validateNotBlank)
	validate.RegisterValidation("condition", validateCondition)
	validate.RegisterValidation("salestatus", validateSaleStatus)
}

// Validator 验证器结构
type Validator struct {
	validator *validator.Validate
}

// NewValidator 创建新的验证器实例
func NewValidator() *Validator {
	return &Validator{
		validator: validate,
	}
}

// Validate 验证结构体
func (v *Validator) Validate(obj interface{}) error {
	if err := v.validator.Struct(obj); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// formatValidationErrors 格式化验证错误信息
func formatValidationErrors(errors []validator.FieldError) error {
	errorMap := make(map[string]string)

	for _, err := range errors {
		field := err.Field()
		tag := err.Tag()
		param := err.Param()

		// 先尝试从缓存中获取错误信息
		cacheKey := fmt.Sprintf("%s_%s_%s", field, tag, param)
		validationErrorsCacheMu.RLock()
		msg, exists := validationErrorsCache[cacheKey]
		validationErrorsCacheMu.RUnlock()
		if exists {
			errorMap[field] = msg
			continue
		}

		// 生成自定义错误信息
		msg = getErrorMessage(field, tag, param)
		validationErrorsCacheMu.Lock()
		validationErrorsCache[cacheKey] = msg
		validationErrorsCacheMu.Unlock()
		errorMap[field] = msg
	}

	return &ValidationError{Errors: errorMap}
}

// ValidationError 验证错误结构
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

func (ve *ValidationError) Error() string {
	fields := make([]string, 0, len(ve.Errors))
	for field := range ve.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, ve.Errors[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// getErrorMessage 获取错误消息
func getErrorMessage(field, tag, param string) string {
	errorMessages := map[string]string{
		"required":   "%s is required",
		"notblank":   "%s must not be blank",
		"email":      "%s must be a valid email address",
		"uri":        "%s must be a valid URI",
		"min":        "%s must be at least %s",
		"max":        "%s must be at most %s",
		"gt":         "%s must be greater than %s",
		"gte":        "%s must be greater than or equal to %s",
		"oneof":      "%s must be one of: %s",
		"condition":  "%s must be one of: new used unused",
		"salestatus": "%s must be one of: active sold archived",
	}

	template, exists := errorMessages[tag]
	if !exists {
		return fmt.Sprintf("%s failed on %s", field, tag)
	}
	if strings.Count(template, "%s") == 1 {
		return fmt.Sprintf(template, field)
	}
	return fmt.Sprintf(template, field, param)
}

// 自定义验证规则

// validateNotBlank 不能只包含空白字符
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validateCondition 设备成色验证
func validateCondition(fl validator.FieldLevel) bool {
	return models.ConditionStatus(fl.Field().String()).Valid()
}

// validateSaleStatus 发布状态验证
func validateSaleStatus(fl validator.FieldLevel) bool {
	return models.SaleStatus(fl.Field().String()).Valid()
}

// ValidateStruct 使用默认验证器验证
func ValidateStruct(obj interface{}) error {
	return NewValidator().Validate(obj)
}
