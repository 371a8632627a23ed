// Package validator 在访问存储之前校验外部传入的 id、类型标签和请求载荷
package validator

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"streamhub.com/cmd/model"
	"streamhub.com/pkg/errno"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			f := fl.Field()
			if f.Kind() != reflect.String {
				return true
			}
			return strings.TrimSpace(f.String()) != ""
		})
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ParseID 解析外部传入的 id 字符串，必须是正整数
func ParseID(raw, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errno.InvalidInputErr.WithMessagef("%s is required", field)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errno.InvalidInputErr.WithMessagef("invalid %s: %q", field, raw)
	}
	return id, nil
}

func CheckID(id int64, field string) error {
	if id <= 0 {
		return errno.InvalidInputErr.WithMessagef("invalid %s: %d", field, id)
	}
	return nil
}

// ParseKind 解析类型标签，allowComment 为 false 时只接受内容类型
func ParseKind(raw string, allowComment bool) (model.Kind, error) {
	k, ok := model.ParseKind(raw)
	if !ok || (!allowComment && !k.IsContent()) {
		return "", errno.InvalidInputErr.WithMessagef("invalid kind: %q", raw)
	}
	return k, nil
}

// CheckRef 校验多态引用
func CheckRef(ref model.Ref, allowComment bool) error {
	if !ref.Kind.IsLikeable() || (!allowComment && !ref.Kind.IsContent()) {
		return errno.InvalidInputErr.WithMessagef("invalid kind: %q", ref.Kind)
	}
	return CheckID(ref.ID, string(ref.Kind)+" id")
}

// CheckText 去掉首尾空白后不能为空，且不超过 maxRunes 个字符
func CheckText(s, field string, maxRunes int) (string, error) {
	trimmed := strings.TrimSpace(s)
	if err := instance().Var(trimmed, fmt.Sprintf("notblank,max=%d", maxRunes)); err != nil {
		return "", errno.InvalidInputErr.WithMessagef("%s must be non-empty and at most %d characters", field, maxRunes)
	}
	return trimmed, nil
}

// Struct 按 validate tag 校验请求载荷
func Struct(v interface{}) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return errno.InvalidInputErr.WithMessagef("field %s failed on %s", fe.Field(), fe.Tag())
	}
	return errno.InvalidInputErr.WithMessage(err.Error())
}
