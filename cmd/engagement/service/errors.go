package service

import (
	"context"

	"github.com/pkg/errors"

	"streamhub.com/pkg/errno"
)

// storeErr 存储层返回的 errno 原样透传，其余错误一律视为存储不可用
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	var e errno.ErrNo
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errors.WithStack(errno.UnavailableErr.WithMessagef("store timeout: %v", err))
	}
	return errors.WithStack(errno.UnavailableErr.WithMessage(errors.Cause(err).Error()))
}
