package errno

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	SuccessCode          = 0
	ServiceErrCode       = 10001
	InvalidInputErrCode  = 10002
	NotFoundErrCode      = 10004
	ForbiddenErrCode     = 10003
	InvalidOperationCode = 10005
	ConflictErrCode      = 10009
	UnavailableErrCode   = 10503
	AuthorizationErrCode = 10401
)

type ErrNo struct {
	ErrCode int64
	ErrMsg  string
}

func (e ErrNo) Error() string {
	return fmt.Sprintf("err_code=%d, err_msg=%s", e.ErrCode, e.ErrMsg)
}

// Is 只比较错误码，WithMessage 派生出的错误仍与原错误相等
func (e ErrNo) Is(target error) bool {
	t, ok := target.(ErrNo)
	return ok && t.ErrCode == e.ErrCode
}

func NewErrNo(code int64, msg string) ErrNo {
	return ErrNo{code, msg}
}

func (e ErrNo) WithMessage(msg string) ErrNo {
	e.ErrMsg = msg
	return e
}

func (e ErrNo) WithMessagef(format string, args ...interface{}) ErrNo {
	e.ErrMsg = fmt.Sprintf(format, args...)
	return e
}

var (
	Success          = NewErrNo(SuccessCode, "Success")
	ServiceErr       = NewErrNo(ServiceErrCode, "Service is unable to start successfully")
	InvalidInputErr  = NewErrNo(InvalidInputErrCode, "Wrong Parameter has been given")
	NotFoundErr      = NewErrNo(NotFoundErrCode, "Resource not found")
	ForbiddenErr     = NewErrNo(ForbiddenErrCode, "Operation not permitted")
	InvalidOperation = NewErrNo(InvalidOperationCode, "Invalid operation")
	ConflictErr      = NewErrNo(ConflictErrCode, "Resource state conflict")
	UnavailableErr   = NewErrNo(UnavailableErrCode, "Store is unavailable")
	AuthorizationErr = NewErrNo(AuthorizationErrCode, "Token is invalid or expired")
)

// ConvertErr convert error to Errno
func ConvertErr(err error) ErrNo {
	if err == nil {
		return Success
	}
	Err := ErrNo{}
	if errors.As(err, &Err) {
		return Err
	}
	s := ServiceErr
	s.ErrMsg = err.Error()
	return s
}

// HTTPStatus 错误码对应的 HTTP 状态码
func HTTPStatus(err error) int {
	switch ConvertErr(err).ErrCode {
	case SuccessCode:
		return http.StatusOK
	case InvalidInputErrCode:
		return http.StatusBadRequest
	case NotFoundErrCode:
		return http.StatusNotFound
	case ForbiddenErrCode, InvalidOperationCode:
		return http.StatusForbidden
	case ConflictErrCode:
		return http.StatusConflict
	case UnavailableErrCode:
		return http.StatusServiceUnavailable
	case AuthorizationErrCode:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
