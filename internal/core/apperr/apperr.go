// Package apperr 定义业务错误的封闭分类；传输层按 Kind 决定状态码。
package apperr

import "errors"

type Kind uint8

const (
	// KindRepository 零值：存储层/签名层等未分类错误
	KindRepository Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	// KindInternal 路由装配错误（例如角色校验早于会话解析）
	KindInternal
)

var kindNames = map[Kind]string{
	KindRepository:   "repository",
	KindBadRequest:   "bad_request",
	KindUnauthorized: "unauthorized",
	KindForbidden:    "forbidden",
	KindNotFound:     "not_found",
	KindConflict:     "conflict",
	KindInternal:     "internal_configuration",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error 包含底层原因，仅用于日志；对外文案由传输层决定
func (e *Error) Error() string {
	if e.Msg != "" && e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &Error{Kind: KindBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) error     { return &Error{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) error     { return &Error{Kind: KindConflict, Msg: msg} }
func Internal(msg string) error     { return &Error{Kind: KindInternal, Msg: msg} }

// Repository 包装存储层错误；已分类的错误原样返回，不重新归类
func Repository(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindRepository, Msg: "repository error", Err: err}
}

// KindOf 未分类的错误一律视为 KindRepository
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindRepository
}

func Is(err error, kind Kind) bool { return err != nil && KindOf(err) == kind }

// Message 对外文案：只取分类错误自身的 Msg，不带底层原因
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Msg != "" {
		return ae.Msg
	}
	return err.Error()
}
