package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 用户/鉴权错误 100xx
	ErrUserNotFound = 10002
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 动态/互动模块错误 300xx
	ErrPostNotFound    = 30001
	ErrCommentNotFound = 30002
	ErrAlreadyLiked    = 30003
	ErrNotLiked        = 30004
	ErrInvalidParent   = 30005

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
