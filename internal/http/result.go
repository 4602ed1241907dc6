package httpapi

// Result 与前端 dashboard 的 axios 封装保持一致
// 成功：{ "status": "success", "data": {...} }
// 失败：{ "status": "error", "message": "..." }
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

func Ok(data any) Result {
	return Result{Status: statusSuccess, Data: data}
}

func Fail(message string) Result {
	return Result{Status: statusError, Message: message}
}
