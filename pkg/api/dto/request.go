package dto

// ExecuteRequest 启动批次请求
// count为负数时由执行器拒绝，返回400
type ExecuteRequest struct {
	Count *int `json:"count" binding:"required"`
	Wait  bool `json:"wait"`
}

// TerminateRequest 终止请求，count为空表示终止全部
type TerminateRequest struct {
	Count *int `json:"count"`
}
