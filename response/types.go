package response

/* ========================================================================
 * Response Types - 响应类型定义
 * ========================================================================
 * 职责: 定义标准 API 响应结构
 * ======================================================================== */

// Result 标准 API 响应结构
type Result struct {
	Code int         `json:"code" example:"200" doc:"响应状态码"`
	Msg  string      `json:"msg" example:"success" doc:"响应消息"`
	Data any `json:"data" doc:"响应数据"`
}

// ValidationResult 单次验证结果
type ValidationResult struct {
	Form   string       `json:"form" example:"signup" doc:"表单名"`
	Valid  bool         `json:"valid" example:"false" doc:"是否通过验证"`
	PassID string       `json:"pass_id" example:"01J9Z8X4K3M2N1P0Q9R8S7T6V5" doc:"验证 ID"`
	Errors []FieldError `json:"errors" doc:"字段错误列表"`
}

// FieldError 字段错误，同一字段的多条失败合并在 Messages 中
type FieldError struct {
	ID       string   `json:"id" doc:"字段标识"`
	Name     string   `json:"name" example:"email" doc:"字段名"`
	Display  string   `json:"display" example:"Email" doc:"字段显示名"`
	Rule     string   `json:"rule" example:"required" doc:"首个失败的规则"`
	Message  string   `json:"message" doc:"首条错误消息"`
	Messages []string `json:"messages" doc:"全部错误消息"`
}

// Response Result 的别名，用于 Swagger 文档
type Response = Result
