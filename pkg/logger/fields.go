package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldUID 用户 ID 字段
	FieldUID = "uid"

	// FieldDocumentID 文档 ID 字段
	FieldDocumentID = "documentId"

	// FieldVersionID 版本 ID 字段
	FieldVersionID = "versionId"

	// FieldConnID 连接 ID 字段
	FieldConnID = "connId"

	// FieldEvent 会话事件名字段
	FieldEvent = "event"

	// FieldParticipants 会话参与者数量字段
	FieldParticipants = "participants"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldError 错误信息字段
	FieldError = "error"
)
