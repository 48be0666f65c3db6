package code

// 成功状态码
var (
	Success         = NewSuss(200, lang{"Success", "成功"})
	SuccessNoUpdate = NewSuss(201, lang{"Success, no update", "成功，无更新"})
)

// 通用错误状态码
var (
	ErrorServerInternal   = NewError(10000, lang{"Server internal error", "服务内部错误"})
	ErrorInvalidParams    = NewError(10001, lang{"Invalid request parameters", "入参错误"})
	ErrorNotFoundAPI      = NewError(10002, lang{"API not found", "找不到对应接口"})
	ErrorTooManyRequests  = NewError(10003, lang{"Too many requests", "请求过多"})
	ErrorDBQuery          = NewError(10004, lang{"Database query error", "数据库查询错误"})
	ErrorRequestTimeout   = NewError(10005, lang{"Request timeout", "请求超时"})
	ErrorPersistenceWrite = NewError(10006, lang{"Persistence write failed, please retry", "持久化写入失败，请重试"})
)

// 认证相关状态码
var (
	ErrorNotUserAuthToken      = NewError(20000, lang{"Auth token missing", "缺少用户认证令牌"})
	ErrorInvalidUserAuthToken  = NewError(20001, lang{"Auth token invalid", "用户认证令牌无效"})
	ErrorUserNotExists         = NewError(20002, lang{"User does not exist", "用户不存在"})
	ErrorUserEmailExists       = NewError(20003, lang{"Email already registered", "邮箱已被注册"})
	ErrorUserPasswordIncorrect = NewError(20004, lang{"Incorrect email or password", "邮箱或密码错误"})
	ErrorUserRegisterDisabled  = NewError(20005, lang{"Registration is disabled", "注册已关闭"})
	ErrorUserRegisterFailed    = NewError(20006, lang{"Registration failed", "注册失败"})
	ErrorUserTokenGenerate     = NewError(20007, lang{"Token generation failed", "令牌生成失败"})
)

// 文档相关状态码
var (
	ErrorDocumentNotFound     = NewError(30000, lang{"Document not found", "文档不存在"})
	ErrorDocumentAccessDenied = NewError(30001, lang{"Access denied", "无权访问该文档"})
	ErrorDocumentCreateFailed = NewError(30002, lang{"Document create failed", "文档创建失败"})
	ErrorDocumentModifyFailed = NewError(30003, lang{"Document modify failed", "文档修改失败"})
	ErrorDocumentDeleteFailed = NewError(30004, lang{"Document delete failed", "文档删除失败"})
	ErrorCollaboratorModify   = NewError(30005, lang{"Collaborator modify failed", "协作者修改失败"})
)

// 版本相关状态码
var (
	ErrorVersionNotFound      = NewError(31000, lang{"Version not found", "版本不存在"})
	ErrorVersionCreateFailed  = NewError(31001, lang{"Version create failed", "版本创建失败"})
	ErrorVersionRestoreFailed = NewError(31002, lang{"Version restore failed", "版本恢复失败"})
)

// 会话相关状态码
var (
	ErrorSessionJoinFailed = NewError(32000, lang{"Failed to join document session", "加入文档会话失败"})
	ErrorSessionNotJoined  = NewError(32001, lang{"Not joined to this document session", "尚未加入该文档会话"})
	ErrorExportFormat      = NewError(33000, lang{"Unsupported export format", "不支持的导出格式"})
)
