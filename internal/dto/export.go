package dto

// ExportRequest 导出文档请求参数
type ExportRequest struct {
	DocumentID int64  `json:"documentId" form:"documentId" binding:"required"`
	Format     string `json:"format" form:"format" binding:"required,oneof=markdown html txt"`
}

// ExportDTO 导出结果
type ExportDTO struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Body        string `json:"body"`
}
