package dto

import "github.com/haierkeys/collab-doc-service/pkg/timex"

// VersionCreateRequest 手动创建版本请求参数
type VersionCreateRequest struct {
	DocumentID        int64  `json:"documentId" form:"documentId" binding:"required"`
	ChangeDescription string `json:"changeDescription" form:"changeDescription" binding:"max=500"`
}

// VersionRestoreRequest 恢复版本请求参数
type VersionRestoreRequest struct {
	DocumentID int64 `json:"documentId" form:"documentId" binding:"required"`
	VersionID  int64 `json:"versionId" form:"versionId" binding:"required"`
}

// VersionDTO 版本列表项
type VersionDTO struct {
	ID                int64      `json:"id"`
	DocumentID        int64      `json:"documentId"`
	ChangeDescription string     `json:"changeDescription"`
	IsAutoSnapshot    bool       `json:"isAutoSnapshot"`
	AuthorUID         int64      `json:"authorUid"`
	AuthorName        string     `json:"authorName"`
	CreatedAt         timex.Time `json:"createdAt"`
}

// VersionDetailDTO 版本详情，含完整内容快照
type VersionDetailDTO struct {
	VersionDTO
	Content string `json:"content"`
}

// VersionCompareDTO 版本对比结果
type VersionCompareDTO struct {
	DocumentID int64      `json:"documentId"`
	FromID     int64      `json:"fromId"`
	ToID       int64      `json:"toId"`
	DiffHTML   string     `json:"diffHtml"`
	FromAt     timex.Time `json:"fromAt"`
	ToAt       timex.Time `json:"toAt"`
}
