package dto

import "github.com/haierkeys/collab-doc-service/pkg/timex"

// DocumentCreateRequest 创建文档请求参数
type DocumentCreateRequest struct {
	Title   string `json:"title" form:"title" binding:"required,max=500"`
	Content string `json:"content" form:"content"`
}

// DocumentUpdateRequest 更新文档请求参数
type DocumentUpdateRequest struct {
	ID      int64  `json:"id" form:"id" binding:"required"`
	Title   string `json:"title" form:"title" binding:"max=500"`
	Content string `json:"content" form:"content"`
}

// CollaboratorAddRequest 添加协作者请求参数
type CollaboratorAddRequest struct {
	DocumentID int64  `json:"documentId" form:"documentId" binding:"required"`
	Email      string `json:"email" form:"email" binding:"required,email"`
}

// CollaboratorRemoveRequest 移除协作者请求参数
type CollaboratorRemoveRequest struct {
	DocumentID int64 `json:"documentId" form:"documentId" binding:"required"`
	UID        int64 `json:"uid" form:"uid" binding:"required"`
}

// DocumentDTO 文档数据传输对象
type DocumentDTO struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	OwnerUID      int64      `json:"ownerUid"`
	Collaborators []int64    `json:"collaborators"`
	VersionCount  int64      `json:"versionCount"`
	CreatedAt     timex.Time `json:"createdAt"`
	UpdatedAt     timex.Time `json:"updatedAt"`
}

// DocumentListItemDTO 文档列表项，不含正文内容
type DocumentListItemDTO struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	OwnerUID  int64      `json:"ownerUid"`
	IsOwner   bool       `json:"isOwner"`
	CreatedAt timex.Time `json:"createdAt"`
	UpdatedAt timex.Time `json:"updatedAt"`
}

// CollaboratorDTO 协作者信息
type CollaboratorDTO struct {
	UID      int64  `json:"uid"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}
