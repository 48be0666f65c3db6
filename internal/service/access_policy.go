package service

import (
	"github.com/haierkeys/collab-doc-service/internal/domain"
)

// 访问策略为纯谓词，不产生副作用
// 调用方在谓词失败时返回访问拒绝信号，谓词本身只返回布尔值

// CanRead 判断用户是否可读文档：所有者或协作者
func CanRead(doc *domain.Document, uid int64) bool {
	if doc == nil {
		return false
	}
	return doc.OwnerUID == uid || doc.HasCollaborator(uid)
}

// CanWrite 判断用户是否可写文档
// 本模型中读写权限同规则，不设只读角色
func CanWrite(doc *domain.Document, uid int64) bool {
	return CanRead(doc, uid)
}

// CanManageCollaborators 判断用户是否可管理协作者：仅所有者
func CanManageCollaborators(doc *domain.Document, uid int64) bool {
	if doc == nil {
		return false
	}
	return doc.OwnerUID == uid
}

// CanDelete 判断用户是否可删除文档：仅所有者
func CanDelete(doc *domain.Document, uid int64) bool {
	if doc == nil {
		return false
	}
	return doc.OwnerUID == uid
}
