package domain

import "time"

// Document 文档领域模型
// Content 为完整文本内容，协作编辑以整文替换方式更新
type Document struct {
	ID            int64
	Title         string
	Content       string
	OwnerUID      int64
	Collaborators []int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasCollaborator 判断用户是否为文档协作者
func (d *Document) HasCollaborator(uid int64) bool {
	for _, c := range d.Collaborators {
		if c == uid {
			return true
		}
	}
	return false
}

// AddCollaborator 添加协作者，已存在时返回 false
func (d *Document) AddCollaborator(uid int64) bool {
	if uid == d.OwnerUID || d.HasCollaborator(uid) {
		return false
	}
	d.Collaborators = append(d.Collaborators, uid)
	return true
}

// RemoveCollaborator 移除协作者，不存在时返回 false
func (d *Document) RemoveCollaborator(uid int64) bool {
	for i, c := range d.Collaborators {
		if c == uid {
			d.Collaborators = append(d.Collaborators[:i], d.Collaborators[i+1:]...)
			return true
		}
	}
	return false
}
