package domain

import (
	"sort"
	"strings"
	"time"
)

// 版本历史策略常量
const (
	// MaxVersions 每个文档保留的最大版本数
	MaxVersions = 50

	// AutoSnapshotTag 自动快照的描述标记，读取接口按子串匹配识别
	AutoSnapshotTag = "Auto-snapshot"
	// ManualSaveTag 手工保存版本的描述
	ManualSaveTag = "Manual save"
	// ContentUpdatedTag 内容更新版本的描述
	ContentUpdatedTag = "Content updated"

	// AutoSnapshotCooldown 同一作者在同一文档上自动快照的冷却时间
	AutoSnapshotCooldown = 30 * time.Minute
)

// DocumentVersion 文档版本领域模型，创建后不可变
type DocumentVersion struct {
	ID                int64
	DocumentID        int64
	Content           string
	ChangeDescription string
	AuthorUID         int64
	AuthorName        string
	// Seq 文档内单调递增序号，CreatedAt 相同时作为排序决胜键
	Seq       int64
	CreatedAt time.Time
}

// IsAutoSnapshot 判断版本是否为自动快照
// 按描述子串匹配，保持对外读取语义兼容
func (v *DocumentVersion) IsAutoSnapshot() bool {
	return strings.Contains(v.ChangeDescription, AutoSnapshotTag)
}

// RestoreSnapshotDescription 生成恢复前自动快照的描述
// 包含自动快照标记与目标版本的创建时间，便于追溯恢复来源
func RestoreSnapshotDescription(target *DocumentVersion) string {
	return AutoSnapshotTag + " before restore to version from " + target.CreatedAt.Format("2006-01-02 15:04:05")
}

// SortVersionsDesc 按创建时间倒序排列版本，时间相同时按 Seq 倒序
// 防御乱序提交，排序稳定可复现
func SortVersionsDesc(versions []*DocumentVersion) {
	sort.SliceStable(versions, func(i, j int) bool {
		if versions[i].CreatedAt.Equal(versions[j].CreatedAt) {
			return versions[i].Seq > versions[j].Seq
		}
		return versions[i].CreatedAt.After(versions[j].CreatedAt)
	})
}

// CapVersions 对已倒序排列的版本序列应用容量上限
// 返回保留的前 max 条与被淘汰的尾部（最旧的条目）
func CapVersions(versions []*DocumentVersion, max int) (kept []*DocumentVersion, evicted []*DocumentVersion) {
	if max < 1 || len(versions) <= max {
		return versions, nil
	}
	return versions[:max], versions[max:]
}

// CommitVersion 将 snapshot 插入版本序列并维持不变量：
// 倒序排列、长度不超过 max、最旧的条目被淘汰
// 只要 max >= 1，刚插入的 snapshot 不会被淘汰
func CommitVersion(versions []*DocumentVersion, snapshot *DocumentVersion, max int) (kept []*DocumentVersion, evicted []*DocumentVersion) {
	versions = append(versions, snapshot)
	SortVersionsDesc(versions)
	return CapVersions(versions, max)
}

// FindVersion 在序列中按 ID 查找版本，未找到返回 nil
func FindVersion(versions []*DocumentVersion, versionID int64) *DocumentVersion {
	for _, v := range versions {
		if v.ID == versionID {
			return v
		}
	}
	return nil
}
