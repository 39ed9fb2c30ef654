package xerr

import (
	"fmt"
	"sort"
	"strings"
)

// 批量操作的校验错误需要一次性列出所有问题项,而不是只报第一个,
// 这里定义携带枚举信息的错误类型,均可通过 errors.Is 匹配到对应的哨兵错误

// NotFoundError 表示请求引用的 id 未能解析为 ACTIVE 实体
// IDs/Names 枚举全部缺失项
type NotFoundError struct {
	Resource string // "file" / "label" / "user" / "resource"
	IDs      []uint64
	Names    []string // 按名称查找时使用,例如用户名或资源地址
}

func (e *NotFoundError) Error() string {
	if len(e.Names) > 0 {
		return fmt.Sprintf("%s不存在: [%s]", resourceLabel(e.Resource), strings.Join(e.Names, ", "))
	}
	return fmt.Sprintf("%s不存在: %v", resourceLabel(e.Resource), sortedIDs(e.IDs))
}

func (e *NotFoundError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return true
	case ErrFileNotFound:
		return e.Resource == "file"
	case ErrLabelNotFound:
		return e.Resource == "label"
	case ErrUserNotFound:
		return e.Resource == "user"
	case ErrResourceNotFound:
		return e.Resource == "resource"
	}
	return false
}

// NewNotFound 创建缺失 id 枚举错误
func NewNotFound(resource string, ids []uint64) *NotFoundError {
	return &NotFoundError{Resource: resource, IDs: sortedIDs(ids)}
}

// NewNotFoundNames 创建按名称查找的缺失枚举错误
func NewNotFoundNames(resource string, names []string) *NotFoundError {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return &NotFoundError{Resource: resource, Names: sorted}
}

// ConflictError 表示唯一性/重复性不变量被破坏
// Items 枚举全部冲突项(名称、路径或 "fileID:labelID" 组合)
type ConflictError struct {
	Resource string // "label" / "file" / "assignment"
	Reason   string // 冲突原因描述
	Items    []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: [%s]", e.Reason, strings.Join(e.Items, ", "))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewConflict 创建冲突枚举错误
func NewConflict(resource, reason string, items []string) *ConflictError {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	return &ConflictError{Resource: resource, Reason: reason, Items: sorted}
}

// ForbiddenError 表示调用者不是标签创建者,无权执行变更
// LabelIDs 枚举全部越权的标签 id
type ForbiddenError struct {
	LabelIDs []uint64
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("没有权限操作标签: %v", sortedIDs(e.LabelIDs))
}

func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

// NewForbiddenLabels 创建越权标签枚举错误
func NewForbiddenLabels(labelIDs []uint64) *ForbiddenError {
	return &ForbiddenError{LabelIDs: sortedIDs(labelIDs)}
}

func resourceLabel(resource string) string {
	switch resource {
	case "file":
		return "文件"
	case "label":
		return "标签"
	case "user":
		return "用户"
	case "resource":
		return "存储资源"
	}
	return resource
}

func sortedIDs(ids []uint64) []uint64 {
	sorted := append([]uint64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}
