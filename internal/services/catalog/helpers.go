package catalog

import (
	"fmt"

	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
)

// validateIDs 校验批量请求里的 id:必须非零且互不重复
func validateIDs(ids []uint64) error {
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			return fmt.Errorf("id 不能为空: %w", xerr.ErrDuplicateID)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("id %d 重复出现: %w", id, xerr.ErrDuplicateID)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// duplicateStrings 返回切片里重复出现的值,每个只报一次
func duplicateStrings(values []string) []string {
	seen := make(map[string]int, len(values))
	var dups []string
	for _, v := range values {
		seen[v]++
		if seen[v] == 2 {
			dups = append(dups, v)
		}
	}
	return dups
}

// missingIDs 求请求 id 与查到 id 的差集
func missingIDs(requested []uint64, found map[uint64]struct{}) []uint64 {
	var missing []uint64
	for _, id := range requested {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
