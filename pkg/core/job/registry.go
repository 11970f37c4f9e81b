package job

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Registry 存活Job集合，按加入顺序迭代
// 非并发安全，由持有者（执行器）负责加锁
type Registry struct {
	jobs *linkedhashmap.Map
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{jobs: linkedhashmap.New()}
}

// Add 加入Job，相同ID会覆盖旧值但保留原位置
func (r *Registry) Add(j *Job) {
	if j == nil {
		return
	}
	r.jobs.Put(j.ID, j)
}

// Remove 移除Job，返回是否存在
func (r *Registry) Remove(id string) bool {
	if _, found := r.jobs.Get(id); !found {
		return false
	}
	r.jobs.Remove(id)
	return true
}

// Len 当前Job数量
func (r *Registry) Len() int {
	return r.jobs.Size()
}

// Empty 是否为空
func (r *Registry) Empty() bool {
	return r.jobs.Empty()
}

// Snapshot 按注册顺序返回当前所有Job的副本
func (r *Registry) Snapshot() []*Job {
	return r.Select(-1, nil)
}

// Select 按注册顺序挑选满足match的Job，最多limit个
// limit<0 表示不限数量；match为nil表示全部匹配
func (r *Registry) Select(limit int, match func(*Job) bool) []*Job {
	if limit == 0 {
		return nil
	}
	selected := make([]*Job, 0, r.jobs.Size())
	it := r.jobs.Iterator()
	for it.Next() {
		j := it.Value().(*Job)
		if match != nil && !match(j) {
			continue
		}
		selected = append(selected, j)
		if limit > 0 && len(selected) >= limit {
			break
		}
	}
	return selected
}
