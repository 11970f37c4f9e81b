package job

import "context"

// context key类型，用于类型安全的context.Value访问
type contextKey string

const (
	// JobIDKey Job ID在context中的key
	JobIDKey contextKey = "job.id"
	// BatchIDKey 批次ID在context中的key
	BatchIDKey contextKey = "job.batch.id"
)

// WithJobID 将Job ID添加到context中（对外导出）
func WithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, JobIDKey, jobID)
}

// GetJobID 从context中获取Job ID（对外导出）
func GetJobID(ctx context.Context) string {
	if id, ok := ctx.Value(JobIDKey).(string); ok {
		return id
	}
	return ""
}

// WithBatchID 将批次ID添加到context中（对外导出）
func WithBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, BatchIDKey, batchID)
}

// GetBatchID 从context中获取批次ID（对外导出）
func GetBatchID(ctx context.Context) string {
	if id, ok := ctx.Value(BatchIDKey).(string); ok {
		return id
	}
	return ""
}
