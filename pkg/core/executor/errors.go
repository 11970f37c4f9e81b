package executor

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument 参数非法（如负数的任务数量）
var ErrInvalidArgument = errors.New("invalid argument")

// TaskPanicError 任务函数panic被恢复后包装成的错误
type TaskPanicError struct {
	JobID string
	Value any
	Stack []byte
}

func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("job %s panicked: %v", e.JobID, e.Value)
}

func invalidCount(op string, count int) error {
	return fmt.Errorf("%w: %s count must not be negative, got %d", ErrInvalidArgument, op, count)
}
