package errors

import "errors"

// ErrStateConflict 条件更新未命中：记录状态已被其他操作修改
var ErrStateConflict = errors.New("数据状态已变化，请刷新后重试")
