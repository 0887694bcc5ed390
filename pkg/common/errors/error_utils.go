package errors

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// region 错误处理工具函数

// WrapGormError 将底层数据库错误转变为业务可识别错误
// 参数说明：
//   - rawErr: 原始GORM错误
//
// 返回值：
//   - error: 标准化错误类型
func WrapGormError(rawErr error) error {
	if rawErr == nil {
		return nil
	}

	// 处理预定义的GORM错误
	switch {
	case errors.Is(rawErr, gorm.ErrRecordNotFound):
		return ErrEntryNotFound
	case errors.Is(rawErr, gorm.ErrDuplicatedKey):
		return ErrDuplicateEntry
	}

	// 处理MySQL驱动错误
	var mysqlErr *mysql.MySQLError
	if errors.As(rawErr, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062: // 唯一性约束冲突
			return ErrDuplicateEntry
		case 1045, 1049, 1146: // 数据库连接、表不存在等错误
			return fmt.Errorf("%w: %s", ErrStoreInternal, mysqlErr.Message)
		}
	}

	// 兜底处理：附加原始错误信息
	return fmt.Errorf("%w: %v", ErrStoreInternal, rawErr)
}

// IsDuplicateError 判断是否为重复记录错误
func IsDuplicateError(err error) bool {
	return errors.Is(err, rawErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsNotFound 判断中转数据是否不存在（包括已过期）
func IsNotFound(err error) bool {
	return errors.Is(err, rawErrEntryNotFound)
}
