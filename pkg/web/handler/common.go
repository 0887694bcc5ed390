package handler

import (
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// pathID 解析路径中的数字 ID
func pathID(c *app.RequestContext) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, consts.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// seeOther 表单提交后统一 303 跳回页面
func seeOther(c *app.RequestContext, location string) {
	c.Redirect(consts.StatusSeeOther, []byte(location))
}

// 统一错误响应方法
func respondError(c *app.RequestContext, code int, msg string) {
	c.AbortWithStatusJSON(code, utils.H{
		"error":   msg,
		"code":    code,
		"success": false,
	})
}
