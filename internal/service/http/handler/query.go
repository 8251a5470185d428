package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reusedev/design-hub/internal/modules/dispatch"
	"github.com/reusedev/design-hub/internal/modules/logs"
	"github.com/reusedev/design-hub/internal/service/http/handler/request"
	"github.com/reusedev/design-hub/internal/service/http/middleware"
	"github.com/reusedev/design-hub/internal/service/http/response"
	"gorm.io/gorm"
)

// TaskQuery 查询单个任务及其全部 Result，附带 all_failed 计算字段
func TaskQuery(c *gin.Context) {
	form := request.TaskQuery{}
	if err := c.ShouldBindQuery(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	uid := middleware.CurrentUid(c)
	task, err := store.TaskWithResults(form.TaskId, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, response.ParamError)
			return
		}
		logs.Logger.Err(err).Int64("task_id", form.TaskId).Msg("query task")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(gin.H{
		"task":       task.DeepCopy(),
		"all_failed": task.AllFailed(dispatch.RetryBudget),
	}))
}

// History 生成记录分页，type 按管线过滤，0 为全部
func History(c *gin.Context) {
	form := request.History{}
	if err := c.ShouldBindQuery(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	uid := middleware.CurrentUid(c)
	total, records, err := store.ResultHistory(uid, form.Page, form.PageSize, form.Type)
	if err != nil {
		logs.Logger.Err(err).Int64("uid", uid).Msg("query history")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(gin.H{
		"total":   total,
		"records": records,
	}))
}

// StatusRefresh 批量轮询 Result 状态，前端等待生成完成时调用
func StatusRefresh(c *gin.Context) {
	form := request.StatusRefresh{}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	uid := middleware.CurrentUid(c)
	records, err := store.ResultsByIds(uid, form.Ids)
	if err != nil {
		logs.Logger.Err(err).Int64("uid", uid).Msg("refresh result status")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(records))
}

// Detail 单条 Result 详情
func Detail(c *gin.Context) {
	form := request.Detail{}
	if err := c.ShouldBindQuery(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	uid := middleware.CurrentUid(c)
	records, err := store.ResultsByIds(uid, []int64{form.GenImgId})
	if err != nil {
		logs.Logger.Err(err).Int64("gen_img_id", form.GenImgId).Msg("query result detail")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, response.ParamError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(records[0]))
}
