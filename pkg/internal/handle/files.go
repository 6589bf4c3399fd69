package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/spacedash/pkg/configs"
	"github.com/yeisme/spacedash/pkg/internal/service"
	"github.com/yeisme/spacedash/pkg/internal/types"
)

// GetRecentFiles 最近上传的文件.
//
//	@Summary	最近文件
//	@Tags		文件
//	@Produce	json
//	@Param		limit	query		int	false	"数量，1-100，默认 usage.recent_limit"
//	@Success	200		{object}	types.RecentFilesResponse
//	@Failure	400		{object}	map[string]string
//	@Failure	503		{object}	map[string]string
//	@Router		/api/v1/files/recent [get]
func GetRecentFiles(c *gin.Context) {
	var q types.RecentFilesQuery
	if !bindQuery(c, &q) {
		return
	}

	if q.Limit == 0 {
		q.Limit = configs.GetConfig().Usage.RecentLimit
	}

	doUsage(c, "recent files failed", func(user string) (any, error) {
		files, err := service.NewFileService(c.Request.Context()).Recent(c.Request.Context(), user, q.Limit)
		if err != nil {
			return nil, err
		}

		return types.RecentFilesResponse{Files: files, Count: len(files)}, nil
	})
}

// RegisterFile 登记文件元数据.
//
//	@Summary	登记文件
//	@Tags		文件
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.RegisterFileRequest	true	"文件元数据"
//	@Success	201		{object}	types.RecentFile
//	@Failure	400		{object}	map[string]string
//	@Failure	409		{object}	map[string]string
//	@Failure	422		{object}	map[string]string
//	@Router		/api/v1/files [post]
func RegisterFile(c *gin.Context) {
	user, err := checkUser(c)
	if err != nil {
		writeError(c, err, "")
		return
	}

	var req types.RegisterFileRequest
	if !bindJSON(c, &req) {
		return
	}

	file, err := service.NewFileService(c.Request.Context()).Register(c.Request.Context(), user, req)
	if err != nil {
		writeError(c, err, "register file failed")
		return
	}

	c.JSON(http.StatusCreated, file)
}

// DeleteFile 删除文件元数据.
//
//	@Summary	删除文件
//	@Tags		文件
//	@Produce	json
//	@Param		id	path		string	true	"文件 ID"
//	@Success	200	{object}	map[string]string
//	@Failure	404	{object}	map[string]string
//	@Router		/api/v1/files/{id} [delete]
func DeleteFile(c *gin.Context) {
	id := c.Param("id")

	doUsage(c, "delete file failed", func(user string) (any, error) {
		if err := service.NewFileService(c.Request.Context()).Delete(c.Request.Context(), user, id); err != nil {
			return nil, err
		}

		return gin.H{"id": id, "deleted": true}, nil
	})
}
