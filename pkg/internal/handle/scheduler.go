package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/spacedash/pkg/middleware"
)

// SchedulerJobs 返回所有调度器任务信息.
//
//	@Summary	任务列表
//	@Tags		调度器
//	@Produce	json
//	@Success	200	{object}	map[string][]scheduler.JobInfo
//	@Failure	503	{object}	map[string]string
//	@Router		/api/v1/scheduler/jobs [get]
func SchedulerJobs(c *gin.Context) {
	sched := middleware.GetScheduler(c)
	if sched == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler not running"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": sched.GetJobInfos()})
}

// SchedulerRunJob 立即执行一次指定任务，路径参数可以是任务名或任务 ID.
//
//	@Summary	立即执行任务
//	@Tags		调度器
//	@Produce	json
//	@Param		job	path		string	true	"任务名或任务 ID"
//	@Success	202	{object}	map[string]string
//	@Failure	404	{object}	map[string]string
//	@Router		/api/v1/scheduler/jobs/{job}/run [post]
func SchedulerRunJob(c *gin.Context) {
	sched := middleware.GetScheduler(c)
	if sched == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler not running"})
		return
	}

	name, ok := sched.Lookup(c.Param("job"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	if err := sched.RunNow(name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job": name, "message": "job triggered"})
}
