package common

import "github.com/gin-gonic/gin"

// JSON response envelope shared by all handlers.

func OK(c *gin.Context, data any) {
	JSON(c, 200, data)
}

func JSON(c *gin.Context, httpStatus int, data any) {
	c.JSON(httpStatus, gin.H{
		"code":    0,
		"message": "ok",
		"data":    data,
	})
}

func Fail(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"data":    nil,
	})
}
