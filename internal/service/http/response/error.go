package response

import "github.com/gin-gonic/gin"

var (
	ParamError = gin.H{"code": 10001, "message": "param error"}

	InternalError = gin.H{"code": 10002, "message": "internal error"}

	AuthError = gin.H{"code": 10003, "message": "user not login"}

	ConcurrencyLimited = gin.H{"code": 430, "message": "concurrency limit reached, please try again later"}
)

func RateLimited(resetIn int) gin.H {
	return gin.H{"code": 429, "message": "too many requests, please try again later", "reset_in": resetIn}
}

func SuccessWithData(data interface{}) gin.H {
	return gin.H{"code": 0, "message": "success", "data": data}
}
