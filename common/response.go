package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"message"`
	Data interface{} `json:"data"`
}

func (r *Response) SetErrCode(errCode int) {
	r.Code = errCode
	r.Msg = ErrCodeMessage[errCode]
}

func (r *Response) SetErrMsg(errMsg string) {
	r.Msg = errMsg
}

func (r *Response) SetData(data interface{}) {
	r.Code = ErrCodeOK
	r.Data = data
}

func NewResponse(code int, message string, data interface{}) *Response {
	return &Response{Code: code, Msg: message, Data: data}
}

func result(c *gin.Context, response *Response) {
	c.JSON(http.StatusOK, response)
}

func Success(c *gin.Context, data interface{}) {
	result(c, NewResponse(ErrCodeOK, "", data))
}

func Failed(c *gin.Context, code int, message string) {
	if message == "" {
		message = ErrCodeMessage[code]
	}
	result(c, NewResponse(code, message, nil))
}

// FailedWithError 从error中提取错误码返回，非CodedError按内部错误处理
func FailedWithError(c *gin.Context, err error) {
	if code, ok := GetErrorCode(err); ok {
		Failed(c, code, err.Error())
		return
	}
	Failed(c, ErrCodeInternalError, err.Error())
}
