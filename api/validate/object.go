package validate

import (
	"errors"
	"io"

	"doi-frontend/api/common/statecode"
	"doi-frontend/api/models/request"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Object struct{}

func NewObject() *Object {
	return &Object{}
}

// Register 校验注册请求，表单和 json 都支持
func (v *Object) Register(c *gin.Context, req *request.RegisterObject) int {
	err := c.ShouldBind(req)
	if err == io.EOF {
		return statecode.ParameterEmptyErr // json 请求体不能为空
	} else if err != nil {
		return statecode.CommonErrServerErr
	}
	return statecode.CommonSuccess
}

// Lookup 校验查询请求，id 必须是 >= 1 的整数，校验不通过时不会发起任何链上调用
func (v *Object) Lookup(c *gin.Context, req *request.LookupObject) int {
	err := c.ShouldBind(req)
	if err == io.EOF {
		return statecode.ParameterEmptyErr
	} else if err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			for _, e := range errs {
				if e.Field() == "Id" {
					return statecode.ObjectIdErr
				}
			}
			return statecode.CommonErrServerErr
		}
		// 负数、小数、非数字在绑定阶段就会失败
		return statecode.ObjectIdErr
	}
	return statecode.CommonSuccess
}
