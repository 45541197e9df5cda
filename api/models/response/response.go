package response

import (
	"net/http"

	"doi-frontend/api/common/statecode"
	"doi-frontend/internal/repo"
	"doi-frontend/internal/view"

	"github.com/gin-gonic/gin"
)

type Gin struct {
	Res *gin.Context
}

type Page struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// Response 统一的 json 返回结构
func (g *Gin) Response(ctx *gin.Context, code int, data interface{}) {
	ctx.JSON(http.StatusOK, Page{
		Code: code,
		Msg:  statecode.GetMsg(code),
		Data: data,
	})
}

type Registered struct {
	Id    uint64     `json:"id"`
	State view.State `json:"state"`
}

type Retrieved struct {
	Id    uint64     `json:"id"`
	Data  string     `json:"data"`
	State view.State `json:"state"`
}

// Index 页面模板数据
type Index struct {
	Title  string
	State  view.State
	Recent []repo.Registration
}
