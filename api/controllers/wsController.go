package controllers

import (
	"net/http"
	"strings"
	"time"

	"doi-frontend/api/middlewares"
	"doi-frontend/api/models/ws"
	"doi-frontend/internal/view"
	"doi-frontend/log"
	"doi-frontend/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WsController struct {
	View *view.View
	// 允许的来源，同源请求总是允许
	Origins []string
}

func (c *WsController) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 5 * time.Second,
		CheckOrigin: func(r *http.Request) bool {
			return middlewares.OriginAllowed(r, c.Origins)
		},
	}
}

// State 升级为 websocket，之后每次状态变化都推送一次完整状态
func (c *WsController) State(ctx *gin.Context) {
	// 单个连接出问题不能拖垮进程
	defer func() {
		if r := recover(); r != nil {
			log.Logger.Sugar().Error("websocket state recover ", r)
		}
	}()
	conn, err := c.upgrader().Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Logger.Sugar().Error("websocket request err:", err)
		return
	}

	// 连接 id: ip 加随机串
	id := utils.GetRandomString(32)
	if ip := ctx.RemoteIP(); ip != "" {
		id = strings.ReplaceAll(ip, ".", "_") + "_" + utils.GetRandomString(23)
	}
	server := &ws.Server{
		Id:       id,
		Socket:   conn,
		Send:     make(chan []byte, 8),
		LastTime: time.Now().Unix(),
	}
	go server.ReadAndWrite(c.View)
}
