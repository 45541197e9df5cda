package server

import (
	"context"
	"net/http"
	"time"

	"doi-frontend/api/routes"
	"doi-frontend/internal/bootstrap"
	"doi-frontend/log"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// NewEngine 创建 gin 引擎并注册所有路由
func NewEngine(app *bootstrap.App) *gin.Engine {
	e := gin.New()
	e.Use(gin.Recovery())
	return routes.InitRoute(e, app.View, app.Registry, app.Conf.Origins())
}

// Run 后台初始化链连接，同时开始监听端口；页面在初始化完成前显示加载中。
// ctx 结束后优雅退出
func Run(ctx context.Context, app *bootstrap.App) error {
	go func() {
		if err := app.View.Init(ctx); err != nil {
			log.Logger.Error("ledger client init failed", zap.Error(err))
		}
	}()
	if err := app.Monitor.Start(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + app.Conf.Env.Port,
		Handler:           NewEngine(app),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Logger.Info("http server listening",
			zap.String("addr", srv.Addr),
			zap.String("url", app.Conf.BaseUrl()),
			zap.String("version", app.Conf.Env.Version))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	log.Logger.Info("http server shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return errors.Wrap(err, "http shutdown")
	}
	return nil
}
