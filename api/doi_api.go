package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"doi-frontend/api/server"
	"doi-frontend/config"
	"doi-frontend/internal/bootstrap"
	"doi-frontend/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 页面服务入口：加载配置、初始化日志，启动 web 服务，链连接在后台初始化
func main() {
	confPath := flag.String("config", os.Getenv("DOI_CONFIG"), "path to the toml config file")
	flag.Parse()

	// 1. 配置
	conf, err := config.Load(*confPath)
	if err != nil {
		panic(err)
	}

	// 2. 日志
	logger, err := log.Init(conf.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// 3. artifact、journal、metrics
	app, err := bootstrap.New(conf)
	if err != nil {
		logger.Fatal("bootstrap", zap.Error(err))
	}
	defer app.Close()

	// 4. web 服务，收到退出信号后优雅关闭
	gin.SetMode(gin.ReleaseMode)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Run(ctx, app); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
