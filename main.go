package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chaos-io/visionkit/cache"
	"github.com/chaos-io/visionkit/config"
	"github.com/chaos-io/visionkit/grading"
	"github.com/chaos-io/visionkit/handler"
	"github.com/chaos-io/visionkit/health"
	"github.com/chaos-io/visionkit/inference"
	"github.com/chaos-io/visionkit/middleware"
	"github.com/chaos-io/visionkit/rembg"
	"github.com/chaos-io/visionkit/similarity"
	"github.com/chaos-io/visionkit/util"
	nhttp "github.com/chaos-io/visionkit/util/http"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	input := flag.String("input", "", "待处理的图片路径或 URL，设置后只处理这一张并退出")
	output := flag.String("output", "output.png", "去背景结果的输出路径")
	flag.Parse()

	cfg := config.LoadOrDefault(*configPath)

	if err := util.InitLogger(cfg.Server.Mode); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer util.Sync()

	remote := inference.NewRemote(cfg.Inference.BaseURL, cfg.Inference.InputSize,
		nhttp.NewHTTPClientWithTimeout(cfg.Inference.Timeout))
	remover := rembg.NewRemover(
		inference.Serialize(remote, cfg.Inference.MaxConcurrent),
		rembg.WithWorkers(cfg.Batch.Workers),
	)

	if *input != "" {
		if err := removeOne(remover, *input, *output); err != nil {
			util.Logger.Fatal("failed to remove background", zap.String("input", *input), zap.Error(err))
		}
		return
	}

	serve(cfg, remote, remover)
}

// removeOne 处理单张本地或远程图片并写出 PNG
func removeOne(remover *rembg.Remover, input, output string) error {
	defer util.Trace("remove background")()

	var (
		img image.Image
		err error
	)
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		var data []byte
		if data, err = util.DownloadImage(input); err == nil {
			img, _, err = util.DecodeImage(data)
		}
	} else {
		img, err = util.OpenImage(input)
	}
	if err != nil {
		return fmt.Errorf("load image: %w", err)
	}

	out, g, err := remover.RemoveImage(context.Background(), img)
	if err != nil {
		return err
	}

	encoded, err := rembg.EncodePNG(out)
	if err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	if err := os.WriteFile(output, encoded, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	util.Logger.Info("done",
		zap.String("output", output),
		zap.Int("width", g.OriginalWidth),
		zap.Int("height", g.OriginalHeight))
	return nil
}

func serve(cfg *config.Config, remote *inference.Remote, remover *rembg.Remover) {
	util.Logger.Info("starting visionkit server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
		zap.String("inference", cfg.Inference.BaseURL))

	var resultCache handler.ResultCache
	if cfg.Redis.Enabled {
		rc := cache.NewResultCache(&cfg.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rc.Ping(ctx)
		cancel()
		if err != nil {
			util.Logger.Warn("redis connection failed, cache disabled", zap.Error(err))
			_ = rc.Close()
		} else {
			util.Logger.Info("redis connected successfully")
			resultCache = rc
			defer rc.Close()
		}
	}

	monitor, err := health.NewMonitor(remote, cfg.Health.Schedule)
	if err != nil {
		util.Logger.Fatal("invalid health schedule", zap.String("schedule", cfg.Health.Schedule), zap.Error(err))
	}
	monitor.Start()
	defer monitor.Stop()

	vision := handler.NewVisionHandler(
		remover,
		similarity.NewComparer(remote),
		grading.NewGrader(remote, remote, cfg.Grading.Threshold),
		resultCache,
	)
	system := handler.NewSystemHandler(handler.BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
	}, monitor)

	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.BodyLimit(cfg.Server.MaxUploadSize))
	r.MaxMultipartMemory = cfg.Server.MaxUploadSize

	system.Register(r)
	vision.Register(r)
	r.NoRoute(handler.NotFound)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		util.Logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			util.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	util.Logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Error("server forced to shutdown", zap.Error(err))
	}
}
