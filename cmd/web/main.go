package main

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"eventshare-web/pkg/client/api"
	"eventshare-web/pkg/common/config"
	pages "eventshare-web/pkg/core/app"
	"eventshare-web/pkg/core/gallery"
	"eventshare-web/pkg/core/transfer"
	"eventshare-web/pkg/core/transfer/repository/dao"
	"eventshare-web/pkg/core/transfer/repository/dao/impl"
	"eventshare-web/pkg/web/handler"
	"eventshare-web/pkg/web/router"
)

func main() {
	// 初始化配置
	cfg := config.Load()
	hlog.SetLevel(cfg.HlogLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := api.New(cfg.Backend)
	if err != nil {
		hlog.Fatalf("Failed to create backend client: %v", err)
	}

	// 初始化中转通道
	ch, err := openChannel(ctx, cfg)
	if err != nil {
		hlog.Fatalf("Failed to open transfer channel: %v", err)
	}
	defer ch.Close()
	store := transfer.NewStore(ch, cfg.Transfer.TTL)

	p := pages.NewPages(client, store, pages.Options{
		TransientDelay: cfg.Status.TransientDelay,
		IdleTTL:        cfg.Page.IdleTTL,
		Gallery: gallery.Options{
			MaxFileSize: cfg.Upload.MaxFileSize,
			PreviewSize: cfg.Upload.PreviewSize,
		},
	})
	go p.RunSweeper(ctx, time.Minute)

	// 创建Hertz实例
	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(int(cfg.Middleware.Security.MaxBodySize)),
	)
	h.OnShutdown = append(h.OnShutdown, func(context.Context) { cancel() })

	// 注册路由
	router.RegisterAPIs(ctx, h, cfg, router.Deps{
		Pages:  p,
		Photos: client,
		Checks: []handler.ComponentCheck{
			{Name: "backend", IsCore: true, Check: func(ctx context.Context) error {
				_, err := client.Categories(ctx)
				return err
			}},
			{Name: "transfer", IsCore: true, Check: store.Ping},
		},
	})

	hlog.Infof("eventshare-web listening on %s, backend %s, transfer driver %s",
		cfg.Server.Address, cfg.Backend.BaseURL, cfg.Transfer.Driver)
	// 启动服务
	h.Spin()
}

// openChannel 按配置选择 badger 或数据库作为中转通道
func openChannel(ctx context.Context, cfg *config.Config) (dao.Channel, error) {
	if cfg.Transfer.Driver == "badger" {
		bc, err := impl.OpenBadger(cfg.Transfer.Dir)
		if err != nil {
			return nil, err
		}
		return bc, nil
	}

	db, err := cfg.InitDB()
	if err != nil {
		return nil, err
	}
	gc, err := impl.NewGormChannel(db)
	if err != nil {
		return nil, err
	}
	go sweepExpired(ctx, gc, cfg.Transfer.TTL)
	return gc, nil
}

// 数据库中的过期条目不会自动消失，定期清理
func sweepExpired(ctx context.Context, gc *impl.GormChannel, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := gc.Sweep(ctx)
			if err != nil {
				hlog.Warnf("sweep transfer entries failed: %v", err)
				continue
			}
			if n > 0 {
				hlog.Debugf("swept %d expired transfer entries", n)
			}
		}
	}
}
