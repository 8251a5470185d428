package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/reusedev/design-hub/config"
	"github.com/reusedev/design-hub/internal/components/mysql"
	"github.com/reusedev/design-hub/internal/consts"
	"github.com/reusedev/design-hub/internal/modules/admission"
	"github.com/reusedev/design-hub/internal/modules/dao"
	"github.com/reusedev/design-hub/internal/modules/dispatch"
	"github.com/reusedev/design-hub/internal/modules/logs"
	"github.com/reusedev/design-hub/internal/modules/model"
	"github.com/reusedev/design-hub/internal/modules/provider"
	"github.com/reusedev/design-hub/internal/modules/queue"
	"github.com/reusedev/design-hub/internal/modules/storage"
	"github.com/reusedev/design-hub/internal/modules/storage/ali"
	"github.com/reusedev/design-hub/internal/modules/storage/local"
	"github.com/reusedev/design-hub/internal/modules/sweeper"
	"github.com/reusedev/design-hub/internal/service/http"
	"github.com/reusedev/design-hub/internal/service/http/handler"
	"github.com/reusedev/design-hub/tools"
)

var (
	httpPort   string
	configPath string
)

func init() {
	flag.StringVar(&httpPort, "http-port", ":80", "listen http port")
	flag.StringVar(&configPath, "config", "config.yml", "config file path")
}

func main() {
	flag.Parse()
	config.Init(configPath)
	logs.InitLogger()

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}

	mysql.CreateDataBase(config.GConfig.MySQL)
	mysql.InitMySQL(config.GConfig.MySQL)
	mysql.DB.AutoMigrate(&model.GenTask{}, &model.GenResult{}, &model.Subscribe{})

	relocator := buildRelocator()

	bindings := provider.DefaultBindings(config.GConfig)
	if err := bindings.Verify(); err != nil {
		panic(err)
	}

	pool := queue.NewPool(config.GConfig.Dispatch.QueueSize, config.GConfig.Dispatch.Workers)
	pool.Start(ctx, wg)

	store := dao.NewGormStore(mysql.DB)
	dispatcher := dispatch.New(store, bindings, relocator, pool, config.GConfig.Generation.EstimatedSeconds)
	admitter := admission.NewController(store)
	handler.Init(store, admitter, dispatcher)

	if config.GConfig.Sweep.Enabled {
		s := sweeper.New(store, dispatcher, time.Duration(config.GConfig.Sweep.IntervalSeconds)*time.Second)
		s.Run(ctx, wg)
	}

	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	go func(ch chan os.Signal) {
		<-ch
		cancel()
		wg.Wait()
		os.Exit(0)
	}(osSignal)
	http.Serve(httpPort)
}

func buildRelocator() storage.Relocator {
	if !config.GConfig.StorageEnabled {
		return storage.Noop{}
	}
	switch consts.StorageSupplier(config.GConfig.StorageSupplier) {
	case consts.AliOss:
		urlExpires := tools.PanicOnError(time.ParseDuration(config.GConfig.URLExpires))
		ali.InitOSS(config.GConfig.AliOss, urlExpires)
		return ali.OssClient
	case consts.Local:
		return local.New("./data/images", "/v1/img/files")
	default:
		return storage.Noop{}
	}
}
