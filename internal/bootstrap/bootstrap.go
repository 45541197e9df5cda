// Package bootstrap wires config into a ready-to-init view: artifact,
// journal, metrics, contract monitor and the node dialer. The web server
// and the CLI share it.
package bootstrap

import (
	"context"
	"strings"
	"sync"
	"time"

	"doi-frontend/config"
	"doi-frontend/contracts"
	"doi-frontend/db"
	"doi-frontend/internal/chain"
	"doi-frontend/internal/contract"
	"doi-frontend/internal/monitor"
	"doi-frontend/internal/repo"
	"doi-frontend/internal/view"
	"doi-frontend/log"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

type App struct {
	Conf     *config.Conf
	View     *view.View
	Registry *prometheus.Registry
	Metrics  *chain.Metrics
	Monitor  *monitor.Monitor

	mu     sync.Mutex
	client *chain.Client
}

type Option func(*settings)

type settings struct {
	dial chain.Dialer
}

// WithDialer replaces the JSON-RPC dialer, e.g. with an in-process ledger.
func WithDialer(d chain.Dialer) Option {
	return func(s *settings) { s.dial = d }
}

func New(conf *config.Conf, opts ...Option) (*App, error) {
	var s settings
	for _, o := range opts {
		o(&s)
	}
	config.Config = conf

	artifact, err := loadArtifact(conf.Chain.ArtifactPath)
	if err != nil {
		return nil, err
	}
	journal, err := openJournal(conf.Journal)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app := &App{
		Conf:     conf,
		Registry: reg,
		Metrics:  chain.NewMetrics(reg),
	}

	dial := s.dial
	if dial == nil {
		dial = app.dialNode
	}
	vo := view.Options{
		VerboseErrors: conf.View.VerboseErrors,
		StrictBinding: conf.View.StrictBinding,
		ReceiptPoll:   time.Duration(conf.Chain.ReceiptPollIntervalMs) * time.Millisecond,
		Journal:       journal,
	}
	if addr, ok := conf.SignerAddress(); ok {
		vo.Signer = &addr
	}
	app.View = view.New(func(ctx context.Context) (chain.Ledger, error) {
		l, err := dial(ctx)
		if err != nil {
			return nil, err
		}
		return chain.Instrument(l, app.Metrics), nil
	}, artifact, vo)
	app.Monitor = monitor.New(app.View, reg, conf.Monitor.IntervalSeconds)
	return app, nil
}

func (a *App) dialNode(ctx context.Context) (chain.Ledger, error) {
	log.Logger.Info("connect ledger node", zap.String("url", a.Conf.Chain.NetUrl))
	c, err := chain.Dial(ctx, a.Conf.Chain.NetUrl)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.client = c
	a.mu.Unlock()
	log.Logger.Info("ledger node connected", zap.String("url", c.URL()))
	return c, nil
}

// Close stops the monitor and releases the node connection and the storage pools.
func (a *App) Close() {
	a.Monitor.Stop()

	a.mu.Lock()
	if a.client != nil {
		a.client.Close()
		a.client = nil
	}
	a.mu.Unlock()

	if db.RedisConn != nil {
		_ = db.RedisConn.Close()
	}
	if db.Mysql != nil {
		if sqlDB, err := db.Mysql.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func loadArtifact(path string) (*contract.Artifact, error) {
	if path == "" {
		return contract.ParseArtifact(contracts.Bundled())
	}
	return contract.LoadArtifact(path)
}

func openJournal(conf config.JournalConfig) (repo.Journal, error) {
	switch strings.ToLower(conf.Driver) {
	case "redis":
		if _, err := db.InitRedis(); err != nil {
			return nil, errors.Wrap(err, "journal")
		}
	case "mysql":
		if _, err := db.InitMysql(); err != nil {
			return nil, errors.Wrap(err, "journal")
		}
	}
	return repo.Open(conf)
}
