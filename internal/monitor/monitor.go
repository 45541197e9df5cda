// Package monitor periodically probes the deployed contract and exports the
// object count as Prometheus gauges. It reads the ledger directly and never
// touches the page state.
package monitor

import (
	"context"
	"math/big"
	"time"

	"doi-frontend/internal/view"
	"doi-frontend/log"

	"github.com/jasonlvhit/gocron"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const probeTimeout = 10 * time.Second

type Monitor struct {
	view     *view.View
	interval uint64

	Objects prometheus.Gauge
	Up      prometheus.Gauge

	scheduler *gocron.Scheduler
	stopped   chan bool
}

func New(v *view.View, reg prometheus.Registerer, intervalSeconds uint64) *Monitor {
	m := &Monitor{
		view:     v,
		interval: intervalSeconds,
		Objects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "doi",
			Subsystem: "contract",
			Name:      "objects",
			Help:      "Object count reported by getObjectCount at the last probe.",
		}),
		Up: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "doi",
			Subsystem: "contract",
			Name:      "up",
			Help:      "1 if the last probe of the contract succeeded.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Objects, m.Up)
	}
	return m
}

// Probe 读一次 getObjectCount；初始化完成之前什么都不做
func (m *Monitor) Probe() {
	b := m.view.Contract()
	if b == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	count, err := b.ObjectCount(ctx)
	if err != nil {
		m.Up.Set(0)
		log.Logger.Warn("probe object count", zap.Error(err))
		return
	}
	n, _ := new(big.Float).SetInt(count).Float64()
	m.Up.Set(1)
	m.Objects.Set(n)
}

// Start 按配置的间隔启动定时任务，间隔为 0 时直接返回
func (m *Monitor) Start() error {
	if m.interval == 0 || m.stopped != nil {
		return nil
	}
	s := gocron.NewScheduler()
	s.ChangeLoc(time.UTC)
	if err := s.Every(m.interval).Seconds().From(gocron.NextTick()).Do(m.Probe); err != nil {
		return errors.Wrap(err, "schedule probe")
	}
	m.scheduler = s
	m.stopped = s.Start()
	log.Logger.Info("contract monitor started", zap.Uint64("interval_seconds", m.interval))
	return nil
}

func (m *Monitor) Stop() {
	if m.stopped == nil {
		return
	}
	m.stopped <- true
	m.scheduler.Clear()
	m.stopped = nil
}
