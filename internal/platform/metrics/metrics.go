package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Engine counts clinical events and delivery outcomes. A nil *Engine is a
// valid no-op recorder.
type Engine struct {
	once sync.Once

	sessionsStarted  prometheus.Counter
	sessionsFinished *prometheus.CounterVec
	events           *prometheus.CounterVec
	cues             *prometheus.CounterVec
	rejected         *prometheus.CounterVec
	sinkFailures     prometheus.Counter
}

func New(reg prometheus.Registerer) *Engine {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	e := &Engine{}
	e.once.Do(func() { e.init(reg) })
	return e
}

func (e *Engine) init(reg prometheus.Registerer) {
	e.sessionsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "siav",
		Subsystem: "session",
		Name:      "started_total",
		Help:      "Count of CPR sessions started",
	})
	e.sessionsFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "siav",
		Subsystem: "session",
		Name:      "finished_total",
		Help:      "Count of CPR sessions finished by outcome",
	}, []string{"outcome"})
	e.events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "siav",
		Subsystem: "protocol",
		Name:      "events_total",
		Help:      "Timeline events recorded by kind",
	}, []string{"kind"})
	e.cues = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "siav",
		Subsystem: "protocol",
		Name:      "cues_total",
		Help:      "Notification cues emitted",
	}, []string{"cue"})
	e.rejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "siav",
		Subsystem: "protocol",
		Name:      "rejected_actions_total",
		Help:      "Clinical actions refused by the engine",
	}, []string{"action"})
	e.sinkFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "siav",
		Subsystem: "persistence",
		Name:      "sink_failures_total",
		Help:      "Session logs the remote sink rejected and that were queued",
	})

	collectors := []prometheus.Collector{e.sessionsStarted, e.sessionsFinished, e.events, e.cues, e.rejected, e.sinkFailures}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				continue
			}
			switch v := are.ExistingCollector.(type) {
			case prometheus.Counter:
				if collector == e.sessionsStarted {
					e.sessionsStarted = v
				} else if collector == e.sinkFailures {
					e.sinkFailures = v
				}
			case *prometheus.CounterVec:
				switch collector {
				case e.sessionsFinished:
					e.sessionsFinished = v
				case e.events:
					e.events = v
				case e.cues:
					e.cues = v
				case e.rejected:
					e.rejected = v
				}
			}
		}
	}
}

func (e *Engine) SessionStarted() {
	if e == nil {
		return
	}
	e.sessionsStarted.Inc()
}

func (e *Engine) SessionFinished(rosc bool) {
	if e == nil {
		return
	}
	outcome := "no_rosc"
	if rosc {
		outcome = "rosc"
	}
	e.sessionsFinished.WithLabelValues(outcome).Inc()
}

func (e *Engine) Event(kind string) {
	if e == nil {
		return
	}
	e.events.WithLabelValues(kind).Inc()
}

func (e *Engine) Cue(cue string) {
	if e == nil {
		return
	}
	e.cues.WithLabelValues(cue).Inc()
}

func (e *Engine) Rejected(action string) {
	if e == nil {
		return
	}
	e.rejected.WithLabelValues(action).Inc()
}

func (e *Engine) SinkFailure() {
	if e == nil {
		return
	}
	e.sinkFailures.Inc()
}
