package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/fuzzycharge/core/metrics"
	"github.com/kilianp07/fuzzycharge/infra/logger"
)

// RunPublisher publishes simulation runs to an MQTT broker. Summaries go to
// <topic>/<run_id>, trajectories to <topic>/<run_id>/trajectory.
type RunPublisher struct {
	cli        pahoClient
	topic      string
	qos        byte
	retain     bool
	trajectory bool
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

type runSummary struct {
	RunID       string  `json:"run_id"`
	Outcome     string  `json:"outcome"`
	Seconds     int     `json:"seconds"`
	SoCInit     float64 `json:"soc_init"`
	SoCTarget   float64 `json:"soc_target"`
	FinalSoC    float64 `json:"final_soc"`
	Temperature float64 `json:"temperature"`
	Utilization float64 `json:"utilization"`
	EnergyJ     float64 `json:"energy_j"`
	Error       string  `json:"error,omitempty"`
	Timestamp   int64   `json:"timestamp"`
}

type trajectoryPoint struct {
	Second   int     `json:"t"`
	SoC      float64 `json:"soc"`
	VoltageV float64 `json:"u"`
	CurrentA float64 `json:"i"`
}

// NewRunPublisher connects to the broker described by cfg.
func NewRunPublisher(cfg Config) (*RunPublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}
	log.Infof("connected to %s as %s", cfg.Broker, cfg.ClientID)
	return &RunPublisher{
		cli:        c,
		topic:      cfg.Topic,
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		trajectory: cfg.PublishTrajectory,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
	}, nil
}

// RecordRun publishes the run summary.
func (p *RunPublisher) RecordRun(ev metrics.RunEvent) error {
	payload, err := json.Marshal(runSummary{
		RunID:       ev.RunID,
		Outcome:     string(ev.Outcome),
		Seconds:     ev.Steps,
		SoCInit:     ev.SoCInit,
		SoCTarget:   ev.SoCTarget,
		FinalSoC:    ev.FinalSoC,
		Temperature: ev.Temperature,
		Utilization: ev.Utilization,
		EnergyJ:     ev.EnergyJ,
		Error:       ev.Error,
		Timestamp:   ev.Time.UnixMilli(),
	})
	if err != nil {
		return err
	}
	return p.publish(p.topic+"/"+ev.RunID, payload)
}

// RecordTrajectory publishes the samples as a single JSON array when
// trajectory publishing is enabled.
func (p *RunPublisher) RecordTrajectory(runID string, _ time.Time, samples []metrics.StepSample) error {
	if !p.trajectory {
		return nil
	}
	pts := make([]trajectoryPoint, len(samples))
	for i, s := range samples {
		pts[i] = trajectoryPoint{Second: s.Second, SoC: s.SoC, VoltageV: s.VoltageV, CurrentA: s.CurrentA}
	}
	payload, err := json.Marshal(pts)
	if err != nil {
		return err
	}
	return p.publish(p.topic+"/"+runID+"/trajectory", payload)
}

func (p *RunPublisher) publish(topic string, payload []byte) error {
	var err error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		if err = token.Error(); err == nil {
			p.log.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		p.log.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, err)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return fmt.Errorf("publish %s: %w", topic, err)
}

// Close disconnects from the broker.
func (p *RunPublisher) Close() error {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
	return nil
}
