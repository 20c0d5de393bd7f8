package feed

import (
	"encoding/json"
	"log"

	"Go2FlowLens/internal/config"
	"Go2FlowLens/internal/model"

	"github.com/nats-io/nats.go"
)

// AlertHandler processes one alert received from a worker.
type AlertHandler func(model.AlertRecord)

// BlockingHandler processes one blocking record received from a worker.
type BlockingHandler func(model.BlockingRecord)

// Collector subscribes to the worker result subjects and hands decoded
// records to the configured handlers. Malformed messages are logged and
// skipped; one bad worker must not stall collection.
type Collector struct {
	nc              *nats.Conn
	subs            []*nats.Subscription
	alertSubject    string
	blockingSubject string
}

// NewCollector connects to the NATS server from the feed configuration.
func NewCollector(cfg config.FeedConfig) (*Collector, error) {
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.NATSURL)
	return &Collector{
		nc:              nc,
		alertSubject:    cfg.AlertSubject,
		blockingSubject: cfg.BlockingSubject,
	}, nil
}

// Start subscribes to both result subjects.
func (c *Collector) Start(onAlert AlertHandler, onBlocking BlockingHandler) error {
	alertSub, err := c.nc.Subscribe(c.alertSubject, func(msg *nats.Msg) {
		var alert model.AlertRecord
		if err := json.Unmarshal(msg.Data, &alert); err != nil {
			log.Printf("Error unmarshalling alert: %v", err)
			return
		}
		onAlert(alert)
	})
	if err != nil {
		return err
	}
	c.subs = append(c.subs, alertSub)

	blockingSub, err := c.nc.Subscribe(c.blockingSubject, func(msg *nats.Msg) {
		var rec model.BlockingRecord
		if err := json.Unmarshal(msg.Data, &rec); err != nil {
			log.Printf("Error unmarshalling blocking record: %v", err)
			return
		}
		onBlocking(rec)
	})
	if err != nil {
		return err
	}
	c.subs = append(c.subs, blockingSub)

	log.Printf("Subscribed to '%s' and '%s'. Waiting for worker results...",
		c.alertSubject, c.blockingSubject)
	return nil
}

// Close unsubscribes and closes the NATS connection.
func (c *Collector) Close() {
	for _, sub := range c.subs {
		sub.Unsubscribe()
	}
	if c.nc != nil {
		c.nc.Close()
		log.Println("NATS connection closed.")
	}
}
