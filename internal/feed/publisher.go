package feed

import (
	"encoding/json"
	"fmt"
	"log"

	"Go2FlowLens/internal/config"
	"Go2FlowLens/internal/model"

	"github.com/nats-io/nats.go"
)

// Publisher streams partitioned flow records to the worker ingest subjects,
// one subject per partition so each worker subscribes only to its share:
// <prefix>.1 through <prefix>.N.
type Publisher struct {
	nc     *nats.Conn
	prefix string
}

// NewPublisher connects to the NATS server from the feed configuration.
func NewPublisher(cfg config.FeedConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.NATSURL)
	return &Publisher{nc: nc, prefix: cfg.SubjectPrefix}, nil
}

// PublishPartition sends every record of one partition to its subject.
// i is the 0-based partition index; subjects are numbered from 1 like the
// partition files.
func (p *Publisher) PublishPartition(i int, records []model.FlowRecord) error {
	subject := fmt.Sprintf("%s.%d", p.prefix, i+1)
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal flow record: %w", err)
		}
		if err := p.nc.Publish(subject, data); err != nil {
			return fmt.Errorf("failed to publish to '%s': %w", subject, err)
		}
	}
	log.Printf("Published %d records to '%s'", len(records), subject)
	return nil
}

// PublishAll streams all partitions in order and flushes the connection.
func (p *Publisher) PublishAll(parts [][]model.FlowRecord) error {
	for i, records := range parts {
		if err := p.PublishPartition(i, records); err != nil {
			return err
		}
	}
	return p.nc.Flush()
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
}
