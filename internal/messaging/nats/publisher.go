package nats

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
)

// SubjectNotificationCreated carries one event per notification the sweep
// generates.
const SubjectNotificationCreated = "notifications.created"

// Publisher is a thin fire-and-forget JSON publisher. A nil Publisher is
// valid and drops every event, which is how the app runs without a broker.
type Publisher struct {
	conn *nats.Conn
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn}, nil
}

func (p *Publisher) Publish(subject string, data interface{}) error {
	if p == nil {
		return nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, jsonData)
}

func (p *Publisher) Close() {
	if p != nil {
		p.conn.Close()
	}
}
