package nats

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"

	"peer-challenge-service/internal/app"
)

// Notifier publishes lifecycle events as JSON on challenge.{type}
// subjects. Delivery is best-effort; the service logs and swallows
// publish failures.
type Notifier struct {
	conn *nats.Conn
}

func Connect(url string) (*Notifier, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &Notifier{conn: conn}, nil
}

func NewNotifier(conn *nats.Conn) *Notifier {
	return &Notifier{conn: conn}
}

func (n *Notifier) Publish(_ context.Context, event app.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.conn.Publish("challenge."+string(event.Type), payload)
}

func (n *Notifier) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}
