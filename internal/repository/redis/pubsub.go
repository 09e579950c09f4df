package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type ChangeType string

const (
	ChangeEventAdded      ChangeType = "event_added"
	ChangeEventRemoved    ChangeType = "event_removed"
	ChangeTicketIssued    ChangeType = "ticket_issued"
	ChangeTicketCancelled ChangeType = "ticket_cancelled"
	ChangeStoreReset      ChangeType = "store_reset"
)

// Change is the message published whenever the store is mutated.
type Change struct {
	Type      ChangeType `json:"type"`
	EventCode int64      `json:"event_code"`
	Seat      string     `json:"seat,omitempty"`
	Count     int        `json:"count,omitempty"`
	TsUnix    int64      `json:"ts_unix"`
}

type StorePubSub struct {
	rdb     *redis.Client
	channel string
}

func NewStorePubSub(rdb *redis.Client) *StorePubSub {
	return &StorePubSub{
		rdb:     rdb,
		channel: ChannelStoreChanged(),
	}
}

func (p *StorePubSub) Publish(ctx context.Context, c Change) error {
	if c.TsUnix == 0 {
		c.TsUnix = time.Now().Unix()
	}

	b, err := json.Marshal(c)
	if err != nil {
		return err
	}

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *StorePubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, c Change)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var c Change
			if err := json.Unmarshal([]byte(m.Payload), &c); err == nil && c.Type != "" {
				handler(ctx, c)
			}
		}
	}
}
