package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultVisibility = 30 * time.Second

// MemoryQueue is a queueClient backed by a buffered channel, for development
// and tests. Received messages stay invisible until Delete acknowledges them;
// an unacknowledged message is redelivered once its visibility window lapses,
// matching how the SQS-backed queue behaves on a processing failure.
type MemoryQueue struct {
	ch         chan queueMessage
	visibility time.Duration

	mu       sync.Mutex
	inflight map[string]inflightMessage
}

type inflightMessage struct {
	msg         queueMessage
	redeliverAt time.Time
}

// NewMemoryQueue creates a MemoryQueue with the given buffer capacity.
func NewMemoryQueue(buffer int) *MemoryQueue {
	if buffer <= 0 {
		buffer = 128
	}
	return &MemoryQueue{
		ch:         make(chan queueMessage, buffer),
		visibility: defaultVisibility,
		inflight:   map[string]inflightMessage{},
	}
}

// Send enqueues a payload or blocks until ctx is done.
func (q *MemoryQueue) Send(ctx context.Context, body string) error {
	msg := queueMessage{
		ID:            uuid.NewString(),
		Body:          body,
		ReceiptHandle: uuid.NewString(),
	}
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive blocks until a message arrives, ctx is done, or waitSeconds elapse.
// Messages whose visibility window has lapsed are redelivered first.
func (q *MemoryQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error) {
	if maxMessages <= 0 {
		maxMessages = 1
	}
	messages := q.takeExpired(maxMessages)
	if len(messages) > 0 {
		for len(messages) < maxMessages {
			select {
			case extra := <-q.ch:
				messages = append(messages, q.track(extra))
			default:
				return messages, nil
			}
		}
		return messages, nil
	}

	var timeout <-chan time.Time
	if waitSeconds > 0 {
		timer := time.NewTimer(time.Duration(waitSeconds) * time.Second)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout:
		return nil, nil
	case msg := <-q.ch:
		messages = []queueMessage{q.track(msg)}
		for len(messages) < maxMessages {
			select {
			case extra := <-q.ch:
				messages = append(messages, q.track(extra))
			default:
				return messages, nil
			}
		}
		return messages, nil
	}
}

// Delete acknowledges a received message so it is not redelivered.
func (q *MemoryQueue) Delete(_ context.Context, receiptHandle string) error {
	q.mu.Lock()
	delete(q.inflight, receiptHandle)
	q.mu.Unlock()
	return nil
}

// track marks a message invisible until its window lapses. Each delivery gets
// a fresh receipt handle so a stale Delete cannot ack a redelivery.
func (q *MemoryQueue) track(msg queueMessage) queueMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.trackLocked(msg)
}

func (q *MemoryQueue) takeExpired(max int) []queueMessage {
	now := time.Now()
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []queueMessage
	for handle, in := range q.inflight {
		if len(out) >= max {
			break
		}
		if now.Before(in.redeliverAt) {
			continue
		}
		delete(q.inflight, handle)
		out = append(out, q.trackLocked(in.msg))
	}
	return out
}

func (q *MemoryQueue) trackLocked(msg queueMessage) queueMessage {
	msg.ReceiptHandle = uuid.NewString()
	q.inflight[msg.ReceiptHandle] = inflightMessage{
		msg:         msg,
		redeliverAt: time.Now().Add(q.visibility),
	}
	return msg
}
