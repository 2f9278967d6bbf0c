// Package persist stores session snapshots in Redis so an interrupted
// interview can be resumed.
package persist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "dossier:session:"
	sessionTTL       = 7 * 24 * time.Hour
	saveTimeout      = 5 * time.Second
)

// Bridge writes snapshots to Redis. Saves can be queued without blocking the
// conversation loop; only the latest snapshot per character is kept when the
// writer falls behind.
type Bridge struct {
	client *redis.Client

	mu      sync.Mutex
	pending map[string][]byte
	wake    chan struct{}
	quit    chan struct{}
	stopped chan struct{}
}

func NewBridge(client *redis.Client) *Bridge {
	b := &Bridge{
		client:  client,
		pending: make(map[string][]byte),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go b.run()
	return b
}

func sessionKey(characterID string) string {
	return sessionKeyPrefix + characterID
}

// Save writes one snapshot synchronously.
func (b *Bridge) Save(ctx context.Context, characterID string, snapshot []byte) error {
	if characterID == "" {
		return fmt.Errorf("character id cannot be empty")
	}
	if err := b.client.Set(ctx, sessionKey(characterID), snapshot, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or nil when none exists.
func (b *Bridge) Load(ctx context.Context, characterID string) ([]byte, error) {
	data, err := b.client.Get(ctx, sessionKey(characterID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session snapshot: %w", err)
	}
	return data, nil
}

// Clear removes the stored snapshot.
func (b *Bridge) Clear(ctx context.Context, characterID string) error {
	if err := b.client.Del(ctx, sessionKey(characterID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session snapshot: %w", err)
	}
	return nil
}

// Enqueue schedules a snapshot write without blocking. A newer snapshot for
// the same character replaces an unwritten older one.
func (b *Bridge) Enqueue(characterID string, snapshot []byte) {
	if characterID == "" {
		return
	}
	b.mu.Lock()
	select {
	case <-b.quit:
		b.mu.Unlock()
		return
	default:
	}
	b.pending[characterID] = snapshot
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Close flushes queued snapshots and stops the writer.
func (b *Bridge) Close() {
	b.mu.Lock()
	select {
	case <-b.quit:
		b.mu.Unlock()
		<-b.stopped
		return
	default:
	}
	close(b.quit)
	b.mu.Unlock()
	<-b.stopped
}

func (b *Bridge) run() {
	defer close(b.stopped)
	for {
		select {
		case <-b.wake:
			b.flush()
		case <-b.quit:
			b.flush()
			return
		}
	}
}

func (b *Bridge) flush() {
	for {
		b.mu.Lock()
		var characterID string
		var snapshot []byte
		for id, data := range b.pending {
			characterID = id
			snapshot = data
			break
		}
		if characterID == "" {
			b.mu.Unlock()
			return
		}
		delete(b.pending, characterID)
		b.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		if err := b.Save(ctx, characterID, snapshot); err != nil {
			slog.Error("background snapshot save failed", "character_id", characterID, "error", err.Error())
		}
		cancel()
	}
}
