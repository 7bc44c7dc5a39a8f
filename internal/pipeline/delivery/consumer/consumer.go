package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"golang-news-sentiment/internal/entity"
	"golang-news-sentiment/pkg/logger"
	"golang-news-sentiment/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// FeedConsumer subscribes to the article pub/sub channel and buffers decoded
// records until the orchestrator drains them. Subscribing only sees messages
// published after startup, which gives the "from latest" feed semantics.
type FeedConsumer struct {
	redisClient *redis.Client
	channel     string
	logger      *logger.Logger

	mu     sync.Mutex
	buffer []entity.ArticleRecord

	sub      *redis.PubSub
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewFeedConsumer creates a new FeedConsumer.
func NewFeedConsumer(redisClient *redis.Client, channel string, log *logger.Logger) *FeedConsumer {
	return &FeedConsumer{
		redisClient: redisClient,
		channel:     channel,
		logger:      log,
		stopChan:    make(chan struct{}),
	}
}

// Start subscribes to the feed channel and begins buffering records. A
// subscription failure at startup is returned to the caller; nothing can be
// processed without the feed.
func (c *FeedConsumer) Start(ctx context.Context) error {
	c.sub = c.redisClient.Subscribe(ctx, c.channel)

	// Receive forces the subscription handshake so a dead broker fails here
	// rather than silently in the read loop.
	if _, err := c.sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to feed channel %s: %w", c.channel, err)
	}

	c.logger.Info("Feed consumer started", logger.StringField("channel", c.channel))

	messages := c.sub.Channel()
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Feed consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Feed consumer stopping")
				return
			case msg, ok := <-messages:
				if !ok {
					c.logger.Info("Feed subscription closed")
					return
				}
				c.handleMessage(msg.Payload)
			}
		}
	})

	return nil
}

// handleMessage decodes one feed message. Malformed payloads are logged and
// dropped; they never fail the consumer.
func (c *FeedConsumer) handleMessage(payload string) {
	var record entity.ArticleRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		c.logger.Error("Failed to decode article record, dropping message",
			logger.ErrorField(err),
			logger.StringField("channel", c.channel),
		)
		return
	}

	c.mu.Lock()
	c.buffer = append(c.buffer, record)
	c.mu.Unlock()
}

// Drain hands over everything buffered since the previous call as one batch.
func (c *FeedConsumer) Drain() []entity.ArticleRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	batch := c.buffer
	c.buffer = nil
	return batch
}

// Stop gracefully shuts down the consumer.
func (c *FeedConsumer) Stop() {
	close(c.stopChan)
	if c.sub != nil {
		_ = c.sub.Close()
	}
	c.wg.Wait()
	c.logger.Info("Feed consumer stopped")
}
