// Copyright 2025 Advanced Micro Devices, Inc.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//       http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package messaging carries status and sync messages between cluster agents
// and the server. The wire format is JSON; delivery is at-least-once, so every
// handler must tolerate redelivery and reordering.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

// Topic identifies one message stream on the queue.
type Topic string

const (
	TopicComponentStatus Topic = "component-status"
	TopicClusterNodes    Topic = "cluster-nodes"
	TopicQuotasStatus    Topic = "quotas-status"
	TopicAIMCatalog      Topic = "aim-catalog"
)

// Message is one queue entry. ClusterID names the agent that produced it.
type Message struct {
	Topic     Topic           `json:"topic"`
	ClusterID string          `json:"cluster_id"`
	Payload   json.RawMessage `json:"payload"`
}

// Publisher sends messages toward the server-side consumer.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Publish marshals a payload and sends it on the given topic.
func Publish(ctx context.Context, pub Publisher, topic Topic, clusterID string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}
	if err := pub.Publish(ctx, Message{Topic: topic, ClusterID: clusterID, Payload: raw}); err != nil {
		return fmt.Errorf("failed to publish %s message: %w", topic, err)
	}
	return nil
}

// Queue is an in-process channel-backed queue, used in tests and single-binary
// deployments where agent and server run in the same process.
type Queue struct {
	ch chan Message
}

func NewQueue(buffer int) *Queue {
	return &Queue{ch: make(chan Message, buffer)}
}

var _ Publisher = (*Queue)(nil)

func (q *Queue) Publish(ctx context.Context, msg Message) error {
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume delivers messages to fn until the context is cancelled. Handler
// errors are logged and the message dropped; redelivery is the transport
// layer's job and the in-process queue does not provide it.
func (q *Queue) Consume(ctx context.Context, fn func(ctx context.Context, msg Message) error) error {
	logger := log.FromContext(ctx)
	for {
		select {
		case msg := <-q.ch:
			if err := fn(ctx, msg); err != nil {
				logger.Error(err, "Failed to handle message", "topic", msg.Topic, "clusterID", msg.ClusterID)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
