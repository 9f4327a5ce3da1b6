package eventbus

import (
	"context"
	"sync"
	"time"
)

// Topic names one kind of cross-container state change. Containers holding a
// denormalized copy of another container's data subscribe to the topics that
// invalidate that copy.
type Topic string

const (
	TopicParticipantJoined     Topic = "participant.joined"
	TopicParticipantLeft       Topic = "participant.left"
	TopicActivityChatCreate    Topic = "activity.chat.create"
	TopicActivityChatUpdate    Topic = "activity.chat.update"
	TopicClubMembershipChanged Topic = "club.membership.changed"

	// Profile fan-out: one generic topic plus one per dependent subsystem
	// caching a denormalized profile copy.
	TopicProfileUpdated            Topic = "profile.updated"
	TopicOrganizerProfileUpdated   Topic = "profile.updated.organizer"
	TopicParticipantProfileUpdated Topic = "profile.updated.participant"
	TopicFollowerProfileUpdated    Topic = "profile.updated.follower"
	TopicClubMemberProfileUpdated  Topic = "profile.updated.club_member"
	TopicReviewerProfileUpdated    Topic = "profile.updated.reviewer"
)

// ParticipantChange is the payload for join/leave and chat topics.
type ParticipantChange struct {
	ActivityID    string
	ActivityTitle string
	UserID        string
	OrganizerID   string
	NewCount      int
}

// ClubMembershipChange is the payload for TopicClubMembershipChanged.
type ClubMembershipChange struct {
	ClubID string
	UserID string
	Role   string
	Status string
	Joined bool
}

// ProfileChange is the payload for all profile.* topics.
type ProfileChange struct {
	ProfileID string
	FullName  string
	AvatarURL string
}

// Event is one published state change.
type Event struct {
	Topic   Topic
	Payload any
	At      time.Time
}

// Handler receives events for a subscribed topic. Handlers run synchronously
// on the publisher's goroutine and must not block.
type Handler func(ctx context.Context, evt Event)

// Bus is a best-effort in-process broadcast: no replay, no persistence, no
// ordering across topics. A subscriber added after an event fires misses it.
type Bus interface {
	Publish(ctx context.Context, topic Topic, payload any)
	Subscribe(topic Topic, fn Handler) (unsubscribe func())
}

type subscriber struct {
	id int
	fn Handler
}

// InMemoryBus delivers events synchronously in subscription order.
type InMemoryBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Topic][]subscriber
	now    func() time.Time
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{
		subs: make(map[Topic][]subscriber),
		now:  time.Now,
	}
}

func (b *InMemoryBus) Subscribe(topic Topic, fn Handler) func() {
	if fn == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscriber{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		current := b.subs[topic]
		for i, sub := range current {
			if sub.id == id {
				b.subs[topic] = append(current[:i:i], current[i+1:]...)
				break
			}
		}
	}
}

func (b *InMemoryBus) Publish(ctx context.Context, topic Topic, payload any) {
	evt := Event{
		Topic:   topic,
		Payload: payload,
		At:      b.now(),
	}

	// Snapshot under the read lock so a handler may subscribe or
	// unsubscribe without deadlocking.
	b.mu.RLock()
	current := append([]subscriber(nil), b.subs[topic]...)
	b.mu.RUnlock()

	for _, sub := range current {
		sub.fn(ctx, evt)
	}
}
