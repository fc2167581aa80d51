package notify

import (
	"errors"
	"log/slog"

	"hearth/internal/model"
	"hearth/internal/push"
	"hearth/internal/store"
	"hearth/internal/websocket"
)

// Service persists notifications and fans them out over the websocket
// hub and web push. Fan-out is best effort; the stored row is the
// source of truth.
type Service struct {
	notifications *store.NotificationStore
	pushSubs      *store.PushStore
	pusher        *push.Service
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewService(notifications *store.NotificationStore, pushSubs *store.PushStore, pusher *push.Service, hub *websocket.Hub, logger *slog.Logger) *Service {
	return &Service{
		notifications: notifications,
		pushSubs:      pushSubs,
		pusher:        pusher,
		hub:           hub,
		logger:        logger.With("component", "notify"),
	}
}

// Create stores the notification and alerts the user on every channel
// they have open.
func (s *Service) Create(n store.NewNotification) (*model.Notification, error) {
	created, err := s.notifications.Create(n)
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.SendToUser(n.UserID, websocket.NewMessage("notification", "created", created.ID, map[string]any{
			"notification_type": created.Type,
		}))
	}
	go s.sendPush(n.UserID, created)

	return created, nil
}

func (s *Service) sendPush(userID int64, n *model.Notification) {
	if s.pusher == nil || !s.pusher.Enabled() {
		return
	}
	subs, err := s.pushSubs.ListByUser(userID)
	if err != nil {
		s.logger.Error("list push subscriptions", "error", err, "user_id", userID)
		return
	}
	payload := push.Payload{
		Title: n.Title,
		Body:  n.Message,
		Tag:   n.Type,
	}
	for i := range subs {
		err := s.pusher.Send(&subs[i], payload)
		if errors.Is(err, push.ErrExpired) {
			// The browser dropped this subscription; stop pushing to it.
			if derr := s.pushSubs.DeleteByEndpoint(subs[i].Endpoint); derr != nil {
				s.logger.Error("prune expired subscription", "error", derr)
			}
			continue
		}
		if err != nil {
			s.logger.Error("send push", "error", err, "user_id", userID)
		}
	}
}
