package chatbot

import (
	"fmt"

	"challengebot/internal/events"

	"go.uber.org/zap"
)

// Delivery failure kinds reported to metrics.
const (
	deliveryReply          = "reply"
	deliveryReminder       = "reminder"
	deliveryBlockedNotice  = "blocked_notice"
	deliveryChannelVideo   = "channel_video"
	deliveryChannelCaption = "channel_caption"
	deliveryAnnouncement   = "announcement"
)

// setupEventSubscriptions sets up event subscriptions for the chatbot service
func (s *chatbotService) setupEventSubscriptions() error {
	subscriptions := []struct {
		topic   string
		handler interface{}
	}{
		{events.TopicReminderDue, s.handleReminderDue},
		{events.TopicUserBlocked, s.handleUserBlocked},
		{events.TopicSubmissionAccepted, s.handleSubmissionAccepted},
		{events.TopicChallengeCreated, s.handleChallengeCreated},
	}

	for _, sub := range subscriptions {
		if err := s.eventBus.SubscribeAsync(sub.topic, sub.handler); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", sub.topic, err)
		}
	}
	return nil
}

// handleReminderDue handles ReminderDue events from the reminder sweep
func (s *chatbotService) handleReminderDue(event events.ReminderDue) {
	s.logger.Debug("Delivering reminder",
		zap.String("correlation_id", event.CorrelationID),
		zap.Int64("user_id", event.UserID),
		zap.Int("reminder_ordinal", event.ReminderOrdinal))

	if err := s.provider.SendMessage(event.UserID, reminderText(event)); err != nil {
		s.deliveryFailed(deliveryReminder, event.UserID, err)
	}
}

// handleUserBlocked notifies an auto-blocked user
func (s *chatbotService) handleUserBlocked(event events.UserBlocked) {
	s.logger.Info("Delivering block notice",
		zap.String("correlation_id", event.CorrelationID),
		zap.Int64("user_id", event.UserID),
		zap.Int("reminder_count", event.ReminderCount))

	if err := s.provider.SendMessage(event.UserID, textBlockedNotice); err != nil {
		s.deliveryFailed(deliveryBlockedNotice, event.UserID, err)
	}
}

// handleSubmissionAccepted re-posts the video note with a caption to the channel
func (s *chatbotService) handleSubmissionAccepted(event events.SubmissionAccepted) {
	if s.config.ChannelID == "" {
		s.logger.Debug("No channel configured, skipping submission broadcast",
			zap.Int64("user_id", event.UserID))
		return
	}

	if event.MediaRef != "" {
		if err := s.provider.SendChannelVideoNote(s.config.ChannelID, event.MediaRef); err != nil {
			s.deliveryFailed(deliveryChannelVideo, event.UserID, err)
		}
	}
	if err := s.provider.SendChannelMessage(s.config.ChannelID, channelCaption(event)); err != nil {
		s.deliveryFailed(deliveryChannelCaption, event.UserID, err)
	}
}

func (s *chatbotService) handleChallengeCreated(event events.ChallengeCreated) {
	s.logger.Info("Challenge created",
		zap.String("correlation_id", event.CorrelationID),
		zap.Uint("challenge_id", event.ChallengeID),
		zap.Int64("users_reset", event.UsersReset))

	if s.config.ChannelID == "" {
		return
	}
	if err := s.provider.SendChannelMessage(s.config.ChannelID, challengeAnnouncementText(event)); err != nil {
		s.deliveryFailed(deliveryAnnouncement, 0, err)
	}
}

func (s *chatbotService) deliveryFailed(kind string, userID int64, err error) {
	s.metrics.DeliveryFailed(kind)
	s.logger.Error("Telegram delivery failed",
		zap.String("kind", kind),
		zap.Int64("user_id", userID),
		zap.Bool("temporary", IsTemporaryError(err)),
		zap.Error(err))
}
