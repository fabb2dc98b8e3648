package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"giveup-backend/internal/apperr"
	"giveup-backend/internal/notify"
	"giveup-backend/internal/validation"

	"github.com/rs/zerolog/log"
)

// RequestService composes the contact handoff for requesting an item. No
// request record is stored.
type RequestService struct {
	items  ItemStore
	users  ProfileStore
	pusher Pusher
}

// NewRequestService creates a new request service; pusher may be nil
func NewRequestService(items ItemStore, users ProfileStore, pusher Pusher) *RequestService {
	return &RequestService{
		items:  items,
		users:  users,
		pusher: pusher,
	}
}

// ItemRequestInput is the requester's note to the owner
type ItemRequestInput struct {
	Message string `json:"message" validate:"max=1000"`
}

// ItemRequest is a pre-filled email draft addressed to the item owner
type ItemRequest struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Mailto   string `json:"mailto"`
	PushSent bool   `json:"push_sent"`
}

// Compose builds the email draft for requesting itemID. The requester must
// not own the item and the item must still be available.
func (s *RequestService) Compose(ctx context.Context, itemID, requesterID string, input ItemRequestInput) (*ItemRequest, error) {
	input.Message = strings.TrimSpace(input.Message)
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID == requesterID {
		return nil, apperr.New(apperr.CodeConflict, "you cannot request your own item")
	}
	if !item.IsAvailable {
		return nil, apperr.New(apperr.CodeConflict, "item is no longer available")
	}

	owner, err := s.users.GetByID(ctx, item.UserID)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return nil, apperr.Wrap(apperr.CodeConflict, err, "owner contact is not available")
		}
		return nil, fmt.Errorf("failed to get item owner: %w", err)
	}
	if owner.Email == "" {
		return nil, apperr.New(apperr.CodeConflict, "owner contact is not available")
	}

	requesterName := ""
	requester, err := s.users.GetByID(ctx, requesterID)
	switch {
	case err == nil:
		requesterName = requester.DisplayName
	case apperr.Is(err, apperr.CodeNotFound):
	default:
		return nil, fmt.Errorf("failed to get requester profile: %w", err)
	}

	subject := fmt.Sprintf("GiveUp Request: %s", item.Title)
	body := requestBody(item.Title, input.Message, requesterName)
	request := &ItemRequest{
		To:      owner.Email,
		Subject: subject,
		Body:    body,
		Mailto:  Mailto(owner.Email, subject, body),
	}

	if s.pusher != nil && owner.PushToken != nil {
		alert := fmt.Sprintf("Someone is interested in \"%s\"", item.Title)
		err := s.pusher.Push(ctx, *owner.PushToken, subject, alert)
		switch {
		case err == nil:
			request.PushSent = true
		case errors.Is(err, notify.ErrPushDisabled):
		default:
			log.Warn().
				Err(err).
				Str("item_id", item.ID).
				Str("owner_id", owner.UID).
				Msg("Failed to push item request to owner")
		}
	}

	return request, nil
}

func requestBody(title, message, requesterName string) string {
	return fmt.Sprintf("Hi there,\n\nI'm interested in your item \"%s\" on GiveUp.\n\n%s\n\nThanks,\n%s",
		title, message, requesterName)
}

// Mailto builds a mailto link with percent-encoded address, subject and body
func Mailto(to, subject, body string) string {
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s", url.PathEscape(to), encodeComponent(subject), encodeComponent(body))
}

// componentUnescaper restores the marks a URI component leaves unescaped
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent percent-encodes s for a mailto header; spaces become %20
func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
