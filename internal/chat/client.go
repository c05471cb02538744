// Package chat is the boundary to the chat platform: a small client
// interface the engine talks to, its Slack implementation, and the Block Kit
// builders for every message the bot renders.
package chat

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/slack-go/slack"
)

// Client is the chat collaborator as seen by the quiz engine. Implemented by
// SlackClient in production and by fakes in tests.
type Client interface {
	// OpenDirectMessage opens (or resumes) a DM with the user and returns
	// its channel ID.
	OpenDirectMessage(ctx context.Context, userID string) (string, error)
	// PostMessage sends a message and returns its timestamp, which Slack
	// uses as the message ID for later updates.
	PostMessage(ctx context.Context, channelID, text string, blocks []slack.Block) (string, error)
	UpdateMessage(ctx context.Context, channelID, messageTS, text string, blocks []slack.Block) error
	UploadImage(ctx context.Context, channelID string, data []byte, title string) error
}

// SlackClient implements Client over the Slack Web API.
type SlackClient struct {
	api *slack.Client
}

func NewSlackClient(botToken string) *SlackClient {
	return &SlackClient{api: slack.New(botToken)}
}

func (c *SlackClient) OpenDirectMessage(ctx context.Context, userID string) (string, error) {
	channel, _, _, err := c.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{userID},
	})
	if err != nil {
		return "", fmt.Errorf("could not open DM with %s: %w", userID, err)
	}
	return channel.ID, nil
}

func (c *SlackClient) PostMessage(ctx context.Context, channelID, text string, blocks []slack.Block) (string, error) {
	options := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if len(blocks) > 0 {
		options = append(options, slack.MsgOptionBlocks(blocks...))
	}
	_, ts, err := c.api.PostMessageContext(ctx, channelID, options...)
	if err != nil {
		return "", fmt.Errorf("could not post message to %s: %w", channelID, err)
	}
	return ts, nil
}

func (c *SlackClient) UpdateMessage(ctx context.Context, channelID, messageTS, text string, blocks []slack.Block) error {
	options := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if len(blocks) > 0 {
		options = append(options, slack.MsgOptionBlocks(blocks...))
	}
	if _, _, _, err := c.api.UpdateMessageContext(ctx, channelID, messageTS, options...); err != nil {
		return fmt.Errorf("could not update message %s in %s: %w", messageTS, channelID, err)
	}
	return nil
}

func (c *SlackClient) UploadImage(ctx context.Context, channelID string, data []byte, title string) error {
	filename := fmt.Sprintf("quiz-grid-%s.jpg", uuid.NewString())
	_, err := c.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		Reader:   bytes.NewReader(data),
		FileSize: len(data),
		Filename: filename,
		Title:    title,
		Channel:  channelID,
	})
	if err != nil {
		return fmt.Errorf("could not upload image to %s: %w", channelID, err)
	}
	return nil
}
