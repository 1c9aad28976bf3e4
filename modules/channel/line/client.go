package line

import (
	"context"
	"fmt"
	"io"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/flemzord/linekit/internal/media"
	"github.com/flemzord/linekit/internal/router"
	"github.com/flemzord/linekit/internal/security"
	"github.com/flemzord/linekit/pkg/message"
)

// Compile-time interface guards.
var (
	_ router.Platform  = (*Client)(nil)
	_ media.Downloader = (*Client)(nil)
)

// Client wraps the Messaging API and blob API clients. It is safe for
// concurrent use.
type Client struct {
	api   *messaging_api.MessagingApiAPI
	blob  *messaging_api.MessagingApiBlobAPI
	audit *security.AuditLogger
}

// NewClient creates a Client authenticated with token. Empty endpoints use
// the SDK defaults.
func NewClient(token, apiEndpoint, dataEndpoint string) (*Client, error) {
	var apiOpts []messaging_api.MessagingApiAPIOption
	if apiEndpoint != "" {
		apiOpts = append(apiOpts, messaging_api.WithEndpoint(apiEndpoint))
	}
	api, err := messaging_api.NewMessagingApiAPI(token, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("line: create messaging API client: %w", err)
	}

	var blobOpts []messaging_api.MessagingApiBlobAPIOption
	if dataEndpoint != "" {
		blobOpts = append(blobOpts, messaging_api.WithBlobEndpoint(dataEndpoint))
	}
	blob, err := messaging_api.NewMessagingApiBlobAPI(token, blobOpts...)
	if err != nil {
		return nil, fmt.Errorf("line: create blob API client: %w", err)
	}
	return &Client{api: api, blob: blob}, nil
}

// SetAuditLogger records every successful leave on l. Not safe to call
// concurrently with LeaveGroup or LeaveRoom.
func (c *Client) SetAuditLogger(l *security.AuditLogger) { c.audit = l }

func (c *Client) auditLeave(kind, id string) {
	if c.audit == nil {
		return
	}
	c.audit.Log(security.AuditEvent{
		Type:    security.EventLeave,
		Channel: "channel.line",
		Source:  kind + ":" + id,
	})
}

// Reply implements router.Platform.
func (c *Client) Reply(ctx context.Context, token string, msgs []message.Reply) error {
	out, err := convertReplies(msgs)
	if err != nil {
		return err
	}
	if _, err := c.api.WithContext(ctx).ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: token,
		Messages:   out,
	}); err != nil {
		return fmt.Errorf("line: reply: %w", err)
	}
	return nil
}

// Profile implements router.Platform.
func (c *Client) Profile(ctx context.Context, userID string) (message.Profile, error) {
	p, err := c.api.WithContext(ctx).GetProfile(userID)
	if err != nil {
		return message.Profile{}, fmt.Errorf("line: get profile: %w", err)
	}
	return message.Profile{
		UserID:        p.UserId,
		DisplayName:   p.DisplayName,
		StatusMessage: p.StatusMessage,
		PictureURL:    p.PictureUrl,
	}, nil
}

// LeaveGroup implements router.Platform.
func (c *Client) LeaveGroup(ctx context.Context, groupID string) error {
	if _, err := c.api.WithContext(ctx).LeaveGroup(groupID); err != nil {
		return fmt.Errorf("line: leave group: %w", err)
	}
	c.auditLeave("group", groupID)
	return nil
}

// LeaveRoom implements router.Platform.
func (c *Client) LeaveRoom(ctx context.Context, roomID string) error {
	if _, err := c.api.WithContext(ctx).LeaveRoom(roomID); err != nil {
		return fmt.Errorf("line: leave room: %w", err)
	}
	c.auditLeave("room", roomID)
	return nil
}

// Content implements media.Downloader. The caller closes the returned body.
func (c *Client) Content(ctx context.Context, messageID string) (io.ReadCloser, error) {
	resp, err := c.blob.WithContext(ctx).GetMessageContent(messageID)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return nil, fmt.Errorf("line: get content %s: %w", messageID, err)
	}
	return resp.Body, nil
}
