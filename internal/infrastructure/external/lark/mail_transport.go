package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/garyjia/billing-ops/internal/application/port"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkIm "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"
)

const (
	receiveIDTypeEmail = "email"
	msgTypePost        = "post"
)

// messageCreator is the slice of the IM message service the transport uses
type messageCreator interface {
	Create(ctx context.Context, req *larkIm.CreateMessageReq, options ...larkcore.RequestOptionFunc) (*larkIm.CreateMessageResp, error)
}

// MailTransport implements port.MailTransport by posting to the recipient's
// e-mail address through the Lark IM message API
type MailTransport struct {
	messages messageCreator
	logger   *zap.Logger
}

// NewMailTransport creates a new Lark mail transport
func NewMailTransport(sdkClient *SDKClient, logger *zap.Logger) *MailTransport {
	return &MailTransport{
		messages: sdkClient.GetClient().Im.Message,
		logger:   logger,
	}
}

type postText struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

type postBody struct {
	Title   string       `json:"title"`
	Content [][]postText `json:"content"`
}

// buildPostContent renders a post message: one paragraph per body line,
// with the sender and reply-to address in a footer paragraph
func buildPostContent(msg port.MailMessage) (string, error) {
	body := postBody{Title: msg.Subject}
	for _, line := range strings.Split(strings.TrimRight(msg.Body, "\n"), "\n") {
		body.Content = append(body.Content, []postText{{Tag: "text", Text: line}})
	}

	footer := msg.FromName
	if msg.ReplyTo != "" {
		footer = strings.TrimSpace(footer + " <" + msg.ReplyTo + ">")
	}
	if footer != "" {
		body.Content = append(body.Content, []postText{{Tag: "text", Text: "-- " + footer}})
	}

	content, err := json.Marshal(map[string]postBody{"en_us": body})
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// Send delivers one message
func (t *MailTransport) Send(ctx context.Context, msg port.MailMessage) error {
	if msg.To == "" {
		return fmt.Errorf("recipient cannot be empty")
	}

	content, err := buildPostContent(msg)
	if err != nil {
		return fmt.Errorf("failed to build message content: %w", err)
	}

	req := larkIm.NewCreateMessageReqBuilder().
		ReceiveIdType(receiveIDTypeEmail).
		Body(larkIm.NewCreateMessageReqBodyBuilder().
			ReceiveId(msg.To).
			MsgType(msgTypePost).
			Content(content).
			Build()).
		Build()

	resp, err := t.messages.Create(ctx, req)
	if err != nil {
		t.logger.Error("Failed to send message",
			zap.String("recipient", msg.To),
			zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}

	if !resp.Success() {
		t.logger.Error("API returned failure",
			zap.String("recipient", msg.To),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}

	t.logger.Info("Message sent successfully",
		zap.String("message_id", messageID),
		zap.String("recipient", msg.To))

	return nil
}

var _ port.MailTransport = (*MailTransport)(nil)
