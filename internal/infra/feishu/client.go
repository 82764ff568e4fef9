package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
)

// DefaultRequestTimeout bounds every request to the open platform
const DefaultRequestTimeout = 10 * time.Second

// Client is the Feishu messaging client used to deliver notifications
type Client struct {
	appID   string
	larkCli *lark.Client
}

// Option configures a Client
type Option func(*options)

type options struct {
	baseURL string
	timeout time.Duration
}

// WithBaseURL points the client at a different open-platform host
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithRequestTimeout overrides DefaultRequestTimeout
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// NewClient creates a new Feishu client
func NewClient(appID, appSecret string, opts ...Option) *Client {
	o := options{timeout: DefaultRequestTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	larkOpts := []lark.ClientOptionFunc{lark.WithReqTimeout(o.timeout)}
	if o.baseURL != "" {
		larkOpts = append(larkOpts, lark.WithOpenBaseUrl(o.baseURL))
	}

	return &Client{
		appID:   appID,
		larkCli: lark.NewClient(appID, appSecret, larkOpts...),
	}
}

// SendText sends a text message to a chat
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	contentJSON, err := TextContent(text)
	if err != nil {
		return err
	}
	if err := c.send(ctx, chatID, larkim.MsgTypeText, contentJSON); err != nil {
		return fmt.Errorf("send message failed: %w", err)
	}
	return nil
}

// SendPost sends a rich text (post) message with a title to a chat
func (c *Client) SendPost(ctx context.Context, chatID, title, body string) error {
	contentJSON, err := PostContent(title, body)
	if err != nil {
		return err
	}
	if err := c.send(ctx, chatID, larkim.MsgTypePost, contentJSON); err != nil {
		return fmt.Errorf("send rich text failed: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, chatID, msgType, content string) error {
	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType(msgType).
			Content(content).
			Build()).
		Build()

	resp, err := c.larkCli.Im.Message.Create(ctx, req)
	if err != nil {
		return err
	}
	if !resp.Success() {
		return fmt.Errorf("code %d: %s", resp.Code, resp.Msg)
	}
	return nil
}

// TextContent encodes the content of a text message
func TextContent(text string) (string, error) {
	contentJSON, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("encode text content: %w", err)
	}
	return string(contentJSON), nil
}

// PostContent encodes the content of a post message with one text paragraph
func PostContent(title, body string) (string, error) {
	post := map[string]interface{}{
		"zh_cn": map[string]interface{}{
			"title": title,
			"content": [][]map[string]interface{}{
				{{"tag": "text", "text": body}},
			},
		},
	}
	contentJSON, err := json.Marshal(post)
	if err != nil {
		return "", fmt.Errorf("encode post content: %w", err)
	}
	return string(contentJSON), nil
}
