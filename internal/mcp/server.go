package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
	"github.com/dailycheer/cheer-notifier/internal/biz/usecase"
	"github.com/dailycheer/cheer-notifier/internal/logging"
)

// Deliverer runs one delivery
type Deliverer interface {
	Deliver(ctx context.Context, slot string) (*usecase.DeliveryResult, error)
}

// History reads the delivery ledger
type History interface {
	History(ctx context.Context, limit int) ([]*domain.DeliveryRecord, error)
}

// Previewer picks a catalog message without delivering it
type Previewer interface {
	Select(t domain.TimeBucket, d domain.DayBucket, s domain.SeasonBucket) domain.Message
}

// CheerServer exposes the notifier as MCP tools
type CheerServer struct {
	server     *mcp.Server
	deliverer  Deliverer
	history    History
	previewer  Previewer
	characters *domain.CharacterSet
	now        func() time.Time
	logger     logging.Logger
}

// NewServer creates a new MCP server and registers its tools
func NewServer(deliverer Deliverer, history History, previewer Previewer, characters *domain.CharacterSet, logger logging.Logger) *CheerServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "cheer-tools",
		Version: "v1.0.0",
	}, nil)

	s := &CheerServer{
		server:     server,
		deliverer:  deliverer,
		history:    history,
		previewer:  previewer,
		characters: characters,
		now:        time.Now,
		logger:     logging.Component(logger, "mcp"),
	}
	s.registerTools()
	return s
}

func (s *CheerServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cheer_recent_deliveries",
		Description: "List the most recent cheer messages that were delivered, newest first.",
	}, s.handleRecentDeliveries)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cheer_preview_message",
		Description: "Preview which catalog message would be chosen for a time of day, day of week and season. Nothing is delivered.",
	}, s.handlePreviewMessage)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cheer_send_now",
		Description: "Deliver a cheer message right now and record it in the history. Scheduled deliveries are not affected.",
	}, s.handleSendNow)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cheer_list_characters",
		Description: "List the characters that can sign cheer messages.",
	}, s.handleListCharacters)
}

// RecentDeliveriesInput is the input for cheer_recent_deliveries
type RecentDeliveriesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of deliveries to return. Defaults to 50."`
}

// RecentDeliveriesOutput is the output for cheer_recent_deliveries
type RecentDeliveriesOutput struct {
	Deliveries []Delivery `json:"deliveries"`
	Error      string     `json:"error,omitempty"`
}

// Delivery is one delivered message
type Delivery struct {
	ID          int64  `json:"id"`
	MessageID   int64  `json:"message_id"`
	Content     string `json:"content"`
	Source      string `json:"source"`
	CharacterID string `json:"character_id"`
	Slot        string `json:"slot,omitempty"`
	SentAt      string `json:"sent_at"`
}

func (s *CheerServer) handleRecentDeliveries(ctx context.Context, req *mcp.CallToolRequest, input RecentDeliveriesInput) (*mcp.CallToolResult, RecentDeliveriesOutput, error) {
	records, err := s.history.History(ctx, input.Limit)
	if err != nil {
		return nil, RecentDeliveriesOutput{Error: err.Error()}, nil
	}

	out := RecentDeliveriesOutput{Deliveries: make([]Delivery, 0, len(records))}
	for _, r := range records {
		out.Deliveries = append(out.Deliveries, toDelivery(r))
	}
	return nil, out, nil
}

// PreviewMessageInput is the input for cheer_preview_message
type PreviewMessageInput struct {
	Time   string `json:"time,omitempty" jsonschema:"Time of day: morning, afternoon, evening or late. Defaults to now."`
	Day    string `json:"day,omitempty" jsonschema:"Day bucket: monday, friday, weekend or weekday. Defaults to today."`
	Season string `json:"season,omitempty" jsonschema:"Season: spring, summer, autumn or winter. Defaults to the current season."`
}

// PreviewMessageOutput is the output for cheer_preview_message
type PreviewMessageOutput struct {
	MessageID int64  `json:"message_id"`
	Content   string `json:"content"`
	Time      string `json:"time"`
	Day       string `json:"day"`
	Season    string `json:"season"`
	Error     string `json:"error,omitempty"`
}

func (s *CheerServer) handlePreviewMessage(ctx context.Context, req *mcp.CallToolRequest, input PreviewMessageInput) (*mcp.CallToolResult, PreviewMessageOutput, error) {
	now := s.now()

	tb := domain.TimeBucket(input.Time)
	if tb == "" {
		tb = domain.TimeBucketAt(now)
	}
	db := domain.DayBucket(input.Day)
	if db == "" {
		db = domain.DayBucketAt(now)
	}
	sb := domain.SeasonBucket(input.Season)
	if sb == "" {
		sb = domain.SeasonAt(now)
	}
	if !tb.Valid() || !db.Valid() || !sb.Valid() {
		return nil, PreviewMessageOutput{Error: fmt.Sprintf("invalid bucket: time=%q day=%q season=%q", tb, db, sb)}, nil
	}

	m := s.previewer.Select(tb, db, sb)
	return nil, PreviewMessageOutput{
		MessageID: m.ID,
		Content:   m.Content,
		Time:      string(tb),
		Day:       string(db),
		Season:    string(sb),
	}, nil
}

// SendNowInput is empty - no input needed
type SendNowInput struct{}

// SendNowOutput is the output for cheer_send_now
type SendNowOutput struct {
	Success   bool      `json:"success"`
	Presented bool      `json:"presented"`
	Title     string    `json:"title,omitempty"`
	Delivery  *Delivery `json:"delivery,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func (s *CheerServer) handleSendNow(ctx context.Context, req *mcp.CallToolRequest, input SendNowInput) (*mcp.CallToolResult, SendNowOutput, error) {
	res, err := s.deliverer.Deliver(ctx, "")
	if err != nil {
		s.logger.WithError(err).Warn("send now failed")
		return nil, SendNowOutput{Success: false, Error: err.Error()}, nil
	}

	out := SendNowOutput{Success: true, Presented: res.Presented, Title: res.Title}
	if res.Record != nil {
		d := toDelivery(res.Record)
		out.Delivery = &d
	}
	return nil, out, nil
}

// ListCharactersInput is empty - no input needed
type ListCharactersInput struct{}

// ListCharactersOutput contains the list of characters
type ListCharactersOutput struct {
	Characters []CharacterInfo `json:"characters"`
}

// CharacterInfo describes one character
type CharacterInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *CheerServer) handleListCharacters(ctx context.Context, req *mcp.CallToolRequest, input ListCharactersInput) (*mcp.CallToolResult, ListCharactersOutput, error) {
	out := ListCharactersOutput{Characters: []CharacterInfo{}}
	if s.characters == nil {
		return nil, out, nil
	}
	for _, c := range s.characters.List() {
		out.Characters = append(out.Characters, CharacterInfo{ID: c.ID, Name: c.Name})
	}
	return nil, out, nil
}

func toDelivery(r *domain.DeliveryRecord) Delivery {
	return Delivery{
		ID:          r.ID,
		MessageID:   r.MessageID,
		Content:     r.Content,
		Source:      string(r.Source),
		CharacterID: r.CharacterID,
		Slot:        r.Slot,
		SentAt:      r.SentAt.Format(time.RFC3339),
	}
}

// Run starts the MCP server with stdio transport
func (s *CheerServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// GetServer returns the underlying MCP server
func (s *CheerServer) GetServer() *mcp.Server {
	return s.server
}
