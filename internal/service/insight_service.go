package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/kylewspence/FinSight/internal/external"
	"github.com/kylewspence/FinSight/internal/models"
	"github.com/kylewspence/FinSight/internal/repository"
	"github.com/kylewspence/FinSight/pkg/apperror"
)

const (
	noDataAvailable     = "No data available"
	insightsUnavailable = "Insights are temporarily unavailable."
)

const insightSystemPrompt = "You are an expert financial advisor and AI analyst specialized in real estate investing. " +
	"Your job is to analyze a user's real estate portfolio and return clear, actionable insights across key financial categories."

const insightPromptTemplate = `Based on the following real estate portfolio data, return a JSON object containing AI-driven insights and recommendations. Your response should be helpful, realistic, and tailored to the user's financial position.

DATA:
%s

OUTPUT FORMAT (strictly follow this structure):
{
  "overview": "Brief summary of the user's financial health. Mention overall asset value, income vs. liabilities, and anything concerning or promising.",
  "timelineToPurchase": "Estimate when the user might be able to purchase another investment property. Consider monthly rent, liabilities, taxes (~25%%), property management (~8%%), and reserves. Be realistic.",
  "marketTrends": "Suggest 2-3 up-and-coming markets for similar property types. Give 1 reason why each is worth researching.",
  "peerStrategies": "Speculate on what other real estate investors might be doing with similar portfolios and recommend one strategic adjustment for this user."
}

Rules:
- Keep each section concise but insightful (2-5 sentences).
- If data is missing, note assumptions or return "insufficient data."`

var ErrInsightNotFound = apperror.New(apperror.NotFound, "No insights saved yet")

// Insights is the four-part analysis returned to clients
type Insights struct {
	Overview           string `json:"overview"`
	TimelineToPurchase string `json:"timelineToPurchase"`
	MarketTrends       string `json:"marketTrends"`
	PeerStrategies     string `json:"peerStrategies"`
}

// Message is an extra user message appended to the prompt. It decodes
// from either a plain string or a {"role","content"} object.
type Message string

func (m *Message) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = Message(s)
		return nil
	}
	var obj struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("message must be a string or an object with content: %w", err)
	}
	*m = Message(obj.Content)
	return nil
}

// GenerateInsightsRequest is the body of an insight generation request
type GenerateInsightsRequest struct {
	Messages []Message `json:"messages"`
}

// InsightService generates and stores portfolio insights
type InsightService struct {
	insightRepo  *repository.InsightRepository
	propertyRepo *repository.PropertyRepository
	completer    external.Completer
}

// NewInsightService creates a new InsightService. completer may be nil
// when no model is configured; generation then degrades.
func NewInsightService(insightRepo *repository.InsightRepository, propertyRepo *repository.PropertyRepository, completer external.Completer) *InsightService {
	return &InsightService{
		insightRepo:  insightRepo,
		propertyRepo: propertyRepo,
		completer:    completer,
	}
}

// List returns every saved insight for the caller in insertion order
func (s *InsightService) List(ctx context.Context, id Identity) ([]models.Insight, error) {
	return s.insightRepo.GetByUserID(ctx, id.UserID)
}

// Latest returns the caller's most recently saved insight
func (s *InsightService) Latest(ctx context.Context, id Identity) (*models.Insight, error) {
	insight, err := s.insightRepo.GetLatestByUserID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrInsightNotFound) {
			return nil, ErrInsightNotFound
		}
		return nil, err
	}
	return insight, nil
}

// Save appends a new insight row
func (s *InsightService) Save(ctx context.Context, id Identity, in Insights) (*models.Insight, error) {
	fields := map[string]string{
		"overview":           in.Overview,
		"timelineToPurchase": in.TimelineToPurchase,
		"marketTrends":       in.MarketTrends,
		"peerStrategies":     in.PeerStrategies,
	}
	var missing []string
	for _, name := range []string{"overview", "timelineToPurchase", "marketTrends", "peerStrategies"} {
		if strings.TrimSpace(fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, apperror.BadRequestf("missing required fields: %s", strings.Join(missing, ", "))
	}

	insight := &models.Insight{
		UserID:             id.UserID,
		Overview:           in.Overview,
		TimelineToPurchase: in.TimelineToPurchase,
		MarketTrends:       in.MarketTrends,
		PeerStrategies:     in.PeerStrategies,
	}
	if err := s.insightRepo.Create(ctx, insight); err != nil {
		return nil, fmt.Errorf("save insight: %w", err)
	}
	return insight, nil
}

// Generate asks the language model to analyze the caller's portfolio.
// Model failures never fail the call; a degraded Insights is returned instead.
func (s *InsightService) Generate(ctx context.Context, id Identity, req GenerateInsightsRequest) (*Insights, error) {
	properties, err := s.propertyRepo.GetByUserID(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("load properties: %w", err)
	}

	if s.completer == nil {
		log.Printf("[InsightService] no language model configured, returning placeholder insights")
		return unavailableInsights(), nil
	}

	portfolio, err := portfolioJSON(properties)
	if err != nil {
		return nil, err
	}

	prompts := []string{fmt.Sprintf(insightPromptTemplate, portfolio)}
	for _, m := range req.Messages {
		prompts = append(prompts, string(m))
	}

	raw, err := s.completer.Complete(ctx, insightSystemPrompt, prompts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("[InsightService] completion failed for user %d: %v", id.UserID, err)
		return unavailableInsights(), nil
	}

	return ParseInsights(raw), nil
}

// portfolioJSON renders the properties without image URLs
func portfolioJSON(properties []models.Property) (string, error) {
	trimmed := make([]map[string]interface{}, 0, len(properties))
	for _, p := range properties {
		data, err := json.Marshal(p)
		if err != nil {
			return "", err
		}
		var m map[string]interface{}
		if err := json.Unmarshal(data, &m); err != nil {
			return "", err
		}
		delete(m, "image")
		trimmed = append(trimmed, m)
	}
	out, err := json.MarshalIndent(trimmed, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ParseInsights decodes the model output. Markdown code fences are
// stripped and snake_case keys are accepted. Output that is not a JSON
// object is returned whole as the overview.
func ParseInsights(raw string) *Insights {
	text := stripCodeFence(raw)

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		log.Printf("[InsightService] model output is not valid JSON, returning raw text")
		return &Insights{
			Overview:           strings.TrimSpace(raw),
			TimelineToPurchase: noDataAvailable,
			MarketTrends:       noDataAvailable,
			PeerStrategies:     noDataAvailable,
		}
	}

	pick := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := fields[k]; ok {
				switch val := v.(type) {
				case string:
					if strings.TrimSpace(val) != "" {
						return val
					}
				case nil:
				default:
					if b, err := json.Marshal(val); err == nil {
						return string(b)
					}
				}
			}
		}
		return noDataAvailable
	}

	return &Insights{
		Overview:           pick("overview"),
		TimelineToPurchase: pick("timelineToPurchase", "timeline_to_purchase"),
		MarketTrends:       pick("marketTrends", "market_trends"),
		PeerStrategies:     pick("peerStrategies", "peer_strategies"),
	}
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func unavailableInsights() *Insights {
	return &Insights{
		Overview:           insightsUnavailable,
		TimelineToPurchase: noDataAvailable,
		MarketTrends:       noDataAvailable,
		PeerStrategies:     noDataAvailable,
	}
}
