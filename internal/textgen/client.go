// Package textgen provides the text-generation collaborator used for
// motivational quotes, routine analysis and goal effort classification.
// Every operation degrades to a deterministic fallback on failure; errors
// never reach the caller.
package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/shapeu/shapeu/internal/config"
	"github.com/shapeu/shapeu/internal/metrics"
	"github.com/shapeu/shapeu/internal/models"
	"github.com/shapeu/shapeu/pkg/logger"
)

// Generator is the collaborator contract consumed by handlers and services.
type Generator interface {
	GenerateMotivation(ctx context.Context, data MotivationContext) string
	GenerateAnalysis(ctx context.Context, data AnalysisContext) string
	ClassifyEffort(ctx context.Context, goalName string) string
}

// MotivationContext carries the user data the quote prompt is built from.
type MotivationContext struct {
	Username   string
	Completed  int
	Total      int
	Streak     int
	WeeklyRate int
	Comparison string
}

// AnalysisContext carries the aggregated stats the analysis prompt uses.
type AnalysisContext struct {
	PerGoalRates string
	Trend        string
	Best         string
	Worst        string
	Streaks      string
}

var fallbackQuotes = []string{
	"Continue evoluindo, cada passo conta!",
	"Cada dia é uma nova chance de evoluir!",
	"Disciplina é a ponte entre metas e conquistas.",
	"Pequenos hábitos, grandes resultados.",
	"O difícil de hoje é o fácil de amanhã.",
}

const fallbackAnalysis = "Continue registrando seus hábitos diariamente para gerar análises detalhadas!"

// Client calls the Gemini REST API.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	http     *http.Client
	log      *logger.Logger
}

// NewClient creates the collaborator. An empty API key disables remote
// generation entirely; every call answers with its fallback.
func NewClient(cfg *config.GeminiConfig, log *logger.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if cfg.Timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		http:     &http.Client{Timeout: timeout},
		log:      log,
	}
}

// RandomQuote returns one of the static fallback quotes.
func RandomQuote() string {
	return fallbackQuotes[rand.Intn(len(fallbackQuotes))]
}

// GenerateMotivation produces a short motivational quote from the user's
// current numbers. Falls back to a static quote on any failure.
func (c *Client) GenerateMotivation(ctx context.Context, data MotivationContext) string {
	prompt := fmt.Sprintf(
		"Você é um coach motivacional do app ShapeU. Dados do usuário: Nome: %s, "+
			"Metas concluídas hoje: %d/%d, Streak atual mais longo: %d dias, "+
			"Taxa semanal: %d%%, Comparativo: %s. "+
			"Gere UMA frase motivacional curta (máx 2 linhas) em português brasileiro, "+
			"tom energético e positivo. Use os dados reais. Sem clichês genéricos. "+
			"Apenas a frase, sem aspas.",
		data.Username, data.Completed, data.Total, data.Streak, data.WeeklyRate, data.Comparison,
	)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		c.log.Warn().Err(err).Msg("Motivation generation failed, using fallback")
		metrics.RecordTextGeneration("motivation", "fallback")
		return RandomQuote()
	}
	metrics.RecordTextGeneration("motivation", "ok")
	return text
}

// GenerateAnalysis produces a short routine analysis paragraph. Falls back
// to a generic message on any failure.
func (c *Client) GenerateAnalysis(ctx context.Context, data AnalysisContext) string {
	prompt := fmt.Sprintf(
		"Analise os dados de rotina e gere um parágrafo curto (3-4 linhas) com insights "+
			"em português brasileiro: Taxa por meta: %s, Evolução: %s, Melhor meta: %s, "+
			"Pior meta: %s, Streaks: %s. Destaque positivos primeiro, depois sugira "+
			"melhorias em tom construtivo. Use dados reais, sem generalidades. Apenas o parágrafo.",
		data.PerGoalRates, data.Trend, data.Best, data.Worst, data.Streaks,
	)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		c.log.Warn().Err(err).Msg("Analysis generation failed, using fallback")
		metrics.RecordTextGeneration("analysis", "fallback")
		return fallbackAnalysis
	}
	metrics.RecordTextGeneration("analysis", "ok")
	return text
}

// ClassifyEffort classifies a goal name as light or effort. Falls back to
// light on any failure.
func (c *Client) ClassifyEffort(ctx context.Context, goalName string) string {
	prompt := fmt.Sprintf(
		"Classifique a seguinte meta como 'light' ou 'effort'. 'effort' = exige esforço "+
			"físico (academia, corrida, natação, crossfit) OU superação de vícios (parar de "+
			"fumar, beber, jogar, apostar). 'light' = não exige esforço físico nem superação "+
			"de vícios (leitura, hidratação, meditação). Meta: '%s'. "+
			"Responda APENAS com 'light' ou 'effort'.",
		goalName,
	)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		c.log.Warn().Err(err).Str("goal", goalName).Msg("Effort classification failed, using fallback")
		metrics.RecordTextGeneration("classify", "fallback")
		return models.EffortLight
	}
	metrics.RecordTextGeneration("classify", "ok")
	if strings.TrimSpace(strings.ToLower(text)) == models.EffortHigh {
		return models.EffortHigh
	}
	return models.EffortLight
}

// Gemini generateContent wire types.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("text generation disabled: no API key configured")
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call generation API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("generation API returned status %d: %s", resp.StatusCode, string(body))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generation API returned no candidates")
	}

	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("generation API returned empty text")
	}
	return text, nil
}
