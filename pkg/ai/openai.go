package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "survey_portal",
		Subsystem: "ai",
		Name:      "format_check_duration_seconds",
		Help:      "Duration of AI format check requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "survey_portal",
		Subsystem: "ai",
		Name:      "format_check_failures_total",
		Help:      "Number of AI format check failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI format checker.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIChecker implements FormatChecker against the OpenAI chat completion API.
type OpenAIChecker struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIChecker builds a new checker using the provided configuration.
func NewOpenAIChecker(cfg OpenAIConfig) (*OpenAIChecker, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	tracer := otel.Tracer("github.com/luoxin-dev/survey-portal-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIChecker{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// CheckFormat asks the model for the four-section Chinese review of the
// provided report text and returns the raw response body.
func (c *OpenAIChecker) CheckFormat(parent context.Context, text string) (string, error) {
	return c.complete(parent, "ai.format_check", formatCheckPrompt(text))
}

// TeachingInsight produces a short pedagogical note for a teacher.
func (c *OpenAIChecker) TeachingInsight(parent context.Context, topic string) (string, error) {
	prompt := fmt.Sprintf("Provide a short, 2-sentence pedagogical insight for a teacher regarding student performance in: %s", topic)
	return c.complete(parent, "ai.teaching_insight", prompt)
}

func (c *OpenAIChecker) complete(parent context.Context, spanName, prompt string) (string, error) {
	ctx, span := c.tracer.Start(parent, spanName, trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(c.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(c.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("openai completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(c.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		err := fmt.Errorf("empty completion returned from openai")
		aiFailures.WithLabelValues(c.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return content, nil
}

func formatCheckPrompt(text string) string {
	builder := strings.Builder{}
	builder.WriteString("你是一位专业的社会学学术编辑。请对学生提交的以下社会调查报告文本进行严格的学术格式与逻辑审查。\n")
	builder.WriteString("请务必使用中文输出，并严格按照以下标准格式返回分析报告（请不要使用 Markdown 代码块符号，保持纯文本段落格式以便前端渲染）：\n\n")
	builder.WriteString("【总体评价】\n(在此处简要评价文本的完整度与学术性，并给出 0-100 的预估评分)\n\n")
	builder.WriteString("【格式规范性检查】\n")
	builder.WriteString("• 学术语调：(分析是否使用了客观、正式的书面语，是否存在口语化表达)\n")
	builder.WriteString("• 标点与排版：(分析标点符号使用是否规范，是否存在错别字)\n")
	builder.WriteString("• 关键要素：(检查是否包含调查背景、方法、结果等必要环节)\n\n")
	builder.WriteString("【逻辑与内容分析】\n(在此处分析文本的逻辑连贯性，论述是否清晰，论据是否充分支持论点)\n\n")
	builder.WriteString("【具体修改建议】\n1. (给出第1条具体建议)\n2. (给出第2条具体建议)\n3. (给出第3条具体建议)\n\n")
	builder.WriteString("待分析文本：\n\"")
	builder.WriteString(text)
	builder.WriteString("\"")
	return builder.String()
}
