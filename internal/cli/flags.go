package cli

import (
	"time"

	"codeberg.org/snonux/paperpush/internal/cache"
	"codeberg.org/snonux/paperpush/internal/model"
	"codeberg.org/snonux/paperpush/internal/notify"
	"codeberg.org/snonux/paperpush/internal/processor"
	"codeberg.org/snonux/paperpush/internal/topics"
)

// DefaultTopics is searched when no topics are configured.
const DefaultTopics = "cs.IR,cs.AI,cs.CL"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	LogLevel   string
	ListModels bool
	Archive    bool

	// Search flags
	Topics     string
	TopicsFile string
	Limit      int

	// Model flags
	Backend         string
	GeminiModel     string
	DeepSeekModel   string
	DeepSeekBaseURL string
	RetryAttempts   int
	RetryDelay      time.Duration

	// Cache flags
	CacheFile string

	// Notification flags
	Webhook      string
	PushInterval time.Duration
	Label        string
	BannerImage  string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		LogLevel:        "info",
		Topics:          DefaultTopics,
		Limit:           processor.DefaultLimit,
		Backend:         model.BackendGemini,
		GeminiModel:     model.DefaultGeminiModel,
		DeepSeekModel:   model.DefaultDeepSeekModel,
		DeepSeekBaseURL: model.DefaultDeepSeekBaseURL,
		RetryAttempts:   model.DefaultAttempts,
		RetryDelay:      model.DefaultBaseDelay,
		CacheFile:       cache.DefaultFile,
		PushInterval:    notify.DefaultInterval,
		Label:           processor.DefaultLabel,
	}
}

// TopicList merges the comma separated topics with the topics file, if any.
func (f *Flags) TopicList() ([]string, error) {
	list := topics.Parse(f.Topics)
	if f.TopicsFile == "" {
		return list, nil
	}
	fromFile, err := topics.ReadFile(f.TopicsFile)
	if err != nil {
		return nil, err
	}
	return topics.Merge(list, fromFile), nil
}

// ModelConfig returns the backend settings for apiKey.
func (f *Flags) ModelConfig(apiKey string) model.Config {
	return model.Config{
		Backend:         f.Backend,
		APIKey:          apiKey,
		GeminiModel:     f.GeminiModel,
		DeepSeekModel:   f.DeepSeekModel,
		DeepSeekBaseURL: f.DeepSeekBaseURL,
	}
}

// RetryPolicy returns the retry settings for model calls.
func (f *Flags) RetryPolicy() model.RetryPolicy {
	return model.RetryPolicy{Attempts: f.RetryAttempts, BaseDelay: f.RetryDelay}
}
