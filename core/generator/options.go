package generator

import "time"

// Defaults of a generator without options.
const (
	DefaultURL         = "http://localhost:11434"
	DefaultModel       = "llama3.2"
	DefaultTimeout     = 120 * time.Second
	DefaultTemperature = 0.7
	DefaultTopP        = 0.9
)

type Option func(*Options)

type Options struct {
	URL         string
	ApiKey      string
	Model       string
	Timeout     time.Duration
	Temperature float64
	TopP        float64
}

func WithURL(url string) Option {
	return func(o *Options) {
		o.URL = url
	}
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithTimeout bounds the whole request including reading the response
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

func WithTemperature(temperature float64) Option {
	return func(o *Options) {
		o.Temperature = temperature
	}
}

func WithTopP(topP float64) Option {
	return func(o *Options) {
		o.TopP = topP
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		URL:         DefaultURL,
		Model:       DefaultModel,
		Timeout:     DefaultTimeout,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
