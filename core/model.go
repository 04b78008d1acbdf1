package core

import "fmt"

const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
)

type ModelConfig struct {
	Name        string  `json:"name" yaml:"name"`
	Provider    string  `json:"provider,omitempty" yaml:"provider,omitempty"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
	TopP        float64 `json:"top_p,omitempty" yaml:"top_p,omitempty"`
}

func DefaultModelConfig(name string) ModelConfig {
	return ModelConfig{
		Name:        name,
		Temperature: 0.2,
		MaxTokens:   1500,
	}
}

func (m ModelConfig) WithName(name string) ModelConfig {
	m.Name = name
	return m
}

func (m ModelConfig) WithTemperature(t float64) ModelConfig {
	m.Temperature = t
	return m
}

func (m ModelConfig) WithMaxTokens(t int) ModelConfig {
	m.MaxTokens = t
	return m
}

func (m ModelConfig) WithProvider(p string) ModelConfig {
	m.Provider = p
	return m
}

// Validate checks the sampling bounds accepted by the chat providers.
func (m ModelConfig) Validate() error {
	if m.Temperature < MinTemperature || m.Temperature > MaxTemperature {
		return fmt.Errorf("%w: temperature %.2f outside [%.1f, %.1f]",
			ErrInvalidRequest, m.Temperature, MinTemperature, MaxTemperature)
	}
	if m.MaxTokens <= 0 {
		return fmt.Errorf("%w: max tokens must be positive, got %d", ErrInvalidRequest, m.MaxTokens)
	}
	return nil
}
