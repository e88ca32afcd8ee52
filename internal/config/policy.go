package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy holds the tunable content rules of the engine.
type Policy struct {
	TitleMinLength   int     `yaml:"title_min_length"`
	TextMinLength    int     `yaml:"text_min_length"`
	CommentMinLength int     `yaml:"comment_min_length"`
	AnnounceLength   int     `yaml:"announce_length"`
	TagWeightFloor   float64 `yaml:"tag_weight_floor"`
	MaxPageSize      int     `yaml:"max_page_size"`
}

// DefaultPolicy 返回未提供策略文件时使用的默认值。
func DefaultPolicy() Policy {
	return Policy{
		TitleMinLength:   3,
		TextMinLength:    50,
		CommentMinLength: 10,
		AnnounceLength:   150,
		TagWeightFloor:   0.3,
		MaxPageSize:      100,
	}
}

// LoadPolicy reads a YAML policy file. Keys missing from the file keep their defaults;
// an empty path returns the defaults.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()

	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return policy, nil
	}

	raw, err := os.ReadFile(trimmed)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}

	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return Policy{}, fmt.Errorf("parse policy file: %w", err)
	}

	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}
	return policy, nil
}

// Validate rejects values the engine cannot work with.
func (p Policy) Validate() error {
	var problems []string
	if p.TitleMinLength < 0 {
		problems = append(problems, "title_min_length must not be negative")
	}
	if p.TextMinLength < 0 {
		problems = append(problems, "text_min_length must not be negative")
	}
	if p.CommentMinLength < 0 {
		problems = append(problems, "comment_min_length must not be negative")
	}
	if p.AnnounceLength <= 0 {
		problems = append(problems, "announce_length must be positive")
	}
	if p.TagWeightFloor <= 0 || p.TagWeightFloor > 1 {
		problems = append(problems, "tag_weight_floor must be in (0, 1]")
	}
	if p.MaxPageSize <= 0 {
		problems = append(problems, "max_page_size must be positive")
	}
	if len(problems) > 0 {
		return errors.New("invalid policy: " + strings.Join(problems, "; "))
	}
	return nil
}
