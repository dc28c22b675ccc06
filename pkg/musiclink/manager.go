package musiclink

import (
	"errors"
)

var (
	// ErrNoNormalizer is returned when no normalizer accepts the source.
	ErrNoNormalizer = errors.New("no normalizer found for source")
	// ErrNotRecognized is returned when every applicable normalizer came back empty.
	ErrNotRecognized = errors.New("source not recognized")
)

// Config bundles the settings of every built-in normalizer.
type Config struct {
	Title               TitleConfig
	ShortFormSeparators []string
	Description         DescriptionConfig
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Title:               DefaultTitleConfig(),
		ShortFormSeparators: nil,
		Description:         DefaultDescriptionConfig(),
	}
}

// Manager coordinates the normalizers. Structured sources come first so that a
// description or media session wins over the page title it came with.
type Manager struct {
	normalizers []Normalizer
}

// NewManager creates a manager with all built-in normalizers.
func NewManager(cfg Config) *Manager {
	return &Manager{
		normalizers: []Normalizer{
			NewMediaSessionNormalizer(),
			NewDescriptionNormalizer(cfg.Description),
			NewSoundCloudNormalizer(cfg.ShortFormSeparators),
			NewVideoTitleNormalizer(cfg.Title),
		},
	}
}

// Result is a successful normalization.
type Result struct {
	Info *TrackInfo
	// Normalizer is the name of the normalizer that produced Info.
	Normalizer string
}

// Normalize runs the applicable normalizers in order. The first result naming both an
// artist and a track wins; otherwise the first result naming either is returned, so a
// description that only yields a track line still lets the page title be tried.
func (m *Manager) Normalize(src Source) (Result, error) {
	tried := false
	var partial Result
	for _, normalizer := range m.normalizers {
		if !normalizer.CanNormalize(src) {
			continue
		}
		tried = true

		info := normalizer.Normalize(src)
		if info.IsEmpty() {
			continue
		}
		if info.Artist != "" && info.Track != "" {
			return Result{Info: info, Normalizer: normalizer.Name()}, nil
		}
		if partial.Info == nil {
			partial = Result{Info: info, Normalizer: normalizer.Name()}
		}
	}

	if partial.Info != nil {
		return partial, nil
	}
	if !tried {
		return Result{}, ErrNoNormalizer
	}
	return Result{}, ErrNotRecognized
}

// CanNormalize checks if any normalizer can handle the source.
func (m *Manager) CanNormalize(src Source) bool {
	for _, normalizer := range m.normalizers {
		if normalizer.CanNormalize(src) {
			return true
		}
	}
	return false
}
