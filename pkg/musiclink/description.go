package musiclink

import (
	"regexp"
	"strings"

	"nowplaying/pkg/fuzzy"
	"nowplaying/pkg/text"
)

// DescriptionConfig configures the structured description normalizer.
type DescriptionConfig struct {
	// Separator splits the track line into track and artists.
	Separator string
	// IgnorePrefixes mark preamble, release date and disclaimer lines.
	IgnorePrefixes []string
	// IgnoreMarkers mark copyright lines wherever they appear in the line.
	IgnoreMarkers []string
	// CreditRoles mark "Role: Name" credit lines.
	CreditRoles []string
}

// DefaultDescriptionConfig returns the defaults for YouTube's auto-generated descriptions.
func DefaultDescriptionConfig() DescriptionConfig {
	return DescriptionConfig{
		Separator: " · ",
		IgnorePrefixes: []string{
			"Provided to YouTube by",
			"Released on:",
			"Auto-generated by YouTube",
		},
		IgnoreMarkers: []string{"℗", "©"},
		CreditRoles: []string{
			"Lyricist", "Composer", "Composer Lyricist", "Producer", "Co-Producer",
			"Arranger", "Writer", "Author", "Mixer", "Mixing Engineer", "Mastering Engineer",
			"Recording Engineer", "Engineer", "Associated Performer", "Featured Artist",
			"Music Publisher", "Studio Personnel", "Conductor", "Orchestra", "Vocals",
		},
	}
}

// DescriptionParser parses multi-line "Track · Artist" description blocks.
type DescriptionParser struct {
	separator      string
	ignorePrefixes []string
	ignoreMarkers  []string
	creditRegex    *regexp.Regexp
}

// NewDescriptionParser compiles cfg. Empty fields fall back to the defaults.
func NewDescriptionParser(cfg DescriptionConfig) *DescriptionParser {
	defaults := DefaultDescriptionConfig()
	if cfg.Separator == "" {
		cfg.Separator = defaults.Separator
	}
	if len(cfg.IgnorePrefixes) == 0 {
		cfg.IgnorePrefixes = defaults.IgnorePrefixes
	}
	if len(cfg.IgnoreMarkers) == 0 {
		cfg.IgnoreMarkers = defaults.IgnoreMarkers
	}
	if len(cfg.CreditRoles) == 0 {
		cfg.CreditRoles = defaults.CreditRoles
	}

	roles := make([]string, 0, len(cfg.CreditRoles))
	for _, role := range cfg.CreditRoles {
		roles = append(roles, regexp.QuoteMeta(role))
	}

	return &DescriptionParser{
		separator:      cfg.Separator,
		ignorePrefixes: cfg.IgnorePrefixes,
		ignoreMarkers:  cfg.IgnoreMarkers,
		creditRegex:    regexp.MustCompile(`(?i)^(?:` + strings.Join(roles, "|") + `)\s*:`),
	}
}

var defaultDescriptionParser = NewDescriptionParser(DefaultDescriptionConfig())

// ParseVideoDescription parses a description block with the default configuration.
func ParseVideoDescription(desc string) *TrackInfo {
	return defaultDescriptionParser.Parse(desc)
}

// Parse returns nil when desc is empty or has no track line, which means the description is
// not in this format. Artists after the second are appended to the track as "(feat. ...)".
func (p *DescriptionParser) Parse(desc string) *TrackInfo {
	if desc == "" {
		return nil
	}

	lines := p.meaningfulLines(desc)
	if len(lines) == 0 {
		return nil
	}

	info := &TrackInfo{}
	if len(lines) > 1 {
		info.Album = lines[1]
	}

	fields := p.splitTrackLine(lines[0])
	info.Track = fields[0]
	if len(fields) < 2 {
		return info
	}

	info.Artist = fields[1]
	if featArtists := fields[2:]; len(featArtists) > 0 && !mentionsAll(info.Track, featArtists) {
		info.Track += " (feat. " + strings.Join(featArtists, ", ") + ")"
	}

	return info
}

// meaningfulLines returns the normalized lines that may hold the track or the album,
// in order, at most two.
func (p *DescriptionParser) meaningfulLines(desc string) []string {
	var lines []string
	for _, line := range strings.Split(desc, "\n") {
		line = text.NormalizeLine(line)
		if line == "" || p.isIgnored(line) {
			continue
		}

		lines = append(lines, line)
		if len(lines) == 2 {
			break
		}
	}
	return lines
}

func (p *DescriptionParser) isIgnored(line string) bool {
	for _, prefix := range p.ignorePrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	for _, marker := range p.ignoreMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return p.creditRegex.MatchString(line)
}

func (p *DescriptionParser) splitTrackLine(line string) []string {
	var fields []string
	for _, field := range strings.Split(line, p.separator) {
		field = strings.TrimSpace(field)
		if field != "" {
			fields = append(fields, field)
		}
	}
	if len(fields) == 0 {
		return []string{line}
	}
	return fields
}

// mentionsAll reports whether every artist already appears in the track title.
func mentionsAll(track string, artists []string) bool {
	normalizer := fuzzy.NewNormalizer()
	for _, artist := range artists {
		if !normalizer.ContainsWords(track, artist) {
			return false
		}
	}
	return true
}

// DescriptionNormalizer adapts DescriptionParser to the Normalizer interface.
type DescriptionNormalizer struct {
	parser *DescriptionParser
}

// NewDescriptionNormalizer creates a structured description normalizer.
func NewDescriptionNormalizer(cfg DescriptionConfig) *DescriptionNormalizer {
	return &DescriptionNormalizer{parser: NewDescriptionParser(cfg)}
}

func (n *DescriptionNormalizer) Name() string {
	return string(KindDescription)
}

func (n *DescriptionNormalizer) CanNormalize(src Source) bool {
	return src.EffectiveKind() == KindDescription
}

func (n *DescriptionNormalizer) Normalize(src Source) *TrackInfo {
	return n.parser.Parse(src.Text)
}
