package musiclink

import (
	"regexp"
	"strings"

	"nowplaying/pkg/text"
)

var (
	// genreTagRegex matches a leading "[Genre]" or "【Genre】" tag and a dash after it.
	genreTagRegex = regexp.MustCompile(`^(?:\[[^\]]*\]|【[^】]*】)\s*-*\s*`)
	// trackNumberRegex matches CD and vinyl track numbers such as "01. " or "A2. ".
	trackNumberRegex = regexp.MustCompile(`^[A-Za-z]?[0-9]{1,2}\.\s+`)
	// dashBeforeBracketRegex matches a dash in front of a CJK opening bracket.
	dashBeforeBracketRegex = regexp.MustCompile(`-\s*([「【『])`)
	musicVideoTagRegex     = regexp.MustCompile(`(?i)[(【][^)】]*\b(?:MV|PV)\b[^)】]*[】)]`)
	originalWorkTagRegex   = regexp.MustCompile(`[(【](?:オリジナル|東方)[^)】]*[】)]`)
	musicVideoBracketRegex = regexp.MustCompile(`(?i)\b(?:MV|PV)([「【『』】」])`)
	musicVideoSuffixRegex  = regexp.MustCompile(`(?i)\s+(?:MV|PV)$`)
	multiSpaceRegex        = regexp.MustCompile(`\s{2,}`)

	// noiseRegexes remove common video-specific markers.
	noiseRegexes = compileNoisePatterns([]string{
		`official\s+(?:music\s+)?video`,
		`official\s+audio`,
		`official\s+lyric\s+video`,
		`official\s+visuali[sz]er`,
		`lyric\s+video`,
		`lyrics?`,
		`audio`,
		`visuali[sz]er`,
		`hd`,
		`hq`,
		`4k`,
	})

	// invertedRegex matches "Track (by Artist)" and "Track (cover by Artist) notes".
	invertedRegex = regexp.MustCompile(`(?i)^(.+?)\s*\(\s*(?:([^()]*?)\s+)?by\s+([^()]+?)\s*\)`)
	// invertedRejectRegex marks qualifiers that name a remixer or producer, not the artist.
	invertedRejectRegex = regexp.MustCompile(`(?i)\b(?:remix|mix|edit|prod\.?|produced|rework|bootleg)\b`)
	// quotedRegex matches `Artist "Track"`, `Artist: "Track"` and `Artist - "Track"`.
	quotedRegex = regexp.MustCompile(`^(.+?)[\s:—–-]+["“](.+?)["”]`)
	// cjkQuotedRegex matches Artist「Track」 and Artist『Track』.
	cjkQuotedRegex = regexp.MustCompile(`^(.+?)\s*[『「](.+?)[」』]`)
	// bracketArtistRegex matches Track【Artist】.
	bracketArtistRegex = regexp.MustCompile(`^(.+?)【(.+?)】`)
)

func compileNoisePatterns(patterns []string) []*regexp.Regexp {
	regexes := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		regexes = append(regexes, regexp.MustCompile(`(?i)\s*[(\[]\s*`+pattern+`\s*[)\]]`))
	}
	return regexes
}

// TitleConfig configures the video title normalizer.
type TitleConfig struct {
	// Separators are handed to the artist/track splitter. Empty means text.DefaultSeparators.
	Separators []string
}

// DefaultTitleConfig returns the documented defaults.
func DefaultTitleConfig() TitleConfig {
	return TitleConfig{
		Separators: text.DefaultSeparators,
	}
}

// titleRule is one recognizer in the title pipeline.
type titleRule struct {
	name  string
	match func(title string) (text.ArtistTrack, bool)
}

// TitleParser parses free-form video titles.
type TitleParser struct {
	rules []titleRule
}

// NewTitleParser builds the ordered rule list; the first rule that matches wins.
func NewTitleParser(cfg TitleConfig) *TitleParser {
	separators := cfg.Separators

	return &TitleParser{
		rules: []titleRule{
			{name: "inverted", match: matchInverted},
			{name: "quoted", match: matchQuoted},
			{name: "separator", match: func(title string) (text.ArtistTrack, bool) {
				result := text.SplitArtistTrack(title, text.WithSeparators(separators))
				return result, !result.IsEmpty()
			}},
			{name: "bracket-artist", match: matchBracketArtist},
		},
	}
}

var defaultTitleParser = NewTitleParser(DefaultTitleConfig())

// ParseVideoTitle parses a video title with the default configuration.
func ParseVideoTitle(title string) TrackInfo {
	return defaultTitleParser.Parse(title)
}

// Parse extracts artist and track from a video title. When no pattern matches, the
// cleaned title is the track and the artist is empty.
func (p *TitleParser) Parse(title string) TrackInfo {
	cleaned := cleanTitle(title)
	if cleaned == "" {
		return TrackInfo{}
	}

	for _, rule := range p.rules {
		if result, ok := rule.match(cleaned); ok {
			return TrackInfo{Artist: result.Artist, Track: result.Track}
		}
	}

	return TrackInfo{Track: cleaned}
}

// cleanTitle removes tags and markers that are never part of the artist or track.
func cleanTitle(title string) string {
	cleaned := text.NormalizeText(title)

	cleaned = genreTagRegex.ReplaceAllString(cleaned, "")
	cleaned = trackNumberRegex.ReplaceAllString(cleaned, "")
	cleaned = dashBeforeBracketRegex.ReplaceAllString(cleaned, "$1")
	cleaned = musicVideoTagRegex.ReplaceAllString(cleaned, "")
	cleaned = originalWorkTagRegex.ReplaceAllString(cleaned, "")
	cleaned = musicVideoBracketRegex.ReplaceAllString(cleaned, "$1")
	cleaned = musicVideoSuffixRegex.ReplaceAllString(cleaned, "")

	for _, re := range noiseRegexes {
		cleaned = re.ReplaceAllString(cleaned, "")
	}

	cleaned = multiSpaceRegex.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

func matchInverted(title string) (text.ArtistTrack, bool) {
	matches := invertedRegex.FindStringSubmatch(title)
	if matches == nil {
		return text.ArtistTrack{}, false
	}
	if invertedRejectRegex.MatchString(matches[2]) {
		return text.ArtistTrack{}, false
	}

	return pairOf(matches[3], matches[1])
}

func matchQuoted(title string) (text.ArtistTrack, bool) {
	for _, re := range []*regexp.Regexp{quotedRegex, cjkQuotedRegex} {
		if matches := re.FindStringSubmatch(title); matches != nil {
			return pairOf(matches[1], matches[2])
		}
	}
	return text.ArtistTrack{}, false
}

func matchBracketArtist(title string) (text.ArtistTrack, bool) {
	matches := bracketArtistRegex.FindStringSubmatch(title)
	if matches == nil {
		return text.ArtistTrack{}, false
	}
	return pairOf(matches[2], matches[1])
}

// pairOf trims both parts and accepts the pair only when both are present.
func pairOf(artist, track string) (text.ArtistTrack, bool) {
	artist = strings.TrimSpace(artist)
	track = strings.TrimSpace(track)
	if artist == "" || track == "" {
		return text.ArtistTrack{}, false
	}
	return text.ArtistTrack{Artist: artist, Track: track}, true
}

// VideoTitleNormalizer adapts TitleParser to the Normalizer interface.
type VideoTitleNormalizer struct {
	parser *TitleParser
}

// NewVideoTitleNormalizer creates a video title normalizer.
func NewVideoTitleNormalizer(cfg TitleConfig) *VideoTitleNormalizer {
	return &VideoTitleNormalizer{parser: NewTitleParser(cfg)}
}

func (n *VideoTitleNormalizer) Name() string {
	return string(KindVideoTitle)
}

// CanNormalize accepts video titles and the fallback title of any structured source.
func (n *VideoTitleNormalizer) CanNormalize(src Source) bool {
	kind := src.EffectiveKind()
	if kind == KindVideoTitle {
		return true
	}
	return kind != KindShortTitle && src.FallbackTitle != ""
}

func (n *VideoTitleNormalizer) Normalize(src Source) *TrackInfo {
	info := n.parser.Parse(src.title())
	return &info
}
