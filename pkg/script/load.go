package script

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/prologue/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a script source.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// fileScript is the on-disk shape of a script. Durations are milliseconds.
type fileScript struct {
	Timing fileTiming `mapstructure:"timing"`
	Block  string     `mapstructure:"block"`
	Finale fileFinale `mapstructure:"finale"`
	Lines  []fileLine `mapstructure:"lines"`
}

type fileTiming struct {
	SpeedMs           float64 `mapstructure:"speed_ms"`
	GapBetweenLinesMs float64 `mapstructure:"gap_between_lines_ms"`
	GapBeforeFadeMs   float64 `mapstructure:"gap_before_fade_ms"`
	GapBeforeFinaleMs float64 `mapstructure:"gap_before_finale_ms"`
	FadeFallbackMs    float64 `mapstructure:"fade_fallback_ms"`
}

type fileFinale struct {
	ID   string `mapstructure:"id"`
	Text string `mapstructure:"text"`
}

type fileLine struct {
	ID        string  `mapstructure:"id"`
	Container string  `mapstructure:"container"`
	Target    string  `mapstructure:"target"`
	Caret     string  `mapstructure:"caret"`
	Text      string  `mapstructure:"text"`
	SpeedMs   float64 `mapstructure:"speed_ms"`
}

// FormatFor picks the format from a file extension. Anything but .json is YAML.
func FormatFor(path string) Format {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads and validates the script at path.
func Load(path string) (domain.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Script{}, fmt.Errorf("failed to read script: %w", err)
	}
	s, err := Parse(data, FormatFor(path))
	if err != nil {
		return domain.Script{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a script.
// Timing keys that are absent keep the default timing; element ids that are
// absent default to l<n>, t<n>, c<n>, "block" and "finale".
func Parse(data []byte, format Format) (domain.Script, error) {
	raw := map[string]any{}
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return domain.Script{}, fmt.Errorf("failed to parse script json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return domain.Script{}, fmt.Errorf("failed to parse script yaml: %w", err)
		}
	default:
		return domain.Script{}, fmt.Errorf("unsupported script format %q", format)
	}

	dto := fileScript{Timing: toFileTiming(DefaultTiming())}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &dto,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return domain.Script{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return domain.Script{}, fmt.Errorf("%w: %v", domain.ErrInvalidScript, err)
	}

	s, err := dto.toDomain()
	if err != nil {
		return domain.Script{}, err
	}
	if err := s.Validate(); err != nil {
		return domain.Script{}, err
	}
	return s, nil
}

func (f fileScript) toDomain() (domain.Script, error) {
	finale, err := SanitizeText(f.Finale.Text)
	if err != nil {
		return domain.Script{}, fmt.Errorf("%w: finale: %w", domain.ErrInvalidScript, err)
	}
	timing, err := f.Timing.toDomain()
	if err != nil {
		return domain.Script{}, err
	}
	s := domain.Script{
		Timing:   timing,
		BlockID:  orDefault(f.Block, DefaultBlockID),
		FinaleID: orDefault(f.Finale.ID, DefaultFinaleID),
		Finale:   finale,
	}

	for i, l := range f.Lines {
		text, err := SanitizeText(l.Text)
		if err != nil {
			return domain.Script{}, fmt.Errorf("%w: line %d: %w", domain.ErrInvalidScript, i+1, err)
		}
		speed, err := millis(fmt.Sprintf("line %d speed_ms", i+1), l.SpeedMs)
		if err != nil {
			return domain.Script{}, err
		}
		def := defaultElements(i)
		s.Lines = append(s.Lines, domain.Line{
			ID: orDefault(l.ID, lineID(i)),
			Elements: domain.ElementIDs{
				Container: orDefault(l.Container, def.Container),
				Target:    orDefault(l.Target, def.Target),
				Caret:     orDefault(l.Caret, def.Caret),
			},
			Text:        text,
			TypingSpeed: speed,
		})
	}
	return s, nil
}

func (f fileTiming) toDomain() (domain.Timing, error) {
	var t domain.Timing
	fields := []struct {
		name string
		ms   float64
		dst  *time.Duration
	}{
		{"speed_ms", f.SpeedMs, &t.Speed},
		{"gap_between_lines_ms", f.GapBetweenLinesMs, &t.GapBetweenLines},
		{"gap_before_fade_ms", f.GapBeforeFadeMs, &t.GapBeforeFade},
		{"gap_before_finale_ms", f.GapBeforeFinaleMs, &t.GapBeforeFinale},
		{"fade_fallback_ms", f.FadeFallbackMs, &t.FadeFallback},
	}
	for _, field := range fields {
		d, err := millis(field.name, field.ms)
		if err != nil {
			return domain.Timing{}, err
		}
		*field.dst = d
	}
	return t, nil
}

func toFileTiming(t domain.Timing) fileTiming {
	return fileTiming{
		SpeedMs:           float64(t.Speed / time.Millisecond),
		GapBetweenLinesMs: float64(t.GapBetweenLines / time.Millisecond),
		GapBeforeFadeMs:   float64(t.GapBeforeFade / time.Millisecond),
		GapBeforeFinaleMs: float64(t.GapBeforeFinale / time.Millisecond),
		FadeFallbackMs:    float64(t.FadeFallback / time.Millisecond),
	}
}

// maxMillis is the largest millisecond count a time.Duration can hold.
const maxMillis = math.MaxInt64 / int64(time.Millisecond)

// millis converts a whole number of milliseconds. Negative values pass
// through for Script.Validate to report.
func millis(name string, v float64) (time.Duration, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: %s must be a whole number of milliseconds, got %v", domain.ErrInvalidScript, name, v)
	}
	if math.Abs(v) > float64(maxMillis) {
		return 0, fmt.Errorf("%w: %s is out of range (%v ms)", domain.ErrInvalidScript, name, v)
	}
	return time.Duration(int64(v)) * time.Millisecond, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func lineID(i int) string {
	return fmt.Sprintf("l%d", i+1)
}

func defaultElements(i int) domain.ElementIDs {
	n := i + 1
	return domain.ElementIDs{
		Container: fmt.Sprintf("l%d", n),
		Target:    fmt.Sprintf("t%d", n),
		Caret:     fmt.Sprintf("c%d", n),
	}
}
