package contrast

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// ColorTarget selects the visual property that receives the resolved colour.
type ColorTarget int

const (
	// TargetColor applies the result as the element's foreground colour.
	TargetColor ColorTarget = iota
	// TargetBackgroundColor applies the result as the element's background colour.
	TargetBackgroundColor
	// TargetCustomProperty applies the result to a custom property.
	TargetCustomProperty
)

// DefaultCustomProperty is used for TargetCustomProperty when no name is set.
const DefaultCustomProperty = "--contrast-color"

func (t ColorTarget) String() string {
	switch t {
	case TargetColor:
		return "color"
	case TargetBackgroundColor:
		return "background-color"
	case TargetCustomProperty:
		return "custom-property"
	default:
		return fmt.Sprintf("ColorTarget(%d)", int(t))
	}
}

// ParseColorTarget parses "color", "background-color" or "custom-property".
// An empty string yields TargetColor.
func ParseColorTarget(s string) (ColorTarget, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "color":
		return TargetColor, nil
	case "background-color", "background":
		return TargetBackgroundColor, nil
	case "custom-property", "custom":
		return TargetCustomProperty, nil
	default:
		return 0, ConfigurationError("config", fmt.Sprintf("unknown color target %q", s))
	}
}

// Config holds every engine option. Zero values select the defaults; New
// resolves them once.
type Config struct {
	// Fit is the background-size policy of the container. Default FitCover.
	Fit FitMode

	// Theme switches resolution from inversion to a two-colour pick.
	Theme *Theme

	// StrideInPixels is the sampling stride. 0 means DefaultStride.
	StrideInPixels int

	// ColorTarget selects the property the result is applied to.
	ColorTarget ColorTarget

	// CustomProperty names the property for TargetCustomProperty.
	CustomProperty string

	// Once stops Run after the first recomputation.
	Once bool

	// OnError decides what Run does with a failed recomputation. A non-nil
	// return stops Run with that error. Default: DefaultErrorHandler.
	OnError func(error) error

	Logger hclog.Logger
}

// DefaultErrorHandler stops on access and configuration errors, which will
// not go away on their own, and keeps running on everything else.
func DefaultErrorHandler(err error) error {
	switch KindOf(err) {
	case KindAccess, KindConfiguration:
		return err
	}
	return nil
}

// Property returns the name of the property results are applied to.
func (c Config) Property() string {
	if c.ColorTarget == TargetCustomProperty {
		return c.CustomProperty
	}
	return c.ColorTarget.String()
}

// Resolve validates c and fills in defaults.
func (c Config) Resolve() (Config, error) {
	switch c.Fit {
	case FitCover, FitContain:
	default:
		return Config{}, ConfigurationError("config", fmt.Sprintf("unsupported fit mode %v", c.Fit))
	}

	if c.StrideInPixels < 0 {
		return Config{}, ConfigurationError("config",
			fmt.Sprintf("strideInPixels must be positive, got %d", c.StrideInPixels))
	}
	if c.StrideInPixels == 0 {
		c.StrideInPixels = DefaultStride
	}

	if c.Theme != nil {
		theme, err := c.Theme.normalize()
		if err != nil {
			return Config{}, &Error{Kind: KindConfiguration, Op: "config", Msg: "invalid theme colour", Err: err}
		}
		c.Theme = &theme
	}

	switch c.ColorTarget {
	case TargetColor, TargetBackgroundColor:
		c.CustomProperty = ""
	case TargetCustomProperty:
		if c.CustomProperty == "" {
			c.CustomProperty = DefaultCustomProperty
		}
		if !strings.HasPrefix(c.CustomProperty, "--") {
			return Config{}, ConfigurationError("config",
				fmt.Sprintf("custom property %q must start with --", c.CustomProperty))
		}
	default:
		return Config{}, ConfigurationError("config", fmt.Sprintf("unsupported color target %v", c.ColorTarget))
	}

	if c.OnError == nil {
		c.OnError = DefaultErrorHandler
	}
	if c.Logger == nil {
		c.Logger = hclog.NewNullLogger()
	}
	return c, nil
}
