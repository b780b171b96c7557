package static

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/8ddieHu0314/skill-lab/internal/skill"
)

// FieldRule declares the constraints for one frontmatter field. Each
// rule backs exactly one check, keeping the one-check-per-constraint
// granularity the scoring depends on.
type FieldRule struct {
	Meta Meta

	// FieldName is the frontmatter key to validate.
	FieldName string

	// Required fails when the field is missing; OptionalPass passes
	// instead. Exactly one of the two should be set for fields that
	// may be absent.
	Required     bool
	OptionalPass bool

	// MustBeString / MustBeStringMap constrain the YAML type.
	MustBeString    bool
	MustBeStringMap bool

	NotBlank      bool
	MaxLength     int
	Pattern       *regexp.Regexp
	PatternMsg    string
	NoConsecutive string
	NoConsecMsg   string

	MissingMsg string
	BlankMsg   string
	LengthMsg  string // fmt with (max, got)
	TypeMsg    string // fmt with actual type
	PassMsg    string // fmt with value or length where it has a %s/%d verb
	AbsentMsg  string
}

var nameFormatPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$|^[a-z0-9]$`)

// frontmatterSchema is the single source of truth for frontmatter
// field constraints.
var frontmatterSchema = []FieldRule{
	{
		Meta: Meta{
			ID: "naming.required", Name: "Name Required",
			Description: "Name field is present in frontmatter",
			Severity:    SeverityError, Dimension: DimNaming,
		},
		FieldName:  "name",
		Required:   true,
		MissingMsg: "Name field is missing or empty in frontmatter",
		PassMsg:    "Name field present: '%v'",
	},
	{
		Meta: Meta{
			ID: "naming.format", Name: "Name Format",
			Description: "Name is lowercase, hyphen-separated, max 64 chars",
			Severity:    SeverityError, Dimension: DimNaming,
		},
		FieldName:     "name",
		Required:      true,
		MaxLength:     64,
		Pattern:       nameFormatPattern,
		PatternMsg:    "Name must be lowercase letters, numbers, and hyphens only, and must not start or end with a hyphen",
		NoConsecutive: "--",
		NoConsecMsg:   "Name should not contain consecutive hyphens",
		MissingMsg:    "No name to validate",
		PassMsg:       "Name '%v' follows format rules",
	},
	{
		Meta: Meta{
			ID: "description.required", Name: "Description Required",
			Description: "Description field is present in frontmatter",
			Severity:    SeverityError, Dimension: DimDescription,
		},
		FieldName:  "description",
		Required:   true,
		MissingMsg: "Description field is missing from frontmatter",
		PassMsg:    "Description field present",
	},
	{
		Meta: Meta{
			ID: "description.not-empty", Name: "Description Not Empty",
			Description: "Description is not empty or whitespace-only",
			Severity:    SeverityError, Dimension: DimDescription,
		},
		FieldName: "description",
		NotBlank:  true,
		BlankMsg:  "Description is empty or whitespace-only",
		PassMsg:   "Description has content (%d characters)",
	},
	{
		Meta: Meta{
			ID: "description.max-length", Name: "Description Max Length",
			Description: "Description is under 1024 characters",
			Severity:    SeverityError, Dimension: DimDescription,
		},
		FieldName: "description",
		MaxLength: 1024,
		LengthMsg: "Description exceeds %d characters (got %d)",
		PassMsg:   "Description length OK (%d characters)",
	},
	{
		Meta: Meta{
			ID: "frontmatter.compatibility-length", Name: "Compatibility Length",
			Description: "Compatibility field is under 500 characters if provided",
			Severity:    SeverityError, Dimension: DimStructure,
		},
		FieldName:    "compatibility",
		OptionalPass: true,
		MustBeString: true,
		TypeMsg:      "Compatibility field must be a string, got %s",
		NotBlank:     true,
		BlankMsg:     "Compatibility field is empty (must be 1-500 characters if provided)",
		MaxLength:    500,
		LengthMsg:    "Compatibility field exceeds %d characters (got %d)",
		PassMsg:      "Compatibility field is valid (%d characters)",
		AbsentMsg:    "Compatibility field not present (optional)",
	},
	{
		Meta: Meta{
			ID: "frontmatter.metadata-format", Name: "Metadata Format",
			Description: "Metadata field is a string-to-string mapping if provided",
			Severity:    SeverityError, Dimension: DimStructure,
		},
		FieldName:       "metadata",
		OptionalPass:    true,
		MustBeStringMap: true,
		TypeMsg:         "Metadata field must be a mapping, got %s",
		PassMsg:         "Metadata field is valid (%d entries)",
		AbsentMsg:       "Metadata field not present (optional)",
	},
	{
		Meta: Meta{
			ID: "frontmatter.license-format", Name: "License Format",
			Description: "License field is a string if provided",
			Severity:    SeverityWarning, Dimension: DimStructure,
		},
		FieldName:    "license",
		OptionalPass: true,
		MustBeString: true,
		TypeMsg:      "License field must be a string, got %s",
		PassMsg:      "License field is valid",
		AbsentMsg:    "License field not present (optional)",
	},
	{
		Meta: Meta{
			ID: "frontmatter.allowed-tools-format", Name: "Allowed Tools Format",
			Description: "Allowed-tools field is a space-delimited string if provided",
			Severity:    SeverityWarning, Dimension: DimStructure,
		},
		FieldName:    "allowed-tools",
		OptionalPass: true,
		MustBeString: true,
		TypeMsg:      "Allowed-tools must be a space-delimited string, got %s. Use 'tool1 tool2 tool3' format instead of a YAML list.",
		PassMsg:      "Allowed-tools field is valid (space-delimited string)",
		AbsentMsg:    "Allowed-tools field not present (optional)",
	},
}

// fieldRuleCheck interprets one FieldRule as a Check.
type fieldRuleCheck struct {
	rule FieldRule
}

func (c fieldRuleCheck) Meta() Meta { return c.rule.Meta }

func (c fieldRuleCheck) Run(s *skill.Skill) Result {
	rule := c.rule
	location := skillFileLocation(s)

	if s.Metadata == nil {
		return rule.Meta.fail(location, "No frontmatter available to check %s field", rule.FieldName)
	}

	value, present := s.Metadata.Raw[rule.FieldName]
	if !present {
		if rule.OptionalPass {
			return rule.Meta.pass(location, "%s", rule.AbsentMsg)
		}
		if rule.Required {
			return rule.Meta.fail(location, "%s", rule.MissingMsg)
		}
	}

	if rule.MustBeString {
		str, ok := value.(string)
		if !ok {
			return rule.Meta.failWithDetails(location,
				fmt.Sprintf(rule.TypeMsg, typeName(value)),
				map[string]interface{}{"type": typeName(value)})
		}
		return c.validateString(str, location)
	}

	if rule.MustBeStringMap {
		return c.validateStringMap(value, location)
	}

	str, _ := value.(string)
	if rule.Required && strings.TrimSpace(str) == "" {
		return rule.Meta.fail(location, "%s", rule.MissingMsg)
	}
	return c.validateString(str, location)
}

func (c fieldRuleCheck) validateString(value, location string) Result {
	rule := c.rule

	if rule.NotBlank && strings.TrimSpace(value) == "" {
		return rule.Meta.fail(location, "%s", rule.BlankMsg)
	}

	// naming.format accumulates all violations into one message; the
	// length-only rules fail immediately.
	var errs []string
	if rule.MaxLength > 0 && len(value) > rule.MaxLength {
		if rule.Pattern != nil || rule.NoConsecutive != "" {
			errs = append(errs, fmt.Sprintf("Name exceeds %d characters (got %d)", rule.MaxLength, len(value)))
		} else {
			r := rule.Meta.fail(location, rule.LengthMsg, rule.MaxLength, len(value))
			r.Details = map[string]interface{}{"length": len(value), "max_length": rule.MaxLength}
			return r
		}
	}
	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		errs = append(errs, rule.PatternMsg)
	}
	if rule.NoConsecutive != "" && strings.Contains(value, rule.NoConsecutive) {
		errs = append(errs, rule.NoConsecMsg)
	}
	if len(errs) > 0 {
		return rule.Meta.failWithDetails(location, strings.Join(errs, "; "),
			map[string]interface{}{"value": value, "errors": errs})
	}

	return passForString(rule, value, location)
}

func (c fieldRuleCheck) validateStringMap(value interface{}, location string) Result {
	rule := c.rule

	entries, ok := asStringKeyedMap(value)
	if !ok {
		return rule.Meta.failWithDetails(location,
			fmt.Sprintf(rule.TypeMsg, typeName(value)),
			map[string]interface{}{"type": typeName(value)})
	}

	var invalid []string
	for k, v := range entries {
		if _, ok := v.(string); !ok {
			invalid = append(invalid, fmt.Sprintf("%s: %s", k, typeName(v)))
		}
	}
	if len(invalid) > 0 {
		return rule.Meta.failWithDetails(location,
			"Metadata must be a string-to-string mapping; non-string values: "+strings.Join(invalid, ", "),
			map[string]interface{}{"invalid_values": invalid})
	}

	return rule.Meta.pass(location, rule.PassMsg, len(entries))
}

// passForString formats the pass message, which may want the value,
// the length, or nothing depending on the rule.
func passForString(rule FieldRule, value, location string) Result {
	switch {
	case strings.Contains(rule.PassMsg, "%d"):
		return rule.Meta.pass(location, rule.PassMsg, len(value))
	case strings.Contains(rule.PassMsg, "%v"):
		return rule.Meta.pass(location, rule.PassMsg, value)
	default:
		return rule.Meta.pass(location, "%s", rule.PassMsg)
	}
}

// asStringKeyedMap normalizes the two map shapes YAML decoders
// produce.
func asStringKeyedMap(value interface{}) (map[string]interface{}, bool) {
	switch m := value.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = v
		}
		return out, true
	default:
		return nil, false
	}
}

func typeName(value interface{}) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64, float64:
		return "number"
	case []interface{}:
		return "list"
	case map[string]interface{}, map[interface{}]interface{}:
		return "mapping"
	default:
		return fmt.Sprintf("%T", value)
	}
}
