package entity

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// modifierList decodes the `modifiers:` list of a field. Each item is
// either a bare kind ("not-null") or a single-key mapping from kind to
// its parameters ({primary-key: {auto_increment: true}}).
type modifierList []Modifier

func (l *modifierList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: modifiers must be a list", value.Line)
	}

	out := make(modifierList, 0, len(value.Content))
	for _, item := range value.Content {
		var (
			kind   string
			params *yaml.Node
		)
		switch item.Kind {
		case yaml.ScalarNode:
			kind = item.Value
		case yaml.MappingNode:
			if len(item.Content) != 2 {
				return fmt.Errorf("line %d: modifier mapping must have exactly one key", item.Line)
			}
			kind = item.Content[0].Value
			params = item.Content[1]
		default:
			return fmt.Errorf("line %d: unsupported modifier syntax", item.Line)
		}

		m, err := decodeModifier(ModifierKind(kind), params)
		if err != nil {
			return fmt.Errorf("line %d: %w", item.Line, err)
		}
		out = append(out, m)
	}

	*l = out
	return nil
}

func decodeModifier(kind ModifierKind, params *yaml.Node) (Modifier, error) {
	switch kind {
	case KindPrimaryKey:
		var m PrimaryKey
		err := decodeParams(params, &m)
		return m, err
	case KindNotNull:
		return NotNull{}, nil
	case KindIgnore:
		return Ignore{}, nil
	case KindLogicalDeleteFlag:
		return LogicalDeleteFlag{}, nil
	case KindUUIDAsBinary:
		return UUIDAsBinary{}, nil
	case KindUUIDAsText:
		return UUIDAsText{}, nil
	case KindDefaultValue:
		var m DefaultValue
		err := decodeShorthand(params, &m, &m.Value)
		return m, err
	case KindExplicitColumnName:
		var m ExplicitColumnName
		err := decodeShorthand(params, &m, &m.Name)
		return m, err
	case KindComment:
		var m Comment
		err := decodeShorthand(params, &m, &m.Text)
		return m, err
	case KindHashDigest:
		var m HashDigest
		if params != nil && params.Kind == yaml.ScalarNode {
			m.Algorithm = DigestAlgorithm(params.Value)
			return m, nil
		}
		err := decodeParams(params, &m)
		return m, err
	case KindTextLengthHint:
		var m TextLengthHint
		if params != nil && params.Kind == yaml.ScalarNode {
			err := params.Decode(&m.Estimated)
			return m, err
		}
		err := decodeParams(params, &m)
		return m, err
	case KindTypeOverride:
		var m TypeOverride
		err := decodeShorthand(params, &m, &m.Type)
		return m, err
	case KindCharLength:
		var m CharLength
		err := decodeParams(params, &m)
		return m, err
	case KindDecimalPrecision:
		m := DecimalPrecision{Precision: 10, Scale: 2}
		err := decodeParams(params, &m)
		return m, err
	case KindGeo:
		m := Geo{Type: GeometryAny, SRID: 4326}
		if err := decodeParams(params, &m); err != nil {
			return nil, err
		}
		if !IsGeometryKind(string(m.Type)) {
			return nil, fmt.Errorf("unknown geometry type %q", m.Type)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown modifier %q", kind)
	}
}

func decodeParams(params *yaml.Node, v any) error {
	if params == nil || params.Kind == yaml.ScalarNode && params.Tag == "!!null" {
		return nil
	}
	if params.Kind != yaml.MappingNode {
		return fmt.Errorf("modifier parameters must be a mapping")
	}
	return params.Decode(v)
}

// decodeShorthand accepts either a parameter mapping or a single scalar
// assigned to the modifier's main parameter.
func decodeShorthand(params *yaml.Node, v any, main *string) error {
	if params != nil && params.Kind == yaml.ScalarNode && params.Tag != "!!null" {
		*main = params.Value
		return nil
	}
	return decodeParams(params, v)
}
