package document

import (
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/token"
)

// ErrInvalidDocument is returned when the document parses but its top-level
// value is not a mapping (empty document, bare scalar, sequence).
var ErrInvalidDocument = errors.New("invalid document")

// ParseError reports malformed document text. Line and Column are 1-based and
// zero when the position is unknown.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}

// tokenError is satisfied by the YAML library's positioned errors.
type tokenError interface {
	GetToken() *token.Token
	GetMessage() string
}

var positionPrefix = regexp.MustCompile(`^\s*\[(\d+):(\d+)\]\s*`)

// Load parses text into a Value. The top-level value must be a mapping.
func Load(text string) (Value, error) {
	var raw any
	err := yaml.UnmarshalWithOptions([]byte(text), &raw, yaml.UseOrderedMap())
	if err != nil && !errors.Is(err, io.EOF) {
		return Value{}, newParseError(err)
	}
	v, err := fromRaw(raw)
	if err != nil {
		return Value{}, err
	}
	if v.Kind() != KindMapping {
		if v.IsNull() {
			return Value{}, fmt.Errorf("%w: document is empty", ErrInvalidDocument)
		}
		return Value{}, fmt.Errorf("%w: top-level value is a %s, expected a mapping", ErrInvalidDocument, v.Kind())
	}
	return v, nil
}

func newParseError(err error) *ParseError {
	pe := &ParseError{Message: err.Error()}
	var te tokenError
	if errors.As(err, &te) {
		pe.Message = te.GetMessage()
		if tk := te.GetToken(); tk != nil && tk.Position != nil {
			pe.Line = tk.Position.Line
			pe.Column = tk.Position.Column
		}
		return pe
	}
	if m := positionPrefix.FindStringSubmatch(pe.Message); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
		pe.Column, _ = strconv.Atoi(m[2])
		pe.Message = pe.Message[len(m[0]):]
	}
	return pe
}

// fromRaw converts the YAML library's decoded form into a Value.
func fromRaw(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return fromUint(uint64(x)), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return fromUint(x), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case time.Time:
		return String(x.Format(time.RFC3339Nano)), nil
	case []any:
		items := make([]Value, 0, len(x))
		for _, item := range x {
			v, err := fromRaw(item)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return Sequence(items...), nil
	case yaml.MapSlice:
		fields := make([]Field, 0, len(x))
		seen := make(map[string]bool, len(x))
		for _, item := range x {
			key := keyText(item.Key)
			if seen[key] {
				return Value{}, &ParseError{Message: fmt.Sprintf("mapping key %q already defined", key)}
			}
			seen[key] = true
			v, err := fromRaw(item.Value)
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, Field{Key: key, Value: v})
		}
		return Mapping(fields...), nil
	case map[string]any:
		// Only reached when ordered decoding is bypassed; sort for a stable order.
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ms := make(yaml.MapSlice, 0, len(x))
		for _, k := range keys {
			ms = append(ms, yaml.MapItem{Key: k, Value: x[k]})
		}
		return fromRaw(ms)
	default:
		return String(fmt.Sprint(x)), nil
	}
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

func keyText(k any) string {
	switch x := k.(type) {
	case string:
		return x
	case nil:
		return "null"
	default:
		v, err := fromRaw(x)
		if err != nil || v.IsMapping() || v.IsSequence() {
			return fmt.Sprint(x)
		}
		return v.Text()
	}
}
