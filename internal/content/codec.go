package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/decker502/animcore/internal/shape"
)

// Format selects the encoding used when writing records.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(name), ".") {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported content format %q", name)
}

// canonicalKeys maps lower-cased authored keys to the field names the records
// decode from. easingTime is the historical spelling of easingTimeMs.
var canonicalKeys = func() map[string]string {
	keys := []string{
		"hold", "playerKeyFrames", "itemKeyFrames", "soundFrames", "particlesFrames",
		"callbackFrames", "itemAnimationStart", "itemAnimationEnd", "legacyItemAnimation",
		"easingTimeMs", "easingFunction", "detachedAnchor", "switchArms", "pitchFollow",
		"pitchDontFollow", "fovMultiplier", "bobbingAmplitude", "elements",
		"durationFraction", "code", "randomizePitch", "range", "volume", "synchronize",
		"position", "velocity", "intensity",
	}
	table := make(map[string]string, len(keys)+1)
	for _, key := range keys {
		table[strings.ToLower(key)] = key
	}
	table["easingtime"] = "easingTimeMs"
	return table
}()

// normalizeKeys rewrites record keys to their canonical spelling. Keys inside
// elements maps are joint names and are left untouched.
func normalizeKeys(node *yaml.Node) {
	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			normalizeKeys(child)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if canonical, ok := canonicalKeys[strings.ToLower(key.Value)]; ok {
				key.Value = canonical
			}
			if key.Value == "elements" {
				continue
			}
			normalizeKeys(value)
		}
	}
}

// RawRecord is an undecoded record together with its code.
type RawRecord struct {
	Code string
	node *yaml.Node
}

// Decode decodes the record.
func (r RawRecord) Decode() (Record, error) {
	var rec Record
	if err := r.node.Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("%w: %q: %w", ErrInvalidRecord, r.Code, err)
	}
	return rec, nil
}

// Split parses a content document into raw records, in document order.
// It fails only when the document itself is malformed; individual records are
// decoded later so that one bad record does not reject its neighbours.
func Split(data []byte) ([]RawRecord, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(shape.Untab(data), &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nil, nil
	}

	normalizeKeysTopLevel(&doc)

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("content root must be a map of animation codes, got %s", kindName(root.Kind))
	}

	records := make([]RawRecord, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		records = append(records, RawRecord{Code: root.Content[i].Value, node: root.Content[i+1]})
	}
	return records, nil
}

// normalizeKeysTopLevel normalizes every record without touching the codes.
func normalizeKeysTopLevel(doc *yaml.Node) {
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return
	}
	root := doc.Content[0]
	for i := 1; i < len(root.Content); i += 2 {
		normalizeKeys(root.Content[i])
	}
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}

// Unmarshal parses a content document and decodes every record.
// Unlike the loader, it fails on the first bad record.
func Unmarshal(data []byte) (map[string]Record, error) {
	raw, err := Split(data)
	if err != nil {
		return nil, err
	}

	records := make(map[string]Record, len(raw))
	for _, r := range raw {
		rec, err := r.Decode()
		if err != nil {
			return nil, err
		}
		records[r.Code] = rec
	}
	return records, nil
}

// Marshal encodes records keyed by code. Codes are written in sorted order.
func Marshal(records map[string]Record, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		// encoding/json sorts map keys
		return json.MarshalIndent(records, "", "  ")
	case FormatYAML, "":
		root := &yaml.Node{Kind: yaml.MappingNode}
		codes := make([]string, 0, len(records))
		for code := range records {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		for _, code := range codes {
			var value yaml.Node
			if err := value.Encode(records[code]); err != nil {
				return nil, fmt.Errorf("encode %q: %w", code, err)
			}
			root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: code}, &value)
		}

		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(root); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported content format %q", format)
}
