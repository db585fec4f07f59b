package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/philipp01105/nlog-channels/core"
)

// Load reads a YAML or JSON configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document. Mapping order is kept, so
// handlers appear in the order they are written. JSON is accepted as a
// YAML subset.
//
//	default_channel: app
//	processor: [hostname, uid]
//	handlers:
//	  console:
//	    type: stream
//	    channels: [app, audit]
//	    formatter: {type: json}
//	    level: info
func Parse(data []byte) (Config, error) {
	var doc any
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return Config{}, fmt.Errorf("%w: %w", core.ErrInvalidConfiguration, err)
	}
	if doc == nil {
		return Config{}, nil
	}

	root, ok := doc.(yaml.MapSlice)
	if !ok {
		return Config{}, fmt.Errorf("%w: top level must be a mapping, got %T", core.ErrInvalidConfiguration, doc)
	}

	var cfg Config
	for _, item := range root {
		key := fmt.Sprint(item.Key)
		switch key {
		case "handlers":
			handlers, err := parseHandlers(item.Value)
			if err != nil {
				return Config{}, err
			}
			cfg.Handlers = handlers
		case "processor", "processors":
			list, ok := item.Value.([]any)
			if !ok && item.Value != nil {
				return Config{}, fmt.Errorf("%w: processor must be a list", core.ErrInvalidConfiguration)
			}
			for _, v := range list {
				cfg.Processor = append(cfg.Processor, plain(v))
			}
		case "default_channel":
			s, ok := item.Value.(string)
			if !ok {
				return Config{}, fmt.Errorf("%w: default_channel must be a string", core.ErrInvalidConfiguration)
			}
			cfg.DefaultChannel = s
		default:
			return Config{}, fmt.Errorf("%w: unknown key %q", core.ErrInvalidConfiguration, key)
		}
	}
	return cfg, nil
}

func parseHandlers(v any) ([]NamedHandler, error) {
	if v == nil {
		return nil, nil
	}
	ms, ok := v.(yaml.MapSlice)
	if !ok {
		return nil, fmt.Errorf("%w: handlers must be a mapping", core.ErrInvalidConfiguration)
	}

	handlers := make([]NamedHandler, 0, len(ms))
	for _, item := range ms {
		key := fmt.Sprint(item.Key)
		raw, ok := plain(item.Value).(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: handler %q must be a mapping", core.ErrInvalidConfiguration, key)
		}
		hc, err := ParseHandler(raw)
		if err != nil {
			return nil, fmt.Errorf("handler %q: %w", key, err)
		}
		handlers = append(handlers, NamedHandler{Key: key, HandlerConfig: hc})
	}
	return handlers, nil
}

// ParseHandler splits a raw handler mapping into its reserved keys
// (type, channels, formatter) and the remaining parameter bag.
func ParseHandler(raw map[string]any) (HandlerConfig, error) {
	var hc HandlerConfig
	params := make(map[string]any, len(raw))
	for k, v := range raw {
		switch k {
		case "type":
			s, ok := v.(string)
			if !ok || s == "" {
				return HandlerConfig{}, fmt.Errorf("%w: type must be a non-empty string", core.ErrInvalidConfiguration)
			}
			hc.Type = s
		case "channels":
			channels, err := parseChannels(v)
			if err != nil {
				return HandlerConfig{}, err
			}
			hc.Channels = channels
		case "formatter":
			ref, err := parseFormatter(v)
			if err != nil {
				return HandlerConfig{}, err
			}
			hc.Formatter = ref
		default:
			params[k] = v
		}
	}
	if hc.Type == "" {
		return HandlerConfig{}, fmt.Errorf("%w: type is required", core.ErrInvalidConfiguration)
	}
	if len(params) > 0 {
		hc.Params = params
	}
	return hc, nil
}

func parseChannels(v any) ([]string, error) {
	switch c := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{c}, nil
	case []any:
		out := make([]string, 0, len(c))
		for _, item := range c {
			s, ok := item.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("%w: channel names must be non-empty strings", core.ErrInvalidConfiguration)
			}
			out = append(out, s)
		}
		return out, nil
	case []string:
		return c, nil
	default:
		return nil, fmt.Errorf("%w: channels must be a list, got %T", core.ErrInvalidConfiguration, v)
	}
}

func parseFormatter(v any) (*FormatterRef, error) {
	switch f := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &FormatterRef{Name: f}, nil
	case map[string]any:
		ref := &FormatterRef{}
		for k, val := range f {
			switch k {
			case "name":
				ref.Name, _ = val.(string)
			case "type":
				ref.Type, _ = val.(string)
			case "params":
				list, ok := val.([]any)
				if !ok {
					return nil, fmt.Errorf("%w: formatter params must be a list", core.ErrInvalidConfiguration)
				}
				ref.Params = list
			default:
				return nil, fmt.Errorf("%w: unknown formatter key %q", core.ErrInvalidConfiguration, k)
			}
		}
		if ref.Name == "" && ref.Type == "" {
			return nil, fmt.Errorf("%w: formatter needs a name or a type", core.ErrInvalidConfiguration)
		}
		return ref, nil
	default:
		return nil, fmt.Errorf("%w: formatter must be a name or a mapping, got %T", core.ErrInvalidConfiguration, v)
	}
}

// plain converts ordered mappings into ordinary maps, recursively.
func plain(v any) any {
	switch t := v.(type) {
	case yaml.MapSlice:
		m := make(map[string]any, len(t))
		for _, item := range t {
			m[fmt.Sprint(item.Key)] = plain(item.Value)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}
