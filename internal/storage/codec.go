package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// CodecID identifies a payload encoding inside the envelope.
type CodecID uint8

const (
	CodecJSON CodecID = iota + 1
	CodecYAML
	CodecTOML
)

// Codec serializes payloads.
type Codec interface {
	ID() CodecID
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type jsonCodec struct{}

func (jsonCodec) ID() CodecID  { return CodecJSON }
func (jsonCodec) Name() string { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error) {
	// ConfigStd sorts map keys, which keeps repeated saves byte-identical.
	return sonic.ConfigStd.Marshal(v)
}
func (jsonCodec) Unmarshal(data []byte, v any) error {
	return sonic.ConfigStd.Unmarshal(data, v)
}

type yamlCodec struct{}

func (yamlCodec) ID() CodecID                        { return CodecYAML }
func (yamlCodec) Name() string                       { return "yaml" }
func (yamlCodec) Marshal(v any) ([]byte, error)      { return yaml.Marshal(v) }
func (yamlCodec) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

type tomlCodec struct{}

func (tomlCodec) ID() CodecID                        { return CodecTOML }
func (tomlCodec) Name() string                       { return "toml" }
func (tomlCodec) Marshal(v any) ([]byte, error)      { return toml.Marshal(v) }
func (tomlCodec) Unmarshal(data []byte, v any) error { return toml.Unmarshal(data, v) }

var (
	JSON Codec = jsonCodec{}
	YAML Codec = yamlCodec{}
	TOML Codec = tomlCodec{}
)

var codecs = map[CodecID]Codec{
	CodecJSON: JSON,
	CodecYAML: YAML,
	CodecTOML: TOML,
}

// CodecByID returns the codec registered for id.
func CodecByID(id CodecID) (Codec, error) {
	c, ok := codecs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, id)
	}
	return c, nil
}

// CodecForPath picks a codec from the file extension. Unknown extensions
// (including the conventional ".dat") use JSON.
func CodecForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	case ".toml":
		return TOML
	default:
		return JSON
	}
}
