package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/constraints"
	"gopkg.in/yaml.v3"
)

func ToJson(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("ToJson error: %v", err)
		return ""
	}
	return string(b)
}

// FromJson decodes a json string into generic values (map[string]any, []any, ...).
// It returns nil if the string is not valid json.
func FromJson(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		log.Printf("FromJson error: %v", err)
		return nil
	}
	return v
}

// Check whether a file (or dir) with name exists in file system.
// If it encounter an file system access error, return false,err
func FileExists(name string) (bool, error) {
	_, err := os.Stat(name)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func ParseInt[T constraints.Integer](s string, defaultValue T) T {
	if s != "" {
		if i, err := strconv.Atoi(s); err == nil {
			return T(i)
		}
	}
	return defaultValue
}

// Map applies a function to each element of a slice and returns a new slice containing the results.
// If input is nil, the output will also be nil.
func Map[T1 any, T2 any](ss []T1, mapper func(T1) T2) (ret []T2) {
	for _, s := range ss {
		ret = append(ret, mapper(s))
	}
	return
}

// UniqueSlice returns ss with duplicates removed, keeping the first occurrence order.
func UniqueSlice[T comparable](ss []T) []T {
	seen := make(map[T]struct{}, len(ss))
	ret := make([]T, 0, len(ss))
	for _, s := range ss {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		ret = append(ret, s)
	}
	return ret
}

// HasDuplicates checks if a slice contains duplicate elements.
func HasDuplicates[T comparable](s []T) bool {
	seen := make(map[T]struct{})
	for _, item := range s {
		if _, exists := seen[item]; exists {
			return true
		}
		seen[item] = struct{}{}
	}
	return false
}

// Parse http content-type header and return mediatype, e.g. "text/html".
// contentType: the http Content-Type header, e.g. "text/html; charset=utf-8"
func MediaType(contentType string) string {
	if contentType != "" {
		if mediatype, _, err := mime.ParseMediaType(contentType); err == nil {
			return mediatype
		}
	}
	return ""
}

// Marshal a object to json / yaml / toml string according to contentType.
// contentType could be: a mediatype (e.g. "application/json"), or a file type or extension (e.g. "json" or ".json").
// If contentType is empty or is not a supported type, return an error.
//
// yaml and toml output is produced from the json form of input,
// so the json field names and MarshalJSON methods apply to all formats.
func Marshal(contentType string, input any) (data []byte, err error) {
	if strings.ContainsRune(contentType, '/') {
		contentType = MediaType(contentType)
	}
	switch contentType {
	case "application/json", "text/json", "json", ".json":
		return json.MarshalIndent(input, "", "  ")
	case "application/yaml", "text/yaml", "yaml", ".yaml", "yml", ".yml":
		return yaml.Marshal(FromJson(ToJson(input)))
	case "application/toml", "text/toml", "toml", ".toml":
		generic := FromJson(ToJson(input))
		if _, ok := generic.(map[string]any); !ok {
			// toml documents must be tables
			generic = map[string]any{"items": generic}
		}
		return toml.Marshal(generic)
	default:
		return nil, fmt.Errorf("Marshal: unsupported format %s", contentType)
	}
}
