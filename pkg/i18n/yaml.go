package i18n

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a document whose top-level keys are language codes:
//
//	en:
//	  messages:
//	    required: "Two-factor authentication is required."
func ParseYAML(content []byte) (map[string]map[string]any, error) {
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, errors.Join(ErrFailedToParseYAML, err)
	}

	result := make(map[string]map[string]any, len(data))
	for lang, val := range data {
		trans, ok := val.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: language %q: expected map, got %T", ErrInvalidTranslationFormat, lang, val)
		}
		result[lang] = trans
	}
	return result, nil
}

// LoadFS reads every .yaml/.yml file in dir of fsys and merges them.
// Files are read in directory order; a later file overrides keys of an earlier one.
func LoadFS(fsys fs.FS, dir string) (map[string]map[string]any, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Join(ErrFailedToReadDirectory, err)
	}

	result := make(map[string]map[string]any)
	for _, entry := range entries {
		ext := strings.ToLower(path.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, errors.Join(ErrFailedToReadFile, fmt.Errorf("%s: %w", entry.Name(), err))
		}
		parsed, err := ParseYAML(content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		for lang, trans := range parsed {
			if result[lang] == nil {
				result[lang] = make(map[string]any)
			}
			merge(result[lang], trans)
		}
	}
	return result, nil
}

func merge(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcOK := v.(map[string]any)
		dstMap, dstOK := dst[k].(map[string]any)
		if srcOK && dstOK {
			merge(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
}
