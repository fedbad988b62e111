package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
)

// LoadJSON reads a JSON object fixture from this directory. If target is
// provided, the JSON is additionally unmarshaled into it.
func LoadJSON(filename string, target ...any) (map[string]any, error) {
	data, err := read(filename)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	if len(target) > 0 && target[0] != nil {
		if err := json.Unmarshal(data, target[0]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// LoadJSONArray reads a JSON array fixture from this directory.
func LoadJSONArray(filename string) ([]map[string]any, error) {
	data, err := read(filename)
	if err != nil {
		return nil, err
	}

	var result []map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func read(filename string) ([]byte, error) {
	_, currentFile, _, _ := runtime.Caller(0)
	return os.ReadFile(filepath.Join(filepath.Dir(currentFile), filename))
}
