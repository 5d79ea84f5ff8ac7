package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
)

type memoryItem struct {
	ID    string   `json:"id"`
	Text  string   `json:"text"`
	Trust *float64 `json:"trust"`
}

// loadMemoriesFile reads memories from a JSON file holding a list, or an
// object with a "memories" or "facts" list. Items are plain strings or
// {id, text, trust} objects.
func loadMemoriesFile(path string) ([]domain.Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read memories file: %w", err)
	}
	memories, err := parseMemories(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return memories, nil
}

func parseMemories(data []byte) ([]domain.Memory, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	var raw []json.RawMessage
	if data[0] == '{' {
		var wrapper struct {
			Memories []json.RawMessage `json:"memories"`
			Facts    []json.RawMessage `json:"facts"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, err
		}
		raw = wrapper.Memories
		if raw == nil {
			raw = wrapper.Facts
		}
		if raw == nil {
			return nil, fmt.Errorf(`expected a "memories" or "facts" list`)
		}
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	memories := make([]domain.Memory, 0, len(raw))
	for i, item := range raw {
		m := domain.Memory{ID: "m" + strconv.Itoa(i), Trust: 1.0}

		var text string
		if err := json.Unmarshal(item, &text); err == nil {
			m.Text = text
			memories = append(memories, m)
			continue
		}

		var obj memoryItem
		if err := json.Unmarshal(item, &obj); err != nil {
			return nil, fmt.Errorf("memory %d: must be a string or an object", i)
		}
		if obj.ID != "" {
			m.ID = obj.ID
		}
		if obj.Trust != nil {
			if *obj.Trust < 0 || *obj.Trust > 1 {
				return nil, fmt.Errorf("memory %d: trust must be between 0 and 1", i)
			}
			m.Trust = *obj.Trust
		}
		m.Text = obj.Text
		memories = append(memories, m)
	}
	return memories, nil
}
