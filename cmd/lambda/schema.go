package main

import (
	"fmt"
	"os"

	"github.com/blueprint-graph/compiler/internal/registry"
)

func loadSchema(path string) (*registry.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	reg, err := registry.Load(data)
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", path, err)
	}
	return reg, nil
}
