package planner

import "github.com/workgraph/engine/internal/value"

func propString(props value.Props, key string) string {
	v, ok := props[key]
	if !ok {
		return ""
	}
	return v.String()
}

func propInt(props value.Props, key string, fallback int) int {
	v, ok := props[key]
	if !ok {
		return fallback
	}
	n, ok := v.Number()
	if !ok {
		return fallback
	}
	return int(n)
}
