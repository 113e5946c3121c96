package reasoner

import "github.com/workgraph/engine/internal/value"

func propString(props value.Props, key string) string {
	v, ok := props[key]
	if !ok {
		return ""
	}
	return v.String()
}

func nameAndDescription(props value.Props) string {
	return propString(props, "name") + " " + propString(props, "description")
}
