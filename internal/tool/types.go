package tool

import "slices"

// Type represents JSON Schema types.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Schema represents a JSON Schema for tool parameters.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

// Declaration declares a tool's function signature for the LLM.
type Declaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// Name identifies one of the tools the agent may call. The set is closed.
type Name string

const (
	ListFiles    Name = "list_files"
	ReadFile     Name = "read_file"
	RefactorFile Name = "refactor_file"
	ValidateCode Name = "validate_code"
)

// Names returns every tool name in declaration order.
func Names() []Name {
	return []Name{ListFiles, ReadFile, RefactorFile, ValidateCode}
}

// Valid reports whether n belongs to the closed set.
func (n Name) Valid() bool {
	return slices.Contains(Names(), n)
}

// Result is the text content returned to the model by a tool.
type Result string

// LLMContent returns the string content sent to the LLM.
func (r Result) LLMContent() string { return string(r) }
