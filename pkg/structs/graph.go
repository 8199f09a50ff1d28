package structs

import "encoding/json"

// ResourceGraph is an assembled CloudFormation template.
type ResourceGraph struct {
	FormatVersion string                 `json:"AWSTemplateFormatVersion"`
	Description   string                 `json:"Description,omitempty"`
	Resources     map[string]interface{} `json:"Resources"`
	Outputs       map[string]interface{} `json:"Outputs,omitempty"`
}

// TemplateBody renders the graph as a template body suitable for stack
// create and update calls.
func (g *ResourceGraph) TemplateBody() (string, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}
