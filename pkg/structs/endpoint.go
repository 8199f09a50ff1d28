package structs

// EndpointDescriptor is one HTTP endpoint resolved from service metadata.
type EndpointDescriptor struct {
	Name        string
	ShortName   string
	Description string
	Path        string
	Method      string
	Service     string
	VersionHash string
}

// EndpointMap indexes endpoint descriptors by path then lowercased method.
type EndpointMap map[string]map[string]EndpointDescriptor
