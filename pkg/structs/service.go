package structs

// ServiceBundle holds the parsed metadata artifacts for one service. A
// field is nil when the corresponding artifact does not exist in storage.
type ServiceBundle struct {
	Name       string
	Package    map[string]interface{}
	Serverless map[string]interface{}
	OpenApi    map[string]interface{}
}
