package structs

// FunctionRecord is one deployed function with the tags the aggregator
// filters on.
type FunctionRecord struct {
	Arn         string
	Name        string
	VersionHash string
	Branch      string
}

// FunctionRegistry indexes function records by lowercased version hash.
type FunctionRegistry map[string]FunctionRecord

// FunctionPage is one page of a function listing.
type FunctionPage struct {
	Records    []FunctionRecord
	NextMarker string
}
