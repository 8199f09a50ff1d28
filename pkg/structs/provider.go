package structs

// ObjectListing is the result of one storage list call.
type ObjectListing struct {
	CommonPrefixes []string
	Keys           []string
	Truncated      bool
}

// StackRecord describes a named deployment stack.
type StackRecord struct {
	Id     string
	Name   string
	Status string
}

// ObjectStorage is a bucket-scoped blob store keyed by path-like strings.
type ObjectStorage interface {
	List(bucket, prefix, delimiter string, max int64) (*ObjectListing, error)
	Get(bucket, key string) ([]byte, error)
	Put(bucket, key string, data []byte) error
	Delete(bucket string, keys []string) error
}

// FunctionRegistryClient enumerates deployed compute functions one page at
// a time.
type FunctionRegistryClient interface {
	ListFunctions(pageSize int64, marker string) (*FunctionPage, error)
}

// DeploymentTarget manages a named declarative-infrastructure stack.
// Describe returns a NotFound error when the stack does not exist.
type DeploymentTarget interface {
	Describe(name string) (*StackRecord, error)
	Create(name, templateBody, token string, tags map[string]string) (string, error)
	Update(id, templateBody string) error
}
