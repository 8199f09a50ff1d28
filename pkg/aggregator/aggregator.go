// Package aggregator stitches per-service serverless metadata into a single
// API gateway resource graph and reconciles it against a deployment stack.
package aggregator

import (
	"fmt"
	"time"

	"github.com/convox/logger"
	"github.com/corefw/aag/pkg/structs"
)

const (
	defaultPollInterval    = 15 * time.Second
	defaultMaxPollAttempts = 120
	defaultRegion          = "us-east-1"
)

// Options configures an aggregation run. Zero values for the polling fields
// take the package defaults.
type Options struct {
	Bucket    string
	Prefix    string
	ApiName   string
	GitBranch string
	StackName string
	Region    string

	PollInterval    time.Duration
	MaxPollAttempts int
}

type Aggregator struct {
	opts     Options
	storage  structs.ObjectStorage
	registry structs.FunctionRegistryClient
	target   structs.DeploymentTarget

	logger *logger.Logger
}

func New(opts Options, storage structs.ObjectStorage, registry structs.FunctionRegistryClient, target structs.DeploymentTarget) (*Aggregator, error) {
	switch {
	case opts.Bucket == "":
		return nil, fmt.Errorf("bucket required")
	case opts.ApiName == "":
		return nil, fmt.Errorf("api name required")
	case opts.GitBranch == "":
		return nil, fmt.Errorf("git branch required")
	case opts.StackName == "":
		return nil, fmt.Errorf("stack name required")
	}

	if opts.Region == "" {
		opts.Region = defaultRegion
	}

	if opts.PollInterval == 0 {
		opts.PollInterval = defaultPollInterval
	}

	if opts.MaxPollAttempts == 0 {
		opts.MaxPollAttempts = defaultMaxPollAttempts
	}

	a := &Aggregator{
		opts:     opts,
		storage:  storage,
		registry: registry,
		target:   target,
		logger:   logger.New("ns=aggregator"),
	}

	return a, nil
}

// Result summarizes a completed aggregation run.
type Result struct {
	Services  int
	Endpoints int
	Methods   int
	Functions int
	StackId   string
	Status    string
}

// Execute runs the full pipeline: fetch service metadata, build the
// endpoint map, load the function registry, assemble the resource graph,
// then create or update the deployment stack and wait for it to stabilize.
func (a *Aggregator) Execute() (*Result, error) {
	log := a.logger.At("Execute").Namespace("stack=%q branch=%q", a.opts.StackName, a.opts.GitBranch).Start()

	bundles, err := a.FetchAllBundles(a.opts.Bucket, a.opts.Prefix)
	if err != nil {
		return nil, log.Error(err)
	}

	endpoints, resolved := a.BuildEndpointMap(bundles)

	functions, err := a.RelevantFunctions(a.opts.GitBranch)
	if err != nil {
		return nil, log.Error(err)
	}

	gvars := map[string]interface{}{
		"apiName":    a.opts.ApiName,
		"apiRefName": FormatRefName("", a.opts.ApiName, "AagRestApi"),
		"gitBranch":  a.opts.GitBranch,
		"region":     a.opts.Region,
	}

	graph, methods, err := a.Assemble(endpoints, functions, gvars)
	if err != nil {
		return nil, log.Error(err)
	}

	id, accept, err := a.Deploy(a.opts.StackName, graph)
	if err != nil {
		return nil, log.Error(err)
	}

	status, err := a.WaitForStates(id, accept, a.opts.PollInterval, a.opts.MaxPollAttempts)
	if err != nil {
		return nil, log.Error(err)
	}

	if !successStates[status] {
		return nil, log.Error(fmt.Errorf("stack %s reached terminal state %s", a.opts.StackName, status))
	}

	r := &Result{
		Services:  len(bundles),
		Endpoints: resolved,
		Methods:   len(methods),
		Functions: len(functions),
		StackId:   id,
		Status:    status,
	}

	log.Successf("services=%d endpoints=%d methods=%d status=%q", r.Services, r.Endpoints, r.Methods, r.Status)

	return r, nil
}
