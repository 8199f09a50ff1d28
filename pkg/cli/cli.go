// Package cli wires the aggregator and metadata deployer into the aag
// command line tool.
package cli

import (
	"github.com/convox/stdcli"
	"github.com/corefw/aag/provider/aws"
)

type Engine struct {
	*stdcli.Engine
	Provider *aws.Provider
}

type HandlerFunc func(*aws.Provider, *stdcli.Context) error

func New(name, version string) *Engine {
	e := &Engine{
		Engine: stdcli.New(name, version),
	}

	e.Command("aggregate", "assemble and deploy the api gateway stack", Aggregate, stdcli.CommandOptions{
		Flags: []stdcli.Flag{
			stdcli.StringFlag("bucket", "b", "metadata bucket"),
			stdcli.StringFlag("prefix", "p", "metadata key prefix"),
			stdcli.StringFlag("api-name", "a", "api gateway name"),
			stdcli.StringFlag("branch", "", "git branch to aggregate"),
			stdcli.StringFlag("stack", "s", "cloudformation stack name"),
		},
		Validate: stdcli.Args(0),
	})

	e.Command("meta deploy", "upload service metadata artifacts", MetaDeploy, stdcli.CommandOptions{
		Flags: []stdcli.Flag{
			stdcli.StringFlag("config", "c", "deployment config file"),
			stdcli.StringFlag("dir", "d", "artifact directory"),
		},
		Validate: stdcli.Args(0),
	})

	return e
}

func (e *Engine) Command(command, description string, fn HandlerFunc, opts stdcli.CommandOptions) {
	wfn := func(c *stdcli.Context) error {
		return fn(e.currentProvider(), c)
	}

	e.Engine.Command(command, description, wfn, opts)
}

func (e *Engine) currentProvider() *aws.Provider {
	if e.Provider != nil {
		return e.Provider
	}

	return aws.FromEnv()
}
