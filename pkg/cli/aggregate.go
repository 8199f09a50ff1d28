package cli

import (
	"github.com/convox/stdcli"
	"github.com/corefw/aag/pkg/aggregator"
	"github.com/corefw/aag/pkg/helpers"
	"github.com/corefw/aag/provider/aws"
)

func Aggregate(p *aws.Provider, c *stdcli.Context) error {
	opts := aggregator.Options{
		Bucket:    c.String("bucket"),
		Prefix:    c.String("prefix"),
		ApiName:   c.String("api-name"),
		GitBranch: c.String("branch"),
		StackName: helpers.Coalesce(c.String("stack"), c.String("api-name")),
		Region:    p.Region,
	}

	a, err := aggregator.New(opts, p, p, p)
	if err != nil {
		return err
	}

	c.Startf("Aggregating %s into %s", opts.GitBranch, opts.StackName)

	r, err := a.Execute()
	if err != nil {
		return err
	}

	if err := c.OK(); err != nil {
		return err
	}

	c.Writef("services=%d endpoints=%d methods=%d functions=%d\n", r.Services, r.Endpoints, r.Methods, r.Functions)
	c.Writef("stack=%s status=%s\n", r.StackId, r.Status)

	return nil
}
