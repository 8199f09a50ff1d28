package aws

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/corefw/aag/pkg/structs"
	"github.com/pkg/errors"
)

const (
	tagVersionHash = "COREFW_VERSION_HASH"
	tagBranch      = "COREFW_SERVICE_BRANCH"
)

// ListFunctions returns one page of Lambda functions together with the
// deployment tags the aggregator filters on.
func (p *Provider) ListFunctions(pageSize int64, marker string) (*structs.FunctionPage, error) {
	log := Logger.At("ListFunctions").Namespace("marker=%q", marker).Start()

	req := &lambda.ListFunctionsInput{
		MaxItems: aws.Int64(pageSize),
	}

	if marker != "" {
		req.Marker = aws.String(marker)
	}

	res, err := p.lambda().ListFunctions(req)
	if err != nil {
		return nil, log.Error(errors.WithStack(err))
	}

	page := &structs.FunctionPage{
		NextMarker: aws.StringValue(res.NextMarker),
	}

	for _, fn := range res.Functions {
		arn := aws.StringValue(fn.FunctionArn)

		tags, err := p.lambda().ListTags(&lambda.ListTagsInput{
			Resource: aws.String(arn),
		})
		if err != nil {
			return nil, log.Error(errors.WithStack(err))
		}

		page.Records = append(page.Records, structs.FunctionRecord{
			Arn:         arn,
			Name:        aws.StringValue(fn.FunctionName),
			VersionHash: aws.StringValue(tags.Tags[tagVersionHash]),
			Branch:      aws.StringValue(tags.Tags[tagBranch]),
		})
	}

	log.Successf("functions=%d", len(page.Records))

	return page, nil
}
