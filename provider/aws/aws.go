// Package aws backs the aggregator's collaborator interfaces with S3,
// Lambda, and CloudFormation.
package aws

import (
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/aws/aws-sdk-go/service/cloudformation/cloudformationiface"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/aws/aws-sdk-go/service/lambda/lambdaiface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/convox/logger"
)

var Logger = logger.New("ns=aws")

type Provider struct {
	Region   string
	Endpoint string
	Access   string
	Secret   string
	Token    string

	S3             s3iface.S3API
	Lambda         lambdaiface.LambdaAPI
	CloudFormation cloudformationiface.CloudFormationAPI
}

// FromEnv returns a provider configured from the environment.
func FromEnv() *Provider {
	return &Provider{
		Region:   os.Getenv("AWS_REGION"),
		Endpoint: os.Getenv("AWS_ENDPOINT"),
		Access:   os.Getenv("AWS_ACCESS_KEY_ID"),
		Secret:   os.Getenv("AWS_SECRET_ACCESS_KEY"),
		Token:    os.Getenv("AWS_SESSION_TOKEN"),
	}
}

func (p *Provider) config() *aws.Config {
	config := &aws.Config{}

	if p.Access != "" {
		config.Credentials = credentials.NewStaticCredentials(p.Access, p.Secret, p.Token)
	}

	if p.Region != "" {
		config.Region = aws.String(p.Region)
	}

	if p.Endpoint != "" {
		config.Endpoint = aws.String(p.Endpoint)
	}

	if os.Getenv("DEBUG") != "" {
		config.WithLogLevel(aws.LogDebugWithHTTPBody)
	}

	return config
}

// s3 returns an S3 client configured to use the path style
// (http://s3.amazonaws.com/bucket/key) since path style is easier to test.
func (p *Provider) s3() s3iface.S3API {
	if p.S3 == nil {
		p.S3 = s3.New(session.New(), p.config().WithS3ForcePathStyle(true))
	}

	return p.S3
}

func (p *Provider) lambda() lambdaiface.LambdaAPI {
	if p.Lambda == nil {
		p.Lambda = lambda.New(session.New(), p.config())
	}

	return p.Lambda
}

func (p *Provider) cloudformation() cloudformationiface.CloudFormationAPI {
	if p.CloudFormation == nil {
		p.CloudFormation = cloudformation.New(session.New(), p.config())
	}

	return p.CloudFormation
}
