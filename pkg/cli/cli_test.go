package cli_test

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	sdk "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/aws/aws-sdk-go/service/cloudformation/cloudformationiface"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/aws/aws-sdk-go/service/lambda/lambdaiface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/convox/logger"
	"github.com/corefw/aag/pkg/cli"
	"github.com/corefw/aag/provider/aws"
	shellquote "github.com/kballard/go-shellquote"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Output = &bytes.Buffer{}
}

type result struct {
	Code   int
	Stdout string
	Stderr string
}

func testEngine(p *aws.Provider) *cli.Engine {
	e := cli.New("aag", "test")
	e.Provider = p

	return e
}

func testExecute(e *cli.Engine, cmd string, stdin io.Reader) (*result, error) {
	if stdin == nil {
		stdin = &bytes.Buffer{}
	}

	stdout := bytes.Buffer{}
	stderr := bytes.Buffer{}

	e.Reader.Reader = stdin

	e.Writer.Color = false
	e.Writer.Stdout = &stdout
	e.Writer.Stderr = &stderr

	cp, err := shellquote.Split(cmd)
	if err != nil {
		return nil, err
	}

	code := e.Execute(cp)

	res := &result{
		Code:   code,
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	return res, nil
}

type mockS3 struct {
	s3iface.S3API
	mock.Mock
}

func (m *mockS3) ListObjectsV2(input *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
	args := m.Called(input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.ListObjectsV2Output), args.Error(1)
}

func (m *mockS3) GetObject(input *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	args := m.Called(input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func (m *mockS3) PutObject(input *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	args := m.Called(input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

type mockLambda struct {
	lambdaiface.LambdaAPI
	mock.Mock
}

func (m *mockLambda) ListFunctions(input *lambda.ListFunctionsInput) (*lambda.ListFunctionsOutput, error) {
	args := m.Called(input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lambda.ListFunctionsOutput), args.Error(1)
}

func (m *mockLambda) ListTags(input *lambda.ListTagsInput) (*lambda.ListTagsOutput, error) {
	args := m.Called(input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lambda.ListTagsOutput), args.Error(1)
}

type mockCloudFormation struct {
	cloudformationiface.CloudFormationAPI
	mock.Mock
}

func (m *mockCloudFormation) DescribeStacks(input *cloudformation.DescribeStacksInput) (*cloudformation.DescribeStacksOutput, error) {
	args := m.Called(input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cloudformation.DescribeStacksOutput), args.Error(1)
}

func (m *mockCloudFormation) CreateStack(input *cloudformation.CreateStackInput) (*cloudformation.CreateStackOutput, error) {
	args := m.Called(input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cloudformation.CreateStackOutput), args.Error(1)
}

func getObjectOutput(body string) *s3.GetObjectOutput {
	return &s3.GetObjectOutput{Body: ioutil.NopCloser(strings.NewReader(body))}
}

const serverlessBody = `{
	"functions": {
		"list": {
			"name": "orders-list",
			"environment": {"COREFW_VERSION_HASH": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"},
			"events": [
				{"http": {"path": "/orders", "method": "get", "integration": "lambda-proxy"}}
			]
		}
	}
}`

func TestAggregate(t *testing.T) {
	ms := &mockS3{}
	ml := &mockLambda{}
	mc := &mockCloudFormation{}

	ms.On("ListObjectsV2", mock.Anything).Return(&s3.ListObjectsV2Output{
		CommonPrefixes: []*s3.CommonPrefix{
			{Prefix: sdk.String("meta/orders/")},
		},
	}, nil)

	ms.On("GetObject", &s3.GetObjectInput{
		Bucket: sdk.String("metadata"),
		Key:    sdk.String("meta/orders/latest/package.json"),
	}).Return(getObjectOutput(`{"name":"orders"}`), nil)

	ms.On("GetObject", &s3.GetObjectInput{
		Bucket: sdk.String("metadata"),
		Key:    sdk.String("meta/orders/latest/serverless.json"),
	}).Return(getObjectOutput(serverlessBody), nil)

	ms.On("GetObject", &s3.GetObjectInput{
		Bucket: sdk.String("metadata"),
		Key:    sdk.String("meta/orders/latest/openapi.json"),
	}).Return(nil, awserr.New("NoSuchKey", "The specified key does not exist.", nil))

	ml.On("ListFunctions", mock.Anything).Return(&lambda.ListFunctionsOutput{
		Functions: []*lambda.FunctionConfiguration{
			{
				FunctionArn:  sdk.String("arn:aws:lambda:us-east-1:1:function:orders-list"),
				FunctionName: sdk.String("orders-list"),
			},
		},
	}, nil)

	ml.On("ListTags", mock.Anything).Return(&lambda.ListTagsOutput{
		Tags: map[string]*string{
			"COREFW_VERSION_HASH":   sdk.String("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
			"COREFW_SERVICE_BRANCH": sdk.String("main"),
		},
	}, nil)

	mc.On("DescribeStacks", mock.Anything).Return(nil, awserr.New("ValidationError", "Stack with id orders-api does not exist", nil)).Once()

	mc.On("CreateStack", mock.Anything).Return(&cloudformation.CreateStackOutput{
		StackId: sdk.String("stack-1"),
	}, nil)

	mc.On("DescribeStacks", mock.Anything).Return(&cloudformation.DescribeStacksOutput{
		Stacks: []*cloudformation.Stack{
			{
				StackId:     sdk.String("stack-1"),
				StackName:   sdk.String("orders-api"),
				StackStatus: sdk.String("CREATE_COMPLETE"),
			},
		},
	}, nil)

	p := &aws.Provider{Region: "us-east-1", S3: ms, Lambda: ml, CloudFormation: mc}

	res, err := testExecute(testEngine(p), "aggregate -b metadata -p meta/ -a orders-api --branch main", nil)
	require.NoError(t, err)
	require.Equal(t, 0, res.Code)
	require.Contains(t, res.Stdout, "services=1 endpoints=1 methods=1 functions=1")
	require.Contains(t, res.Stdout, "stack=stack-1 status=CREATE_COMPLETE")
}

func TestAggregateMissingBucket(t *testing.T) {
	p := &aws.Provider{}

	res, err := testExecute(testEngine(p), "aggregate -a orders-api --branch main", nil)
	require.NoError(t, err)
	require.Equal(t, 1, res.Code)
	require.Contains(t, res.Stderr, "bucket required")
}

func TestAggregateValidatesArgs(t *testing.T) {
	p := &aws.Provider{}

	res, err := testExecute(testEngine(p), "aggregate extra", nil)
	require.NoError(t, err)
	require.Equal(t, 1, res.Code)
}

const metadeployBody = `vars:
  stage: main
targets:
  metadata:
    bucket: metadata
    prefix: meta/
modules:
  - name: orders
    target: metadata
    files:
      - source: "*.json"
        template: true
`

func TestMetaDeploy(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "metadeploy.yml"), []byte(metadeployBody), 0644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "openapi.json"), []byte(`{"stage":"${stage}"}`), 0644))

	ms := &mockS3{}

	ms.On("PutObject", mock.Anything).Return(&s3.PutObjectOutput{}, nil)

	p := &aws.Provider{S3: ms}

	res, err := testExecute(testEngine(p), fmt.Sprintf("meta deploy -c %s/metadeploy.yml -d %s", dir, dir), nil)
	require.NoError(t, err)
	require.Equal(t, 0, res.Code)

	req := ms.Calls[0].Arguments.Get(0).(*s3.PutObjectInput)
	require.Equal(t, "metadata", sdk.StringValue(req.Bucket))
	require.Equal(t, "meta/openapi.json", sdk.StringValue(req.Key))
}

func TestMetaDeployMissingConfig(t *testing.T) {
	p := &aws.Provider{}

	res, err := testExecute(testEngine(p), "meta deploy -c /nonexistent/metadeploy.yml", nil)
	require.NoError(t, err)
	require.Equal(t, 1, res.Code)
}
