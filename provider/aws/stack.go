package aws

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/corefw/aag/pkg/structs"
	"github.com/pkg/errors"
)

func (p *Provider) Describe(name string) (*structs.StackRecord, error) {
	log := Logger.At("Describe").Namespace("name=%q", name).Start()

	res, err := p.cloudformation().DescribeStacks(&cloudformation.DescribeStacksInput{
		StackName: aws.String(name),
	})
	if ae, ok := err.(awserr.Error); ok {
		if ae.Code() == "ValidationError" {
			return nil, log.Error(errorNotFound(fmt.Sprintf("no such stack: %s", name)))
		}
	}
	if err != nil {
		return nil, log.Error(errors.WithStack(err))
	}
	if len(res.Stacks) != 1 {
		return nil, log.Error(fmt.Errorf("could not load stack: %s", name))
	}

	s := res.Stacks[0]

	record := &structs.StackRecord{
		Id:     aws.StringValue(s.StackId),
		Name:   aws.StringValue(s.StackName),
		Status: aws.StringValue(s.StackStatus),
	}

	log.Successf("status=%s", record.Status)

	return record, nil
}

func (p *Provider) Create(name, templateBody, token string, tags map[string]string) (string, error) {
	log := Logger.At("Create").Namespace("name=%q", name).Start()

	req := &cloudformation.CreateStackInput{
		Capabilities:       []*string{aws.String("CAPABILITY_IAM")},
		ClientRequestToken: aws.String(token),
		StackName:          aws.String(name),
		TemplateBody:       aws.String(templateBody),
	}

	keys := make([]string, 0, len(tags))

	for key := range tags {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		req.Tags = append(req.Tags, &cloudformation.Tag{
			Key:   aws.String(key),
			Value: aws.String(tags[key]),
		})
	}

	res, err := p.cloudformation().CreateStack(req)
	if err != nil {
		return "", log.Error(errors.WithStack(err))
	}

	id := aws.StringValue(res.StackId)

	log.Successf("id=%s", id)

	return id, nil
}

func (p *Provider) Update(id, templateBody string) error {
	log := Logger.At("Update").Namespace("id=%q", id).Start()

	_, err := p.cloudformation().UpdateStack(&cloudformation.UpdateStackInput{
		Capabilities: []*string{aws.String("CAPABILITY_IAM")},
		StackName:    aws.String(id),
		TemplateBody: aws.String(templateBody),
	})
	if ae, ok := err.(awserr.Error); ok {
		if ae.Code() == "ValidationError" && strings.Contains(ae.Message(), "No updates are to be performed") {
			log.Successf("updates=none")
			return nil
		}
	}
	if err != nil {
		return log.Error(errors.WithStack(err))
	}

	log.Success()

	return nil
}
