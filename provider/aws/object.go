package aws

import (
	"bytes"
	"fmt"
	"io/ioutil"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/corefw/aag/pkg/structs"
	"github.com/pkg/errors"
)

func (p *Provider) List(bucket, prefix, delimiter string, max int64) (*structs.ObjectListing, error) {
	log := Logger.At("List").Namespace("bucket=%q prefix=%q", bucket, prefix).Start()

	req := &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		MaxKeys: aws.Int64(max),
	}

	if prefix != "" {
		req.Prefix = aws.String(prefix)
	}

	if delimiter != "" {
		req.Delimiter = aws.String(delimiter)
	}

	res, err := p.s3().ListObjectsV2(req)
	if err != nil {
		return nil, log.Error(errors.WithStack(err))
	}

	listing := &structs.ObjectListing{
		Truncated: aws.BoolValue(res.IsTruncated),
	}

	for _, cp := range res.CommonPrefixes {
		listing.CommonPrefixes = append(listing.CommonPrefixes, aws.StringValue(cp.Prefix))
	}

	for _, o := range res.Contents {
		listing.Keys = append(listing.Keys, aws.StringValue(o.Key))
	}

	log.Successf("prefixes=%d keys=%d", len(listing.CommonPrefixes), len(listing.Keys))

	return listing, nil
}

func (p *Provider) Get(bucket, key string) ([]byte, error) {
	log := Logger.At("Get").Namespace("bucket=%q key=%q", bucket, key).Start()

	res, err := p.s3().GetObject(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if ae, ok := err.(awserr.Error); ok {
		switch ae.Code() {
		case "NoSuchKey", "NotFound":
			return nil, log.Error(errorNotFound(fmt.Sprintf("no such object: %s", key)))
		}
	}
	if err != nil {
		return nil, log.Error(errors.WithStack(err))
	}
	defer res.Body.Close()

	data, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, log.Error(errors.WithStack(err))
	}

	log.Success()

	return data, nil
}

func (p *Provider) Put(bucket, key string, data []byte) error {
	log := Logger.At("Put").Namespace("bucket=%q key=%q len=%d", bucket, key, len(data)).Start()

	_, err := p.s3().PutObject(&s3.PutObjectInput{
		Body:          bytes.NewReader(data),
		Bucket:        aws.String(bucket),
		ContentLength: aws.Int64(int64(len(data))),
		Key:           aws.String(key),
	})
	if err != nil {
		return log.Error(errors.WithStack(err))
	}

	log.Success()

	return nil
}

func (p *Provider) Delete(bucket string, keys []string) error {
	log := Logger.At("Delete").Namespace("bucket=%q keys=%d", bucket, len(keys)).Start()

	if len(keys) == 0 {
		log.Success()
		return nil
	}

	objects := make([]*s3.ObjectIdentifier, len(keys))

	for i, key := range keys {
		objects[i] = &s3.ObjectIdentifier{Key: aws.String(key)}
	}

	_, err := p.s3().DeleteObjects(&s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &s3.Delete{Objects: objects},
	})
	if err != nil {
		return log.Error(errors.WithStack(err))
	}

	log.Success()

	return nil
}
